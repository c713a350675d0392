package provider

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/query"
)

// ListResult is one fetched list page: the records, the filters that were
// applied to obtain them, and the backend's paging state.
type ListResult struct {
	Records        []domain.Record
	AppliedFilters []domain.Filter
	Pagination     domain.Pagination
}

type listResponse struct {
	Results  []domain.Record `json:"results"`
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	PageSize int             `json:"page_size"`
}

// GetList fetches one page of resourceURL narrowed by the given filters.
// Errors are returned unchanged in kind; nothing is retried.
func (p *Provider) GetList(
	ctx context.Context,
	resourceURL string,
	resourceFilters []domain.Filter,
	tableFilters []domain.TableFilter,
	page int,
) (ListResult, error) {
	target := query.WithPage(p.URL(p.resolve(resourceURL), resourceFilters, tableFilters), page)

	var resp listResponse
	if err := p.do(ctx, http.MethodGet, target, nil, &resp); err != nil {
		return ListResult{}, err
	}

	perPage := resp.PageSize
	if perPage <= 0 {
		perPage = p.pageSize
	}
	if page <= 0 {
		page = 1
	}

	applied := make([]domain.Filter, 0, len(tableFilters)+len(resourceFilters))
	applied = append(applied, domain.FilterValues(tableFilters)...)
	applied = append(applied, resourceFilters...)

	records := resp.Results
	if records == nil {
		records = []domain.Record{}
	}

	p.logger.Debug("fetched list page",
		zap.String("url", target),
		zap.Int("records", len(records)),
		zap.Int("count", resp.Count))

	return ListResult{
		Records:        records,
		AppliedFilters: applied,
		Pagination: domain.Pagination{
			Page:    page,
			PerPage: perPage,
			Count:   resp.Count,
			NextURL: deref(resp.Next),
			PrevURL: deref(resp.Previous),
		},
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
