// Package listview keeps the state behind a paginated, filterable list
// table and refreshes it through a provider.
package listview

import (
	"context"
	"fmt"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/provider"
)

// State is the list table of one resource. Each refresh replaces the
// records wholesale; overlapping refreshes are not coordinated and the
// last response wins.
type State struct {
	resourceURL     string
	resourceFilters []domain.Filter
	tableFilters    []domain.TableFilter
	page            int
	records         []domain.Record
	pagination      *domain.Pagination
	pageCount       int
}

// New creates the state for resourceURL with persistent resource filters.
func New(resourceURL string, resourceFilters ...domain.Filter) *State {
	return &State{
		resourceURL:     resourceURL,
		resourceFilters: append([]domain.Filter(nil), resourceFilters...),
		page:            1,
	}
}

// SetTableFilters replaces the column filters. Filters sharing an ID
// collapse to the last one given, kept at the position of the first.
func (s *State) SetTableFilters(filters []domain.TableFilter) {
	s.tableFilters = UniqueByID(filters)
}

// UniqueByID deduplicates table filters by ID; the last value wins and
// first-seen order is preserved.
func UniqueByID(filters []domain.TableFilter) []domain.TableFilter {
	index := make(map[string]int, len(filters))
	out := make([]domain.TableFilter, 0, len(filters))
	for _, f := range filters {
		if i, ok := index[f.ID]; ok {
			out[i] = f
			continue
		}
		index[f.ID] = len(out)
		out = append(out, f)
	}
	return out
}

// TableFilters returns the active column filters.
func (s *State) TableFilters() []domain.TableFilter {
	return append([]domain.TableFilter(nil), s.tableFilters...)
}

// SetPage selects the page fetched by the next refresh.
func (s *State) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.page = page
}

// Page returns the selected page.
func (s *State) Page() int {
	return s.page
}

// Records returns the rows of the last processed response.
func (s *State) Records() []domain.Record {
	return s.records
}

// Pagination returns the paging state of the last response, if any.
func (s *State) Pagination() (domain.Pagination, bool) {
	if s.pagination == nil {
		return domain.Pagination{}, false
	}
	return *s.pagination, true
}

// PageCount returns the number of pages reported so far.
func (s *State) PageCount() int {
	return s.pageCount
}

// CanPreviousPage reports whether a page before the current one exists.
func (s *State) CanPreviousPage() bool {
	return s.page > 1
}

// CanNextPage reports whether a page after the current one exists.
func (s *State) CanNextPage() bool {
	return s.page < s.pageCount
}

// Refresh fetches the selected page. Errors are returned untouched and
// leave the previous state in place.
func (s *State) Refresh(ctx context.Context, lister provider.ListableProvider) error {
	result, err := lister.GetList(ctx, s.resourceURL, s.resourceFilters, s.tableFilters, s.page)
	if err != nil {
		return err
	}
	s.ProcessBackendResponse(result)
	return nil
}

// ProcessBackendResponse stores a fetched page. The page count is only
// recomputed when the backend reports a positive count.
func (s *State) ProcessBackendResponse(result provider.ListResult) {
	s.records = result.Records
	pagination := result.Pagination
	s.pagination = &pagination
	if pagination.Count > 0 {
		s.pageCount = pagination.PageCount()
	}
}

// Expand replaces the id stored in field of every record with the related
// record fetched through loader.
func (s *State) Expand(ctx context.Context, field string, loader *provider.RelatedLoader) error {
	ids := make([]string, 0, len(s.records))
	positions := make([]int, 0, len(s.records))
	for i, record := range s.records {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		ids = append(ids, domain.Record{"id": value}.ID())
		positions = append(positions, i)
	}
	if len(ids) == 0 {
		return nil
	}

	related, err := loader.LoadMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to expand %s: %w", field, err)
	}

	expanded := make([]domain.Record, len(s.records))
	copy(expanded, s.records)
	for n, i := range positions {
		record := expanded[i].Clone()
		record[field] = map[string]any(related[n])
		expanded[i] = record
	}
	s.records = expanded
	return nil
}
