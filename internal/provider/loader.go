package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/adminkit/internal/domain"
)

// RelatedLoader batches lookups of related records by id into a single
// id__in list request.
type RelatedLoader struct {
	loader *dataloader.Loader
}

// NewRelatedLoader creates a loader fetching records of resourceURL
// through lister.
func NewRelatedLoader(lister ListableProvider, resourceURL string) *RelatedLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()
		results := make([]*dataloader.Result, len(ids))

		byID, err := fetchByID(ctx, lister, resourceURL, ids)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Results must follow key order.
		for i, id := range ids {
			if record, ok := byID[id]; ok {
				results[i] = &dataloader.Result{Data: record}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("%s %s: %w", resourceURL, id, ErrNotFound)}
			}
		}
		return results
	}

	return &RelatedLoader{
		loader: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond)),
	}
}

// fetchByID lists every record of resourceURL whose id is in ids, walking
// pages until the backend reports no next page.
func fetchByID(ctx context.Context, lister ListableProvider, resourceURL string, ids []string) (map[string]domain.Record, error) {
	filter := domain.Filter{Name: "id", Value: strings.Join(ids, ","), Operation: "in"}
	byID := make(map[string]domain.Record, len(ids))
	for page := 1; ; page++ {
		list, err := lister.GetList(ctx, resourceURL, []domain.Filter{filter}, nil, page)
		if err != nil {
			return nil, err
		}
		for _, record := range list.Records {
			byID[record.ID()] = record
		}
		if list.Pagination.NextURL == "" || len(list.Records) == 0 || len(byID) >= len(ids) {
			return byID, nil
		}
	}
}

// Load returns the related record with the given id.
func (l *RelatedLoader) Load(ctx context.Context, id string) (domain.Record, error) {
	data, err := l.loader.Load(ctx, dataloader.StringKey(id))()
	if err != nil {
		return nil, err
	}
	record, ok := data.(domain.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected loader result %T", data)
	}
	return record, nil
}

// LoadMany resolves several ids in one batch, preserving order.
func (l *RelatedLoader) LoadMany(ctx context.Context, ids []string) ([]domain.Record, error) {
	keys := dataloader.NewKeysFromStrings(ids)
	data, errs := l.loader.LoadMany(ctx, keys)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	records := make([]domain.Record, len(data))
	for i, d := range data {
		record, ok := d.(domain.Record)
		if !ok {
			return nil, fmt.Errorf("unexpected loader result %T", d)
		}
		records[i] = record
	}
	return records, nil
}
