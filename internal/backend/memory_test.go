package backend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/adminkit/internal/domain"
)

func seededStore(t *testing.T, n int) *MemoryStore {
	t.Helper()
	store := NewMemoryStore("patients", "doctors")
	for i := 1; i <= n; i++ {
		_, err := store.Create(context.Background(), "patients", domain.Record{
			"id":         i,
			"first_name": fmt.Sprintf("Patient %02d", i),
			"age":        20 + i,
		})
		require.NoError(t, err)
	}
	return store
}

func TestMemoryStoreListPages(t *testing.T) {
	store := seededStore(t, 25)
	ctx := context.Background()

	records, total, err := store.List(ctx, "patients", Query{Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, records, 5)
	assert.Equal(t, "21", records[0].ID())

	records, total, err = store.List(ctx, "patients", Query{
		Lookups: []Lookup{{Field: "age", Operation: OpGT, Value: "40"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, records, 5)

	records, total, err = store.List(ctx, "patients", Query{Offset: 100})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestMemoryStoreErrors(t *testing.T) {
	store := seededStore(t, 1)
	ctx := context.Background()

	_, _, err := store.List(ctx, "nurses", Query{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = store.List(ctx, "patients", Query{Lookups: []Lookup{{Field: "id", Operation: "regex"}}})
	assert.ErrorIs(t, err, ErrUnsupportedLookup)

	_, err = store.Get(ctx, "patients", "99")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Create(ctx, "patients", domain.Record{"id": 1})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.Update(ctx, "doctors", "1", domain.Record{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCreateAssignsID(t *testing.T) {
	store := NewMemoryStore("doctors")
	created, err := store.Create(context.Background(), "doctors", domain.Record{"name": "House"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID())

	fetched, err := store.Get(context.Background(), "doctors", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "House", fetched["name"])
}

func TestMemoryStoreUpdateMergesAndIsolates(t *testing.T) {
	store := seededStore(t, 1)
	ctx := context.Background()

	patch := domain.Record{"id": 9, "first_name": "Renamed"}
	updated, err := store.Update(ctx, "patients", "1", patch)
	require.NoError(t, err)
	assert.Equal(t, "1", updated.ID())
	assert.Equal(t, "Renamed", updated["first_name"])
	assert.Equal(t, float64(21), updated["age"])

	updated["first_name"] = "mutated"
	patch["first_name"] = "mutated"

	fetched, err := store.Get(ctx, "patients", "1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched["first_name"])
}
