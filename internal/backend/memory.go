package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rpattn/adminkit/internal/domain"
)

// MemoryStore keeps records in insertion order per resource.
type MemoryStore struct {
	mu        sync.RWMutex
	resources map[string][]domain.Record
}

// NewMemoryStore creates a store serving the given resources.
func NewMemoryStore(resources ...string) *MemoryStore {
	s := &MemoryStore{resources: make(map[string][]domain.Record, len(resources))}
	for _, r := range resources {
		s.resources[r] = nil
	}
	return s
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, resource string, q Query) ([]domain.Record, int, error) {
	if err := validateLookups(q.Lookups); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.resources[resource]
	if !ok {
		return nil, 0, fmt.Errorf("resource %q: %w", resource, ErrNotFound)
	}

	var matched []domain.Record
	for _, r := range records {
		if Matches(r, q.Lookups) {
			matched = append(matched, r)
		}
	}

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}

	page := make([]domain.Record, 0, end-start)
	for _, r := range matched[start:end] {
		page = append(page, deepCopy(r))
	}
	return page, total, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, resource, id string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, err := s.indexOf(resource, id)
	if err != nil {
		return nil, err
	}
	return deepCopy(s.resources[resource][idx]), nil
}

// Create implements Store. Records without an id get a random one.
func (s *MemoryStore) Create(_ context.Context, resource string, record domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[resource]; !ok {
		return nil, fmt.Errorf("resource %q: %w", resource, ErrNotFound)
	}

	stored := deepCopy(record)
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}
	if _, err := s.indexOf(resource, stored.ID()); err == nil {
		return nil, fmt.Errorf("%s %s: %w", resource, stored.ID(), ErrConflict)
	}
	s.resources[resource] = append(s.resources[resource], stored)
	return deepCopy(stored), nil
}

// Update implements Store by merging patch into the stored record.
func (s *MemoryStore) Update(_ context.Context, resource, id string, patch domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(resource, id)
	if err != nil {
		return nil, err
	}

	updated := deepCopy(s.resources[resource][idx])
	for k, v := range deepCopy(patch) {
		if k == "id" {
			continue
		}
		updated[k] = v
	}
	s.resources[resource][idx] = updated
	return deepCopy(updated), nil
}

func (s *MemoryStore) indexOf(resource, id string) (int, error) {
	records, ok := s.resources[resource]
	if !ok {
		return -1, fmt.Errorf("resource %q: %w", resource, ErrNotFound)
	}
	for i, r := range records {
		if r.ID() == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s %s: %w", resource, id, ErrNotFound)
}

// deepCopy round-trips through JSON so stored records never alias caller
// maps and hold the same types a client would decode.
func deepCopy(r domain.Record) domain.Record {
	encoded, err := json.Marshal(r)
	if err != nil {
		return r.Clone()
	}
	var out domain.Record
	if err := json.Unmarshal(encoded, &out); err != nil {
		return r.Clone()
	}
	if out == nil {
		out = domain.Record{}
	}
	return out
}
