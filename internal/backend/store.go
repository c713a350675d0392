// Package backend is a reference REST backend speaking the same
// Django-REST dialect the providers consume: paginated list endpoints
// narrowed by field__lookup query parameters, and per-record detail
// endpoints.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/query"
)

var (
	// ErrNotFound is returned for unknown resources and records.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedLookup is returned for lookup operations the store
	// cannot evaluate.
	ErrUnsupportedLookup = errors.New("unsupported lookup")
	// ErrConflict is returned when a created record reuses an existing id.
	ErrConflict = errors.New("already exists")
)

// Operation is a Django-style lookup.
type Operation string

const (
	OpExact      Operation = "exact"
	OpEquals     Operation = "equals"
	OpIExact     Operation = "iexact"
	OpContains   Operation = "contains"
	OpIContains  Operation = "icontains"
	OpStartsWith Operation = "startswith"
	OpGT         Operation = "gt"
	OpGTE        Operation = "gte"
	OpLT         Operation = "lt"
	OpLTE        Operation = "lte"
	OpIn         Operation = "in"
)

var knownOperations = map[Operation]struct{}{
	OpExact: {}, OpEquals: {}, OpIExact: {}, OpContains: {}, OpIContains: {},
	OpStartsWith: {}, OpGT: {}, OpGTE: {}, OpLT: {}, OpLTE: {}, OpIn: {},
}

// Lookup is one parsed filter. Field is a dotted path into the record.
type Lookup struct {
	Field     string
	Operation Operation
	Value     string
}

// Values splits the value of an "in" lookup.
func (l Lookup) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, ",")
}

// Query narrows and pages a list request.
type Query struct {
	Lookups []Lookup
	Limit   int
	Offset  int
}

// Store persists records grouped by resource.
type Store interface {
	List(ctx context.Context, resource string, q Query) ([]domain.Record, int, error)
	Get(ctx context.Context, resource, id string) (domain.Record, error)
	Create(ctx context.Context, resource string, record domain.Record) (domain.Record, error)
	Update(ctx context.Context, resource, id string, patch domain.Record) (domain.Record, error)
}

// ParseLookup turns a query key and value into a lookup. Keys whose
// suffix is not a known operation are treated as nested field paths
// (patient__last_name) compared exactly.
func ParseLookup(key, value string) Lookup {
	name, op := query.ParseKey(key)
	operation := Operation(op)
	if _, ok := knownOperations[operation]; !ok {
		name, operation = key, OpExact
	}
	if operation == OpEquals {
		operation = OpExact
	}
	return Lookup{
		Field:     strings.ReplaceAll(name, query.LookupSeparator, "."),
		Operation: operation,
		Value:     value,
	}
}

// ParseLookups parses every query parameter not listed in reserved.
func ParseLookups(values url.Values, reserved ...string) []Lookup {
	skip := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		skip[r] = struct{}{}
	}

	var lookups []Lookup
	for _, key := range sortedKeys(values) {
		if _, ok := skip[key]; ok {
			continue
		}
		for _, value := range values[key] {
			lookups = append(lookups, ParseLookup(key, value))
		}
	}
	return lookups
}

func validateLookups(lookups []Lookup) error {
	for _, l := range lookups {
		if _, ok := knownOperations[l.Operation]; !ok {
			return fmt.Errorf("%w %q on %s", ErrUnsupportedLookup, l.Operation, l.Field)
		}
	}
	return nil
}
