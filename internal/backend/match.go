package backend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rpattn/adminkit/internal/domain"
)

// Matches reports whether record satisfies every lookup.
func Matches(record domain.Record, lookups []Lookup) bool {
	for _, l := range lookups {
		if !matchLookup(record, l) {
			return false
		}
	}
	return true
}

func matchLookup(record domain.Record, l Lookup) bool {
	raw, ok := record.Get(l.Field)
	if !ok || raw == nil {
		return false
	}
	value := stringify(raw)

	switch l.Operation {
	case OpExact, OpEquals:
		return value == l.Value
	case OpIExact:
		return strings.EqualFold(value, l.Value)
	case OpContains:
		return strings.Contains(value, l.Value)
	case OpIContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(l.Value))
	case OpStartsWith:
		return strings.HasPrefix(value, l.Value)
	case OpIn:
		for _, candidate := range l.Values() {
			if value == candidate {
				return true
			}
		}
		return false
	case OpGT:
		return compare(raw, value, l.Value) > 0
	case OpGTE:
		return compare(raw, value, l.Value) >= 0
	case OpLT:
		return compare(raw, value, l.Value) < 0
	case OpLTE:
		return compare(raw, value, l.Value) <= 0
	default:
		return false
	}
}

// compare orders numbers numerically and everything else as strings.
func compare(raw any, value, target string) int {
	if n, ok := raw.(float64); ok {
		if t, err := strconv.ParseFloat(target, 64); err == nil {
			switch {
			case n < t:
				return -1
			case n > t:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(value, target)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
