package domain

import (
	"fmt"
	"strings"
)

// Record is one backend object as decoded from JSON.
type Record map[string]any

// Get resolves a dotted accessor such as "patient.last_name".
func (r Record) Get(accessor string) (any, bool) {
	if accessor == "" {
		return nil, false
	}
	var current any = map[string]any(r)
	for _, part := range strings.Split(accessor, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// ID returns the record identifier formatted as a string.
func (r Record) ID() string {
	v, ok := r["id"]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return fmt.Sprintf("%d", int64(id))
		}
		return fmt.Sprintf("%v", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	default:
		return nil, false
	}
}
