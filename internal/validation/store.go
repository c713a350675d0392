// Package validation holds field-level validation errors for the active
// form step.
package validation

import (
	"sort"
	"sync"
)

// Errors maps a field name to its error messages.
type Errors map[string][]string

// Clone returns a deep copy of the errors.
func (e Errors) Clone() Errors {
	if e == nil {
		return Errors{}
	}
	out := make(Errors, len(e))
	for field, messages := range e {
		out[field] = append([]string(nil), messages...)
	}
	return out
}

// Store keeps the errors of one active step. Writes replace the whole set.
type Store struct {
	mu     sync.RWMutex
	errors Errors
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{errors: Errors{}}
}

// Reset clears every error. Called when a step mounts.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = Errors{}
}

// Replace swaps in a new set of errors; the last writer wins.
func (s *Store) Replace(errors Errors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = errors.Clone()
}

// Snapshot returns a copy of the current errors.
func (s *Store) Snapshot() Errors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors.Clone()
}

// Field returns the messages recorded for one field.
func (s *Store) Field(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.errors[name]...)
}

// Empty reports whether no field has a non-empty message.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, messages := range s.errors {
		for _, m := range messages {
			if m != "" {
				return false
			}
		}
	}
	return true
}

// Messages flattens the errors ordered by field name, dropping blanks.
func (s *Store) Messages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make([]string, 0, len(s.errors))
	for field := range s.errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var out []string
	for _, field := range fields {
		for _, m := range s.errors[field] {
			if m != "" {
				out = append(out, m)
			}
		}
	}
	return out
}
