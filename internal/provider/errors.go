package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rpattn/adminkit/internal/validation"
)

// ErrNotFound is matched by StatusErrors carrying a 404.
var ErrNotFound = errors.New("resource not found")

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ValidationError carries field-level errors returned by the backend with
// a 400 response.
type ValidationError struct {
	Status *StatusError
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed for %s", strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Status
}

func newResponseError(method, target string, status int, body []byte) error {
	statusErr := &StatusError{Method: method, URL: target, StatusCode: status, Body: truncate(string(body))}
	if status != http.StatusBadRequest {
		return statusErr
	}
	fields, ok := decodeFieldErrors(body)
	if !ok {
		return statusErr
	}
	return &ValidationError{Status: statusErr, Fields: fields}
}

// decodeFieldErrors accepts {"field": ["msg", ...]} and {"field": "msg"}.
func decodeFieldErrors(body []byte) (validation.Errors, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	fields := make(validation.Errors, len(raw))
	for field, value := range raw {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			fields[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			fields[field] = []string{single}
			continue
		}
		return nil, false
	}
	return fields, true
}

func truncate(s string) string {
	const maxLen = 512
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
