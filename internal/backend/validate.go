package backend

import (
	"strings"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/validation"
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
)

// Resource declares a served resource and its required fields.
type Resource struct {
	Name     string
	Required []string
}

// ValidateCreate checks that every required field is present and not blank.
func (r Resource) ValidateCreate(record domain.Record) validation.Errors {
	errs := validation.Errors{}
	for _, field := range r.Required {
		value, ok := record[field]
		switch {
		case !ok || value == nil:
			errs[field] = []string{msgRequired}
		case isBlank(value):
			errs[field] = []string{msgBlank}
		}
	}
	return errs
}

// ValidateUpdate checks that a partial update does not blank out a
// required field.
func (r Resource) ValidateUpdate(patch domain.Record) validation.Errors {
	errs := validation.Errors{}
	for _, field := range r.Required {
		value, ok := patch[field]
		if !ok {
			continue
		}
		if value == nil || isBlank(value) {
			errs[field] = []string{msgBlank}
		}
	}
	return errs
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
