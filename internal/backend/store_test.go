package backend

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpattn/adminkit/internal/domain"
)

func TestParseLookup(t *testing.T) {
	tests := []struct {
		key, value string
		want       Lookup
	}{
		{"first_name", "Ann", Lookup{Field: "first_name", Operation: OpExact, Value: "Ann"}},
		{"id__equals", "7", Lookup{Field: "id", Operation: OpExact, Value: "7"}},
		{"age__gte", "18", Lookup{Field: "age", Operation: OpGTE, Value: "18"}},
		{"patient__last_name", "Doe", Lookup{Field: "patient.last_name", Operation: OpExact, Value: "Doe"}},
		{"patient__last_name__icontains", "do", Lookup{Field: "patient.last_name", Operation: OpIContains, Value: "do"}},
		{"__in", "x", Lookup{Field: ".in", Operation: OpExact, Value: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLookup(tt.key, tt.value))
		})
	}
}

func TestParseLookupsSkipsReserved(t *testing.T) {
	values := url.Values{
		"page":      {"2"},
		"page_size": {"5"},
		"name":      {"a"},
		"age__lt":   {"30"},
		"tags__in":  {"x,y"},
		"id__exact": {"1", "2"},
	}
	got := ParseLookups(values, "page", "page_size")
	assert.Equal(t, []Lookup{
		{Field: "age", Operation: OpLT, Value: "30"},
		{Field: "id", Operation: OpExact, Value: "1"},
		{Field: "id", Operation: OpExact, Value: "2"},
		{Field: "name", Operation: OpExact, Value: "a"},
		{Field: "tags", Operation: OpIn, Value: "x,y"},
	}, got)
}

func TestMatches(t *testing.T) {
	record := domain.Record{
		"id":         float64(3),
		"first_name": "Marta",
		"age":        float64(42),
		"active":     true,
		"patient":    map[string]any{"last_name": "Doe"},
	}

	tests := []struct {
		name   string
		lookup Lookup
		want   bool
	}{
		{"exact number", Lookup{"id", OpExact, "3"}, true},
		{"exact miss", Lookup{"id", OpExact, "4"}, false},
		{"iexact", Lookup{"first_name", OpIExact, "marta"}, true},
		{"contains", Lookup{"first_name", OpContains, "art"}, true},
		{"contains is case sensitive", Lookup{"first_name", OpContains, "ART"}, false},
		{"icontains", Lookup{"first_name", OpIContains, "ART"}, true},
		{"startswith", Lookup{"first_name", OpStartsWith, "Ma"}, true},
		{"gt numeric", Lookup{"age", OpGT, "9"}, true},
		{"lte numeric", Lookup{"age", OpLTE, "42"}, true},
		{"lt numeric", Lookup{"age", OpLT, "42"}, false},
		{"gte string", Lookup{"first_name", OpGTE, "M"}, true},
		{"in", Lookup{"id", OpIn, "1,3,5"}, true},
		{"in miss", Lookup{"id", OpIn, "1,5"}, false},
		{"bool", Lookup{"active", OpExact, "true"}, true},
		{"nested", Lookup{"patient.last_name", OpExact, "Doe"}, true},
		{"missing field", Lookup{"email", OpExact, ""}, false},
		{"unknown operation", Lookup{"id", Operation("regex"), "3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(record, []Lookup{tt.lookup}))
		})
	}

	assert.True(t, Matches(record, nil))
	assert.False(t, Matches(record, []Lookup{{"id", OpExact, "3"}, {"age", OpGT, "50"}}))
}

func TestValidateCreateAndUpdate(t *testing.T) {
	res := Resource{Name: "patients", Required: []string{"first_name", "last_name"}}

	errs := res.ValidateCreate(domain.Record{"first_name": "  "})
	assert.Equal(t, []string{msgBlank}, errs["first_name"])
	assert.Equal(t, []string{msgRequired}, errs["last_name"])

	assert.Empty(t, res.ValidateCreate(domain.Record{"first_name": "A", "last_name": "B"}))

	assert.Empty(t, res.ValidateUpdate(domain.Record{"age": 3}))
	errs = res.ValidateUpdate(domain.Record{"last_name": nil})
	assert.Equal(t, []string{msgBlank}, errs["last_name"])
	assert.NotContains(t, errs, "first_name")
}
