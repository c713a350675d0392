package ingestion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/export"
)

var columns = []domain.Column{
	{Header: "Id", Accessor: "id"},
	{Header: "First name", Accessor: "first_name"},
	{Header: "Doctor", Accessor: "doctor.name"},
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBF\n" +
		"Id,First name,Doctor,Active,Notes\n" +
		"1,Ann,House,yes,\n" +
		"\n" +
		"2,Bob,,no,call back\n"

	records, err := Read("patients.csv", strings.NewReader(input), columns)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.Record{
		"id":         float64(1),
		"first_name": "Ann",
		"doctor":     map[string]any{"name": "House"},
		"active":     true,
	}, records[0])
	assert.Equal(t, domain.Record{
		"id":         float64(2),
		"first_name": "Bob",
		"active":     false,
		"notes":      "call back",
	}, records[1])
}

func TestReadXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	source := []domain.Record{
		{"id": float64(7), "first_name": "Ann", "doctor": map[string]any{"name": "House"}},
		{"id": float64(8), "first_name": "Bob"},
	}
	require.NoError(t, export.WriteXLSX(&buf, "Patients", columns, source))

	records, err := Read("patients.xlsx", &buf, columns)
	require.NoError(t, err)
	assert.Equal(t, source, records)
}

func TestReadErrors(t *testing.T) {
	_, err := Read("patients.json", strings.NewReader("{}"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read("empty.csv", strings.NewReader("\n\n"), nil)
	assert.Error(t, err)

	_, err = Read("broken.xlsx", strings.NewReader("not a zip"), nil)
	assert.Error(t, err)
}

func TestSanitizeHeaders(t *testing.T) {
	assert.Equal(t,
		[]string{"first_name", "first_name_2", "column_3", "e_mail"},
		sanitizeHeaders([]string{"First Name", "first name", "  ", "E-Mail"}))
}
