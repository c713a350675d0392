package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/adminkit/internal/domain"
)

var (
	columns = []domain.Column{
		{Header: "Id", Accessor: "id"},
		{Header: "Last name", Accessor: "patient.last_name"},
		{Accessor: "active"},
	}
	records = []domain.Record{
		{"id": float64(100500), "patient": map[string]any{"last_name": "Ivanov"}, "active": true},
		{"id": "7", "active": false},
	}
)

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "patients", columns, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("patients")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Id", "Last name", "active"},
		{"100500", "Ivanov", "true"},
		{"7", "", "false"},
	}, rows)
}

func TestWriteXLSXSanitizesSheetName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "patients/2024: [all]", columns, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"patients_2024_ _all_"}, f.GetSheetList())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, columns, records))

	assert.Equal(t, "Id,Last name,active\n100500,Ivanov,true\n7,,false\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))

	assert.Equal(t, "2024-03-01T09:00:00Z", formatValue(ts))
	assert.Equal(t, `{"a":1}`, formatValue(map[string]any{"a": 1}))
	assert.Equal(t, `["x","y"]`, formatValue([]any{"x", "y"}))
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "1.5", formatValue(1.5))
}
