// Package export writes list pages to spreadsheet formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/adminkit/internal/domain"
)

// DefaultSheet names the worksheet when none is given.
const DefaultSheet = "Sheet1"

// WriteXLSX writes a workbook with a bold header row followed by one row
// per record.
func WriteXLSX(w io.Writer, sheet string, columns []domain.Column, records []domain.Record) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	sheet = sanitizeSheetName(sheet)

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = Header(c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = formatValue(lookup(record, c.Accessor))
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes a header line followed by one line per record.
func WriteCSV(w io.Writer, columns []domain.Column, records []domain.Record) error {
	csvWriter := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = Header(c)
	}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = formatValue(lookup(record, c.Accessor))
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// Header returns the column title, falling back to its accessor.
func Header(c domain.Column) string {
	if c.Header != "" {
		return c.Header
	}
	return c.Accessor
}

// Cell returns the formatted value of accessor in record.
func Cell(record domain.Record, accessor string) string {
	return formatValue(lookup(record, accessor))
}

func lookup(record domain.Record, accessor string) any {
	value, _ := record.Get(accessor)
	return value
}

func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case float32, float64, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%v", v)
	case []byte:
		return string(v)
	case map[string]any, []any, domain.Record:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// sanitizeSheetName strips characters Excel rejects and enforces the
// 31 character limit.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}
