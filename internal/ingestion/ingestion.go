// Package ingestion reads tabular uploads (CSV and XLSX) into records.
package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/adminkit/internal/domain"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

type columnKind int

const (
	kindString columnKind = iota
	kindNumber
	kindBool
)

type tableData struct {
	headers []string
	rows    [][]string
}

// Read parses a CSV or XLSX file into records. The first non-empty row is
// the header; a header matching a column title (case-insensitively) is
// stored under that column's accessor, any other header under its
// sanitized name. Columns whose values are all numbers or all booleans
// are typed accordingly and empty cells are left out.
func Read(fileName string, r io.Reader, columns []domain.Column) ([]domain.Record, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	table, err := parseTable(fileName, payload)
	if err != nil {
		return nil, err
	}

	accessors := resolveAccessors(table.headers, columns)
	kinds := make([]columnKind, len(accessors))
	for i := range accessors {
		kinds[i] = profileColumn(i, table.rows)
	}

	records := make([]domain.Record, 0, len(table.rows))
	for _, row := range table.rows {
		record := domain.Record{}
		for i, accessor := range accessors {
			raw := strings.TrimSpace(row[i])
			if raw == "" {
				continue
			}
			setPath(record, accessor, coerceValue(kinds[i], raw))
		}
		records = append(records, record)
	}
	return records, nil
}

func parseTable(fileName string, payload []byte) (tableData, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return tableData{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return normalizeTable(records)
}

func parseExcel(payload []byte) (tableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return normalizeTable(rows)
}

func normalizeTable(records [][]string) (tableData, error) {
	var headerRow []string
	var dataRows [][]string
	for _, row := range records {
		if isEmptyRow(row) {
			continue
		}
		if headerRow == nil {
			headerRow = row
			continue
		}
		dataRows = append(dataRows, row)
	}
	if headerRow == nil {
		return tableData{}, errors.New("no rows found in file")
	}

	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		headers[i] = strings.TrimSpace(h)
	}
	for i := range dataRows {
		dataRows[i] = padRow(dataRows[i], len(headers))
	}
	return tableData{headers: headers, rows: dataRows}, nil
}

func resolveAccessors(headers []string, columns []domain.Column) []string {
	byTitle := make(map[string]string, len(columns)*2)
	for _, c := range columns {
		byTitle[strings.ToLower(c.Accessor)] = c.Accessor
		if c.Header != "" {
			byTitle[strings.ToLower(c.Header)] = c.Accessor
		}
	}

	accessors := sanitizeHeaders(headers)
	for i, h := range headers {
		if accessor, ok := byTitle[strings.ToLower(h)]; ok {
			accessors[i] = accessor
		}
	}
	return accessors
}

func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.NewReplacer(" ", "_", ".", "_", "-", "_").Replace(name)
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}
	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func profileColumn(col int, rows [][]string) columnKind {
	isBool, isNumber, hasValue := true, true, false
	for _, row := range rows {
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		hasValue = true
		if _, ok := parseBool(value); !ok {
			isBool = false
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			isNumber = false
		}
	}

	switch {
	case !hasValue:
		return kindString
	case isBool:
		return kindBool
	case isNumber:
		return kindNumber
	default:
		return kindString
	}
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

func coerceValue(kind columnKind, raw string) any {
	switch kind {
	case kindNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case kindBool:
		if b, ok := parseBool(raw); ok {
			return b
		}
	}
	return raw
}

// setPath stores value under a dotted accessor, creating nested maps.
func setPath(record domain.Record, accessor string, value any) {
	parts := strings.Split(accessor, ".")
	current := map[string]any(record)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
