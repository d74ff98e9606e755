// Package batch reads invoice VAT requests from tabular sources: a local CSV
// file or a Google Sheet range. The first row is a header; columns are
// matched by name, so their order does not matter.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cyvat/internal/invoicing"
	"cyvat/internal/logger"
)

// Column names recognised in the header row.
const (
	ColInvoiceID           = "invoice_id"
	ColBasis               = "basis"
	ColAmount              = "amount"
	ColLocation            = "location"
	ColDwellingAgeYears    = "dwelling_age_years"
	ColMaterialsPercentage = "materials_percentage"
	ColTotalAreaSqm        = "total_area_sqm"
	ColPricePerSqm         = "price_per_sqm"
)

// RangeReader reads raw cell values from a spreadsheet range.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// SkippedRow records a data row that could not be turned into a request.
type SkippedRow struct {
	Row    int // 1-based, header is row 1
	Reason string
}

// Result holds the parsed requests and the rows that were skipped.
type Result struct {
	Requests []invoicing.Request
	Skipped  []SkippedRow
}

// Reader parses batch input
type Reader struct {
	log zerolog.Logger
}

// NewReader creates a new batch reader
func NewReader() *Reader {
	return &Reader{
		log: logger.WithComponent("batch-reader"),
	}
}

// ReadCSV parses comma-separated input.
func (r *Reader) ReadCSV(src io.Reader) (*Result, error) {
	const op = "ReadCSV"

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read CSV: %w", op, err)
	}

	values := make([][]interface{}, len(records))
	for i, record := range records {
		row := make([]interface{}, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		values[i] = row
	}

	return r.parseRows(op, values)
}

// ReadSheet parses a spreadsheet range, e.g. "Invoices!A:H".
func (r *Reader) ReadSheet(ctx context.Context, src RangeReader, rangeSpec string) (*Result, error) {
	const op = "ReadSheet"

	r.log.Info().Str("range", rangeSpec).Msg("Reading batch input from sheet")

	values, err := src.ReadRange(ctx, rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read range %s: %w", op, rangeSpec, err)
	}

	return r.parseRows(op, values)
}

func (r *Reader) parseRows(op string, values [][]interface{}) (*Result, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: input is empty", op)
	}

	columns := indexHeader(values[0])
	if _, ok := columns[ColAmount]; !ok {
		return nil, fmt.Errorf("%s: header has no %q column", op, ColAmount)
	}

	result := &Result{}
	for i, row := range values[1:] {
		rowNum := i + 2 // Account for header and 0-based indexing

		if isBlank(row) {
			continue
		}

		req, err := parseRequest(row, columns)
		if err != nil {
			r.log.Warn().
				Err(err).
				Int("row", rowNum).
				Msg("Failed to parse batch row, skipping")
			result.Skipped = append(result.Skipped, SkippedRow{Row: rowNum, Reason: err.Error()})
			continue
		}

		result.Requests = append(result.Requests, req)
	}

	r.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed", len(result.Requests)).
		Int("skipped", len(result.Skipped)).
		Msg("Batch input read")

	return result, nil
}

func indexHeader(header []interface{}) map[string]int {
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", cell)))
		name = strings.ReplaceAll(name, " ", "_")
		if name != "" {
			columns[name] = i
		}
	}
	return columns
}

func parseRequest(row []interface{}, columns map[string]int) (invoicing.Request, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok {
			return ""
		}
		return getString(row, idx)
	}

	amountStr := cell(ColAmount)
	if amountStr == "" {
		return invoicing.Request{}, fmt.Errorf("missing amount")
	}
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return invoicing.Request{}, err
	}

	req := invoicing.Request{
		InvoiceID: cell(ColInvoiceID),
		Basis:     cell(ColBasis),
		Location:  cell(ColLocation),
		Amount:    amount,
	}

	if s := cell(ColDwellingAgeYears); s != "" {
		age, err := strconv.Atoi(s)
		if err != nil {
			return invoicing.Request{}, fmt.Errorf("invalid %s %q", ColDwellingAgeYears, s)
		}
		req.DwellingAgeYears = &age
	}

	optional := []struct {
		name   string
		target *decimal.NullDecimal
	}{
		{ColMaterialsPercentage, &req.MaterialsPercentage},
		{ColTotalAreaSqm, &req.TotalAreaSqm},
		{ColPricePerSqm, &req.PricePerSqm},
	}
	for _, field := range optional {
		s := strings.TrimSuffix(cell(field.name), "%")
		if s == "" {
			continue
		}
		value, err := ParseAmount(s)
		if err != nil {
			return invoicing.Request{}, fmt.Errorf("invalid %s: %w", field.name, err)
		}
		*field.target = decimal.NewNullDecimal(value)
	}

	return req, nil
}

// ParseAmount parses an amount written either as 1234.56 or in European
// notation (1.234,56), with an optional euro sign or EUR suffix.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amountStr)

	isNegative := strings.HasPrefix(cleaned, "-")
	if isNegative {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "-"))
	}

	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "€", "")
	cleaned = strings.ReplaceAll(cleaned, "EUR", "")

	switch {
	case strings.Contains(cleaned, ".") && strings.Contains(cleaned, ","):
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// 1,234.56
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Contains(cleaned, ","):
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", amountStr, cleaned)
	}

	if isNegative {
		amount = amount.Neg()
	}

	return amount, nil
}

func isBlank(row []interface{}) bool {
	for i := range row {
		if getString(row, i) != "" {
			return false
		}
	}
	return true
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}
