package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cyvat/internal/invoicing"
	"cyvat/internal/logger"
	"cyvat/internal/vat"
	"cyvat/pkg/models"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Check stored VAT results for internal consistency",
	Long: `Check one or more stored VAT results for internal consistency.

The file may contain a single tax record, a JSON array of tax records (as
written by "cyvat batch --output-file"), or a bare VAT result object.

Each result is checked for:
  - an allowed VAT rate (0%, 5% or 19%; blended rates are allowed for
    primary-residence results)
  - subtotal + VAT matching the total within 0.01
  - zero VAT and a legal note on reverse-charge results

The command exits with a non-zero status when any result is invalid.`,
	Example: `  cyvat validate record.json
  cyvat validate batch-results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// namedResult is a stored result with a label for reporting.
type namedResult struct {
	Label  string
	Result vat.Result
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	results, err := decodeResults(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	invalid := printValidation(cmd.OutOrStdout(), results)

	log.Info().
		Str("file", args[0]).
		Int("results", len(results)).
		Int("invalid", invalid).
		Msg("Validation finished")

	if invalid > 0 {
		return fmt.Errorf("%d of %d results failed validation", invalid, len(results))
	}
	return nil
}

// decodeResults accepts a record, an array of records or a bare engine result.
func decodeResults(data []byte) ([]namedResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	if trimmed[0] == '[' {
		var records []models.TaxRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		results := make([]namedResult, 0, len(records))
		for i := range records {
			results = append(results, namedResult{
				Label:  recordLabel(&records[i], i),
				Result: invoicing.ResultFromRecord(&records[i]),
			})
		}
		return results, nil
	}

	var record models.TaxRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, err
	}
	if record.VATBasis != "" {
		return []namedResult{{
			Label:  recordLabel(&record, 0),
			Result: invoicing.ResultFromRecord(&record),
		}}, nil
	}

	var result vat.Result
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result.Basis == "" {
		return nil, fmt.Errorf("no VAT basis found; expected a tax record or VAT result")
	}
	return []namedResult{{Label: "result", Result: result}}, nil
}

func recordLabel(record *models.TaxRecord, index int) string {
	if record.InvoiceID != "" {
		return record.InvoiceID
	}
	return fmt.Sprintf("record %d", index+1)
}

// printValidation writes one report per result and returns the number of
// invalid results.
func printValidation(w io.Writer, results []namedResult) int {
	invalid := 0
	for _, r := range results {
		report := vat.ValidateVATCalculation(r.Result)
		if report.Valid {
			fmt.Fprintf(w, "✅ %s: valid\n", r.Label)
			continue
		}
		invalid++
		fmt.Fprintf(w, "❌ %s: invalid\n", r.Label)
		for _, msg := range report.Errors {
			fmt.Fprintf(w, "   - %s\n", msg)
		}
	}
	return invalid
}
