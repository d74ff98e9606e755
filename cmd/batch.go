package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cyvat/internal/batch"
	"cyvat/internal/config"
	"cyvat/internal/invoicing"
	"cyvat/internal/logger"
	"cyvat/internal/sheets"
	"cyvat/pkg/models"
	"cyvat/pkg/services"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file.csv]",
	Short: "Calculate VAT for many invoices in parallel",
	Long: `Calculate Cyprus VAT for many invoices read from a CSV file or a Google Sheet range.

The first row must be a header. Recognised columns (any order, only "amount"
is required):
  invoice_id, basis, amount, location, dwelling_age_years,
  materials_percentage, total_area_sqm, price_per_sqm

Invoices are assessed by a pool of BATCH_WORKERS parallel workers. Rows that
cannot be parsed or assessed are reported and do not stop the run.

Results can be written to a JSON file (--output-file) and appended to a
Google Sheet (--export-sheet). Required environment variables for Google Sheets:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Google Sheets URL
  GOOGLE_SHEET_WORKSHEET - Worksheet for exported records (default: VAT_Records)`,
	Example: `  # Assess a CSV file and save the tax records
  cyvat batch invoices.csv --output-file records.json

  # Read invoices from a sheet range and append the records to the sheet
  cyvat batch --sheet-range "Invoices!A:H" --export-sheet

  # Check the input without writing anything
  cyvat batch invoices.csv --export-sheet --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("sheet-range", "", "Read invoices from this Google Sheet range instead of a CSV file (e.g. \"Invoices!A:H\")")
	batchCmd.Flags().String("output-file", "", "Write the tax records as a JSON array to this file")
	batchCmd.Flags().Bool("export-sheet", false, "Append the tax records to the Google Sheet")
	batchCmd.Flags().String("worksheet", "", "Worksheet for exported records (default from GOOGLE_SHEET_WORKSHEET)")
	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (default from BATCH_WORKERS)")
	batchCmd.Flags().Bool("dry-run", false, "Assess but don't write any output file or sheet")
	batchCmd.Flags().StringP("output", "o", "", "Output format: text or json (default from OUTPUT_FORMAT)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	log := logger.WithRunID("batch", runID)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sheetRange, _ := cmd.Flags().GetString("sheet-range")
	outputFile, _ := cmd.Flags().GetString("output-file")
	exportSheet, _ := cmd.Flags().GetBool("export-sheet")
	worksheet, _ := cmd.Flags().GetString("worksheet")
	workers, _ := cmd.Flags().GetInt("workers")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	outputFormat, err := resolveOutputFormat(cmd, cfg)
	if err != nil {
		return err
	}

	if workers <= 0 {
		workers = cfg.BatchWorkers
	}
	if worksheet == "" {
		worksheet = cfg.GoogleSheetWorksheet
	}

	if sheetRange == "" && len(args) == 0 {
		return fmt.Errorf("either a CSV file or --sheet-range is required")
	}
	if sheetRange != "" && len(args) > 0 {
		return fmt.Errorf("use either a CSV file or --sheet-range, not both")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Sheets client, created once when reading or exporting needs it
	var sheetsService *sheets.Service
	if sheetRange != "" || (exportSheet && !dryRun) {
		if err := cfg.RequireSheet(); err != nil {
			return err
		}
		sheetsService, err = sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
		}
	}

	input, err := readBatchInput(ctx, sheetsService, sheetRange, args)
	if err != nil {
		return err
	}

	// Progress goes to stderr when stdout carries JSON.
	out := cmd.OutOrStdout()
	progressOut := out
	if outputFormat == config.OutputJSON {
		progressOut = cmd.ErrOrStderr()
	}

	for _, skipped := range input.Skipped {
		fmt.Fprintf(progressOut, "Row %d skipped: %s\n", skipped.Row, skipped.Reason)
	}

	if len(input.Requests) == 0 {
		fmt.Fprintln(progressOut, "No invoices found in input.")
		return nil
	}

	log.Info().
		Int("invoices", len(input.Requests)).
		Int("skipped_rows", len(input.Skipped)).
		Int("workers", workers).
		Bool("dry_run", dryRun).
		Msg("Starting batch assessment")

	fmt.Fprintf(progressOut, "Assessing %d invoices with %d parallel workers...\n\n", len(input.Requests), workers)

	outcomes := invoicing.NewService().AssessMany(ctx, input.Requests, workers, func(done, total int, outcome invoicing.Outcome) {
		printProgress(progressOut, done, total, outcome)
	})

	summary := summarize(outcomes)
	printSummary(progressOut, summary, len(input.Skipped))

	if outputFormat == config.OutputJSON {
		if err := writeRecordsJSON(out, summary.Records); err != nil {
			return err
		}
	}

	if dryRun {
		fmt.Fprintln(progressOut, "Dry run: no output written.")
	} else {
		if err := exportRecords(ctx, log, summary.Records, outputFile, exportSheet, sheetsService, worksheet, progressOut); err != nil {
			return err
		}
	}

	log.Info().
		Int("total", len(outcomes)).
		Int("success", len(summary.Records)).
		Int("with_warnings", summary.WithWarnings).
		Int("errors", summary.Failed).
		Msg("Batch assessment completed")

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d invoices could not be assessed", summary.Failed, len(outcomes))
	}
	return nil
}

func readBatchInput(ctx context.Context, src batch.RangeReader, sheetRange string, args []string) (*batch.Result, error) {
	reader := batch.NewReader()

	if sheetRange != "" {
		result, err := reader.ReadSheet(ctx, src, sheetRange)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet input: %w", err)
		}
		return result, nil
	}

	file, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	result, err := reader.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV input: %w", err)
	}
	return result, nil
}

// batchSummary counts the outcomes of a batch run.
type batchSummary struct {
	Records      []models.TaxRecord
	WithWarnings int
	Failed       int
}

func summarize(outcomes []invoicing.Outcome) batchSummary {
	var s batchSummary
	for _, outcome := range outcomes {
		if !outcome.Succeeded() {
			s.Failed++
			continue
		}
		s.Records = append(s.Records, *outcome.Record)
		if len(outcome.Record.Warnings) > 0 {
			s.WithWarnings++
		}
	}
	return s
}

func printProgress(w io.Writer, done, total int, outcome invoicing.Outcome) {
	label := outcome.Request.InvoiceID
	if label == "" {
		label = fmt.Sprintf("row %d", outcome.Index+1)
	}

	switch {
	case !outcome.Succeeded():
		fmt.Fprintf(w, "[%d/%d] %s - ❌ (%s)\n", done, total, label, outcome.Err.Error())
	case len(outcome.Record.Warnings) > 0:
		fmt.Fprintf(w, "[%d/%d] %s - ⚠️ (VAT €%s, %s)\n", done, total, label,
			outcome.Record.VATAmount.StringFixed(2), outcome.Record.Warnings[0])
	default:
		fmt.Fprintf(w, "[%d/%d] %s - ✅ (VAT €%s)\n", done, total, label, outcome.Record.VATAmount.StringFixed(2))
	}
}

func printSummary(w io.Writer, s batchSummary, skippedRows int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "                 SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Assessed: %d\n", len(s.Records))
	if s.WithWarnings > 0 {
		fmt.Fprintf(w, "With warnings: %d\n", s.WithWarnings)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Errors: %d\n", s.Failed)
	}
	if skippedRows > 0 {
		fmt.Fprintf(w, "Skipped rows: %d\n", skippedRows)
	}
	fmt.Fprintln(w)
}

func exportRecords(ctx context.Context, log zerolog.Logger, records []models.TaxRecord, outputFile string, exportSheet bool, sheetsService *sheets.Service, worksheet string, w io.Writer) error {
	type export struct {
		exporter services.TaxRecordExporter
		target   string
	}

	var exports []export
	if outputFile != "" {
		exports = append(exports, export{jsonFileExporter{}, outputFile})
	}
	if exportSheet {
		exports = append(exports, export{sheetsService, worksheet})
	}

	for _, e := range exports {
		if err := e.exporter.ExportTaxRecords(ctx, records, e.target); err != nil {
			return fmt.Errorf("failed to export tax records to %s: %w", e.target, err)
		}
		log.Info().Str("target", e.target).Int("records", len(records)).Msg("Tax records exported")
		fmt.Fprintf(w, "Exported %d records to %s\n", len(records), e.target)
	}

	return nil
}

// jsonFileExporter writes tax records as an indented JSON array.
type jsonFileExporter struct{}

func (jsonFileExporter) ExportTaxRecords(_ context.Context, records []models.TaxRecord, target string) error {
	const op = "ExportTaxRecords"

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%s: failed to create %s: %w", op, target, err)
	}
	defer file.Close()

	if err := writeRecordsJSON(file, records); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return file.Close()
}

func writeRecordsJSON(w io.Writer, records []models.TaxRecord) error {
	if records == nil {
		records = []models.TaxRecord{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode tax records: %w", err)
	}
	return nil
}
