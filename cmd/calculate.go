package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"cyvat/internal/batch"
	"cyvat/internal/config"
	"cyvat/internal/invoicing"
	"cyvat/internal/logger"
	"cyvat/internal/vat"
	"cyvat/pkg/models"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate Cyprus VAT for a single invoice",
	Long: `Calculate Cyprus VAT for a single invoice amount under one VAT basis.

Available bases:
  standard19                   19% standard rate (default)
  reduced5_renovation          5% for renovation of dwellings at least 3 years old,
                               with materials at most 50% of the value
  reduced5_primary_residence   5% on the first 130 m² of a primary residence,
                               19% on the remaining area
  reverse_charge               0%, VAT accounted for by the recipient

When a renovation or primary-residence condition is not met the calculation
still succeeds, falls back to the standard rate and explains why in a warning.

The result is checked for internal consistency before it is printed.`,
	Example: `  # Standard rate
  cyvat calculate --amount 1234.56

  # Renovation of a 5 year old dwelling with 30% materials
  cyvat calculate --basis reduced5_renovation --amount 10000 --dwelling-age 5 --materials-pct 30

  # Primary residence of 200 m²
  cyvat calculate --basis reduced5_primary_residence --amount 260000 --area 200 --location Limassol

  # Reverse charge as JSON tax record
  cyvat calculate --basis reverse_charge --amount 50000 --output json`,
	RunE: runCalculate,
}

func init() {
	rootCmd.AddCommand(calculateCmd)
	addCalculateFlags(calculateCmd)
}

func addCalculateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("basis", "b", string(vat.BasisStandard), "VAT basis: "+basisList())
	cmd.Flags().StringP("amount", "a", "", "Net invoice amount in EUR (required, e.g. 1234.56 or 1.234,56)")
	cmd.Flags().Int("dwelling-age", 0, "Years since first occupation of the dwelling (renovation)")
	cmd.Flags().String("materials-pct", "", "Materials share of the total value in percent (renovation)")
	cmd.Flags().String("area", "", "Total property area in m² (primary residence)")
	cmd.Flags().String("price-per-sqm", "", "Price per m²; derived from amount and area when omitted (primary residence)")
	cmd.Flags().StringP("location", "l", "", "Property location, checked against known Cyprus places")
	cmd.Flags().String("invoice-id", "", "Invoice identifier stored on the tax record (generated when empty)")
	cmd.Flags().StringP("output", "o", "", "Output format: text or json (default from OUTPUT_FORMAT)")

	cmd.MarkFlagRequired("amount")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("calculate")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	outputFormat, err := resolveOutputFormat(cmd, cfg)
	if err != nil {
		return err
	}

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	log.Debug().
		Str("invoice_id", req.InvoiceID).
		Str("basis", req.Basis).
		Str("amount", req.Amount.String()).
		Msg("Calculating VAT")

	record, err := invoicing.NewService().Assess(context.Background(), req)
	if err != nil {
		return fmt.Errorf("VAT calculation failed: %w", err)
	}

	return writeRecord(cmd.OutOrStdout(), record, outputFormat)
}

// requestFromFlags builds an assessment request from the calculate flags.
// Optional parameters are only set when their flag was given.
func requestFromFlags(cmd *cobra.Command) (invoicing.Request, error) {
	flags := cmd.Flags()

	basis, _ := flags.GetString("basis")
	amountStr, _ := flags.GetString("amount")
	location, _ := flags.GetString("location")
	invoiceID, _ := flags.GetString("invoice-id")

	amount, err := batch.ParseAmount(amountStr)
	if err != nil {
		return invoicing.Request{}, fmt.Errorf("invalid --amount: %w", err)
	}

	req := invoicing.Request{
		InvoiceID: invoiceID,
		Basis:     basis,
		Location:  location,
		Amount:    amount,
	}

	if flags.Changed("dwelling-age") {
		age, _ := flags.GetInt("dwelling-age")
		req.DwellingAgeYears = &age
	}

	optional := []struct {
		flag   string
		target *decimal.NullDecimal
	}{
		{"materials-pct", &req.MaterialsPercentage},
		{"area", &req.TotalAreaSqm},
		{"price-per-sqm", &req.PricePerSqm},
	}
	for _, opt := range optional {
		if !flags.Changed(opt.flag) {
			continue
		}
		raw, _ := flags.GetString(opt.flag)
		value, err := batch.ParseAmount(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
		if err != nil {
			return invoicing.Request{}, fmt.Errorf("invalid --%s: %w", opt.flag, err)
		}
		*opt.target = decimal.NewNullDecimal(value)
	}

	return req, nil
}

// resolveOutputFormat returns the --output flag value, or the configured
// default when the flag is not set.
func resolveOutputFormat(cmd *cobra.Command, cfg *config.Config) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return cfg.OutputFormat, nil
	}
	if format != config.OutputText && format != config.OutputJSON {
		return "", fmt.Errorf("invalid --output %q: must be %q or %q", format, config.OutputText, config.OutputJSON)
	}
	return format, nil
}

// writeRecord prints a record as the human-readable VAT summary or as JSON.
func writeRecord(w io.Writer, record *models.TaxRecord, format string) error {
	if format == config.OutputJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to encode tax record: %w", err)
		}
		return nil
	}

	fmt.Fprintf(w, "Invoice: %s\n", record.InvoiceID)
	fmt.Fprintln(w, vat.FormatVATResult(invoicing.ResultFromRecord(record)))
	return nil
}

func basisList() string {
	names := make([]string, 0, len(vat.Bases()))
	for _, b := range vat.Bases() {
		names = append(names, string(b))
	}
	return strings.Join(names, ", ")
}
