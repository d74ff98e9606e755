package vat

import (
	"fmt"
	"strings"
)

const warningGlyph = "⚠"

// FormatVATResult renders a Result as a printable report. Lines always appear
// in this order: subtotal, rate, VAT, total, basis, breakdown, legal note,
// warnings.
func FormatVATResult(result Result) string {
	lines := []string{
		fmt.Sprintf("Subtotal: €%s", result.Subtotal.StringFixed(2)),
		fmt.Sprintf("VAT Rate: %s%%", result.VATRate.Round(2).String()),
		fmt.Sprintf("VAT Amount: €%s", result.VATAmount.StringFixed(2)),
		fmt.Sprintf("Total: €%s", result.Total.StringFixed(2)),
		fmt.Sprintf("VAT Basis: %s", result.Basis),
	}

	if len(result.Breakdown) > 0 {
		lines = append(lines, "Breakdown:")
		for _, line := range result.Breakdown {
			lines = append(lines, fmt.Sprintf("  %s: €%s @ %s%% = €%s",
				line.Description,
				line.Amount.StringFixed(2),
				line.VATRate.String(),
				line.VATAmount.StringFixed(2)))
		}
	}

	if result.ReverseChargeNote != "" {
		lines = append(lines, result.ReverseChargeNote)
	}

	for _, warning := range result.Warnings {
		lines = append(lines, fmt.Sprintf("%s %s", warningGlyph, warning))
	}

	return strings.Join(lines, "\n")
}
