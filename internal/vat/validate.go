package vat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// totalTolerance is the largest accepted gap between subtotal + VAT and total.
var totalTolerance = decimal.New(1, -2)

// ValidateVATCalculation re-checks a Result independently of the calculator
// that produced it. All violations are collected in one pass; the report is
// advisory and the caller decides whether to refuse the record.
func ValidateVATCalculation(result Result) ValidationReport {
	errs := []string{}

	if !result.Basis.Valid() {
		errs = append(errs, fmt.Sprintf("unknown VAT basis %q", string(result.Basis)))
	}

	// Primary-residence results report a blended rate over mixed-rate lines.
	if !result.Basis.ReportsBlendedRate() && !isStatutoryRate(result.VATRate) {
		errs = append(errs, fmt.Sprintf(
			"invalid VAT rate %s%%: must be one of 0%%, 5%% or 19%%", result.VATRate.String()))
	}

	expected := result.Subtotal.Add(result.VATAmount)
	if expected.Sub(result.Total).Abs().GreaterThan(totalTolerance) {
		errs = append(errs, fmt.Sprintf(
			"total mismatch: subtotal %s + VAT %s = %s, but total is %s",
			result.Subtotal.StringFixed(2), result.VATAmount.StringFixed(2),
			expected.StringFixed(2), result.Total.StringFixed(2)))
	}

	if result.Basis == BasisReverseCharge {
		if !result.VATAmount.IsZero() {
			errs = append(errs, fmt.Sprintf(
				"reverse charge must have zero VAT, got %s", result.VATAmount.StringFixed(2)))
		}
		if strings.TrimSpace(result.ReverseChargeNote) == "" {
			errs = append(errs, "reverse charge requires a legal note")
		}
	}

	return ValidationReport{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func isStatutoryRate(rate decimal.Decimal) bool {
	return rate.Equal(RateZero) || rate.Equal(RateReduced) || rate.Equal(RateStandard)
}
