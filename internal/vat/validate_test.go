package vat_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyvat/internal/vat"
)

func TestValidateVATCalculation_CalculatorOutputsAreValid(t *testing.T) {
	primary, err := vat.CalculatePrimaryResidenceVAT(vat.PrimaryResidenceParams{
		Amount:       dec("260000"),
		TotalAreaSqm: dec("200"),
	})
	require.NoError(t, err)

	results := map[string]vat.Result{
		"standard":            vat.CalculateStandardVAT(dec("1234.56")),
		"renovation":          vat.CalculateRenovationVAT(vat.RenovationParams{Amount: dec("10000"), DwellingAgeYears: 5, MaterialsPercentage: dec("30")}),
		"renovation fallback": vat.CalculateRenovationVAT(vat.RenovationParams{Amount: dec("10000"), DwellingAgeYears: 1}),
		"primary residence":   primary,
		"reverse charge":      vat.ApplyReverseCharge(dec("50000")),
	}

	for name, result := range results {
		t.Run(name, func(t *testing.T) {
			report := vat.ValidateVATCalculation(result)
			assert.True(t, report.Valid)
			assert.Empty(t, report.Errors)
		})
	}
}

func TestValidateVATCalculation_TotalMismatch(t *testing.T) {
	result := vat.CalculateStandardVAT(dec("100"))
	result.Total = dec("120")

	report := vat.ValidateVATCalculation(result)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "total mismatch")
	assert.Contains(t, report.Errors[0], "119.00")
	assert.Contains(t, report.Errors[0], "120.00")
}

func TestValidateVATCalculation_ToleratesOneCent(t *testing.T) {
	result := vat.CalculateStandardVAT(dec("100"))
	result.Total = dec("119.01")

	assert.True(t, vat.ValidateVATCalculation(result).Valid)

	result.Total = dec("119.02")
	assert.False(t, vat.ValidateVATCalculation(result).Valid)
}

func TestValidateVATCalculation_RejectsNonStatutoryRate(t *testing.T) {
	result := vat.Result{
		Subtotal:  dec("100"),
		VATRate:   dec("7"),
		VATAmount: dec("7"),
		Total:     dec("107"),
		Basis:     vat.BasisStandard,
	}

	report := vat.ValidateVATCalculation(result)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "invalid VAT rate 7%")
}

func TestValidateVATCalculation_BlendedRateOnlyAllowedForPrimaryResidence(t *testing.T) {
	blended := vat.Result{
		Subtotal:  dec("260000"),
		VATRate:   dec("9.9"),
		VATAmount: dec("25740"),
		Total:     dec("285740"),
		Basis:     vat.BasisPrimaryResidence,
	}
	assert.True(t, vat.ValidateVATCalculation(blended).Valid)

	for _, basis := range []vat.Basis{vat.BasisStandard, vat.BasisRenovation, vat.BasisReverseCharge} {
		t.Run(basis.String(), func(t *testing.T) {
			r := blended
			r.Basis = basis
			r.ReverseChargeNote = vat.ReverseChargeNote

			report := vat.ValidateVATCalculation(r)
			assert.False(t, report.Valid)
			assert.Contains(t, report.Errors[0], "invalid VAT rate 9.9%")
		})
	}
}

func TestValidateVATCalculation_ReverseChargeAccumulatesAllErrors(t *testing.T) {
	result := vat.Result{
		Subtotal:  dec("100"),
		VATRate:   decimal.Zero,
		VATAmount: dec("19"),
		Total:     dec("100"),
		Basis:     vat.BasisReverseCharge,
	}

	report := vat.ValidateVATCalculation(result)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 3)
	assert.Contains(t, report.Errors[0], "total mismatch")
	assert.Contains(t, report.Errors[1], "zero VAT")
	assert.Contains(t, report.Errors[2], "legal note")
}

func TestValidateVATCalculation_BlankNote(t *testing.T) {
	result := vat.ApplyReverseCharge(dec("1000"))
	result.ReverseChargeNote = "   "

	report := vat.ValidateVATCalculation(result)

	assert.False(t, report.Valid)
	assert.Equal(t, []string{"reverse charge requires a legal note"}, report.Errors)
}

func TestValidateVATCalculation_UnknownBasis(t *testing.T) {
	result := vat.CalculateStandardVAT(dec("100"))
	result.Basis = vat.Basis("exempt")

	report := vat.ValidateVATCalculation(result)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], `unknown VAT basis "exempt"`)
}
