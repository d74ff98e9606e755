package vat_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyvat/internal/vat"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestCalculateStandardVAT(t *testing.T) {
	tests := []struct {
		amount    string
		wantVAT   string
		wantTotal string
	}{
		{"0", "0", "0"},
		{"100", "19", "119"},
		{"1234.56", "234.57", "1469.13"},
		{"0.05", "0.01", "0.06"},
		{"99999.99", "19000.00", "118999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := dec(tt.amount)
			result := vat.CalculateStandardVAT(amount)

			assertDecimal(t, tt.wantVAT, result.VATAmount)
			assertDecimal(t, tt.wantTotal, result.Total)
			assertDecimal(t, "19", result.VATRate)
			assert.True(t, amount.Equal(result.Subtotal))
			assert.Equal(t, vat.BasisStandard, result.Basis)
			assert.NotNil(t, result.Warnings)
			assert.Empty(t, result.Warnings)
			assert.Nil(t, result.Breakdown)
			assert.Empty(t, result.ReverseChargeNote)

			// total always equals round2(amount * 1.19)
			assertDecimal(t, amount.Mul(dec("1.19")).Round(2).String(), result.Total)
		})
	}
}

func TestCalculateStandardVAT_NegativeAmountStaysConsistent(t *testing.T) {
	result := vat.CalculateStandardVAT(dec("-100"))

	assertDecimal(t, "-19", result.VATAmount)
	assertDecimal(t, "-119", result.Total)
	assert.True(t, vat.ValidateVATCalculation(result).Valid)
}

func TestCalculateRenovationVAT_Eligible(t *testing.T) {
	result := vat.CalculateRenovationVAT(vat.RenovationParams{
		Amount:              dec("10000"),
		DwellingAgeYears:    5,
		MaterialsPercentage: dec("30"),
	})

	assertDecimal(t, "5", result.VATRate)
	assertDecimal(t, "500.00", result.VATAmount)
	assertDecimal(t, "10500.00", result.Total)
	assertDecimal(t, "10000", result.Subtotal)
	assert.Equal(t, vat.BasisRenovation, result.Basis)
	assert.NotNil(t, result.Warnings)
	assert.Empty(t, result.Warnings)
}

func TestCalculateRenovationVAT_Boundaries(t *testing.T) {
	result := vat.CalculateRenovationVAT(vat.RenovationParams{
		Amount:              dec("2000"),
		DwellingAgeYears:    vat.MinDwellingAgeYears,
		MaterialsPercentage: dec("50"),
	})

	assert.Equal(t, vat.BasisRenovation, result.Basis)
	assertDecimal(t, "100", result.VATAmount)
	assert.Empty(t, result.Warnings)
}

func TestCalculateRenovationVAT_Fallbacks(t *testing.T) {
	tests := []struct {
		name        string
		params      vat.RenovationParams
		wantWarning string
		notWant     string
	}{
		{
			name:        "dwelling too new",
			params:      vat.RenovationParams{Amount: dec("10000"), DwellingAgeYears: 2, MaterialsPercentage: dec("10")},
			wantWarning: "years since first occupation",
		},
		{
			name:        "age is checked before materials",
			params:      vat.RenovationParams{Amount: dec("10000"), DwellingAgeYears: 0, MaterialsPercentage: dec("90")},
			wantWarning: "Dwelling is 0 years old",
			notWant:     "Materials",
		},
		{
			name:        "materials over half",
			params:      vat.RenovationParams{Amount: dec("10000"), DwellingAgeYears: 10, MaterialsPercentage: dec("50.01")},
			wantWarning: "Materials make up 50.01%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := vat.CalculateRenovationVAT(tt.params)

			assert.Equal(t, vat.BasisStandard, result.Basis)
			assertDecimal(t, "19", result.VATRate)
			assertDecimal(t, "1900", result.VATAmount)
			assertDecimal(t, "11900", result.Total)
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], tt.wantWarning)
			if tt.notWant != "" {
				assert.NotContains(t, result.Warnings[0], tt.notWant)
			}
		})
	}
}

func TestCalculatePrimaryResidenceVAT_SplitsAboveLimit(t *testing.T) {
	result, err := vat.CalculatePrimaryResidenceVAT(vat.PrimaryResidenceParams{
		Amount:       dec("260000"),
		TotalAreaSqm: dec("200"),
	})
	require.NoError(t, err)

	assert.Equal(t, vat.BasisPrimaryResidence, result.Basis)
	assertDecimal(t, "25740.00", result.VATAmount)
	assertDecimal(t, "285740.00", result.Total)
	assertDecimal(t, "9.9", result.VATRate)

	require.Len(t, result.Breakdown, 2)
	assertDecimal(t, "169000", result.Breakdown[0].Amount)
	assertDecimal(t, "5", result.Breakdown[0].VATRate)
	assertDecimal(t, "8450", result.Breakdown[0].VATAmount)
	assertDecimal(t, "91000", result.Breakdown[1].Amount)
	assertDecimal(t, "19", result.Breakdown[1].VATRate)
	assertDecimal(t, "17290", result.Breakdown[1].VATAmount)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "200 m²")
	assert.Contains(t, result.Warnings[0], "remaining 70 m² charged at 19%")
}

func TestCalculatePrimaryResidenceVAT_WithinLimit(t *testing.T) {
	for _, area := range []string{"1", "85.5", "130"} {
		t.Run(area, func(t *testing.T) {
			result, err := vat.CalculatePrimaryResidenceVAT(vat.PrimaryResidenceParams{
				Amount:       dec("100000"),
				TotalAreaSqm: dec(area),
			})
			require.NoError(t, err)

			require.Len(t, result.Breakdown, 1)
			assert.Empty(t, result.Warnings)
			assertDecimal(t, "5000", result.VATAmount)
			assertDecimal(t, "105000", result.Total)
			assertDecimal(t, "5", result.VATRate)
		})
	}
}

func TestCalculatePrimaryResidenceVAT_ExplicitPricePerSqm(t *testing.T) {
	result, err := vat.CalculatePrimaryResidenceVAT(vat.PrimaryResidenceParams{
		Amount:       dec("200000"),
		TotalAreaSqm: dec("150"),
		PricePerSqm:  decimal.NewNullDecimal(dec("1000")),
	})
	require.NoError(t, err)

	require.Len(t, result.Breakdown, 2)
	assertDecimal(t, "130000", result.Breakdown[0].Amount)
	assertDecimal(t, "20000", result.Breakdown[1].Amount)
	assertDecimal(t, "10300", result.VATAmount)
	assertDecimal(t, "210300", result.Total)
	assertDecimal(t, "5.15", result.VATRate)
}

func TestCalculatePrimaryResidenceVAT_BreakdownSumsToTotal(t *testing.T) {
	areas := []string{"131", "133.3", "177.77", "250", "999"}
	amounts := []string{"100000", "333333.33", "12345.67"}

	for _, area := range areas {
		for _, amount := range amounts {
			result, err := vat.CalculatePrimaryResidenceVAT(vat.PrimaryResidenceParams{
				Amount:       dec(amount),
				TotalAreaSqm: dec(area),
			})
			require.NoError(t, err)
			require.Len(t, result.Breakdown, 2, "area %s", area)

			sum := result.Breakdown[0].VATAmount.Add(result.Breakdown[1].VATAmount)
			assert.True(t, sum.Sub(result.VATAmount).Abs().LessThanOrEqual(dec("0.01")),
				"area %s amount %s: breakdown %s vs vat %s", area, amount, sum, result.VATAmount)
			assert.True(t, vat.ValidateVATCalculation(result).Valid)
		}
	}
}

func TestCalculatePrimaryResidenceVAT_InvalidArea(t *testing.T) {
	for _, area := range []string{"0", "-10"} {
		t.Run(area, func(t *testing.T) {
			_, err := vat.CalculatePrimaryResidenceVAT(vat.PrimaryResidenceParams{
				Amount:       dec("100000"),
				TotalAreaSqm: dec(area),
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, vat.ErrInvalidArea))

			var inputErr *vat.InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, "totalAreaSqm", inputErr.Field)
		})
	}
}

func TestCalculatePrimaryResidenceVAT_ZeroAmount(t *testing.T) {
	result, err := vat.CalculatePrimaryResidenceVAT(vat.PrimaryResidenceParams{
		Amount:       decimal.Zero,
		TotalAreaSqm: dec("100"),
		PricePerSqm:  decimal.NewNullDecimal(dec("1000")),
	})
	require.NoError(t, err)

	assertDecimal(t, "0", result.VATRate)
	assertDecimal(t, "5000", result.VATAmount)
	assertDecimal(t, "5000", result.Total)
}

func TestApplyReverseCharge(t *testing.T) {
	result := vat.ApplyReverseCharge(dec("50000"))

	assertDecimal(t, "0", result.VATRate)
	assertDecimal(t, "0", result.VATAmount)
	assertDecimal(t, "50000", result.Total)
	assert.Equal(t, vat.BasisReverseCharge, result.Basis)
	assert.NotEmpty(t, result.ReverseChargeNote)
	assert.Contains(t, result.ReverseChargeNote, "Article 11B")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "registered for VAT")
}
