// Package vat computes Cyprus VAT for construction and renovation invoicing.
//
// Every calculator is a pure function: it never fails on business input,
// falling back to the standard rate and explaining the fallback through
// Result.Warnings instead. The only rejected input is a primary-residence
// calculation without a usable floor area.
package vat

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Statutory rates in percent and the eligibility thresholds that select them.
var (
	RateZero     = decimal.Zero
	RateReduced  = decimal.NewFromInt(5)
	RateStandard = decimal.NewFromInt(19)

	hundred = decimal.NewFromInt(100)

	// PrimaryResidenceAreaLimit is the floor area taxed at the reduced rate.
	PrimaryResidenceAreaLimit = decimal.NewFromInt(130)
	// MaxMaterialsPercentage is the highest materials share still eligible for the renovation rate.
	MaxMaterialsPercentage = decimal.NewFromInt(50)
)

// MinDwellingAgeYears is the minimum time since first occupation for the renovation rate.
const MinDwellingAgeYears = 3

// ReverseChargeNote is the legal text printed on reverse-charge invoices.
const ReverseChargeNote = "Reverse charge: VAT to be accounted for by the recipient " +
	"in accordance with Article 11B of the Cyprus VAT Law (N.95(I)/2000)."

const reverseChargeWarning = "Reverse charge applies only when both the supplier and the recipient " +
	"are registered for VAT in Cyprus. Verify both VAT registrations before issuing the invoice."

func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// CalculateStandardVAT charges the standard 19% rate. It is also the fallback
// for every reduced-rate calculator whose eligibility conditions fail.
func CalculateStandardVAT(amount decimal.Decimal) Result {
	vatAmount := percentOf(amount, RateStandard).Round(2)
	return Result{
		Subtotal:  amount,
		VATRate:   RateStandard,
		VATAmount: vatAmount,
		Total:     amount.Add(vatAmount),
		Basis:     BasisStandard,
		Warnings:  []string{},
	}
}

// CalculateRenovationVAT charges the reduced 5% rate for renovating a private
// dwelling that has been occupied for at least three years, provided materials
// make up no more than half of the value. Ineligible work is charged at the
// standard rate with a warning naming the unmet condition.
func CalculateRenovationVAT(params RenovationParams) Result {
	if params.DwellingAgeYears < MinDwellingAgeYears {
		return standardWithWarning(params.Amount, fmt.Sprintf(
			"Dwelling is %d years old; the reduced 5%% renovation rate requires at least %d years since first occupation. Standard 19%% rate applied.",
			params.DwellingAgeYears, MinDwellingAgeYears))
	}

	if params.MaterialsPercentage.GreaterThan(MaxMaterialsPercentage) {
		return standardWithWarning(params.Amount, fmt.Sprintf(
			"Materials make up %s%% of the total value; the reduced 5%% renovation rate allows at most %s%%. Standard 19%% rate applied.",
			params.MaterialsPercentage.String(), MaxMaterialsPercentage.String()))
	}

	vatAmount := percentOf(params.Amount, RateReduced).Round(2)
	return Result{
		Subtotal:  params.Amount,
		VATRate:   RateReduced,
		VATAmount: vatAmount,
		Total:     params.Amount.Add(vatAmount),
		Basis:     BasisRenovation,
		Warnings:  []string{},
	}
}

func standardWithWarning(amount decimal.Decimal, warning string) Result {
	result := CalculateStandardVAT(amount)
	result.Basis = BasisStandard
	result.Warnings = []string{warning}
	return result
}

// CalculatePrimaryResidenceVAT splits a primary-residence supply by floor area:
// the first 130 m² at 5%, anything above at 19%. The reported VATRate is the
// blended effective rate over the whole amount, rounded to two decimals.
//
// A zero or negative TotalAreaSqm returns an *InputError wrapping ErrInvalidArea.
func CalculatePrimaryResidenceVAT(params PrimaryResidenceParams) (Result, error) {
	if !params.TotalAreaSqm.IsPositive() {
		return Result{}, newInputError("totalAreaSqm", params.TotalAreaSqm.String(), ErrInvalidArea)
	}

	pricePerSqm := params.Amount.Div(params.TotalAreaSqm)
	if params.PricePerSqm.Valid {
		pricePerSqm = params.PricePerSqm.Decimal
	}

	reducedArea := decimal.Min(params.TotalAreaSqm, PrimaryResidenceAreaLimit)
	standardArea := decimal.Max(decimal.Zero, params.TotalAreaSqm.Sub(PrimaryResidenceAreaLimit))

	reducedAmount := reducedArea.Mul(pricePerSqm)
	reducedVAT := percentOf(reducedAmount, RateReduced)

	breakdown := []BreakdownLine{{
		Description: fmt.Sprintf("First %s m² at reduced rate", reducedArea.String()),
		Amount:      reducedAmount.Round(2),
		VATRate:     RateReduced,
		VATAmount:   reducedVAT.Round(2),
	}}
	warnings := []string{}

	standardVAT := decimal.Zero
	if standardArea.IsPositive() {
		standardAmount := standardArea.Mul(pricePerSqm)
		standardVAT = percentOf(standardAmount, RateStandard)

		breakdown = append(breakdown, BreakdownLine{
			Description: fmt.Sprintf("Remaining %s m² at standard rate", standardArea.String()),
			Amount:      standardAmount.Round(2),
			VATRate:     RateStandard,
			VATAmount:   standardVAT.Round(2),
		})
		warnings = append(warnings, fmt.Sprintf(
			"Property area of %s m² exceeds the %s m² reduced-rate limit: first %s m² charged at 5%%, remaining %s m² charged at 19%%.",
			params.TotalAreaSqm.String(), PrimaryResidenceAreaLimit.String(), reducedArea.String(), standardArea.String()))
	}

	totalVAT := reducedVAT.Add(standardVAT)

	// A zero amount has no meaningful blended rate.
	effectiveRate := decimal.Zero
	if !params.Amount.IsZero() {
		effectiveRate = totalVAT.Div(params.Amount).Mul(hundred).Round(2)
	}

	return Result{
		Subtotal:  params.Amount,
		VATRate:   effectiveRate,
		VATAmount: totalVAT.Round(2),
		Total:     params.Amount.Add(totalVAT).Round(2),
		Basis:     BasisPrimaryResidence,
		Breakdown: breakdown,
		Warnings:  warnings,
	}, nil
}

// ApplyReverseCharge zero-rates a B2B construction service and attaches the
// statutory reverse-charge note. Whether reverse charge actually applies is
// the caller's decision; no eligibility is checked here.
func ApplyReverseCharge(amount decimal.Decimal) Result {
	return Result{
		Subtotal:          amount,
		VATRate:           RateZero,
		VATAmount:         decimal.Zero,
		Total:             amount,
		Basis:             BasisReverseCharge,
		Warnings:          []string{reverseChargeWarning},
		ReverseChargeNote: ReverseChargeNote,
	}
}
