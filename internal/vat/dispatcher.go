package vat

import "github.com/shopspring/decimal"

// Request carries an amount plus whichever basis-specific parameters the
// caller knows. Unset parameters take the defaults documented on GetVATCalculator.
type Request struct {
	Amount              decimal.Decimal
	DwellingAgeYears    *int
	MaterialsPercentage decimal.NullDecimal
	TotalAreaSqm        decimal.NullDecimal
	PricePerSqm         decimal.NullDecimal
}

// Calculator computes a Result for one basis.
type Calculator func(Request) (Result, error)

// GetVATCalculator returns the calculator for basis. Missing renovation
// parameters default to a dwelling age of 3 years and 0% materials; a missing
// primary-residence area defaults to 130 m². Unknown bases get the standard
// calculator.
func GetVATCalculator(basis Basis) Calculator {
	switch basis {
	case BasisRenovation:
		return renovationCalculator
	case BasisPrimaryResidence:
		return primaryResidenceCalculator
	case BasisReverseCharge:
		return reverseChargeCalculator
	case BasisStandard:
		return standardCalculator
	default:
		return standardCalculator
	}
}

func standardCalculator(req Request) (Result, error) {
	return CalculateStandardVAT(req.Amount), nil
}

func renovationCalculator(req Request) (Result, error) {
	age := MinDwellingAgeYears
	if req.DwellingAgeYears != nil {
		age = *req.DwellingAgeYears
	}
	materials := decimal.Zero
	if req.MaterialsPercentage.Valid {
		materials = req.MaterialsPercentage.Decimal
	}
	return CalculateRenovationVAT(RenovationParams{
		Amount:              req.Amount,
		DwellingAgeYears:    age,
		MaterialsPercentage: materials,
	}), nil
}

func primaryResidenceCalculator(req Request) (Result, error) {
	area := PrimaryResidenceAreaLimit
	if req.TotalAreaSqm.Valid {
		area = req.TotalAreaSqm.Decimal
	}
	return CalculatePrimaryResidenceVAT(PrimaryResidenceParams{
		Amount:       req.Amount,
		TotalAreaSqm: area,
		PricePerSqm:  req.PricePerSqm,
	})
}

func reverseChargeCalculator(req Request) (Result, error) {
	return ApplyReverseCharge(req.Amount), nil
}
