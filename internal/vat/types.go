package vat

import "github.com/shopspring/decimal"

// Basis is the legal category that determines which Cyprus VAT regime
// applies to a supply. It is stored alongside the amounts as the audit
// record of why a rate was charged.
type Basis string

// Known VAT bases.
const (
	BasisStandard         Basis = "standard19"
	BasisRenovation       Basis = "reduced5_renovation"
	BasisPrimaryResidence Basis = "reduced5_primary_residence"
	BasisReverseCharge    Basis = "reverse_charge"
)

// Bases returns every known basis in declaration order.
func Bases() []Basis {
	return []Basis{BasisStandard, BasisRenovation, BasisPrimaryResidence, BasisReverseCharge}
}

// ParseBasis converts a stored tag into a Basis.
func ParseBasis(s string) (Basis, bool) {
	b := Basis(s)
	return b, b.Valid()
}

// Valid reports whether b is one of the known bases.
func (b Basis) Valid() bool {
	switch b {
	case BasisStandard, BasisRenovation, BasisPrimaryResidence, BasisReverseCharge:
		return true
	}
	return false
}

// ReportsBlendedRate reports whether results of this basis carry a weighted
// effective rate instead of one of the statutory rates.
func (b Basis) ReportsBlendedRate() bool {
	return b == BasisPrimaryResidence
}

func (b Basis) String() string {
	return string(b)
}

// BreakdownLine is one differently-rated portion of a mixed-rate supply.
type BreakdownLine struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	VATRate     decimal.Decimal `json:"vatRate"`
	VATAmount   decimal.Decimal `json:"vatAmount"`
}

// Result is the outcome of a VAT calculation. Callers persist its fields
// verbatim as the invoice tax record.
type Result struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	VATRate           decimal.Decimal `json:"vatRate"`
	VATAmount         decimal.Decimal `json:"vatAmount"`
	Total             decimal.Decimal `json:"total"`
	Basis             Basis           `json:"vatBasis"`
	Breakdown         []BreakdownLine `json:"breakdown,omitempty"`
	Warnings          []string        `json:"warnings"`
	ReverseChargeNote string          `json:"reverseChargeNote,omitempty"`
}

// RenovationParams describes renovation work on a private dwelling.
type RenovationParams struct {
	Amount decimal.Decimal
	// DwellingAgeYears counts years since first occupation.
	DwellingAgeYears int
	// MaterialsPercentage is the share (0-100) of the total value made up by materials.
	MaterialsPercentage decimal.Decimal
}

// PrimaryResidenceParams describes construction or purchase of a primary residence.
type PrimaryResidenceParams struct {
	Amount       decimal.Decimal
	TotalAreaSqm decimal.Decimal
	// PricePerSqm defaults to Amount / TotalAreaSqm when not set.
	PricePerSqm decimal.NullDecimal
}

// ValidationReport lists every consistency problem found in a Result.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
