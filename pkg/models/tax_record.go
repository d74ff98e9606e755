package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRecord is the VAT record stored with an invoice. Amounts are kept as
// decimals to avoid float rounding in persisted financial data.
type TaxRecord struct {
	// Identifiers
	ID        string `json:"id"`         // Unique record identifier
	InvoiceID string `json:"invoice_id"` // Invoice the record belongs to

	// Why the rate was applied (standard19, reduced5_renovation, ...)
	VATBasis string `json:"vat_basis"`

	// Amounts
	Subtotal  decimal.Decimal `json:"subtotal"`
	VATRate   decimal.Decimal `json:"vat_rate"` // Blended for primary-residence records
	VATAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`

	// Disclosures
	Breakdown         []BreakdownLine `json:"breakdown,omitempty"`
	Warnings          []string        `json:"warnings"`
	ReverseChargeNote string          `json:"reverse_charge_note,omitempty"`

	// Optional metadata
	Location   string    `json:"location,omitempty"` // Property location as supplied by the caller
	AssessedAt time.Time `json:"assessed_at"`
}

// BreakdownLine is one rated portion of a mixed-rate record.
type BreakdownLine struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
}

// BreakdownSummary renders the breakdown on a single line for tabular exports.
func (r *TaxRecord) BreakdownSummary() string {
	parts := make([]string, 0, len(r.Breakdown))
	for _, line := range r.Breakdown {
		parts = append(parts, fmt.Sprintf("%s: %s @ %s%% = %s",
			line.Description, line.Amount.StringFixed(2), line.VATRate.String(), line.VATAmount.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}

// IsReverseCharge reports whether the recipient accounts for the VAT.
func (r *TaxRecord) IsReverseCharge() bool {
	return r.ReverseChargeNote != ""
}
