// Package invoicing turns invoice VAT requests into stored tax records.
//
// It is the caller of the VAT engine: it selects the calculator for the
// requested basis, checks the result for consistency and builds the record
// that is persisted with the invoice. Records that fail the consistency
// checks are refused rather than stored.
package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cyvat/internal/logger"
	"cyvat/internal/vat"
	"cyvat/pkg/models"
)

var maxPercentage = decimal.NewFromInt(100)

// Request describes one invoice to assess. Optional parameters left unset
// take the VAT engine defaults for the basis.
type Request struct {
	InvoiceID string
	Basis     string
	Location  string

	Amount              decimal.Decimal
	DwellingAgeYears    *int
	MaterialsPercentage decimal.NullDecimal
	TotalAreaSqm        decimal.NullDecimal
	PricePerSqm         decimal.NullDecimal
}

// Service assesses VAT for invoices.
type Service struct {
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewService creates a new assessment service
func NewService() *Service {
	return &Service{
		log:   logger.WithComponent("invoicing"),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Assess computes, checks and records VAT for a single invoice.
func (s *Service) Assess(ctx context.Context, req Request) (*models.TaxRecord, error) {
	const op = "Assess"

	if err := ctx.Err(); err != nil {
		return nil, NewAssessmentError(op, req.InvoiceID, fmt.Errorf("%w: %w", ErrCanceled, err), "")
	}

	if err := validateRequest(req); err != nil {
		return nil, NewAssessmentError(op, req.InvoiceID, err, "")
	}

	var extraWarnings []string

	// An empty basis means the standard rate.
	basis, ok := vat.ParseBasis(strings.TrimSpace(req.Basis))
	if !ok && strings.TrimSpace(req.Basis) != "" {
		s.log.Warn().
			Str("invoice_id", req.InvoiceID).
			Str("requested_basis", req.Basis).
			Msg("Unknown VAT basis, falling back to standard rate")
		extraWarnings = append(extraWarnings, fmt.Sprintf(
			"Unknown VAT basis %q; standard 19%% rate applied.", req.Basis))
	}

	if req.Location != "" && !vat.IsCyprusProperty(req.Location) {
		s.log.Warn().
			Str("invoice_id", req.InvoiceID).
			Str("location", req.Location).
			Msg("Location not recognised as Cyprus")
		extraWarnings = append(extraWarnings, fmt.Sprintf(
			"Location %q is not recognised as being in Cyprus; Cyprus VAT rules may not apply.", req.Location))
	}

	result, err := vat.GetVATCalculator(basis)(vat.Request{
		Amount:              req.Amount,
		DwellingAgeYears:    req.DwellingAgeYears,
		MaterialsPercentage: req.MaterialsPercentage,
		TotalAreaSqm:        req.TotalAreaSqm,
		PricePerSqm:         req.PricePerSqm,
	})
	if err != nil {
		s.log.Error().
			Err(err).
			Str("invoice_id", req.InvoiceID).
			Str("vat_basis", string(basis)).
			Msg("VAT calculation rejected input")
		return nil, NewAssessmentError(op, req.InvoiceID, err, "calculation failed")
	}

	report := vat.ValidateVATCalculation(result)
	if !report.Valid {
		s.log.Error().
			Str("invoice_id", req.InvoiceID).
			Strs("errors", report.Errors).
			Msg("VAT result failed consistency checks")
		return nil, NewAssessmentError(op, req.InvoiceID, ErrInconsistentResult, strings.Join(report.Errors, "; "))
	}

	record := s.toRecord(req, result, extraWarnings)

	s.log.Info().
		Str("invoice_id", record.InvoiceID).
		Str("vat_basis", record.VATBasis).
		Str("subtotal", record.Subtotal.StringFixed(2)).
		Str("vat_amount", record.VATAmount.StringFixed(2)).
		Str("total", record.Total.StringFixed(2)).
		Int("warnings", len(record.Warnings)).
		Msg("VAT assessed")

	return record, nil
}

func validateRequest(req Request) error {
	if req.DwellingAgeYears != nil && *req.DwellingAgeYears < 0 {
		return NewValidationError("dwelling_age_years", *req.DwellingAgeYears, "must not be negative")
	}
	if req.MaterialsPercentage.Valid {
		pct := req.MaterialsPercentage.Decimal
		if pct.IsNegative() || pct.GreaterThan(maxPercentage) {
			return NewValidationError("materials_percentage", pct.String(), "must be between 0 and 100")
		}
	}
	return nil
}

func (s *Service) toRecord(req Request, result vat.Result, extraWarnings []string) *models.TaxRecord {
	warnings := make([]string, 0, len(result.Warnings)+len(extraWarnings))
	warnings = append(warnings, result.Warnings...)
	warnings = append(warnings, extraWarnings...)

	var breakdown []models.BreakdownLine
	for _, line := range result.Breakdown {
		breakdown = append(breakdown, models.BreakdownLine{
			Description: line.Description,
			Amount:      line.Amount,
			VATRate:     line.VATRate,
			VATAmount:   line.VATAmount,
		})
	}

	invoiceID := req.InvoiceID
	if invoiceID == "" {
		invoiceID = s.newID()
	}

	return &models.TaxRecord{
		ID:                s.newID(),
		InvoiceID:         invoiceID,
		VATBasis:          string(result.Basis),
		Subtotal:          result.Subtotal,
		VATRate:           result.VATRate,
		VATAmount:         result.VATAmount,
		Total:             result.Total,
		Breakdown:         breakdown,
		Warnings:          warnings,
		ReverseChargeNote: result.ReverseChargeNote,
		Location:          req.Location,
		AssessedAt:        s.now(),
	}
}

// ResultFromRecord rebuilds the engine result stored in a record, so that a
// persisted record can be re-validated.
func ResultFromRecord(record *models.TaxRecord) vat.Result {
	var breakdown []vat.BreakdownLine
	for _, line := range record.Breakdown {
		breakdown = append(breakdown, vat.BreakdownLine{
			Description: line.Description,
			Amount:      line.Amount,
			VATRate:     line.VATRate,
			VATAmount:   line.VATAmount,
		})
	}
	warnings := record.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return vat.Result{
		Subtotal:          record.Subtotal,
		VATRate:           record.VATRate,
		VATAmount:         record.VATAmount,
		Total:             record.Total,
		Basis:             vat.Basis(record.VATBasis),
		Breakdown:         breakdown,
		Warnings:          warnings,
		ReverseChargeNote: record.ReverseChargeNote,
	}
}
