package invoicing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyvat/internal/vat"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService() *Service {
	var seq int64
	return &Service{
		log: zerolog.Nop(),
		now: func() time.Time { return fixedNow },
		newID: func() string {
			return fmt.Sprintf("id-%d", atomic.AddInt64(&seq, 1))
		},
	}
}

func intPtr(v int) *int {
	return &v
}

func TestService_Assess_Renovation(t *testing.T) {
	svc := newTestService()

	record, err := svc.Assess(context.Background(), Request{
		InvoiceID:           "INV-2026-001",
		Basis:               "reduced5_renovation",
		Location:            "Limassol",
		Amount:              decimal.NewFromInt(10000),
		DwellingAgeYears:    intPtr(5),
		MaterialsPercentage: decimal.NewNullDecimal(decimal.NewFromInt(30)),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-001", record.InvoiceID)
	assert.Equal(t, "id-1", record.ID)
	assert.Equal(t, string(vat.BasisRenovation), record.VATBasis)
	assert.Equal(t, "500.00", record.VATAmount.StringFixed(2))
	assert.Equal(t, "10500.00", record.Total.StringFixed(2))
	assert.Empty(t, record.Warnings)
	assert.Equal(t, "Limassol", record.Location)
	assert.Equal(t, fixedNow, record.AssessedAt)
}

func TestService_Assess_PrimaryResidenceBreakdown(t *testing.T) {
	svc := newTestService()

	record, err := svc.Assess(context.Background(), Request{
		InvoiceID:    "INV-2026-002",
		Basis:        "reduced5_primary_residence",
		Amount:       decimal.NewFromInt(260000),
		TotalAreaSqm: decimal.NewNullDecimal(decimal.NewFromInt(200)),
	})
	require.NoError(t, err)

	require.Len(t, record.Breakdown, 2)
	assert.Equal(t, "25740.00", record.VATAmount.StringFixed(2))
	assert.Equal(t,
		"First 130 m² at reduced rate: 169000.00 @ 5% = 8450.00; Remaining 70 m² at standard rate: 91000.00 @ 19% = 17290.00",
		record.BreakdownSummary())
	require.Len(t, record.Warnings, 1)
}

func TestService_Assess_ReverseCharge(t *testing.T) {
	svc := newTestService()

	record, err := svc.Assess(context.Background(), Request{
		Basis:  "reverse_charge",
		Amount: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	assert.True(t, record.IsReverseCharge())
	assert.Equal(t, "id-1", record.InvoiceID, "missing invoice id is generated")
	assert.Equal(t, "id-2", record.ID)
	assert.True(t, record.VATAmount.IsZero())
}

func TestService_Assess_UnknownBasisFallsBack(t *testing.T) {
	svc := newTestService()

	record, err := svc.Assess(context.Background(), Request{
		InvoiceID: "INV-3",
		Basis:     "zero_rated",
		Amount:    decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.Equal(t, string(vat.BasisStandard), record.VATBasis)
	require.Len(t, record.Warnings, 1)
	assert.Contains(t, record.Warnings[0], `Unknown VAT basis "zero_rated"`)
}

func TestService_Assess_EmptyBasisIsStandard(t *testing.T) {
	svc := newTestService()

	record, err := svc.Assess(context.Background(), Request{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	assert.Equal(t, string(vat.BasisStandard), record.VATBasis)
	assert.Empty(t, record.Warnings)
}

func TestService_Assess_NonCyprusLocationWarns(t *testing.T) {
	svc := newTestService()

	record, err := svc.Assess(context.Background(), Request{
		Basis:    "standard19",
		Location: "Athens, Greece",
		Amount:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	require.Len(t, record.Warnings, 1)
	assert.Contains(t, record.Warnings[0], "not recognised as being in Cyprus")
}

func TestService_Assess_ZeroArea(t *testing.T) {
	svc := newTestService()

	_, err := svc.Assess(context.Background(), Request{
		InvoiceID:    "INV-4",
		Basis:        "reduced5_primary_residence",
		Amount:       decimal.NewFromInt(100000),
		TotalAreaSqm: decimal.NewNullDecimal(decimal.Zero),
	})
	require.Error(t, err)

	assert.True(t, errors.Is(err, vat.ErrInvalidArea))
	var assessErr *AssessmentError
	require.True(t, errors.As(err, &assessErr))
	assert.Equal(t, "INV-4", assessErr.InvoiceID)
	assert.Contains(t, err.Error(), "invoice: INV-4")
}

func TestService_Assess_InvalidRequest(t *testing.T) {
	tests := map[string]Request{
		"negative age": {
			Basis:            "reduced5_renovation",
			Amount:           decimal.NewFromInt(100),
			DwellingAgeYears: intPtr(-1),
		},
		"materials above 100": {
			Basis:               "reduced5_renovation",
			Amount:              decimal.NewFromInt(100),
			MaterialsPercentage: decimal.NewNullDecimal(decimal.NewFromInt(101)),
		},
	}

	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newTestService().Assess(context.Background(), req)
			assert.True(t, errors.Is(err, ErrInvalidRequest))

			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr))
		})
	}
}

func TestService_Assess_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService().Assess(ctx, Request{Amount: decimal.NewFromInt(100)})

	assert.True(t, errors.Is(err, ErrCanceled))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResultFromRecord_RoundTrip(t *testing.T) {
	svc := newTestService()

	record, err := svc.Assess(context.Background(), Request{
		Basis:        "reduced5_primary_residence",
		Amount:       decimal.NewFromInt(260000),
		TotalAreaSqm: decimal.NewNullDecimal(decimal.NewFromInt(200)),
	})
	require.NoError(t, err)

	result := ResultFromRecord(record)
	assert.Equal(t, vat.BasisPrimaryResidence, result.Basis)
	assert.Len(t, result.Breakdown, 2)
	assert.True(t, vat.ValidateVATCalculation(result).Valid)

	record.Total = record.Total.Add(decimal.NewFromInt(1))
	assert.False(t, vat.ValidateVATCalculation(ResultFromRecord(record)).Valid)
}

func TestAssessmentError_Format(t *testing.T) {
	err := NewAssessmentError("Assess", "", ErrInconsistentResult, "total mismatch")
	assert.Equal(t, "invoicing: Assess failed: total mismatch: VAT result failed consistency checks", err.Error())
	assert.True(t, errors.Is(err, ErrInconsistentResult))
}
