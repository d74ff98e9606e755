package services

import (
	"context"

	"cyvat/pkg/models"
)

// TaxRecordExporter defines the interface for writing assessed tax records
// to an external destination
type TaxRecordExporter interface {
	// ExportTaxRecords writes records to target (a sheet name or file path,
	// depending on the implementation)
	ExportTaxRecords(ctx context.Context, records []models.TaxRecord, target string) error
}
