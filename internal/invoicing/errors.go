package invoicing

import (
	"errors"
	"fmt"
)

// Common assessment errors
var (
	// ErrInvalidRequest is returned when request parameters are outside their
	// meaningful range (negative dwelling age, materials share above 100%).
	ErrInvalidRequest = errors.New("invalid assessment request")

	// ErrInconsistentResult is returned when a computed result fails the
	// post-hoc consistency checks and must not be stored.
	ErrInconsistentResult = errors.New("VAT result failed consistency checks")

	// ErrCanceled is returned when the assessment is canceled via context.
	ErrCanceled = errors.New("assessment was canceled")
)

// AssessmentError wraps errors with the invoice and operation that failed.
type AssessmentError struct {
	// Op is the operation that failed (e.g., "Assess").
	Op string

	// InvoiceID identifies the invoice being assessed (if known).
	InvoiceID string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *AssessmentError) Error() string {
	prefix := fmt.Sprintf("invoicing: %s failed", e.Op)
	if e.InvoiceID != "" {
		prefix = fmt.Sprintf("invoicing: %s failed (invoice: %s)", e.Op, e.InvoiceID)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AssessmentError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *AssessmentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAssessmentError creates a new AssessmentError.
func NewAssessmentError(op, invoiceID string, err error, details string) *AssessmentError {
	return &AssessmentError{
		Op:        op,
		InvoiceID: invoiceID,
		Err:       err,
		Details:   details,
	}
}

// ValidationError represents a request field outside its allowed range.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap ties every ValidationError to ErrInvalidRequest.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
