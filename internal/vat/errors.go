package vat

import (
	"errors"
	"fmt"
)

// ErrInvalidArea is returned when a primary-residence calculation is given a
// zero or negative floor area. The per-square-metre price cannot be derived
// and a non-finite amount must never reach a financial record.
var ErrInvalidArea = errors.New("total area must be greater than zero")

// InputError describes a calculator input that violates its contract.
type InputError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("vat: invalid input for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the underlying sentinel.
func (e *InputError) Unwrap() error {
	return e.Err
}

func newInputError(field string, value interface{}, err error) *InputError {
	return &InputError{
		Field:   field,
		Value:   value,
		Message: err.Error(),
		Err:     err,
	}
}
