package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or missing client input.
	ErrValidation = errors.New("validation failed")
	// ErrMissingValue signals an absent or empty "value" field.
	ErrMissingValue = fmt.Errorf("missing 'value' field: %w", ErrValidation)
	// ErrValueNotString signals a "value" field of a non-string JSON type.
	ErrValueNotString = fmt.Errorf("'value' must be a string: %w", ErrValidation)
	// ErrInvalidFilter signals a structured filter that failed type or range checks.
	ErrInvalidFilter = fmt.Errorf("invalid filter: %w", ErrValidation)

	// ErrAlreadyExists signals a duplicate string value.
	ErrAlreadyExists = errors.New("string already exists")
	// ErrNotFound signals a missing string record.
	ErrNotFound = errors.New("string not found")
	// ErrParse signals an unrecognized natural-language query.
	ErrParse = errors.New("unable to parse query")
	// ErrStore signals a persistence failure.
	ErrStore = errors.New("store failure")
)

// ParseError wraps ErrParse with the reason the phrase was rejected.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return e.Reason }

func (e *ParseError) Unwrap() error { return ErrParse }

// NewParseError creates a parse error carrying reason.
func NewParseError(reason string) error {
	return &ParseError{Reason: reason}
}

// StoreError wraps an underlying persistence failure with the failed operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// NewStoreError wraps err as a store failure of op.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
