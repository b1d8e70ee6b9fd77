package strindex

import "github.com/kailas-cloud/strindex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation    = domain.ErrValidation
	ErrMissingValue  = domain.ErrMissingValue
	ErrInvalidFilter = domain.ErrInvalidFilter
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrNotFound      = domain.ErrNotFound
	ErrParse         = domain.ErrParse
	ErrStore         = domain.ErrStore
)
