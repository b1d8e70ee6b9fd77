package chi

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/strindex/internal/domain/analysis"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeMissingField     ErrorCode = "missing_field"
	CodeInvalidType      ErrorCode = "invalid_type"
	CodeInvalidFilter    ErrorCode = "invalid_filter"
	CodeParseError       ErrorCode = "parse_error"
	CodeConflict         ErrorCode = "conflict"
	CodeNotFound         ErrorCode = "not_found"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CreateStringRequest is the body of POST /strings. Value stays raw so a non-string can be told apart from a missing one.
type CreateStringRequest struct {
	Value json.RawMessage `json:"value"`
}

// StringResponse is a stored string with its properties.
type StringResponse struct {
	ID         string              `json:"id"`
	Value      string              `json:"value"`
	Properties analysis.Properties `json:"properties"`
	CreatedAt  time.Time           `json:"created_at"`
}

// ListResponse is the body of GET /strings.
type ListResponse struct {
	Data           []StringResponse    `json:"data"`
	Count          int                 `json:"count"`
	FiltersApplied predicate.Predicate `json:"filters_applied"`
}

// InterpretedQuery reports how a phrase was understood.
type InterpretedQuery struct {
	Original      string              `json:"original"`
	ParsedFilters predicate.Predicate `json:"parsed_filters"`
}

// PhraseResponse is the body of GET /strings/filter-by-natural-language.
type PhraseResponse struct {
	Data             []StringResponse `json:"data"`
	Count            int              `json:"count"`
	InterpretedQuery InterpretedQuery `json:"interpreted_query"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToAPI(r *domrec.Record) StringResponse {
	return StringResponse{
		ID:         r.ID(),
		Value:      r.Value(),
		Properties: r.Properties(),
		CreatedAt:  r.CreatedAt(),
	}
}

func recordsToAPI(recs []domrec.Record) []StringResponse {
	out := make([]StringResponse, len(recs))
	for i := range recs {
		out[i] = recordToAPI(&recs[i])
	}
	return out
}
