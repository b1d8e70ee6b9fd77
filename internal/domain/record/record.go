package record

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/analysis"
)

// Record is a stored string with its derived properties (immutable value object).
type Record struct {
	value      string
	properties analysis.Properties
	createdAt  time.Time
}

// Compare orders records oldest first, then by value. It is the listing order
// of every store, applied before a result cap.
func Compare(a, b Record) int {
	if c := a.createdAt.Compare(b.createdAt); c != 0 {
		return c
	}
	return strings.Compare(a.value, b.value)
}

// New validates value and computes its properties. createdAt is assigned by the store.
func New(value string) (Record, error) {
	if value == "" {
		return Record{}, domain.ErrMissingValue
	}
	return Record{value: value, properties: analysis.Analyze(value)}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(value string, props analysis.Properties, createdAt time.Time) Record {
	return Record{value: value, properties: props, createdAt: createdAt}
}

// ID returns the external identifier: the SHA-256 fingerprint of the value.
func (r *Record) ID() string { return r.properties.SHA256Hash }

// Value returns the original string.
func (r *Record) Value() string { return r.value }

// Properties returns the derived properties.
func (r *Record) Properties() analysis.Properties { return r.properties }

// CreatedAt returns the creation timestamp.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// WithCreatedAt returns a copy stamped with t.
func (r *Record) WithCreatedAt(t time.Time) Record {
	return Record{value: r.value, properties: r.properties, createdAt: t}
}

// ParseValue extracts the "value" field of a create request body.
// Absent, null and "" are ErrMissingValue; any other non-string JSON is ErrValueNotString.
func ParseValue(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", domain.ErrMissingValue
	}
	if trimmed[0] != '"' {
		return "", domain.ErrValueNotString
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", domain.ErrValueNotString
	}
	if s == "" {
		return "", domain.ErrMissingValue
	}
	return s, nil
}
