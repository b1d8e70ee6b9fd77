package record

import (
	"context"

	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
)

// Repository defines the storage contract for string records.
// Lookups by value are exact (case- and whitespace-sensitive).
type Repository interface {
	// FindOne returns domain.ErrNotFound when no record has value.
	FindOne(ctx context.Context, value string) (domrec.Record, error)
	Find(ctx context.Context, expr query.Expression) ([]domrec.Record, error)
	// Create assigns created_at and returns domain.ErrAlreadyExists on a duplicate value.
	Create(ctx context.Context, rec domrec.Record) (domrec.Record, error)
	// DeleteOne returns the removed record or domain.ErrNotFound.
	DeleteOne(ctx context.Context, value string) (domrec.Record, error)
}

// Translator maps a free-form phrase to a predicate.
type Translator interface {
	Translate(phrase string) (predicate.Predicate, error)
}
