package record

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	"github.com/kailas-cloud/strindex/internal/logger"
)

// ListResult is the outcome of a structured lookup.
type ListResult struct {
	Records []domrec.Record
	Count   int
	Filters predicate.Predicate
}

// PhraseResult is the outcome of a natural-language lookup.
type PhraseResult struct {
	Records  []domrec.Record
	Count    int
	Original string
	Parsed   predicate.Predicate
}

// Service orchestrates analysis, uniqueness and lookups over the record store.
type Service struct {
	repo       Repository
	translator Translator
}

// New creates a record service.
func New(repo Repository, translator Translator) *Service {
	return &Service{repo: repo, translator: translator}
}

// Create analyzes value and stores it. A duplicate value is rejected, never overwritten.
func (s *Service) Create(ctx context.Context, value string) (domrec.Record, error) {
	rec, err := domrec.New(value)
	if err != nil {
		return domrec.Record{}, err
	}

	if _, err := s.repo.FindOne(ctx, value); err == nil {
		return domrec.Record{}, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domrec.Record{}, storeFailure("find record", err)
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost a race with a concurrent create of the same value.
			logger.FromContext(ctx).Warn("store rejected duplicate after pre-check",
				zap.String("id", rec.ID()),
			)
			return domrec.Record{}, domain.ErrAlreadyExists
		}
		return domrec.Record{}, storeFailure("create record", err)
	}

	logger.FromContext(ctx).Debug("string created",
		zap.String("id", created.ID()),
		zap.Int("length", created.Properties().Length),
	)
	return created, nil
}

// Get returns the record with exactly value.
func (s *Service) Get(ctx context.Context, value string) (domrec.Record, error) {
	rec, err := s.repo.FindOne(ctx, value)
	if err != nil {
		return domrec.Record{}, storeFailure("find record", err)
	}
	return rec, nil
}

// List returns the records matching typed structured filters. No filters lists everything.
func (s *Service) List(ctx context.Context, params predicate.Params) (ListResult, error) {
	p, err := params.Predicate()
	if err != nil {
		return ListResult{}, err
	}

	recs, err := s.repo.Find(ctx, query.Compile(p))
	if err != nil {
		return ListResult{}, storeFailure("find records", err)
	}
	sortRecords(recs)
	return ListResult{Records: recs, Count: len(recs), Filters: p}, nil
}

// ListByPhrase translates phrase and returns the matching records with the interpretation.
func (s *Service) ListByPhrase(ctx context.Context, phrase string) (PhraseResult, error) {
	p, err := s.translator.Translate(phrase)
	if err != nil {
		return PhraseResult{}, fmt.Errorf("translate query: %w", err)
	}

	recs, err := s.repo.Find(ctx, query.Compile(p))
	if err != nil {
		return PhraseResult{}, storeFailure("find records", err)
	}
	sortRecords(recs)
	return PhraseResult{Records: recs, Count: len(recs), Original: phrase, Parsed: p}, nil
}

// Delete removes the record with exactly value.
func (s *Service) Delete(ctx context.Context, value string) error {
	rec, err := s.repo.DeleteOne(ctx, value)
	if err != nil {
		return storeFailure("delete record", err)
	}

	logger.FromContext(ctx).Debug("string deleted", zap.String("id", rec.ID()))
	return nil
}

// storeFailure passes domain outcomes through and marks everything else as a store failure.
func storeFailure(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, domain.ErrStore) {
		return err
	}
	return domain.NewStoreError(op, err)
}

// sortRecords orders results so every store lists in the same order.
func sortRecords(recs []domrec.Record) {
	slices.SortStableFunc(recs, domrec.Compare)
}
