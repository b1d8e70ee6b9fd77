package record

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/nlquery"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
)

// memRepo is an in-memory Repository honoring the uniqueness contract.
type memRepo struct {
	mu      sync.Mutex
	records []domrec.Record

	findOneErr error
	findErr    error
	createErr  error
	deleteErr  error

	// hideOnFindOne makes FindOne miss existing records, simulating a concurrent creator.
	hideOnFindOne bool
	lastExpr      query.Expression
}

func (m *memRepo) FindOne(_ context.Context, value string) (domrec.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findOneErr != nil {
		return domrec.Record{}, m.findOneErr
	}
	if m.hideOnFindOne {
		return domrec.Record{}, domain.ErrNotFound
	}
	for _, r := range m.records {
		if r.Value() == value {
			return r, nil
		}
	}
	return domrec.Record{}, domain.ErrNotFound
}

func (m *memRepo) Find(_ context.Context, expr query.Expression) ([]domrec.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastExpr = expr
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []domrec.Record
	for i := range m.records {
		if expr.Matches(query.RecordRow(&m.records[i])) {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, rec domrec.Record) (domrec.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return domrec.Record{}, m.createErr
	}
	for _, r := range m.records {
		if r.Value() == rec.Value() {
			return domrec.Record{}, domain.ErrAlreadyExists
		}
	}
	stored := rec.WithCreatedAt(time.Now().UTC())
	m.records = append(m.records, stored)
	return stored, nil
}

func (m *memRepo) DeleteOne(_ context.Context, value string) (domrec.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return domrec.Record{}, m.deleteErr
	}
	for i, r := range m.records {
		if r.Value() == value {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return r, nil
		}
	}
	return domrec.Record{}, domain.ErrNotFound
}

type translatorFunc func(string) (predicate.Predicate, error)

func (f translatorFunc) Translate(phrase string) (predicate.Predicate, error) { return f(phrase) }

func newTestService(repo *memRepo) *Service {
	return New(repo, translatorFunc(nlquery.Translate))
}
