package strindex

import (
	"context"

	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	healthuc "github.com/kailas-cloud/strindex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/strindex/internal/usecase/record"
)

// --- recordUseCase mock ---

type mockRecordUC struct {
	createFn       func(ctx context.Context, value string) (domrec.Record, error)
	getFn          func(ctx context.Context, value string) (domrec.Record, error)
	listFn         func(ctx context.Context, params predicate.Params) (recorduc.ListResult, error)
	listByPhraseFn func(ctx context.Context, phrase string) (recorduc.PhraseResult, error)
	deleteFn       func(ctx context.Context, value string) error
}

func (m *mockRecordUC) Create(ctx context.Context, value string) (domrec.Record, error) {
	return m.createFn(ctx, value)
}

func (m *mockRecordUC) Get(ctx context.Context, value string) (domrec.Record, error) {
	return m.getFn(ctx, value)
}

func (m *mockRecordUC) List(ctx context.Context, params predicate.Params) (recorduc.ListResult, error) {
	return m.listFn(ctx, params)
}

func (m *mockRecordUC) ListByPhrase(ctx context.Context, phrase string) (recorduc.PhraseResult, error) {
	return m.listByPhraseFn(ctx, phrase)
}

func (m *mockRecordUC) Delete(ctx context.Context, value string) error {
	return m.deleteFn(ctx, value)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
