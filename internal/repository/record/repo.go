package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/db"
	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/analysis"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	"github.com/kailas-cloud/strindex/internal/logger"
	"github.com/kailas-cloud/strindex/internal/metrics"
)

// backendLabel is the metrics label of this repository.
const backendLabel = "redis"

// DefaultMaxResults caps one lookup when no limit is configured.
const DefaultMaxResults = 10000

// store is the consumer interface for records (ISP).
type store interface {
	HCreate(ctx context.Context, key, guard string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo implements usecase/record.Repository over Redis hashes and an FT index.
type Repo struct {
	store      store
	prefix     string
	maxResults int
	now        func() time.Time
}

// Option configures a Repo.
type Option func(*Repo)

// WithKeyPrefix namespaces every key and the index name.
func WithKeyPrefix(prefix string) Option {
	return func(r *Repo) { r.prefix = prefix }
}

// WithMaxResults caps the number of records one Find returns.
func WithMaxResults(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

// New creates a record repository.
func New(s store, opts ...Option) *Repo {
	r := &Repo{store: s, maxResults: DefaultMaxResults, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// EnsureIndex creates the FT index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := indexName(r.prefix)
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.prefix)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	logger.FromContext(ctx).Info("Index ready", zap.String("index", name))
	return nil
}

// IndexHealth reports whether the FT index is present.
func (r *Repo) IndexHealth(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName(r.prefix))
	if err != nil {
		return err
	}
	if !exists {
		return db.ErrIndexNotFound
	}
	return nil
}

// Create writes the record hash in one atomic step. A key whose hash already
// records a creation time is ErrAlreadyExists; any other hash at the key is replaced.
func (r *Repo) Create(ctx context.Context, rec domrec.Record) (domrec.Record, error) {
	start := time.Now()
	stored, err := r.create(ctx, rec)
	metrics.ObserveStore(backendLabel, "create", start, isFailure(err))
	return stored, err
}

func (r *Repo) create(ctx context.Context, rec domrec.Record) (domrec.Record, error) {
	key := recordKey(r.prefix, rec.ID())

	stored := rec.WithCreatedAt(r.now().UTC())
	fields, err := buildHashFields(&stored)
	if err != nil {
		return domrec.Record{}, err
	}

	written, err := r.store.HCreate(ctx, key, fieldCreatedAt, fields)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("create %s: %w", key, err)
	}
	if !written {
		return domrec.Record{}, domain.ErrAlreadyExists
	}
	return stored, nil
}

// FindOne returns the record stored for exactly value.
func (r *Repo) FindOne(ctx context.Context, value string) (domrec.Record, error) {
	start := time.Now()
	rec, err := r.findOne(ctx, value)
	metrics.ObserveStore(backendLabel, "find_one", start, isFailure(err))
	return rec, err
}

func (r *Repo) findOne(ctx context.Context, value string) (domrec.Record, error) {
	key := recordKey(r.prefix, analysis.Hash(value))
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrec.Record{}, domain.ErrNotFound
		}
		return domrec.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}

	rec, err := parseHashFields(m)
	if err != nil {
		if errors.Is(err, errIncomplete) {
			return domrec.Record{}, domain.ErrNotFound
		}
		return domrec.Record{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if rec.Value() != value {
		return domrec.Record{}, domain.ErrNotFound
	}
	return rec, nil
}

// Find lists the records matching expr via FT.SEARCH.
func (r *Repo) Find(ctx context.Context, expr query.Expression) ([]domrec.Record, error) {
	start := time.Now()
	recs, err := r.find(ctx, expr)
	metrics.ObserveStore(backendLabel, "find", start, isFailure(err))
	return recs, err
}

func (r *Repo) find(ctx context.Context, expr query.Expression) ([]domrec.Record, error) {
	res, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName: indexName(r.prefix),
		Filters:   expr,
		SortBy:    fieldCreatedOrder,
		Limit:     r.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", indexName(r.prefix), err)
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, nil
	}

	if res.Total > len(res.Entries) {
		logger.FromContext(ctx).Warn("Lookup truncated",
			zap.Int("total", res.Total),
			zap.Int("returned", len(res.Entries)),
		)
	}

	recs := make([]domrec.Record, 0, len(res.Entries))
	for _, e := range res.Entries {
		rec, err := parseHashFields(e.Fields)
		if err != nil {
			if errors.Is(err, errIncomplete) {
				continue
			}
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// DeleteOne removes the record stored for exactly value and returns it.
func (r *Repo) DeleteOne(ctx context.Context, value string) (domrec.Record, error) {
	start := time.Now()
	rec, err := r.deleteOne(ctx, value)
	metrics.ObserveStore(backendLabel, "delete", start, isFailure(err))
	return rec, err
}

func (r *Repo) deleteOne(ctx context.Context, value string) (domrec.Record, error) {
	rec, err := r.findOne(ctx, value)
	if err != nil {
		return domrec.Record{}, err
	}

	key := recordKey(r.prefix, rec.ID())
	if err := r.store.Del(ctx, key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrec.Record{}, domain.ErrNotFound
		}
		return domrec.Record{}, fmt.Errorf("del %s: %w", key, err)
	}
	return rec, nil
}

func isFailure(err error) bool {
	return err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrAlreadyExists)
}
