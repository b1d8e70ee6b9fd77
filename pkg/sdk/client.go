package strindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/strindex/internal/backend"
	"github.com/kailas-cloud/strindex/internal/config"
	"github.com/kailas-cloud/strindex/internal/domain/nlquery"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	healthuc "github.com/kailas-cloud/strindex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/strindex/internal/usecase/record"
)

// recordUseCase is the record service surface the client drives.
type recordUseCase interface {
	Create(ctx context.Context, value string) (domrec.Record, error)
	Get(ctx context.Context, value string) (domrec.Record, error)
	List(ctx context.Context, params predicate.Params) (recorduc.ListResult, error)
	ListByPhrase(ctx context.Context, phrase string) (recorduc.PhraseResult, error)
	Delete(ctx context.Context, value string) error
}

type translatorFunc func(string) (predicate.Predicate, error)

func (f translatorFunc) Translate(phrase string) (predicate.Predicate, error) { return f(phrase) }

// Client is the strindex SDK entry point. It is safe for concurrent use.
type Client struct {
	closer    func() error
	records   recordUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the configured store and returns a ready Client.
// The provided context bounds the initial readiness check and index setup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.db.Driver == "" {
		return nil, errors.New("strindex: storage required (use WithRedis, WithValkey, WithSQLite, WithBadger or WithInMemory)")
	}

	settings := settingsFrom(cfg)
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	be, err := backend.Open(ctx, settings, nil)
	if err != nil {
		return nil, fmt.Errorf("strindex: %w", err)
	}

	return &Client{
		closer:    be.Close,
		records:   recorduc.New(be.Repository, translatorFunc(nlquery.Translate)),
		healthSvc: healthuc.New(be.Components...),
		obs:       obs,
	}, nil
}

func settingsFrom(cfg *clientConfig) backend.Settings {
	full := config.Config{
		Database: cfg.db,
		Storage:  config.StorageConfig{KeyPrefix: cfg.keyPrefix},
		Query:    config.QueryConfig{MaxResults: cfg.maxResults},
	}
	full.ApplyDefaults()
	return backend.FromConfig(&full)
}

// Close releases the store.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	if err := c.closer(); err != nil {
		return fmt.Errorf("strindex: close: %w", err)
	}
	return nil
}
