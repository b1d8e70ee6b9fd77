// Package backend opens the record store selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/config"
	dbBadger "github.com/kailas-cloud/strindex/internal/db/badger"
	dbRedis "github.com/kailas-cloud/strindex/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/strindex/internal/db/sqlite"
	recordrepo "github.com/kailas-cloud/strindex/internal/repository/record"
	healthuc "github.com/kailas-cloud/strindex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/strindex/internal/usecase/record"
)

// Settings selects and tunes a record store.
type Settings struct {
	Database   config.DatabaseConfig
	KeyPrefix  string
	MaxResults int
}

// FromConfig extracts backend settings from the service configuration.
func FromConfig(cfg *config.Config) Settings {
	return Settings{
		Database:   cfg.Database,
		KeyPrefix:  cfg.Storage.KeyPrefix,
		MaxResults: cfg.Query.MaxResults,
	}
}

// Backend is an opened record store with its health probes.
type Backend struct {
	Driver     string
	Repository recorduc.Repository
	Components []healthuc.Component
	closeFn    func() error
}

// Close releases the store.
func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// Open connects to the configured store and prepares it for use.
// For redis and valkey it waits for readiness and creates the search index if absent.
func Open(ctx context.Context, s Settings, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s.MaxResults <= 0 {
		s.MaxResults = config.DefaultMaxResults
	}

	switch s.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		return openRedis(ctx, s, logger)
	case config.DriverSQLite:
		return openSQLite(s)
	case config.DriverBadger:
		return openBadger(s, logger)
	case "":
		return nil, errors.New("database driver is required")
	default:
		return nil, fmt.Errorf("unknown database driver %q", s.Database.Driver)
	}
}

func openRedis(ctx context.Context, s Settings, logger *zap.Logger) (*Backend, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    s.Database.Addrs,
		Username: s.Database.Username,
		Password: s.Database.Password,
		DB:       s.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", s.Database.Driver, err)
	}

	if err := store.WaitForReady(ctx, s.Database.ReadinessTimeoutDuration()); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", s.Database.Driver, err)
	}

	repo := recordrepo.New(store,
		recordrepo.WithKeyPrefix(s.KeyPrefix),
		recordrepo.WithMaxResults(s.MaxResults),
	)
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	logger.Info("record index ready", zap.String("driver", s.Database.Driver))

	return &Backend{
		Driver:     s.Database.Driver,
		Repository: repo,
		Components: []healthuc.Component{
			{Name: s.Database.Driver, Pinger: store},
			{Name: "index", Pinger: healthuc.PingFunc(repo.IndexHealth)},
		},
		closeFn: func() error {
			store.Close()
			return nil
		},
	}, nil
}

func openSQLite(s Settings) (*Backend, error) {
	store, err := dbSQLite.Open(dbSQLite.Config{
		Path:       s.Database.Path,
		MaxResults: s.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Backend{
		Driver:     config.DriverSQLite,
		Repository: store,
		Components: []healthuc.Component{{Name: config.DriverSQLite, Pinger: store}},
		closeFn:    store.Close,
	}, nil
}

func openBadger(s Settings, logger *zap.Logger) (*Backend, error) {
	store, err := dbBadger.Open(dbBadger.Config{
		Dir:        s.Database.Path,
		InMemory:   s.Database.InMemory,
		MaxResults: s.MaxResults,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Backend{
		Driver:     config.DriverBadger,
		Repository: store,
		Components: []healthuc.Component{{Name: config.DriverBadger, Pinger: store}},
		closeFn:    store.Close,
	}, nil
}
