// Package badger is the embedded key-value record store. Compiled queries are
// evaluated in process over a prefix scan.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

// DefaultMaxResults caps one lookup when no limit is configured.
const DefaultMaxResults = 10000

// Config holds the Badger store parameters.
type Config struct {
	// Dir is the data directory; ignored when InMemory is set.
	Dir        string
	InMemory   bool
	MaxResults int
	Logger     *zap.Logger
}

// Store is the Badger-backed record store.
type Store struct {
	db         *badger.DB
	maxResults int
	logger     *zap.Logger
	now        func() time.Time
}

// zapLogger adapts zap to badger.Logger. Badger's info chatter is logged at debug.
type zapLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapLogger)(nil)

func (l *zapLogger) Errorf(msg string, items ...any)   { l.s.Errorf(msg, items...) }
func (l *zapLogger) Warningf(msg string, items ...any) { l.s.Warnf(msg, items...) }
func (l *zapLogger) Infof(msg string, items ...any)    { l.s.Debugf(msg, items...) }
func (l *zapLogger) Debugf(msg string, items ...any)   { l.s.Debugf(msg, items...) }

// Open opens the database described by cfg, creating the directory if needed.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errors.New("dir is required unless in memory")
		}
		if err := ensureDir(cfg.Dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts.Logger = &zapLogger{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Store{db: db, maxResults: maxResults, logger: logger, now: time.Now}, nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}
