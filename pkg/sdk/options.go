package strindex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/strindex/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	db         config.DatabaseConfig
	keyPrefix  string
	maxResults int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey stores records in a Valkey instance with the search module.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverValkey
		c.db.Addrs = []string{addr}
		c.db.Password = password
	})
}

// WithRedis stores records in a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverRedis
		c.db.Addrs = []string{addr}
		c.db.Password = password
	})
}

// WithSQLite stores records in the SQLite file at path, created if missing.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverSQLite
		c.db.Path = path
	})
}

// WithBadger stores records in a Badger database under dir.
func WithBadger(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverBadger
		c.db.Path = dir
		c.db.InMemory = false
	})
}

// WithInMemory keeps records in an in-memory Badger database. Nothing survives Close.
func WithInMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverBadger
		c.db.Path = ""
		c.db.InMemory = true
	})
}

// WithKeyPrefix sets the Redis/Valkey key prefix. Default: "strindex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMaxResults caps the records returned by one lookup. Default: 10000.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithReadinessTimeout bounds the initial Redis/Valkey readiness wait. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.ReadinessTimeout = int(d.Round(time.Second) / time.Second)
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
