package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/backend"
	"github.com/kailas-cloud/strindex/internal/config"
	logpkg "github.com/kailas-cloud/strindex/internal/logger"
	"github.com/kailas-cloud/strindex/internal/metrics"
	chiTransport "github.com/kailas-cloud/strindex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/strindex/internal/usecase/health"
	nlqueryuc "github.com/kailas-cloud/strindex/internal/usecase/nlquery"
	recorduc "github.com/kailas-cloud/strindex/internal/usecase/record"
	"github.com/kailas-cloud/strindex/internal/version"
)

type serveOptions struct {
	env        string
	configPath string
	port       int
	driver     string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Loads config/<env>.yaml (or --config), connects to the configured store and
serves the strings API until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.env, "env", config.GetEnv(), "environment name (local, dev, docker, prod)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a config file, overrides --env lookup")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "HTTP port, overrides http.port")
	cmd.Flags().StringVar(&opts.driver, "driver", "", "database driver, overrides database.driver")
	return cmd
}

func loadConfig(opts *serveOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		var data []byte
		data, err = os.ReadFile(filepath.Clean(opts.configPath))
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to read config %s: %w", opts.configPath, err)
		}
		cfg, err = config.Parse(data)
	} else {
		cfg, err = config.Load(opts.env)
	}
	if err != nil {
		return config.Config{}, err
	}

	if opts.port == 0 && opts.driver == "" {
		return cfg, nil
	}
	if opts.port != 0 {
		cfg.HTTP.Port = opts.port
	}
	if opts.driver != "" {
		cfg.Database.Driver = opts.driver
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting strindex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("db_path", cfg.Database.Path),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	be, err := backend.Open(ctx, backend.FromConfig(&cfg), logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Error("Error closing store", zap.Error(err))
		}
	}()
	logger.Info("Connected to database", zap.String("driver", be.Driver))

	records := recorduc.New(be.Repository, nlqueryuc.NewInstrumentedTranslator(logger))
	health := healthuc.New(be.Components...)
	server := chiTransport.NewServer(records, health, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(chiTransport.Options{APIKeys: cfg.Auth.APIKeys}),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
