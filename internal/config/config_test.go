package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		db      DatabaseConfig
		wantErr string
	}{
		{"valkey with addrs", DatabaseConfig{Driver: DriverValkey, Addrs: []string{"localhost:6379"}}, ""},
		{"redis with addrs", DatabaseConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}}, ""},
		{"redis without addrs", DatabaseConfig{Driver: DriverRedis}, "database.addrs is required"},
		{"redis negative db", DatabaseConfig{Driver: DriverRedis, Addrs: []string{"a:1"}, DB: -1}, "database.db"},
		{"sqlite with path", DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/s.db"}, ""},
		{"sqlite without path", DatabaseConfig{Driver: DriverSQLite}, "database.path is required for sqlite"},
		{"badger in memory", DatabaseConfig{Driver: DriverBadger, InMemory: true}, ""},
		{"badger with path", DatabaseConfig{Driver: DriverBadger, Path: "/tmp/b"}, ""},
		{"badger without path", DatabaseConfig{Driver: DriverBadger}, "database.path is required for badger"},
		{"unknown driver", DatabaseConfig{Driver: "mongo"}, `got "mongo"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database = tt.db
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MaxResults(t *testing.T) {
	cfg := validConfig()
	cfg.Query.MaxResults = -5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative max_results")
	}
	expected := "query.max_results must be positive, got -5"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverValkey {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "strindex:" {
		t.Errorf("expected KeyPrefix='strindex:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Query.MaxResults != DefaultMaxResults {
		t.Errorf("expected MaxResults=%d, got %d", DefaultMaxResults, cfg.Query.MaxResults)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: "SQLite", ReadinessTimeout: 15},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
		Query:    QueryConfig{MaxResults: 50},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected driver normalized to sqlite, got %q", cfg.Database.Driver)
	}
	if got := cfg.Database.ReadinessTimeoutDuration(); got != 15*time.Second {
		t.Errorf("expected readiness 15s, got %v", got)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Query.MaxResults != 50 {
		t.Errorf("expected MaxResults=50, got %d", cfg.Query.MaxResults)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("STRINDEX_TEST_PORT", "9191")
	data := []byte(`
http:
  port: ${STRINDEX_TEST_PORT}
database:
  driver: badger
  in_memory: true
query:
  max_results: ${STRINDEX_TEST_UNSET:-25}
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("expected port 9191, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.Driver != DriverBadger || !cfg.Database.InMemory {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Query.MaxResults != 25 {
		t.Errorf("expected max_results 25, got %d", cfg.Query.MaxResults)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	_, err := Parse([]byte("http:\n  port: 8080\ndatabase:\n  driver: sqlite\n"))
	if err == nil || !strings.HasPrefix(err.Error(), "invalid config:") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Setenv("DB_DRIVER", "badger")
	t.Setenv("DB_PATH", t.TempDir())

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != DriverBadger {
		t.Errorf("expected badger driver, got %q", cfg.Database.Driver)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
