package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("expected sqlite default driver, got %q", cfg.Database.Driver)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.TokenTTL() != 24*time.Hour {
		t.Fatalf("expected 24h token TTL, got %v", cfg.TokenTTL())
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  port: "9090"
  cors_origins: ["https://admin.example.com"]
database:
  driver: postgres
  host: db.internal
  name: quizzes
redis:
  addr: "localhost:6379"
  session_cache_ttl: 5m
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SESSION_CACHE_TTL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port to win, got %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.Host != "db.internal" {
		t.Fatalf("expected postgres settings from file, got %+v", cfg.Database)
	}
	if cfg.SessionCacheTTL() != 5*time.Minute {
		t.Fatalf("expected 5m cache TTL, got %v", cfg.SessionCacheTTL())
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://admin.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"empty port", func(c *Config) { c.Server.Port = "" }, "port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "path"},
		{"postgres without host", func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.Host = ""
		}, "host"},
		{"default secret in production", func(c *Config) { c.Server.Env = "production" }, "production"},
		{"bad token ttl", func(c *Config) { c.Auth.TokenTTL = "soon" }, "token TTL"},
		{"bad cache ttl", func(c *Config) { c.Redis.SessionCacheTTL = "later" }, "cache TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: DriverSQLite, Path: "data/app.db"}
	if got := sqlite.DSN(); got != "data/app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Fatalf("unexpected sqlite dsn %q", got)
	}

	pg := DatabaseConfig{Driver: DriverPostgres, Host: "h", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable"}
	if got := pg.DSN(); !strings.HasPrefix(got, "host=h user=u password=p dbname=n port=5432") {
		t.Fatalf("unexpected postgres dsn %q", got)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := Duration("nope", time.Second); got != time.Second {
		t.Fatalf("expected fallback on garbage, got %v", got)
	}
	if got := Duration("2m", time.Second); got != 2*time.Minute {
		t.Fatalf("expected 2m, got %v", got)
	}
}
