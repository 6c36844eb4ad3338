package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentiboard.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9999"
  rate_limit_rps: 5
  rate_limit_burst: 10
generator:
  seed: 42
  keep_probability: 0.25
  tickers: [AAA, BBB]
cache:
  backend: sqlite
  capacity: 16
  ttl: 90s
  sqlite_path: "/tmp/sentiboard-test.db"
  redis:
    addr: "redis:6380"
    password: "secret"
    db: 2
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Server --
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9999")
	}
	if cfg.Server.RateLimitRPS != 5 {
		t.Errorf("Server.RateLimitRPS = %v, want 5", cfg.Server.RateLimitRPS)
	}
	if cfg.Server.RateLimitBurst != 10 {
		t.Errorf("Server.RateLimitBurst = %d, want 10", cfg.Server.RateLimitBurst)
	}

	// -- Generator --
	if cfg.Generator.Seed != 42 {
		t.Errorf("Generator.Seed = %d, want 42", cfg.Generator.Seed)
	}
	if cfg.Generator.KeepProbability != 0.25 {
		t.Errorf("Generator.KeepProbability = %v, want 0.25", cfg.Generator.KeepProbability)
	}
	if len(cfg.Generator.Tickers) != 2 || cfg.Generator.Tickers[0] != "AAA" {
		t.Errorf("Generator.Tickers = %v, want [AAA BBB]", cfg.Generator.Tickers)
	}

	// -- Cache --
	if cfg.Cache.Backend != BackendSQLite {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, BackendSQLite)
	}
	if cfg.Cache.Capacity != 16 {
		t.Errorf("Cache.Capacity = %d, want 16", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL.Std() != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 90s", cfg.Cache.TTL.Std())
	}
	if cfg.Cache.SQLitePath != "/tmp/sentiboard-test.db" {
		t.Errorf("Cache.SQLitePath = %q, want %q", cfg.Cache.SQLitePath, "/tmp/sentiboard-test.db")
	}
	if cfg.Cache.Redis.Addr != "redis:6380" {
		t.Errorf("Cache.Redis.Addr = %q, want %q", cfg.Cache.Redis.Addr, "redis:6380")
	}
	if cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache.Redis.DB = %d, want 2", cfg.Cache.Redis.DB)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error for missing file: %v", err)
	}

	def := Defaults()
	if cfg.Server.Addr != def.Server.Addr {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, def.Server.Addr)
	}
	if cfg.Generator.KeepProbability != 0.5 {
		t.Errorf("Generator.KeepProbability = %v, want 0.5", cfg.Generator.KeepProbability)
	}
	if len(cfg.Generator.Tickers) != 8 {
		t.Errorf("default universe has %d tickers, want 8", len(cfg.Generator.Tickers))
	}
	if cfg.Cache.Backend != BackendMemory {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, BackendMemory)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
generator:
  seed: 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Generator.Seed != 7 {
		t.Errorf("Generator.Seed = %d, want 7", cfg.Generator.Seed)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Generator.KeepProbability != 0.5 {
		t.Errorf("Generator.KeepProbability = %v, want default 0.5", cfg.Generator.KeepProbability)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, ":8090")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":7070"
cache:
  backend: memory
  redis:
    addr: "file:6379"
`)

	t.Setenv("SENTIBOARD_ADDR", ":6060")
	t.Setenv("SENTIBOARD_CACHE_BACKEND", "redis")
	t.Setenv("SENTIBOARD_REDIS_ADDR", "env:6379")
	t.Setenv("SENTIBOARD_SEED", "99")
	t.Setenv("SENTIBOARD_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Addr != ":6060" {
		t.Errorf("Server.Addr = %q, want %q (env override)", cfg.Server.Addr, ":6060")
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("Cache.Backend = %q, want %q (env override)", cfg.Cache.Backend, BackendRedis)
	}
	if cfg.Cache.Redis.Addr != "env:6379" {
		t.Errorf("Cache.Redis.Addr = %q, want %q (env override)", cfg.Cache.Redis.Addr, "env:6379")
	}
	if cfg.Generator.Seed != 99 {
		t.Errorf("Generator.Seed = %d, want 99 (env override)", cfg.Generator.Seed)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "warn")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"keep probability above 1", func(c *Config) { c.Generator.KeepProbability = 1.5 }},
		{"keep probability below 0", func(c *Config) { c.Generator.KeepProbability = -0.1 }},
		{"empty universe", func(c *Config) { c.Generator.Tickers = nil }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"zero capacity", func(c *Config) { c.Cache.Capacity = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"zero burst with limiter on", func(c *Config) { c.Server.RateLimitBurst = 0 }},
		{"negative burst with limiter on", func(c *Config) { c.Server.RateLimitBurst = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	if err := Defaults().Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}

	// Burst is irrelevant while the limiter itself is disabled.
	cfg := Defaults()
	cfg.Server.RateLimitRPS = 0
	cfg.Server.RateLimitBurst = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with limiter disabled: %v", err)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
cache:
  ttl: "not-a-duration"
`)

	if _, err := Load(path); err == nil {
		t.Error("Load() = nil error for invalid ttl, want error")
	}
}
