// Package config loads the sentiboard configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"sentiboard/internal/util"
)

// Cache backend names accepted by cache.backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for sentiboard.
type Config struct {
	Server    Server    `yaml:"server"`
	Generator Generator `yaml:"generator"`
	Cache     Cache     `yaml:"cache"`
	Logging   Logging   `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Generator controls the synthetic data feed.
type Generator struct {
	// Seed fixes the random source when non-zero; zero seeds it randomly
	// per process.
	Seed uint64 `yaml:"seed"`
	// KeepProbability is the coin-flip chance that a catalog post without
	// a ticker mention is kept anyway.
	KeepProbability float64 `yaml:"keep_probability"`
	// Tickers is the universe shown in the UI selector and used for the
	// mention-frequency table.
	Tickers []string `yaml:"tickers"`
}

// Cache selects and tunes the memoization cache backend.
type Cache struct {
	Backend    string   `yaml:"backend"`
	Capacity   int      `yaml:"capacity"`
	TTL        Duration `yaml:"ttl"`
	SQLitePath string   `yaml:"sqlite_path"`
	Redis      Redis    `yaml:"redis"`
}

// Redis holds connection settings for the redis cache backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Duration wraps time.Duration so YAML values like "90s" or "1h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Defaults returns the configuration used when no file or overrides are
// present. The server runs out of the box on these values.
func Defaults() *Config {
	return &Config{
		Server: Server{
			Addr:           ":8090",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Generator: Generator{
			Seed:            0,
			KeepProbability: 0.5,
			Tickers: []string{
				"AAPL", "TSLA", "GOOGL", "MSFT", "AMZN", "NVDA", "META", "NFLX",
			},
		},
		Cache: Cache{
			Backend:    BackendMemory,
			Capacity:   128,
			TTL:        Duration(time.Hour),
			SQLitePath: "sentiboard-cache.db",
			Redis:      Redis{Addr: "localhost:6379"},
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the YAML configuration file at the given path over the
// defaults, then applies environment variable overrides and validates the
// result. A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	// Best-effort .env loading; a missing file is fine.
	_ = godotenv.Load()

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENTIBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SENTIBOARD_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Generator.Seed = n
		}
	}
	if v := os.Getenv("SENTIBOARD_KEEP_PROBABILITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Generator.KeepProbability = f
		}
	}
	if v := os.Getenv("SENTIBOARD_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SENTIBOARD_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Capacity = n
		}
	}
	if v := os.Getenv("SENTIBOARD_SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("SENTIBOARD_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("SENTIBOARD_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("SENTIBOARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate rejects configurations the rest of the system cannot run with.
func (c *Config) Validate() error {
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
		// A zero-burst limiter admits nothing; every API call would 429.
		return fmt.Errorf("server.rate_limit_burst must be positive when server.rate_limit_rps > 0, got %d", c.Server.RateLimitBurst)
	}
	if p := c.Generator.KeepProbability; p < 0 || p > 1 {
		return fmt.Errorf("generator.keep_probability %v outside [0, 1]", p)
	}
	if len(c.Generator.Tickers) == 0 {
		return errors.New("generator.tickers must not be empty")
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	if _, ok := util.ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
