package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/weightstats/pkg"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

var ErrUnknownEnv = errors.New("unknown env")

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StoreFile     StoreBackend = "file"
	StoreSQLite   StoreBackend = "sqlite"
	StoreRedis    StoreBackend = "redis"
	StorePostgres StoreBackend = "postgres"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsHost string `toml:"metrics_host"`
	MetricsPort int    `toml:"metrics_port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	StoreBackend StoreBackend `toml:"store_backend"`
	StoreCodec   string       `toml:"store_codec"`
	FileStore    string       `toml:"file_store_path"`
	SQLiteStore  string       `toml:"sqlite_store_path"`
	StoreKey     string       `toml:"store_key"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// weight
	DefaultTarget     float64 `toml:"default_target"`
	TrendWindow       int     `toml:"trend_window"`
	AxisMargin        float64 `toml:"axis_margin"`
	PartialGoalOffset float64 `toml:"partial_goal_offset"`
	Language          string  `toml:"language"`
	Timezone          string  `toml:"timezone"`
	ChartCacheSizeMB  int     `toml:"chart_cache_size_mb"`
	// http
	WriteRateLimitPerMin int      `toml:"write_rate_limit_per_min"`
	AllowedOrigins       []string `toml:"allowed_origins"`
}

// Secrets are never kept in the config file.
type Secrets struct {
	APITokenHash     string `env:"WEIGHT_API_TOKEN_HASH"`
	RedisPassword    string `env:"WEIGHT_REDIS_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED" envDefault:"false"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnv, env)
	}
}

// Defaults returns the configuration used when a field is left out of the file.
func Defaults() Config {
	return Config{
		Environment:          "development",
		Host:                 "localhost",
		Port:                 8080,
		MetricsHost:          "localhost",
		MetricsPort:          2112,
		LogLevel:             "info",
		LogToStdout:          true,
		StoreBackend:         StoreFile,
		StoreCodec:           "json",
		FileStore:            "./data/weights.json",
		SQLiteStore:          "./data/weights.db",
		StoreKey:             "app-weight-tracker",
		RedisHost:            "localhost",
		RedisPort:            "6379",
		PostgresHost:         "localhost",
		PostgresPort:         "5432",
		PostgresDBName:       "weightstats",
		DefaultTarget:        90,
		TrendWindow:          10,
		AxisMargin:           0,
		PartialGoalOffset:    10,
		Language:             "pt-BR",
		Timezone:             "UTC",
		ChartCacheSizeMB:     4,
		WriteRateLimitPerMin: 30,
	}
}

func Load(env, path string) (*Config, error) {
	exists, err := pkg.PathExists(path, false)
	if err != nil {
		return nil, fmt.Errorf("check config file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// sections are pre-filled so that missing keys keep their defaults
	dev, prod := Defaults(), Defaults()
	prod.Environment = "production"
	tomlCfg := &Toml{
		Development: &dev,
		Production:  &prod,
	}
	if _, err := toml.DecodeFile(path, tomlCfg); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}
	return cfg, nil
}

func LoadSecrets() (Secrets, error) {
	var secrets Secrets
	if err := env.Parse(&secrets); err != nil {
		return Secrets{}, fmt.Errorf("parse env: %w", err)
	}
	return secrets, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreFile, StoreSQLite, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	if c.DefaultTarget < 0 {
		return fmt.Errorf("default target must not be negative: %v", c.DefaultTarget)
	}
	if c.TrendWindow != 0 && c.TrendWindow < 2 {
		return fmt.Errorf("trend window must be at least 2: %d", c.TrendWindow)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used for bucketing observations.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultTargetWeight returns nil when no default target is configured.
func (c *Config) DefaultTargetWeight() *float64 {
	if c.DefaultTarget <= 0 {
		return nil
	}
	target := c.DefaultTarget
	return &target
}
