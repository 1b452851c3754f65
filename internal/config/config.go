// Package config loads server settings from flags, KETA_* environment
// variables, an optional config file and defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/keta/internal/logging"
	"github.com/dfryer1193/keta/shared/db"
	"github.com/dfryer1193/keta/shared/db/bolt"
	"github.com/dfryer1193/keta/shared/db/memory"
	"github.com/dfryer1193/keta/shared/db/sqlite"
	"github.com/spf13/viper"
)

const envPrefix = "KETA"

// Keys shared by viper, flags and config files.
const (
	KeyConfig      = "config"
	KeyDB          = "db"
	KeyEngine      = "engine"
	KeyBind        = "bind"
	KeyLimit       = "limit"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeyLogFile     = "log-file"
	KeyBoltTimeout = "bolt-timeout"
)

const (
	EngineBolt   = "bolt"
	EngineSQLite = "sqlite"
	EngineMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// DB is the database path. Empty selects the engine's own default.
	DB     string `mapstructure:"db"`
	Engine string `mapstructure:"engine"`
	Bind   string `mapstructure:"bind"`
	// Limit is the largest accepted request body, in kilobytes.
	Limit       int           `mapstructure:"limit"`
	LogLevel    string        `mapstructure:"log-level"`
	LogFormat   string        `mapstructure:"log-format"`
	LogFile     string        `mapstructure:"log-file"`
	BoltTimeout time.Duration `mapstructure:"bolt-timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Engine:      EngineBolt,
		Bind:        "127.0.0.1:8888",
		Limit:       4096,
		LogLevel:    "info",
		LogFormat:   logging.FormatConsole,
		BoltTimeout: time.Second,
	}
}

// NewViper returns a viper instance with defaults and environment lookup
// set up. Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyDB, defaults.DB)
	v.SetDefault(KeyEngine, defaults.Engine)
	v.SetDefault(KeyBind, defaults.Bind)
	v.SetDefault(KeyLimit, defaults.Limit)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyLogFormat, defaults.LogFormat)
	v.SetDefault(KeyLogFile, defaults.LogFile)
	v.SetDefault(KeyBoltTimeout, defaults.BoltTimeout)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file named by the "config" key, if any, and
// decodes the merged settings.
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Engine {
	case EngineBolt, EngineSQLite, EngineMemory:
	default:
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidConfig, c.Engine)
	}

	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.Bind == "" {
		return fmt.Errorf("%w: bind address cannot be empty", ErrInvalidConfig)
	}

	return nil
}

// LimitBytes is the request body limit in bytes.
func (c *Config) LimitBytes() int64 {
	return int64(c.Limit) * 1024
}

func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		File:   c.LogFile,
	}
}

// NewDatabase builds the configured engine. The database is not connected.
func (c *Config) NewDatabase() (db.Database, error) {
	switch c.Engine {
	case EngineBolt:
		boltCfg := bolt.NewBoltConfig()
		if c.DB != "" {
			boltCfg.Path = c.DB
		}
		boltCfg.Timeout = c.BoltTimeout
		return bolt.NewBoltDB(boltCfg), nil
	case EngineSQLite:
		sqliteCfg := sqlite.NewSQLiteConfig()
		if c.DB != "" {
			sqliteCfg.Path = c.DB
		}
		return sqlite.NewSQLiteDB(sqliteCfg), nil
	case EngineMemory:
		return memory.NewMemoryDB(), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidConfig, c.Engine)
	}
}
