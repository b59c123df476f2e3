// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mdhender/dbinit"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the dbinit command.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`

	// Timeout bounds a whole command run. Default: 30s.
	Timeout time.Duration `yaml:"timeout" env:"DBINIT_TIMEOUT"`
}

// EngineConfig mirrors dbinit.EngineConfig.
type EngineConfig struct {
	Driver                  string `yaml:"driver" env:"DBINIT_DRIVER"`
	OriginPrivateRoot       string `yaml:"opfs_root" env:"DBINIT_OPFS_ROOT"`
	Origin                  string `yaml:"origin" env:"DBINIT_ORIGIN"`
	Dir                     string `yaml:"dir" env:"DBINIT_DIR"`
	ProductionEnvVar        string `yaml:"production_env_var" env:"DBINIT_PRODUCTION_ENV_VAR"`
	AllowMemoryInProduction bool   `yaml:"allow_memory_in_production" env:"DBINIT_ALLOW_MEMORY_IN_PRODUCTION"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DBINIT_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"DBINIT_LOG_FORMAT"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Timeout: 30 * time.Second,
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the command cannot use.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q: expected text or json", c.Logging.Format)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// NewLogger builds the slog logger described by the logging section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// EngineConfig converts the engine section for dbinit.
func (e EngineConfig) EngineConfig(logger *slog.Logger) dbinit.EngineConfig {
	return dbinit.EngineConfig{
		Driver:                  e.Driver,
		OriginPrivateRoot:       e.OriginPrivateRoot,
		Origin:                  e.Origin,
		Dir:                     e.Dir,
		ProductionEnvVar:        e.ProductionEnvVar,
		AllowMemoryInProduction: e.AllowMemoryInProduction,
		Logger:                  logger,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging.level %q: %w", s, err)
	}
	return level, nil
}
