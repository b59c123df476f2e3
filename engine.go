// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package dbinit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Output holds the sinks the engine writes its diagnostics to.
// Both sinks accept a variadic sequence of loggable values.
type Output struct {
	Print    func(args ...any)
	PrintErr func(args ...any)
}

// LoggerOutput routes Print to logger at Info level and PrintErr at Error level.
func LoggerOutput(logger *slog.Logger) Output {
	return Output{
		Print:    func(args ...any) { logger.Info(sprint(args...)) },
		PrintErr: func(args ...any) { logger.Error(sprint(args...)) },
	}
}

// sprint joins args with single spaces.
func sprint(args ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

// Engine loads the embedded SQL engine.
type Engine interface {
	Load(ctx context.Context, out Output) (Module, error)
}

// Module is a loaded engine. OriginPrivate is the capability probe: it
// returns false when the host has no origin-private storage.
type Module interface {
	Version() string
	OriginPrivate() (Backend, bool)
	Generic(mode Mode) Backend
}

// EngineConfig configures the default SQLite engine.
type EngineConfig struct {
	// Driver is the database/sql driver name. Defaults to the driver
	// selected at build time ("sqlite", or "sqlite3" with -tags mattn).
	Driver string

	// OriginPrivateRoot is the directory holding per-origin sandboxes.
	// The origin-private capability is present only when it names an
	// absolute, existing, writable directory.
	OriginPrivateRoot string

	// Origin scopes the origin-private sandbox, for example
	// "https://example.com". Default: "null".
	Origin string

	// Dir is the directory for the generic backend. When empty the generic
	// backend opens a named in-memory database.
	Dir string

	// ProductionEnvVar is the environment variable checked to determine
	// production mode. In production the in-memory generic backend is
	// rejected unless AllowMemoryInProduction is set. Default: "ENV".
	ProductionEnvVar string

	// AllowMemoryInProduction permits the in-memory generic backend in production.
	AllowMemoryInProduction bool

	// Logger for operational logging. Uses slog.Default() if nil.
	Logger *slog.Logger
}

// defaults returns a copy of cfg with default values applied.
func (cfg EngineConfig) defaults() EngineConfig {
	if cfg.Driver == "" {
		cfg.Driver = driverName
	}
	if cfg.Origin == "" {
		cfg.Origin = "null"
	}
	if cfg.ProductionEnvVar == "" {
		cfg.ProductionEnvVar = "ENV"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// isProduction returns true if the production environment variable is set.
func (cfg EngineConfig) isProduction() bool {
	return strings.EqualFold(os.Getenv(cfg.ProductionEnvVar), "production")
}

// SQLiteEngine is the default Engine, backed by a database/sql SQLite driver.
type SQLiteEngine struct {
	cfg EngineConfig
}

// NewEngine returns the default engine.
func NewEngine(cfg EngineConfig) *SQLiteEngine {
	return &SQLiteEngine{cfg: cfg.defaults()}
}

// Load verifies the driver is registered and answers a probe query, then
// checks for origin-private storage. It prints one line with the engine
// version to out.Print.
func (e *SQLiteEngine) Load(ctx context.Context, out Output) (Module, error) {
	cfg := e.cfg

	if !slices.Contains(sql.Drivers(), cfg.Driver) {
		return nil, fmt.Errorf("driver %q not registered (built with %s)", cfg.Driver, driverPackage)
	}

	probe, err := sql.Open(cfg.Driver, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	defer probe.Close()

	var version string
	if err := probe.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&version); err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	out.Print(fmt.Sprintf("SQLite version %s loaded (driver %s)", version, cfg.Driver))

	m := &module{
		cfg: cfg,
		opener: &opener{
			driver:  cfg.Driver,
			version: version,
			out:     out,
			logger:  cfg.Logger,
		},
	}

	if cfg.OriginPrivateRoot == "" {
		return m, nil
	}
	if err := probeOriginPrivateRoot(cfg.OriginPrivateRoot); err != nil {
		cfg.Logger.Debug("origin-private storage unavailable", "root", cfg.OriginPrivateRoot, "error", err)
		return m, nil
	}
	key, err := originKey(cfg.Origin)
	if err != nil {
		return nil, err
	}
	m.opfs = &originPrivateBackend{
		opener: m.opener,
		dir:    filepath.Join(cfg.OriginPrivateRoot, key),
	}
	return m, nil
}

// module is the loaded SQLite engine.
type module struct {
	cfg    EngineConfig
	opener *opener
	opfs   *originPrivateBackend // nil when the capability is absent
}

func (m *module) Version() string {
	return m.opener.version
}

func (m *module) OriginPrivate() (Backend, bool) {
	if m.opfs == nil {
		return nil, false
	}
	return m.opfs, true
}

func (m *module) Generic(mode Mode) Backend {
	return &genericBackend{
		opener:        m.opener,
		dir:           m.cfg.Dir,
		mode:          mode,
		memoryAllowed: !m.cfg.isProduction() || m.cfg.AllowMemoryInProduction,
		productionVar: m.cfg.ProductionEnvVar,
	}
}

// probeOriginPrivateRoot checks that root can hold origin sandboxes.
func probeOriginPrivateRoot(root string) error {
	if !filepath.IsAbs(root) {
		return fmt.Errorf("%s: root must be absolute", root)
	}
	if !isDirectory(root) {
		return fmt.Errorf("%s: not a directory", root)
	}
	f, err := os.CreateTemp(root, ".probe-*")
	if err != nil {
		return fmt.Errorf("%s: not writable: %w", root, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
