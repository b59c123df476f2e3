// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package dbinit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DatabaseName is the name of the database every backend opens.
const DatabaseName = "db.sqlite"

const instrumentationName = "github.com/mdhender/dbinit"

var (
	// ErrLoad reports that the engine could not be loaded.
	ErrLoad = errors.New("engine load failed")
	// ErrOpen reports that the selected backend could not open the database.
	ErrOpen = errors.New("database open failed")
)

// Config holds initialization options.
type Config struct {
	// Engine loads the embedded SQL engine. Defaults to NewEngine(EngineConfig).
	Engine Engine

	// EngineConfig configures the default engine. Ignored when Engine is set.
	EngineConfig EngineConfig

	// Logger for operational logging. Uses slog.Default() if nil.
	Logger *slog.Logger

	// Print and PrintErr receive the engine's informational and error
	// output. They default to Logger at Info and Error level.
	Print    func(args ...any)
	PrintErr func(args ...any)

	// TracerProvider creates the spans around load and open.
	// Uses the global provider if nil.
	TracerProvider trace.TracerProvider
}

// ConfigFromEnv returns a Config whose EngineConfig is read from DBINIT_*
// environment variables, for example DBINIT_OPFS_ROOT and DBINIT_DIR.
func ConfigFromEnv() (Config, error) {
	var vars engineEnv
	if err := env.ParseWithOptions(&vars, env.Options{Prefix: "DBINIT_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return Config{EngineConfig: vars.engineConfig()}, nil
}

// engineEnv holds the EngineConfig fields that can be set from the environment.
type engineEnv struct {
	Driver                  string `env:"DRIVER"`
	OriginPrivateRoot       string `env:"OPFS_ROOT"`
	Origin                  string `env:"ORIGIN"`
	Dir                     string `env:"DIR"`
	ProductionEnvVar        string `env:"PRODUCTION_ENV_VAR"`
	AllowMemoryInProduction bool   `env:"ALLOW_MEMORY_IN_PRODUCTION"`
}

func (e engineEnv) engineConfig() EngineConfig {
	return EngineConfig{
		Driver:                  e.Driver,
		OriginPrivateRoot:       e.OriginPrivateRoot,
		Origin:                  e.Origin,
		Dir:                     e.Dir,
		ProductionEnvVar:        e.ProductionEnvVar,
		AllowMemoryInProduction: e.AllowMemoryInProduction,
	}
}

// defaults returns a copy of cfg with default values applied.
func (cfg Config) defaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.EngineConfig.Logger == nil {
		cfg.EngineConfig.Logger = cfg.Logger
	}
	if cfg.Engine == nil {
		cfg.Engine = NewEngine(cfg.EngineConfig)
	}
	out := LoggerOutput(cfg.Logger)
	if cfg.Print == nil {
		cfg.Print = out.Print
	}
	if cfg.PrintErr == nil {
		cfg.PrintErr = out.PrintErr
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	return cfg
}

func (cfg Config) output() Output {
	return Output{Print: cfg.Print, PrintErr: cfg.PrintErr}
}

func (cfg Config) tracer() trace.Tracer {
	return cfg.TracerProvider.Tracer(instrumentationName)
}

// Initialize loads the engine and opens DatabaseName on the origin-private
// backend when the engine has one, otherwise on the generic backend with
// DefaultMode. On failure it writes the error to PrintErr once and returns nil.
// Every call repeats the whole sequence and returns an independent handle.
func Initialize(ctx context.Context, cfg Config) *Handle {
	cfg = cfg.defaults()
	h, err := Open(ctx, cfg)
	if err != nil {
		cfg.PrintErr(err)
		return nil
	}
	return h
}

// Open is Initialize with the failure returned instead of logged.
// The error matches ErrLoad or ErrOpen.
func Open(ctx context.Context, cfg Config) (h *Handle, err error) {
	cfg = cfg.defaults()

	ctx, span := cfg.tracer().Start(ctx, "dbinit.open",
		trace.WithAttributes(attribute.String("db.name", DatabaseName)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	mod, err := load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend := selectBackend(mod)
	span.SetAttributes(attribute.String("dbinit.backend", backend.Kind().String()))
	cfg.Logger.Debug("backend selected", "backend", backend.Kind(), "name", DatabaseName)

	return openBackend(ctx, cfg, backend)
}

// Report describes the selection Initialize would make.
type Report struct {
	EngineVersion string
	OriginPrivate bool // capability present
	Backend       BackendKind
	Path          string // "" for in-memory storage
	Exists        bool
}

// Probe loads the engine and reports the backend selection without opening
// the database.
func Probe(ctx context.Context, cfg Config) (*Report, error) {
	cfg = cfg.defaults()

	mod, err := load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	_, hasOPFS := mod.OriginPrivate()
	backend := selectBackend(mod)

	path, err := backend.Path(DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return &Report{
		EngineVersion: mod.Version(),
		OriginPrivate: hasOPFS,
		Backend:       backend.Kind(),
		Path:          path,
		Exists:        path != "" && isRegularFile(path),
	}, nil
}

// Remove deletes the database Initialize would open, along with its
// journal and WAL sidecar files. Returns nil if the file does not exist.
func Remove(ctx context.Context, cfg Config) error {
	cfg = cfg.defaults()

	mod, err := load(ctx, cfg)
	if err != nil {
		return err
	}
	path, err := selectBackend(mod).Path(DatabaseName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if path == "" {
		return fmt.Errorf("cannot delete in-memory database")
	}

	var firstErr error
	for _, suffix := range []string{"", "-journal", "-shm", "-wal"} {
		name := path + suffix
		if !fileExists(name) {
			continue
		}
		if !isRegularFile(name) {
			err := fmt.Errorf("%s: not a regular file", name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(name); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("delete %s: %w", path, firstErr)
	}
	if fileExists(path) {
		return fmt.Errorf("%s: still exists after delete", path)
	}
	cfg.Logger.Info("database removed", "path", path)
	return nil
}

// load runs the engine's loader.
func load(ctx context.Context, cfg Config) (Module, error) {
	ctx, span := cfg.tracer().Start(ctx, "dbinit.engine.load")
	defer span.End()

	mod, err := cfg.Engine.Load(ctx, cfg.output())
	if err == nil && mod == nil {
		err = errors.New("engine returned no module")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	span.SetAttributes(attribute.String("db.engine.version", mod.Version()))
	return mod, nil
}

// selectBackend prefers origin-private storage.
func selectBackend(mod Module) Backend {
	if b, ok := mod.OriginPrivate(); ok {
		return b
	}
	return mod.Generic(DefaultMode)
}

// openBackend opens DatabaseName on b.
func openBackend(ctx context.Context, cfg Config, b Backend) (*Handle, error) {
	ctx, span := cfg.tracer().Start(ctx, "dbinit.backend.open",
		trace.WithAttributes(attribute.String("dbinit.backend", b.Kind().String())))
	defer span.End()

	h, err := b.Open(ctx, DatabaseName)
	if err == nil && h == nil {
		err = errors.New("backend returned no handle")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, b.Kind(), err)
	}
	cfg.Logger.Info("database opened", "backend", b.Kind(), "name", h.Name(), "path", h.Path())
	return h, nil
}

// File system helpers

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() || info.IsDir()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
