// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Command dbinit opens, probes or removes the db.sqlite database the way an
// application using package dbinit would.
//
// Usage:
//
//	dbinit [-config dbinit.yaml] [open|probe|rm|version]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mdhender/dbinit"
	"github.com/mdhender/dbinit/internal/config"
)

func main() {
	fs := flag.NewFlagSet("dbinit", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := run(ctx, cfg, fs.Arg(0), os.Stdout, os.Stderr); err != nil {
		exitf("Error: %v", err)
	}
}

// run executes one command. Logs go to stderr, results to stdout.
func run(ctx context.Context, cfg *config.Config, command string, stdout, stderr io.Writer) error {
	logger := cfg.NewLogger(stderr)
	dcfg := dbinit.Config{
		EngineConfig: cfg.Engine.EngineConfig(logger),
		Logger:       logger,
	}

	switch command {
	case "", "open":
		db := dbinit.Initialize(ctx, dcfg)
		if db == nil {
			return errors.New("no database handle (see log)")
		}
		defer db.Close()
		fmt.Fprintf(stdout, "backend: %s\n", db.Backend())
		fmt.Fprintf(stdout, "path:    %s\n", displayPath(db.Path()))
		fmt.Fprintf(stdout, "mode:    %s\n", db.Mode())
		fmt.Fprintf(stdout, "engine:  %s\n", db.EngineVersion())
		return nil
	case "probe":
		report, err := dbinit.Probe(ctx, dcfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "engine:  %s\n", report.EngineVersion)
		fmt.Fprintf(stdout, "opfs:    %t\n", report.OriginPrivate)
		fmt.Fprintf(stdout, "backend: %s\n", report.Backend)
		fmt.Fprintf(stdout, "path:    %s\n", displayPath(report.Path))
		fmt.Fprintf(stdout, "exists:  %t\n", report.Exists)
		return nil
	case "rm":
		return dbinit.Remove(ctx, dcfg)
	case "version":
		fmt.Fprintln(stdout, dbinit.BuildInfo())
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

func displayPath(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}

// exitf writes a formatted error message to stderr and exits with code 1.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
