// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.Timeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.Engine.OriginPrivateRoot != "" {
		t.Errorf("expected no origin-private root, got %q", cfg.Engine.OriginPrivateRoot)
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load("testdata/dbinit.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.OriginPrivateRoot != "/var/lib/dbinit/opfs" {
		t.Errorf("unexpected opfs_root %q", cfg.Engine.OriginPrivateRoot)
	}
	if cfg.Engine.Origin != "https://example.com" || cfg.Engine.Dir != "/var/lib/dbinit/data" {
		t.Errorf("unexpected engine section %+v", cfg.Engine)
	}
	if cfg.Logging.Format != "json" || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("DBINIT_DIR", "/tmp/override")
	t.Setenv("DBINIT_TIMEOUT", "2m")

	cfg, err := Load("testdata/dbinit.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Dir != "/tmp/override" {
		t.Errorf("expected env override for dir, got %q", cfg.Engine.Dir)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("expected env override for timeout, got %s", cfg.Timeout)
	}
	if cfg.Engine.Origin != "https://example.com" {
		t.Errorf("file value should survive, got %q", cfg.Engine.Origin)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := map[string]string{
		"missing":     filepath.Join(dir, "missing.yaml"),
		"bad yaml":    write("bad.yaml", "engine: [unclosed"),
		"bad level":   write("level.yaml", "logging:\n  level: loud\n"),
		"bad format":  write("format.yaml", "logging:\n  format: xml\n"),
		"bad timeout": write("timeout.yaml", "timeout: -1s\n"),
	}
	for name, path := range tests {
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadEnvError(t *testing.T) {
	t.Setenv("DBINIT_TIMEOUT", "soon")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Logging = LoggingConfig{Level: "warn", Format: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected json warn line, got %q", out)
	}
}

func TestEngineConfig(t *testing.T) {
	e := EngineConfig{OriginPrivateRoot: "/opfs", Origin: "https://a.example", AllowMemoryInProduction: true}
	got := e.EngineConfig(nil)
	if got.OriginPrivateRoot != "/opfs" || got.Origin != "https://a.example" || !got.AllowMemoryInProduction {
		t.Errorf("unexpected conversion %+v", got)
	}
}
