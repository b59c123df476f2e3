// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package config loads dbinit command configuration from an optional YAML
// file, then applies DBINIT_* environment overrides.
package config
