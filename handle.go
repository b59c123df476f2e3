// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package dbinit

import "database/sql"

// Handle is an open database. It is owned by the caller, who must Close it.
type Handle struct {
	*sql.DB

	name          string
	path          string
	backend       BackendKind
	mode          Mode
	engineVersion string
}

// Name returns the database name passed to the backend.
func (h *Handle) Name() string { return h.name }

// Backend returns the kind of storage the database was opened on.
func (h *Handle) Backend() BackendKind { return h.backend }

// Path returns the database file, or "" for an in-memory database.
func (h *Handle) Path() string { return h.path }

// InMemory reports whether the database lives only in memory.
func (h *Handle) InMemory() bool { return h.path == "" }

// Mode returns the mode the database was opened with.
func (h *Handle) Mode() Mode { return h.mode }

// EngineVersion returns the SQLite version reported when the engine loaded.
func (h *Handle) EngineVersion() string { return h.engineVersion }
