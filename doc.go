// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package dbinit loads an embedded SQLite engine and opens the database
// "db.sqlite" on the best storage backend the host offers.
//
// Backend selection is first-match:
//   - origin-private storage, when the engine reports the capability (a
//     per-origin sandbox directory under EngineConfig.OriginPrivateRoot)
//   - the generic backend otherwise, opened with mode "ct": create if
//     missing, read/write, trace statements to the informational sink
//
// # Basic Usage
//
//	db := dbinit.Initialize(ctx, dbinit.Config{
//	    EngineConfig: dbinit.EngineConfig{
//	        OriginPrivateRoot: "/var/lib/app/opfs",
//	        Origin:            "https://example.com",
//	    },
//	})
//	if db == nil {
//	    // the failure was written to the error sink
//	}
//	defer db.Close()
//
// Initialize logs a failure and returns nil. Open returns the failure
// instead; it matches ErrLoad or ErrOpen.
//
// # Driver Support
//
// This package supports two SQLite drivers via build tags:
//   - modernc.org/sqlite (default, pure Go, no CGO)
//   - github.com/mattn/go-sqlite3 (CGO, use -tags mattn)
//
// # Configuration
//
// Key EngineConfig fields (DBINIT_* variables with ConfigFromEnv):
//   - OriginPrivateRoot (DBINIT_OPFS_ROOT): enables origin-private storage
//   - Origin (DBINIT_ORIGIN): scopes the sandbox, default "null"
//   - Dir (DBINIT_DIR): generic backend directory; empty means in-memory
//   - ProductionEnvVar (DBINIT_PRODUCTION_ENV_VAR): in-memory storage is
//     rejected when this variable equals "production" (default: "ENV")
package dbinit
