// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build mattn

package dbinit

import (
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const (
	driverName    = "sqlite3"
	driverPackage = "github.com/mattn/go-sqlite3"
)

// pragma represents a SQLite pragma setting.
type pragma struct {
	name  string
	value string
}

// memoryPragmas are used for in-memory generic databases.
var memoryPragmas = []pragma{
	{name: "_foreign_keys", value: "1"},
	{name: "_busy_timeout", value: "5000"},
	{name: "_journal_mode", value: "MEMORY"},
	{name: "_synchronous", value: "OFF"},
}

// persistentPragmas are used for file-backed databases opened for writing.
var persistentPragmas = []pragma{
	{name: "_foreign_keys", value: "1"},
	{name: "_busy_timeout", value: "5000"},
	{name: "_journal_mode", value: "WAL"},
	{name: "_synchronous", value: "NORMAL"},
}

// readOnlyPragmas avoid pragmas that write to the database file.
var readOnlyPragmas = []pragma{
	{name: "_foreign_keys", value: "1"},
	{name: "_busy_timeout", value: "5000"},
}

// buildDSN constructs a DSN for github.com/mattn/go-sqlite3.
// mattn uses the syntax: file:path?mode=rwc&_foreign_keys=1&_journal_mode=WAL
func buildDSN(target string, params []string, pragmas []pragma) string {
	var sb strings.Builder
	sb.WriteString("file:")
	sb.WriteString(target)
	sep := "?"
	for _, p := range params {
		sb.WriteString(sep)
		sb.WriteString(p)
		sep = "&"
	}
	for _, p := range pragmas {
		sb.WriteString(sep)
		fmt.Fprintf(&sb, "%s=%s", p.name, p.value)
		sep = "&"
	}
	return sb.String()
}
