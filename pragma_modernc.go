// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build !mattn

package dbinit

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const (
	driverName    = "sqlite"
	driverPackage = "modernc.org/sqlite"
)

// pragma represents a SQLite pragma setting.
type pragma struct {
	name  string
	value string
}

// memoryPragmas are used for in-memory generic databases.
var memoryPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "busy_timeout", value: "5000"},
	{name: "journal_mode", value: "MEMORY"},
	{name: "synchronous", value: "OFF"},
	{name: "temp_store", value: "MEMORY"},
}

// persistentPragmas are used for file-backed databases opened for writing.
var persistentPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "busy_timeout", value: "5000"},
	{name: "journal_mode", value: "WAL"},
	{name: "synchronous", value: "NORMAL"},
	{name: "temp_store", value: "FILE"},
}

// readOnlyPragmas avoid pragmas that write to the database file.
var readOnlyPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "busy_timeout", value: "5000"},
}

// buildDSN constructs a DSN for modernc.org/sqlite.
// modernc uses the syntax: file:path?mode=rwc&_pragma=name(value)&_pragma=name2(value2)
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
		fmt.Fprintf(&sb, "_pragma=%s(%s)", p.name, p.value)
		sep = "&"
	}
	return sb.String()
}
