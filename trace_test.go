// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package dbinit

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenTraced(t *testing.T) {
	ctx := context.Background()
	var lines []string
	print := func(args ...any) { lines = append(lines, sprint(args...)) }

	dsn := buildDSN(filepath.Join(t.TempDir(), DatabaseName), []string{"mode=rwc"}, persistentPragmas)
	db, err := openTraced(driverName, dsn, print)
	if err != nil {
		t.Fatalf("openTraced: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE t (x INTEGER)`,
		`INSERT INTO t VALUES (?)`,
	}
	if _, err := db.ExecContext(ctx, queries[0]); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := db.ExecContext(ctx, queries[1], 7); err != nil {
		t.Fatalf("exec with args: %v", err)
	}
	var x int
	if err := db.QueryRowContext(ctx, `SELECT x FROM t`).Scan(&x); err != nil {
		t.Fatalf("query: %v", err)
	}
	if x != 7 {
		t.Errorf("expected 7, got %d", x)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM t`); err != nil {
		t.Fatalf("exec in tx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	for _, q := range append(queries, `SELECT x FROM t`, `DELETE FROM t`) {
		count := 0
		for _, line := range lines {
			if line == "SQL TRACE "+q {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected %q traced once, got %d in %v", q, count, lines)
		}
	}
}

func TestOpenTracedUnknownDriver(t *testing.T) {
	if _, err := openTraced("no-such-driver", "file:x", func(...any) {}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
