// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package dbinit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/idna"
)

// BackendKind identifies a storage backend.
type BackendKind int

const (
	// Generic is the fallback backend: a file in a directory, or memory.
	Generic BackendKind = iota
	// OriginPrivate is the per-origin sandboxed persistent backend.
	OriginPrivate
)

func (k BackendKind) String() string {
	switch k {
	case Generic:
		return "generic"
	case OriginPrivate:
		return "opfs"
	}
	return fmt.Sprintf("BackendKind(%d)", int(k))
}

// Backend opens named databases on one kind of storage.
type Backend interface {
	Kind() BackendKind
	// Path returns the file that holds the named database,
	// or "" when the backend keeps it in memory.
	Path(name string) (string, error)
	Open(ctx context.Context, name string) (*Handle, error)
}

// originPrivateMode is the mode the origin-private backend always opens with.
const originPrivateMode Mode = "c"

// originPrivateBackend stores databases under <root>/<origin key>.
type originPrivateBackend struct {
	opener *opener
	dir    string
}

func (b *originPrivateBackend) Kind() BackendKind {
	return OriginPrivate
}

func (b *originPrivateBackend) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(b.dir, name), nil
}

func (b *originPrivateBackend) Open(ctx context.Context, name string) (*Handle, error) {
	path, err := b.Path(name)
	if err != nil {
		return nil, err
	}
	created := !isDirectory(b.dir)
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create origin directory: %w", err)
	}
	if isDirectory(path) {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}

	dsn := buildDSN(uriPath(path), []string{"mode=" + originPrivateMode.uriMode()}, persistentPragmas)
	h, err := b.opener.open(ctx, &Handle{
		name:    name,
		path:    path,
		backend: OriginPrivate,
		mode:    originPrivateMode,
	}, dsn)
	if err != nil && created {
		// only removes the directory if the failed open left it empty
		_ = os.Remove(b.dir)
	}
	return h, err
}

// genericBackend stores databases in dir, or in memory when dir is empty.
type genericBackend struct {
	opener        *opener
	dir           string
	mode          Mode
	memoryAllowed bool
	productionVar string
}

func (b *genericBackend) Kind() BackendKind {
	return Generic
}

func (b *genericBackend) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if b.dir == "" {
		return "", nil
	}
	return filepath.Join(b.dir, name), nil
}

func (b *genericBackend) Open(ctx context.Context, name string) (*Handle, error) {
	if _, err := ParseMode(string(b.mode)); err != nil {
		return nil, err
	}
	path, err := b.Path(name)
	if err != nil {
		return nil, err
	}
	h := &Handle{
		name:    name,
		path:    path,
		backend: Generic,
		mode:    b.mode,
	}

	if path == "" {
		if !b.memoryAllowed {
			return nil, fmt.Errorf("in-memory database not allowed in production (%s=production)", b.productionVar)
		}
		if b.mode.ReadOnly() {
			return nil, fmt.Errorf("mode %q: read-only requires a directory", b.mode)
		}
		// each handle gets its own database; the pool's connections share it
		target := name + "-" + uuid.NewString()
		b.opener.logger.Info("DB mode: in-memory", "name", name, "target", target)
		dsn := buildDSN(uriPath(target), []string{"mode=memory", "cache=shared"}, memoryPragmas)
		return b.opener.open(ctx, h, dsn)
	}

	if !isDirectory(b.dir) {
		return nil, fmt.Errorf("%s: directory does not exist", b.dir)
	}
	if isDirectory(path) {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}
	if !b.mode.Create() && !fileExists(path) {
		return nil, fmt.Errorf("%s: database file not found (mode %q does not create)", path, b.mode)
	}

	pragmas := persistentPragmas
	if b.mode.ReadOnly() {
		pragmas = readOnlyPragmas
	}
	b.opener.logger.Info("DB mode: persistent", "path", path)
	dsn := buildDSN(uriPath(path), []string{"mode=" + b.mode.uriMode()}, pragmas)
	return b.opener.open(ctx, h, dsn)
}

// opener turns a DSN into a pinged Handle for a loaded engine.
type opener struct {
	driver  string
	version string
	out     Output
	logger  *slog.Logger
}

// open completes h with a connection pool for dsn.
func (o *opener) open(ctx context.Context, h *Handle, dsn string) (*Handle, error) {
	o.logger.Debug("opening database", "backend", h.backend, "dsn", dsn)

	var db *sql.DB
	var err error
	if h.mode.Trace() {
		db, err = openTraced(o.driver, dsn, o.out.Print)
	} else {
		db, err = sql.Open(o.driver, dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// Ensure cleanup on error
	success := false
	defer func() {
		if !success {
			db.Close()
		}
	}()

	// SQLite works best with limited connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	h.DB = db
	h.engineVersion = o.version
	success = true
	return h, nil
}

// validateName checks that name is a bare file name.
func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("database name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("%q: invalid database name", name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("%q: database name must not contain path separators", name)
	}
	return nil
}

// uriPath escapes the characters that end the path part of a SQLite URI.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace

// originKey derives the sandbox directory name from an origin such as
// "https://Example.COM:8443". The opaque origin "null" maps to "null".
func originKey(origin string) (string, error) {
	if origin == "null" {
		return origin, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", fmt.Errorf("origin %q: expected scheme://host[:port]", origin)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", fmt.Errorf("origin %q: must not carry path, query, fragment or user info", origin)
	}
	host, err := idna.Lookup.ToASCII(u.Hostname())
	if err != nil {
		return "", fmt.Errorf("origin %q: %w", origin, err)
	}
	key := strings.ToLower(u.Scheme) + "_" + strings.ToLower(host)
	if port := u.Port(); port != "" {
		key += "_" + port
	}
	return key, nil
}
