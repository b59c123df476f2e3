// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package dbinit

import (
	"fmt"
	"strings"
)

// Mode is an open-mode token made of flag letters.
//
//	c  create if missing, open read/write
//	w  open read/write, the database must exist
//	r  open read-only
//	t  trace every SQL statement to the informational sink
//
// The empty token is the same as "c".
type Mode string

// DefaultMode is the mode used for the generic backend.
const DefaultMode Mode = "ct"

// ParseMode validates a mode token.
func ParseMode(s string) (Mode, error) {
	seen := make(map[rune]bool, len(s))
	for _, ch := range s {
		switch ch {
		case 'c', 'w', 'r', 't':
		default:
			return "", fmt.Errorf("mode %q: unknown flag %q", s, ch)
		}
		if seen[ch] {
			return "", fmt.Errorf("mode %q: repeated flag %q", s, ch)
		}
		seen[ch] = true
	}
	if seen['r'] && (seen['w'] || seen['c']) {
		return "", fmt.Errorf("mode %q: read-only cannot be combined with write or create", s)
	}
	return Mode(s), nil
}

// Create reports whether the database is created when missing.
func (m Mode) Create() bool {
	return m.has('c') || !(m.has('w') || m.has('r'))
}

// ReadOnly reports whether the database is opened read-only.
func (m Mode) ReadOnly() bool {
	return m.has('r')
}

// Trace reports whether SQL statements are written to the informational sink.
func (m Mode) Trace() bool {
	return m.has('t')
}

// uriMode returns the SQLite URI "mode" parameter for m.
func (m Mode) uriMode() string {
	switch {
	case m.ReadOnly():
		return "ro"
	case m.Create():
		return "rwc"
	default:
		return "rw"
	}
}

func (m Mode) has(flag byte) bool {
	return strings.IndexByte(string(m), flag) >= 0
}
