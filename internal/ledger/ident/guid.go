// Package ident holds the identifier and timestamp encodings shared by every
// table in a book file. Identifiers are 128-bit guids stored as 32-character
// lower-case hex; timestamps are stored as 14-digit YYYYMMDDHHMMSS strings.
package ident

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidFormat reports a malformed identifier or timestamp string.
// These always come from external input, so they are returned, never panicked.
var ErrInvalidFormat = fmt.Errorf("ident: invalid format")

// GUID identifies an account, commodity, transaction, split or slot owner.
// Comparisons use the 128-bit value, never a string form.
type GUID uuid.UUID

// NilGUID is the all-zero identifier. It marks "no reference" and maps to a
// NULL column at the storage boundary; it is never a valid lookup target.
var NilGUID GUID

// NewGUID returns a freshly generated random identifier.
func NewGUID() GUID {
	return GUID(uuid.New())
}

// ParseGUID accepts the compact 32-character form or the hyphenated
// 36-character form. Any other length is an invalid-format error.
func ParseGUID(s string) (GUID, error) {
	switch len(s) {
	case 32, 36:
	default:
		return NilGUID, fmt.Errorf("%w: guid %q has length %d, want 32 or 36", ErrInvalidFormat, s, len(s))
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return NilGUID, fmt.Errorf("%w: guid %q: %v", ErrInvalidFormat, s, err)
	}
	return GUID(u), nil
}

// Compact renders the 32-character lower-case hex form used in storage.
func (g GUID) Compact() string {
	return strings.ReplaceAll(uuid.UUID(g).String(), "-", "")
}

// Hyphenated renders the canonical 36-character form.
func (g GUID) Hyphenated() string {
	return uuid.UUID(g).String()
}

func (g GUID) String() string {
	return g.Compact()
}

// IsNil reports whether g is the all-zero "no reference" sentinel.
func (g GUID) IsNil() bool {
	return g == NilGUID
}

// NullCompact converts g for a nullable guid column: the nil sentinel
// becomes NULL, anything else its compact form.
func (g GUID) NullCompact() sql.NullString {
	if g.IsNil() {
		return sql.NullString{}
	}
	return sql.NullString{String: g.Compact(), Valid: true}
}

// GUIDFromNull converts a nullable guid column back: NULL becomes the nil
// sentinel, anything else must parse.
func GUIDFromNull(ns sql.NullString) (GUID, error) {
	if !ns.Valid {
		return NilGUID, nil
	}
	return ParseGUID(ns.String)
}
