package ident

import (
	"database/sql"
	"fmt"
	"time"
)

// TimestampLayout is the fixed 14-digit on-disk datetime format,
// e.g. "20120801040000" for Aug 1 2012 04:00:00.
const TimestampLayout = "20060102150405"

// Timestamp is a book datetime with second precision.
type Timestamp struct {
	t time.Time
}

// TimestampOf truncates t to second precision.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{t: t.Truncate(time.Second)}
}

// Now returns the current local time as a Timestamp.
func Now() Timestamp {
	return TimestampOf(time.Now())
}

// ParseTimestamp parses the strict 14-digit form. Malformed strings fail
// explicitly; callers must not substitute a sentinel date, since a coerced
// post date would silently corrupt balance totals.
func ParseTimestamp(s string) (Timestamp, error) {
	if len(s) != len(TimestampLayout) {
		return Timestamp{}, fmt.Errorf("%w: timestamp %q has length %d, want %d", ErrInvalidFormat, s, len(s), len(TimestampLayout))
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: timestamp %q: %v", ErrInvalidFormat, s, err)
	}
	return Timestamp{t: t}, nil
}

// String renders the 14-digit storage form.
func (ts Timestamp) String() string {
	return ts.t.Format(TimestampLayout)
}

// Time exposes the underlying time value.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// IsZero reports whether ts is the zero value.
func (ts Timestamp) IsZero() bool {
	return ts.t.IsZero()
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.t.Before(other.t)
}

// NullString converts ts for a nullable datetime column.
func (ts Timestamp) NullString() sql.NullString {
	if ts.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: ts.String(), Valid: true}
}

// TimestampFromNull converts a nullable datetime column back; NULL becomes
// the zero Timestamp.
func TimestampFromNull(ns sql.NullString) (Timestamp, error) {
	if !ns.Valid {
		return Timestamp{}, nil
	}
	return ParseTimestamp(ns.String)
}
