// Package shared holds the error taxonomy common to the ledger stores.
package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested row is absent.
	ErrNotFound = errors.New("ledger: not found")
	// ErrMixedDenominator indicates balance aggregation met split scales
	// that cannot be reconciled exactly.
	ErrMixedDenominator = errors.New("ledger: mixed value denominators cannot be reconciled")
)

// AmbiguousError reports a "must be exactly one" query that matched zero or
// more than one rows. Matches carries the actual count so the caller can
// report it meaningfully.
type AmbiguousError struct {
	Query   string
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ledger: %s matched %d rows, want exactly 1", e.Query, e.Matches)
}

// RowCountError reports a write that affected an unexpected number of rows.
// This surfaces a structural inconsistency; it is never retried or swallowed.
type RowCountError struct {
	Op       string
	Affected int64
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("ledger: %s affected %d rows, want exactly 1", e.Op, e.Affected)
}
