package db

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx executes fn inside a single storage transaction. Any error rolls the
// whole unit back; this is what keeps the delete-then-insert replace sequence
// all-or-nothing, so a failure can never leave split rows without their
// parent transaction.
func WithTx(ctx context.Context, handle *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := handle.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}
