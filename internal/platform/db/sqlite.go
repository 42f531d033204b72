// Package db opens and guards the single SQLite book file.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// sqliteHeader is the first 16 bytes of every valid SQLite database file.
var sqliteHeader = []byte("SQLite format 3\x00")

// Open opens the book file, creating it (and its parent directory) when it
// does not exist yet. An existing file must carry the SQLite header; anything
// else is rejected before the driver touches it. The returned handle is
// limited to one connection: the ledger is single-writer by contract.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("platform/db: create book directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := ValidateHeader(path); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("platform/db: stat book file: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", path)
	handle, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: open book: %w", err)
	}
	handle.SetMaxOpenConns(1)

	if err := handle.PingContext(ctx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("platform/db: ping book: %w", err)
	}

	if err := EnsureSchema(ctx, handle); err != nil {
		handle.Close()
		return nil, err
	}

	return handle, nil
}

// ValidateHeader checks the magic bytes of an existing file so a non-database
// file is refused with a clear message instead of a driver error mid-query.
func ValidateHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("platform/db: open book file: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	n, err := io.ReadFull(f, header)
	if err != nil && n == 0 {
		// A zero-length file is what sqlite itself creates before the first
		// write; treat it as a fresh book.
		return nil
	}
	if err != nil || !bytes.Equal(header, sqliteHeader) {
		return fmt.Errorf("platform/db: %s is not a valid SQLite database file", path)
	}
	return nil
}
