package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema mirrors the GnuCash SQLite layout for the tables the ledger core
// touches. Guids are 32-character lower-case hex with no hyphens, dates are
// 14-digit strings, booleans are 0/1 integers. Column names and types are a
// compatibility contract and must round-trip with files written by the
// reference format.
const schema = `
CREATE TABLE IF NOT EXISTS commodities (
	guid         TEXT(32) PRIMARY KEY NOT NULL,
	namespace    TEXT(2048) NOT NULL,
	mnemonic     TEXT(2048) NOT NULL,
	fullname     TEXT(2048),
	cusip        TEXT(2048),
	fraction     INTEGER NOT NULL,
	quote_flag   INTEGER NOT NULL,
	quote_source TEXT(2048),
	quote_tz     TEXT(2048)
);

CREATE TABLE IF NOT EXISTS accounts (
	guid           TEXT(32) PRIMARY KEY NOT NULL,
	name           TEXT(2048) NOT NULL,
	account_type   TEXT(2048) NOT NULL,
	commodity_guid TEXT(32),
	commodity_scu  INTEGER NOT NULL,
	non_std_scu    INTEGER NOT NULL,
	parent_guid    TEXT(32),
	code           TEXT(2048),
	description    TEXT(2048),
	hidden         INTEGER,
	placeholder    INTEGER
);

CREATE TABLE IF NOT EXISTS transactions (
	guid          TEXT(32) PRIMARY KEY NOT NULL,
	currency_guid TEXT(32) NOT NULL,
	num           TEXT(2048) NOT NULL,
	post_date     TEXT(14),
	enter_date    TEXT(14),
	description   TEXT(2048)
);

CREATE TABLE IF NOT EXISTS splits (
	guid            TEXT(32) PRIMARY KEY NOT NULL,
	tx_guid         TEXT(32) NOT NULL,
	account_guid    TEXT(32) NOT NULL,
	memo            TEXT(2048) NOT NULL,
	action          TEXT(2048) NOT NULL,
	reconcile_state TEXT(1) NOT NULL,
	reconcile_date  TEXT(14),
	value_num       BIGINT NOT NULL,
	value_denom     BIGINT NOT NULL,
	quantity_num    BIGINT NOT NULL,
	quantity_denom  BIGINT NOT NULL,
	lot_guid        TEXT(32)
);

CREATE TABLE IF NOT EXISTS slots (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	obj_guid          TEXT(32) NOT NULL,
	name              TEXT(4096) NOT NULL,
	slot_type         INTEGER NOT NULL,
	int64_val         BIGINT,
	string_val        TEXT(4096),
	double_val        REAL,
	timespec_val      TEXT(14),
	guid_val          TEXT(32),
	numeric_val_num   BIGINT,
	numeric_val_denom BIGINT,
	gdate_val         TEXT(8)
);

CREATE INDEX IF NOT EXISTS splits_tx_guid_index ON splits (tx_guid);
CREATE INDEX IF NOT EXISTS splits_account_guid_index ON splits (account_guid);
CREATE INDEX IF NOT EXISTS slots_guid_index ON slots (obj_guid);
`

// EnsureSchema creates any missing ledger tables. Tables already present in
// an existing book are left untouched.
func EnsureSchema(ctx context.Context, handle *sql.DB) error {
	if _, err := handle.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("platform/db: ensure schema: %w", err)
	}
	return nil
}
