package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
	"github.com/keepbook/keepbook/internal/ledger/shared"
	"github.com/keepbook/keepbook/internal/ledger/slots"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

const (
	txFields    = "guid, currency_guid, num, post_date, enter_date, description"
	splitFields = "guid, tx_guid, account_guid, memo, action, reconcile_state, reconcile_date, value_num, value_denom, quantity_num, quantity_denom, lot_guid"
)

// Repository encapsulates transaction and split table operations. Writes go
// through WithTx so the replace sequence is a single all-or-nothing unit.
type Repository interface {
	Get(ctx context.Context, guid ident.GUID) (Transaction, error)
	FindCounterpart(ctx context.Context, accountGUID ident.GUID, description string) ([]RegisterRow, error)
	ListForAccount(ctx context.Context, accountGUID ident.GUID) ([]RegisterRow, error)
	ListForAccountSince(ctx context.Context, accountGUID ident.GUID, since ident.Timestamp) ([]RegisterRow, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the write operations available inside one storage
// transaction.
type TxRepository interface {
	// DeleteTransactionRows removes the transaction row, every split whose
	// transaction reference matches, and every slot owned by the guid.
	// It reports whether a transaction row existed.
	DeleteTransactionRows(ctx context.Context, guid ident.GUID) (bool, error)
	InsertTransaction(ctx context.Context, t Transaction) error
	InsertSplit(ctx context.Context, s Split) error
	InsertNoteSlot(ctx context.Context, owner ident.GUID, note string) error
}

type repository struct {
	db *sql.DB
}

// NewRepository builds a Repository over the open book.
func NewRepository(handle *sql.DB) Repository {
	return &repository{db: handle}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return platformdb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) Get(ctx context.Context, guid ident.GUID) (Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+txFields+` FROM transactions WHERE guid=?`, guid.Compact())
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, fmt.Errorf("transactions: %w: guid %s", shared.ErrNotFound, guid)
	}
	if err != nil {
		return Transaction{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+splitFields+` FROM splits WHERE tx_guid=? ORDER BY guid`, guid.Compact())
	if err != nil {
		return Transaction{}, fmt.Errorf("transactions: query splits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s, err := scanSplit(rows.Scan)
		if err != nil {
			return Transaction{}, err
		}
		t.Splits = append(t.Splits, s)
	}
	return t, rows.Err()
}

// FindCounterpart retrieves the other side of every transaction that has a
// split in the given account and exactly the given description. Read-only;
// supports "did I already enter this payee" lookups.
func (r *repository) FindCounterpart(ctx context.Context, accountGUID ident.GUID, description string) ([]RegisterRow, error) {
	return r.listRegister(ctx, `
		SELECT t.guid, t.num, t.post_date, t.enter_date, t.description, other.memo,
		       other.value_num, other.value_denom, a.guid, a.name, c.mnemonic
		FROM transactions t
		JOIN splits other ON other.tx_guid=t.guid AND other.account_guid<>?
		JOIN accounts a ON a.guid=other.account_guid
		JOIN commodities c ON c.guid=t.currency_guid
		WHERE t.description=?
		  AND t.guid IN (SELECT tx_guid FROM splits WHERE account_guid=?)
		ORDER BY t.post_date DESC`,
		accountGUID.Compact(), description, accountGUID.Compact())
}

func (r *repository) ListForAccount(ctx context.Context, accountGUID ident.GUID) ([]RegisterRow, error) {
	return r.listRegister(ctx, registerQuery+` ORDER BY t.post_date, t.guid`, accountGUID.Compact())
}

func (r *repository) ListForAccountSince(ctx context.Context, accountGUID ident.GUID, since ident.Timestamp) ([]RegisterRow, error) {
	return r.listRegister(ctx, registerQuery+` AND t.post_date>=? ORDER BY t.post_date, t.guid`,
		accountGUID.Compact(), since.String())
}

// registerQuery joins each of the account's splits with its transaction and
// the other side's account. Multi-split transactions yield one row per
// counter split.
const registerQuery = `
	SELECT t.guid, t.num, t.post_date, t.enter_date, t.description, mine.memo,
	       mine.value_num, mine.value_denom, a.guid, a.name, c.mnemonic
	FROM transactions t
	JOIN splits mine ON mine.tx_guid=t.guid AND mine.account_guid=?
	JOIN splits other ON other.tx_guid=t.guid AND other.guid<>mine.guid
	JOIN accounts a ON a.guid=other.account_guid
	JOIN commodities c ON c.guid=t.currency_guid
	WHERE 1=1`

func (r *repository) listRegister(ctx context.Context, query string, args ...any) ([]RegisterRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transactions: query register: %w", err)
	}
	defer rows.Close()

	var out []RegisterRow
	for rows.Next() {
		var (
			row       RegisterRow
			txGUID    string
			num       sql.NullString
			postDate  sql.NullString
			enterDate sql.NullString
			desc      sql.NullString
			memo      sql.NullString
			valueNum  int64
			valueDen  int64
			otherGUID string
		)
		if err := rows.Scan(&txGUID, &num, &postDate, &enterDate, &desc, &memo,
			&valueNum, &valueDen, &otherGUID, &row.OtherAccountName, &row.CurrencyMnemonic); err != nil {
			return nil, err
		}
		if row.TxGUID, err = ident.ParseGUID(txGUID); err != nil {
			return nil, err
		}
		if row.OtherAccountGUID, err = ident.ParseGUID(otherGUID); err != nil {
			return nil, err
		}
		// A register row under an unparsable post date is a data error; it
		// must surface instead of sorting to an arbitrary place.
		if row.PostDate, err = ident.TimestampFromNull(postDate); err != nil {
			return nil, err
		}
		if row.EnterDate, err = ident.TimestampFromNull(enterDate); err != nil {
			return nil, err
		}
		row.Num = num.String
		row.Description = desc.String
		row.Memo = memo.String
		row.Value = numeric.New(valueNum, valueDen)
		out = append(out, row)
	}
	return out, rows.Err()
}

type txRepository struct {
	tx *sql.Tx
}

func (r *txRepository) DeleteTransactionRows(ctx context.Context, guid ident.GUID) (bool, error) {
	res, err := r.tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE guid=?`, guid.Compact())
	if err != nil {
		return false, fmt.Errorf("transactions: delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transactions: delete rows affected: %w", err)
	}

	if _, err := r.tx.ExecContext(ctx,
		`DELETE FROM splits WHERE tx_guid=?`, guid.Compact()); err != nil {
		return false, fmt.Errorf("transactions: delete splits: %w", err)
	}
	if _, err := r.tx.ExecContext(ctx,
		`DELETE FROM slots WHERE obj_guid=?`, guid.Compact()); err != nil {
		return false, fmt.Errorf("transactions: delete slots: %w", err)
	}
	return affected > 0, nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, t Transaction) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO transactions (`+txFields+`) VALUES (?,?,?,?,?,?)`,
		t.GUID.Compact(), t.CurrencyGUID.Compact(), t.Num,
		t.PostDate.String(), t.EnterDate.String(), t.Description)
	if err != nil {
		return fmt.Errorf("transactions: insert transaction: %w", err)
	}
	return nil
}

func (r *txRepository) InsertSplit(ctx context.Context, s Split) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO splits (`+splitFields+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.GUID.Compact(), s.TxGUID.Compact(), s.AccountGUID.Compact(),
		s.Memo, s.Action, s.ReconcileState, s.ReconcileDate.NullString(),
		s.Value.Num, s.Value.Denom, s.Quantity.Num, s.Quantity.Denom,
		s.LotGUID.NullCompact())
	if err != nil {
		return fmt.Errorf("transactions: insert split: %w", err)
	}
	return nil
}

func (r *txRepository) InsertNoteSlot(ctx context.Context, owner ident.GUID, note string) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO slots (obj_guid, name, slot_type, int64_val, string_val)
		 VALUES (?,?,?,0,?)`,
		owner.Compact(), slots.NameNotes, slots.TypeString, note)
	if err != nil {
		return fmt.Errorf("transactions: insert note slot: %w", err)
	}
	return nil
}

func scanTransaction(scan func(...any) error) (Transaction, error) {
	var (
		t         Transaction
		guid      string
		currency  string
		num       sql.NullString
		postDate  sql.NullString
		enterDate sql.NullString
		desc      sql.NullString
	)
	if err := scan(&guid, &currency, &num, &postDate, &enterDate, &desc); err != nil {
		return Transaction{}, err
	}
	var err error
	if t.GUID, err = ident.ParseGUID(guid); err != nil {
		return Transaction{}, err
	}
	if t.CurrencyGUID, err = ident.ParseGUID(currency); err != nil {
		return Transaction{}, err
	}
	if t.PostDate, err = ident.TimestampFromNull(postDate); err != nil {
		return Transaction{}, err
	}
	if t.EnterDate, err = ident.TimestampFromNull(enterDate); err != nil {
		return Transaction{}, err
	}
	t.Num = num.String
	t.Description = desc.String
	return t, nil
}

func scanSplit(scan func(...any) error) (Split, error) {
	var (
		s             Split
		guid          string
		txGUID        string
		accountGUID   string
		memo          sql.NullString
		action        sql.NullString
		reconcileDate sql.NullString
		lot           sql.NullString
	)
	if err := scan(&guid, &txGUID, &accountGUID, &memo, &action, &s.ReconcileState,
		&reconcileDate, &s.Value.Num, &s.Value.Denom, &s.Quantity.Num, &s.Quantity.Denom, &lot); err != nil {
		return Split{}, err
	}
	var err error
	if s.GUID, err = ident.ParseGUID(guid); err != nil {
		return Split{}, err
	}
	if s.TxGUID, err = ident.ParseGUID(txGUID); err != nil {
		return Split{}, err
	}
	if s.AccountGUID, err = ident.ParseGUID(accountGUID); err != nil {
		return Split{}, err
	}
	if s.ReconcileDate, err = ident.TimestampFromNull(reconcileDate); err != nil {
		return Split{}, err
	}
	if s.LotGUID, err = ident.GUIDFromNull(lot); err != nil {
		return Split{}, err
	}
	s.Memo = memo.String
	s.Action = action.String
	return s, nil
}
