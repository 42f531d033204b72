package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/shared"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

const fields = "guid, name, account_type, commodity_guid, commodity_scu, non_std_scu, parent_guid, code, description, hidden, placeholder"

// Repository encapsulates account table operations.
type Repository interface {
	Get(ctx context.Context, guid ident.GUID) (Account, error)
	// ListActive returns posting targets for pickers: not hidden, not a
	// placeholder, not a ROOT/EXPENSE/EQUITY/INCOME account, and not the
	// account literally named "Expenses".
	ListActive(ctx context.Context) ([]Account, error)
	// ListAllPostable excludes only the two synthetic roots by name.
	ListAllPostable(ctx context.Context) ([]Account, error)
	// FindTopLevelByKind returns the unique account of the given kind whose
	// parent is not itself of that kind (the top of the kind's subtree).
	FindTopLevelByKind(ctx context.Context, kind AccountType) (Account, error)
	FindUniqueByName(ctx context.Context, name string) (Account, error)
	FindUniquePrefix(ctx context.Context, prefix string) (Account, error)
	// ListWithRecentActivity returns accounts with a split posted within the
	// trailing number of days before now.
	ListWithRecentActivity(ctx context.Context, now ident.Timestamp, days int) ([]Account, error)
	Save(ctx context.Context, a Account) error
	Delete(ctx context.Context, guid ident.GUID) error
}

type repository struct {
	db *sql.DB
}

// NewRepository builds a Repository over the open book.
func NewRepository(handle *sql.DB) Repository {
	return &repository{db: handle}
}

func (r *repository) Get(ctx context.Context, guid ident.GUID) (Account, error) {
	if guid.IsNil() {
		return Account{}, fmt.Errorf("accounts: %w: nil guid is not a valid reference", shared.ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+fields+` FROM accounts WHERE guid=?`, guid.Compact())
	a, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("accounts: %w: guid %s", shared.ErrNotFound, guid)
	}
	return a, err
}

func (r *repository) ListActive(ctx context.Context) ([]Account, error) {
	return r.list(ctx, `SELECT `+fields+` FROM accounts
		WHERE hidden=0 AND placeholder=0
		  AND account_type NOT IN ('ROOT','EXPENSE','EQUITY','INCOME')
		  AND name<>'Expenses'
		ORDER BY name`)
}

func (r *repository) ListAllPostable(ctx context.Context) ([]Account, error) {
	return r.list(ctx, `SELECT `+fields+` FROM accounts
		WHERE name NOT IN (?,?)
		ORDER BY name`, RootAccountName, TemplateRootName)
}

func (r *repository) FindTopLevelByKind(ctx context.Context, kind AccountType) (Account, error) {
	matches, err := r.list(ctx, `SELECT a.`+fieldList("a")+` FROM accounts a
		LEFT JOIN accounts p ON p.guid=a.parent_guid
		WHERE a.account_type=? AND (a.parent_guid IS NULL OR p.account_type<>?)`,
		string(kind), string(kind))
	if err != nil {
		return Account{}, err
	}
	if len(matches) != 1 {
		return Account{}, &shared.AmbiguousError{
			Query:   fmt.Sprintf("top-level account of kind %s", kind),
			Matches: len(matches),
		}
	}
	return matches[0], nil
}

func (r *repository) FindUniqueByName(ctx context.Context, name string) (Account, error) {
	matches, err := r.list(ctx, `SELECT `+fields+` FROM accounts WHERE name=?`, name)
	if err != nil {
		return Account{}, err
	}
	if len(matches) != 1 {
		return Account{}, &shared.AmbiguousError{
			Query:   fmt.Sprintf("account named %q", name),
			Matches: len(matches),
		}
	}
	return matches[0], nil
}

func (r *repository) FindUniquePrefix(ctx context.Context, prefix string) (Account, error) {
	matches, err := r.list(ctx,
		`SELECT `+fields+` FROM accounts WHERE name LIKE ? ESCAPE '\'`,
		escapeLike(prefix)+"%")
	if err != nil {
		return Account{}, err
	}
	if len(matches) != 1 {
		return Account{}, &shared.AmbiguousError{
			Query:   fmt.Sprintf("account with name prefix %q", prefix),
			Matches: len(matches),
		}
	}
	return matches[0], nil
}

func (r *repository) ListWithRecentActivity(ctx context.Context, now ident.Timestamp, days int) ([]Account, error) {
	cutoff := ident.TimestampOf(now.Time().AddDate(0, 0, -days))
	return r.list(ctx, `SELECT `+fields+` FROM accounts
		WHERE guid IN (
			SELECT account_guid FROM splits WHERE tx_guid IN (
				SELECT guid FROM transactions WHERE post_date>=?
			)
		)
		ORDER BY name`, cutoff.String())
}

// Save replaces any existing row with the same guid and inserts the account.
// When a commodity is set, commodity_scu follows the commodity's fraction
// unless a non-standard override is flagged, matching the reference format.
func (r *repository) Save(ctx context.Context, a Account) error {
	if a.GUID.IsNil() {
		return errors.New("accounts: cannot save an account with the nil guid")
	}
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return err
	}
	return platformdb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM accounts WHERE guid=?`, a.GUID.Compact()); err != nil {
			return fmt.Errorf("accounts: delete current: %w", err)
		}

		scu := any(a.CommoditySCU)
		if !a.CommodityGUID.IsNil() && a.NonStdSCU == 0 {
			var fraction int64
			err := tx.QueryRowContext(ctx,
				`SELECT fraction FROM commodities WHERE guid=?`,
				a.CommodityGUID.Compact()).Scan(&fraction)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("accounts: %w: commodity %s", shared.ErrNotFound, a.CommodityGUID)
			}
			if err != nil {
				return fmt.Errorf("accounts: commodity fraction: %w", err)
			}
			scu = fraction
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (`+fields+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			a.GUID.Compact(), a.Name, string(a.Type), a.CommodityGUID.NullCompact(),
			scu, a.NonStdSCU, a.ParentGUID.NullCompact(), a.Code, a.Description,
			boolToInt(a.Hidden), boolToInt(a.Placeholder))
		if err != nil {
			return fmt.Errorf("accounts: insert: %w", err)
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, guid ident.GUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE guid=?`, guid.Compact())
	if err != nil {
		return fmt.Errorf("accounts: delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("accounts: delete rows affected: %w", err)
	}
	if affected != 1 {
		return &shared.RowCountError{Op: "delete account " + guid.Compact(), Affected: affected}
	}
	return nil
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("accounts: query: %w", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(scan func(...any) error) (Account, error) {
	var (
		a           Account
		guid        string
		accountType string
		commodity   sql.NullString
		parent      sql.NullString
		code        sql.NullString
		description sql.NullString
		hidden      sql.NullInt64
		placeholder sql.NullInt64
	)
	if err := scan(&guid, &a.Name, &accountType, &commodity, &a.CommoditySCU,
		&a.NonStdSCU, &parent, &code, &description, &hidden, &placeholder); err != nil {
		return Account{}, err
	}

	g, err := ident.ParseGUID(guid)
	if err != nil {
		return Account{}, err
	}
	a.GUID = g
	if a.Type, err = ParseAccountType(accountType); err != nil {
		return Account{}, err
	}
	if a.CommodityGUID, err = ident.GUIDFromNull(commodity); err != nil {
		return Account{}, err
	}
	if a.ParentGUID, err = ident.GUIDFromNull(parent); err != nil {
		return Account{}, err
	}
	a.Code = code.String
	a.Description = description.String
	a.Hidden = hidden.Int64 != 0
	a.Placeholder = placeholder.Int64 != 0
	return a, nil
}

func fieldList(alias string) string {
	return "guid, " + alias + ".name, " + alias + ".account_type, " + alias + ".commodity_guid, " +
		alias + ".commodity_scu, " + alias + ".non_std_scu, " + alias + ".parent_guid, " +
		alias + ".code, " + alias + ".description, " + alias + ".hidden, " + alias + ".placeholder"
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
