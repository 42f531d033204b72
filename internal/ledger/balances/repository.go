package balances

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/ident"
)

// postings is the joined relation behind every balance query: each split
// with its transaction's raw post date. Date filtering happens in the
// service after the stamp has been parsed; comparing raw strings in SQL
// would silently drop splits whose stamp merely looks comparable.
const postings = `
	SELECT s.account_guid, s.value_num, s.value_denom, t.post_date
	FROM splits s
	JOIN transactions t ON t.guid=s.tx_guid`

// Repository reads split subtotals and window rows. Each logical result is
// one query; per-account loops would read a shifting book across calls.
type Repository interface {
	Partials(ctx context.Context, accountGUID ident.GUID) ([]Partial, error)
	PartialsForActiveAccounts(ctx context.Context) ([]AccountPartial, error)
	Window(ctx context.Context, accountGUID ident.GUID) ([]WindowRow, error)
}

type AccountPartial struct {
	Account  accounts.Account
	Mnemonic string
	Partial  Partial
}

type repository struct {
	db *sql.DB
}

func NewRepository(handle *sql.DB) Repository {
	return &repository{db: handle}
}

// Partials returns one account's subtotals grouped by post date and
// denominator. An account with no splits yields a single empty subtotal
// carrying its commodity's scale; an unknown account yields no rows.
func (r *repository) Partials(ctx context.Context, accountGUID ident.GUID) ([]Partial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.post_date, s.value_denom, COALESCE(SUM(s.value_num), 0), c.fraction
		FROM accounts a
		JOIN commodities c ON c.guid=a.commodity_guid
		LEFT JOIN (`+postings+`) s ON s.account_guid=a.guid
		WHERE a.guid=?
		GROUP BY s.post_date, s.value_denom`,
		accountGUID.Compact())
	if err != nil {
		return nil, fmt.Errorf("balances: query subtotals: %w", err)
	}
	defer rows.Close()

	var out []Partial
	for rows.Next() {
		var p Partial
		if err := rows.Scan(&p.PostDate, &p.Denom, &p.Num, &p.Fraction); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PartialsForActiveAccounts is the batch form behind account listings. One
// query covers every active account; accounts without splits still appear
// with an empty subtotal.
func (r *repository) PartialsForActiveAccounts(ctx context.Context) ([]AccountPartial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.guid, a.name, a.account_type, a.commodity_guid, c.mnemonic,
		       s.post_date, s.value_denom, COALESCE(SUM(s.value_num), 0), c.fraction
		FROM accounts a
		JOIN commodities c ON c.guid=a.commodity_guid
		LEFT JOIN (`+postings+`) s ON s.account_guid=a.guid
		WHERE a.hidden=0 AND a.placeholder=0
		  AND a.account_type NOT IN ('ROOT','EXPENSE','EQUITY','INCOME')
		  AND a.name<>'Expenses'
		GROUP BY a.guid, s.post_date, s.value_denom
		ORDER BY a.name, a.guid`)
	if err != nil {
		return nil, fmt.Errorf("balances: query account subtotals: %w", err)
	}
	defer rows.Close()

	var out []AccountPartial
	for rows.Next() {
		var (
			ap        AccountPartial
			guid      string
			kind      string
			commodity sql.NullString
		)
		if err := rows.Scan(&guid, &ap.Account.Name, &kind, &commodity, &ap.Mnemonic,
			&ap.Partial.PostDate, &ap.Partial.Denom, &ap.Partial.Num, &ap.Partial.Fraction); err != nil {
			return nil, err
		}
		if ap.Account.GUID, err = ident.ParseGUID(guid); err != nil {
			return nil, err
		}
		if ap.Account.Type, err = accounts.ParseAccountType(kind); err != nil {
			return nil, err
		}
		if ap.Account.CommodityGUID, err = ident.GUIDFromNull(commodity); err != nil {
			return nil, err
		}
		out = append(out, ap)
	}
	return out, rows.Err()
}

// Window returns every split of the account, each with the other side's
// account name as category. The scan parses each post date strictly, so a
// transaction with an unreadable date fails the read instead of slipping
// out of a range comparison.
func (r *repository) Window(ctx context.Context, accountGUID ident.GUID) ([]WindowRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.guid, t.post_date, t.description, a.name,
		       mine.value_num, mine.value_denom
		FROM splits mine
		JOIN transactions t ON t.guid=mine.tx_guid
		JOIN splits other ON other.tx_guid=t.guid AND other.guid<>mine.guid
		JOIN accounts a ON a.guid=other.account_guid
		WHERE mine.account_guid=?
		ORDER BY t.post_date, t.guid`,
		accountGUID.Compact())
	if err != nil {
		return nil, fmt.Errorf("balances: query window: %w", err)
	}
	defer rows.Close()

	var out []WindowRow
	for rows.Next() {
		var (
			row      WindowRow
			txGUID   string
			postDate sql.NullString
			desc     sql.NullString
		)
		if err := rows.Scan(&txGUID, &postDate, &desc, &row.Category,
			&row.Value.Num, &row.Value.Denom); err != nil {
			return nil, err
		}
		if row.TxGUID, err = ident.ParseGUID(txGUID); err != nil {
			return nil, err
		}
		if row.PostDate, err = postedAt(postDate); err != nil {
			return nil, err
		}
		row.Description = desc.String
		out = append(out, row)
	}
	return out, rows.Err()
}
