package commodities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/shared"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

const fields = "guid, namespace, mnemonic, fullname, cusip, fraction, quote_flag, quote_source, quote_tz"

// Repository encapsulates commodity table operations.
type Repository interface {
	Get(ctx context.Context, guid ident.GUID) (Commodity, error)
	List(ctx context.Context) ([]Commodity, error)
	Save(ctx context.Context, c Commodity) error
	Delete(ctx context.Context, guid ident.GUID) error
}

type repository struct {
	db *sql.DB
}

// NewRepository builds a Repository over the open book.
func NewRepository(handle *sql.DB) Repository {
	return &repository{db: handle}
}

func (r *repository) Get(ctx context.Context, guid ident.GUID) (Commodity, error) {
	if guid.IsNil() {
		return Commodity{}, fmt.Errorf("commodities: %w: nil guid is not a valid reference", shared.ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+fields+` FROM commodities WHERE guid=?`, guid.Compact())
	c, err := scanCommodity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Commodity{}, fmt.Errorf("commodities: %w: guid %s", shared.ErrNotFound, guid)
	}
	return c, err
}

func (r *repository) List(ctx context.Context) ([]Commodity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fields+` FROM commodities ORDER BY namespace, mnemonic`)
	if err != nil {
		return nil, fmt.Errorf("commodities: list: %w", err)
	}
	defer rows.Close()

	var out []Commodity
	for rows.Next() {
		c, err := scanCommodity(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Save inserts the commodity, replacing any existing row with the same guid.
// The guid is immutable; edits are a wholesale replace.
func (r *repository) Save(ctx context.Context, c Commodity) error {
	if c.GUID.IsNil() {
		return errors.New("commodities: cannot save a commodity with the nil guid")
	}
	return platformdb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM commodities WHERE guid=?`, c.GUID.Compact()); err != nil {
			return fmt.Errorf("commodities: delete current: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO commodities (`+fields+`) VALUES (?,?,?,?,?,?,?,?,?)`,
			c.GUID.Compact(), c.Namespace, c.Mnemonic, c.Fullname, c.CUSIP,
			c.Fraction, boolToInt(c.QuoteFlag), c.QuoteSource, c.QuoteTZ)
		if err != nil {
			return fmt.Errorf("commodities: insert: %w", err)
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, guid ident.GUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM commodities WHERE guid=?`, guid.Compact())
	if err != nil {
		return fmt.Errorf("commodities: delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("commodities: delete rows affected: %w", err)
	}
	if affected != 1 {
		return &shared.RowCountError{Op: "delete commodity " + guid.Compact(), Affected: affected}
	}
	return nil
}

func scanCommodity(scan func(...any) error) (Commodity, error) {
	var (
		c        Commodity
		guid     string
		fullname sql.NullString
		cusip    sql.NullString
		quote    int64
		source   sql.NullString
		tz       sql.NullString
	)
	if err := scan(&guid, &c.Namespace, &c.Mnemonic, &fullname, &cusip, &c.Fraction, &quote, &source, &tz); err != nil {
		return Commodity{}, err
	}
	g, err := ident.ParseGUID(guid)
	if err != nil {
		return Commodity{}, err
	}
	c.GUID = g
	c.Fullname = fullname.String
	c.CUSIP = cusip.String
	c.QuoteFlag = quote != 0
	c.QuoteSource = source.String
	c.QuoteTZ = tz.String
	return c, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
