package slots

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

const fields = "id, obj_guid, name, slot_type, int64_val, string_val, double_val, timespec_val, guid_val, numeric_val_num, numeric_val_denom, gdate_val"

// Repository encapsulates slot table operations. Callers select a lookup
// path by whichever key they hold: owner guid, name, or referenced guid.
type Repository interface {
	ByOwner(ctx context.Context, owner ident.GUID) ([]Slot, error)
	ByName(ctx context.Context, name string) ([]Slot, error)
	ByNameAndString(ctx context.Context, name, stringVal string) ([]Slot, error)
	ByGUIDVal(ctx context.Context, guid ident.GUID) ([]Slot, error)
	// SaveOrReplace deletes any slots matching (name, string_val) and inserts
	// one fresh row owned by the given guid. Same replace-don't-patch
	// discipline as the transaction engine, scoped to one name/value pair.
	SaveOrReplace(ctx context.Context, owner ident.GUID, name, stringVal string, int64Val int64) error
	DeleteByOwner(ctx context.Context, owner ident.GUID) error
}

type repository struct {
	db *sql.DB
}

// NewRepository builds a Repository over the open book.
func NewRepository(handle *sql.DB) Repository {
	return &repository{db: handle}
}

func (r *repository) ByOwner(ctx context.Context, owner ident.GUID) ([]Slot, error) {
	return r.list(ctx, `SELECT `+fields+` FROM slots WHERE obj_guid=? ORDER BY id`, owner.Compact())
}

func (r *repository) ByName(ctx context.Context, name string) ([]Slot, error) {
	return r.list(ctx, `SELECT `+fields+` FROM slots WHERE name=? ORDER BY id`, name)
}

func (r *repository) ByNameAndString(ctx context.Context, name, stringVal string) ([]Slot, error) {
	return r.list(ctx, `SELECT `+fields+` FROM slots WHERE name=? AND string_val=? ORDER BY id`, name, stringVal)
}

func (r *repository) ByGUIDVal(ctx context.Context, guid ident.GUID) ([]Slot, error) {
	return r.list(ctx, `SELECT `+fields+` FROM slots WHERE guid_val=? ORDER BY id`, guid.Compact())
}

func (r *repository) SaveOrReplace(ctx context.Context, owner ident.GUID, name, stringVal string, int64Val int64) error {
	return platformdb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM slots WHERE name=? AND string_val=?`, name, stringVal); err != nil {
			return fmt.Errorf("slots: delete current: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO slots (obj_guid, name, slot_type, int64_val, string_val,
			                    double_val, timespec_val, guid_val, numeric_val_num,
			                    numeric_val_denom, gdate_val)
			 VALUES (?,?,?,?,?,NULL,NULL,NULL,NULL,NULL,NULL)`,
			owner.Compact(), name, TypeSetting, int64Val, stringVal)
		if err != nil {
			return fmt.Errorf("slots: insert: %w", err)
		}
		return nil
	})
}

func (r *repository) DeleteByOwner(ctx context.Context, owner ident.GUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM slots WHERE obj_guid=?`, owner.Compact()); err != nil {
		return fmt.Errorf("slots: delete by owner: %w", err)
	}
	return nil
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Slot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("slots: query: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		s, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSlot(scan func(...any) error) (Slot, error) {
	var (
		s        Slot
		owner    string
		int64Val sql.NullInt64
		strVal   sql.NullString
		dblVal   sql.NullFloat64
		timespec sql.NullString
		guidVal  sql.NullString
		numNum   sql.NullInt64
		numDenom sql.NullInt64
		gdate    sql.NullString
	)
	if err := scan(&s.ID, &owner, &s.Name, &s.SlotType, &int64Val, &strVal,
		&dblVal, &timespec, &guidVal, &numNum, &numDenom, &gdate); err != nil {
		return Slot{}, err
	}

	g, err := ident.ParseGUID(owner)
	if err != nil {
		return Slot{}, err
	}
	s.ObjGUID = g
	s.Int64Val = int64Val.Int64
	s.StringVal = strVal.String
	if dblVal.Valid {
		v := dblVal.Float64
		s.DoubleVal = &v
	}
	if s.TimespecVal, err = ident.TimestampFromNull(timespec); err != nil {
		return Slot{}, err
	}
	if s.GUIDVal, err = ident.GUIDFromNull(guidVal); err != nil {
		return Slot{}, err
	}
	if numNum.Valid {
		v := numNum.Int64
		s.NumericValNum = &v
	}
	if numDenom.Valid {
		v := numDenom.Int64
		s.NumericValDenom = &v
	}
	s.GDateVal = gdate.String
	return s, nil
}
