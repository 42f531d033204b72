package slots

import (
	"context"

	"github.com/keepbook/keepbook/internal/ledger/ident"
)

// Settings reads and writes shell preferences stored as settings slots.
// An absent slot means the documented default, never an error.
type Settings struct {
	repo Repository
}

func NewSettings(repo Repository) *Settings {
	return &Settings{repo: repo}
}

// DisplayOlderThanOneYear reports whether the register should show
// transactions older than one year. Defaults to false when unset.
func (s *Settings) DisplayOlderThanOneYear(ctx context.Context) (bool, error) {
	found, err := s.repo.ByNameAndString(ctx, NameSettings, SettingDisplayOlderThanOneYear)
	if err != nil {
		return false, err
	}
	if len(found) == 0 {
		return false, nil
	}
	return found[0].Int64Val != 0, nil
}

// SetDisplayOlderThanOneYear stores the preference, replacing any prior row.
// Shell preferences belong to the book as a whole, so the slot is owned by
// the null identifier rather than any account or transaction.
func (s *Settings) SetDisplayOlderThanOneYear(ctx context.Context, enabled bool) error {
	val := int64(0)
	if enabled {
		val = 1
	}
	return s.repo.SaveOrReplace(ctx, ident.NilGUID, NameSettings, SettingDisplayOlderThanOneYear, val)
}
