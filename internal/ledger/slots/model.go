// Package slots stores the generic named-attribute rows attached to any
// identified record. Slots are the book's only schema-free extension
// mechanism; transaction notes and shell settings both live here.
package slots

import "github.com/keepbook/keepbook/internal/ledger/ident"

// Slot type tags used by this ledger. A slot populates exactly one value
// column per (name, type) pair by convention; the rest stay NULL.
const (
	TypeSetting int64 = 0 // shell settings rows
	TypeString  int64 = 4 // string values, e.g. a transaction note
	TypeGDate   int64 = 10
)

// Well-known slot names.
const (
	NameNotes    = "notes"
	NameSettings = "settings"
)

// SettingDisplayOlderThanOneYear is the string_val discriminant of the
// "show transactions older than one year" preference. The pair
// (name="settings", string_val=...) with int64_val 0/1 encodes the boolean;
// the row is owned by the null identifier because it is a global setting.
const SettingDisplayOlderThanOneYear = "display_transactions_older_than_one_year"

// Slot is one attribute row. ID is assigned by the store on insert.
type Slot struct {
	ID              int64
	ObjGUID         ident.GUID
	Name            string
	SlotType        int64
	Int64Val        int64
	StringVal       string
	DoubleVal       *float64
	TimespecVal     ident.Timestamp
	GUIDVal         ident.GUID
	NumericValNum   *int64
	NumericValDenom *int64
	GDateVal        string
}
