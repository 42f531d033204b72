// Package balances computes account balances from splits. Balances are
// never cached on account rows; every read recomputes from the store.
package balances

import (
	"database/sql"

	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
)

// AccountBalance annotates an account with its computed balance for one
// request. The annotation is transient; it is never written back.
type AccountBalance struct {
	Account  accounts.Account
	Balance  numeric.Numeric
	Mnemonic string
}

// WindowRow is one split inside a reporting window, joined with its
// transaction and the other side's account name.
type WindowRow struct {
	TxGUID      ident.GUID
	PostDate    ident.Timestamp
	Description string
	Category    string
	Value       numeric.Numeric
}

// CategoryTotal sums a window's rows per category, where the category is
// the other account of each transaction.
type CategoryTotal struct {
	Category string
	Total    numeric.Numeric
}

// Partial is one subtotal as it comes out of the store, grouped by post
// date and denominator. Subtotals with distinct denominators are rescaled
// and folded, not averaged. A null denominator marks an account without
// splits; its Fraction still carries the commodity's scale so the fold
// starts at the right precision.
type Partial struct {
	PostDate sql.NullString
	Denom    sql.NullInt64
	Num      int64
	Fraction int64
}
