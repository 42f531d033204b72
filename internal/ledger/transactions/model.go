// Package transactions implements the double-entry core: balanced splits
// saved and deleted as one atomic unit.
package transactions

import (
	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
)

// Reconciliation states carried on a split.
const (
	ReconcileNo  = "n"
	ReconcileYes = "y"
)

// Transaction is a balanced group of splits sharing one posting date and
// description. Edits replace it wholesale; it is never field-patched.
type Transaction struct {
	GUID         ident.GUID
	CurrencyGUID ident.GUID
	Num          string
	PostDate     ident.Timestamp
	EnterDate    ident.Timestamp
	Description  string
	Splits       []Split
}

// Split is one leg of a posting against a single account. Value is in the
// transaction's currency, Quantity in the account's commodity; the two are
// equal in a single-currency book.
type Split struct {
	GUID           ident.GUID
	TxGUID         ident.GUID
	AccountGUID    ident.GUID
	Memo           string
	Action         string
	ReconcileState string
	ReconcileDate  ident.Timestamp
	Value          numeric.Numeric
	Quantity       numeric.Numeric
	LotGUID        ident.GUID
}

// RegisterRow is one line of an account's register view: the transaction
// joined with the other side's account metadata and the viewing account's
// value.
type RegisterRow struct {
	TxGUID           ident.GUID
	Num              string
	PostDate         ident.Timestamp
	EnterDate        ident.Timestamp
	Description      string
	Memo             string
	Value            numeric.Numeric
	OtherAccountGUID ident.GUID
	OtherAccountName string
	CurrencyMnemonic string
}
