// Package accounts stores the account tree of a book.
package accounts

import (
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/ident"
)

// AccountType classifies accounts. The set is closed; a stored value outside
// it is a caught decode error, not a runtime abort.
type AccountType string

const (
	TypeAsset      AccountType = "ASSET"
	TypeBank       AccountType = "BANK"
	TypeCash       AccountType = "CASH"
	TypeCredit     AccountType = "CREDIT"
	TypeEquity     AccountType = "EQUITY"
	TypeExpense    AccountType = "EXPENSE"
	TypeIncome     AccountType = "INCOME"
	TypeLiability  AccountType = "LIABILITY"
	TypeReceivable AccountType = "RECEIVABLE"
	TypeRoot       AccountType = "ROOT"
)

// ParseAccountType decodes a stored account_type column value.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case TypeAsset, TypeBank, TypeCash, TypeCredit, TypeEquity,
		TypeExpense, TypeIncome, TypeLiability, TypeReceivable, TypeRoot:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", ident.ErrInvalidFormat, s)
	}
}

// The two synthetic roots excluded from ordinary listings.
const (
	RootAccountName  = "Root Account"
	TemplateRootName = "Template Root"
)

// Account is a node in the account tree. A nil CommodityGUID or ParentGUID
// means the column is NULL. Placeholder accounts only group children and are
// not meant to receive postings, though the engine does not hard-block it.
type Account struct {
	GUID          ident.GUID
	Name          string
	Type          AccountType
	CommodityGUID ident.GUID
	CommoditySCU  int64
	NonStdSCU     int64
	ParentGUID    ident.GUID
	Code          string
	Description   string
	Hidden        bool
	Placeholder   bool
}
