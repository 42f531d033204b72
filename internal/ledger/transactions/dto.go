package transactions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
)

// SaveInput carries everything needed to persist a simple transfer. The
// target account is the one whose register initiated the entry; the counter
// account receives the negated amount. A signed Amount moves money toward
// the target when positive.
type SaveInput struct {
	GUID         ident.GUID // new or existing; an existing guid is replaced
	CurrencyGUID ident.GUID
	Num          string
	PostDate     ident.Timestamp
	EnterDate    ident.Timestamp
	Description  string

	TargetAccountGUID  ident.GUID
	CounterAccountGUID ident.GUID
	Amount             numeric.Numeric

	Memo string
}

// Validate ensures the input can be persisted at all. Reference existence is
// checked by the service against the stores.
func (in SaveInput) Validate() error {
	if in.GUID.IsNil() {
		return errors.New("transactions: transaction guid required")
	}
	if in.CurrencyGUID.IsNil() {
		return errors.New("transactions: currency required")
	}
	if in.TargetAccountGUID.IsNil() {
		return errors.New("transactions: target account required")
	}
	if in.CounterAccountGUID.IsNil() {
		return errors.New("transactions: counter account required")
	}
	if in.TargetAccountGUID == in.CounterAccountGUID {
		return errors.New("transactions: target and counter accounts must differ")
	}
	if in.PostDate.IsZero() {
		return errors.New("transactions: post date required")
	}
	if in.Amount.Denom <= 0 {
		return fmt.Errorf("transactions: amount denominator %d must be positive", in.Amount.Denom)
	}
	return nil
}

// trimmedMemo returns the memo ready for the notes slot, or "" when blank.
func (in SaveInput) trimmedMemo() string {
	return strings.TrimSpace(in.Memo)
}
