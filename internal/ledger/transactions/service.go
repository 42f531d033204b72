package transactions

import (
	"context"
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/commodities"
	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/shared"
)

// AccountStore is the slice of the account store the engine needs to check
// split references before writing.
type AccountStore interface {
	Get(ctx context.Context, guid ident.GUID) (accounts.Account, error)
}

// CommodityStore checks the transaction currency reference.
type CommodityStore interface {
	Get(ctx context.Context, guid ident.GUID) (commodities.Commodity, error)
}

// Service is the transaction/split engine. A save is all-or-nothing from the
// caller's perspective: there is no partial persisted state.
type Service struct {
	repo        Repository
	accounts    AccountStore
	commodities CommodityStore
}

func NewService(repo Repository, accountStore AccountStore, commodityStore CommodityStore) *Service {
	return &Service{repo: repo, accounts: accountStore, commodities: commodityStore}
}

func (s *Service) Get(ctx context.Context, guid ident.GUID) (Transaction, error) {
	return s.repo.Get(ctx, guid)
}

// Save persists a simple transfer, replacing any prior state under the same
// transaction guid. The sequence is: delete transaction + splits + slots,
// insert the transaction, insert two fresh splits (counter account negated,
// target account as given), insert a notes slot when a memo was supplied.
// The whole sequence runs in one storage transaction so a failure can never
// leave a mix of old and new rows. Re-saving the same guid is idempotent for
// edits: prior splits are never reused, always replaced.
func (s *Service) Save(ctx context.Context, in SaveInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	// Check every reference up front so the delete step cannot run for
	// input that would fail mid-sequence anyway.
	if _, err := s.commodities.Get(ctx, in.CurrencyGUID); err != nil {
		return fmt.Errorf("transactions: currency: %w", err)
	}
	if _, err := s.accounts.Get(ctx, in.TargetAccountGUID); err != nil {
		return fmt.Errorf("transactions: target account: %w", err)
	}
	if _, err := s.accounts.Get(ctx, in.CounterAccountGUID); err != nil {
		return fmt.Errorf("transactions: counter account: %w", err)
	}

	enterDate := in.EnterDate
	if enterDate.IsZero() {
		enterDate = ident.Now()
	}

	t := Transaction{
		GUID:         in.GUID,
		CurrencyGUID: in.CurrencyGUID,
		Num:          in.Num,
		PostDate:     in.PostDate,
		EnterDate:    enterDate,
		Description:  in.Description,
	}

	// Negation happens on the same numerator/denominator before any
	// division, so the two splits sum to zero by construction.
	counterSplit := Split{
		GUID:           ident.NewGUID(),
		TxGUID:         in.GUID,
		AccountGUID:    in.CounterAccountGUID,
		ReconcileState: ReconcileNo,
		Value:          in.Amount.Neg(),
		Quantity:       in.Amount.Neg(),
	}
	targetSplit := Split{
		GUID:           ident.NewGUID(),
		TxGUID:         in.GUID,
		AccountGUID:    in.TargetAccountGUID,
		ReconcileState: ReconcileNo,
		Value:          in.Amount,
		Quantity:       in.Amount,
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.DeleteTransactionRows(ctx, in.GUID); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		if err := tx.InsertSplit(ctx, counterSplit); err != nil {
			return err
		}
		if err := tx.InsertSplit(ctx, targetSplit); err != nil {
			return err
		}
		if memo := in.trimmedMemo(); memo != "" {
			if err := tx.InsertNoteSlot(ctx, in.GUID, memo); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the transaction, its splits and its slots as one atomic
// unit. Deleting a transaction that does not exist is an error, not a
// silent success.
func (s *Service) Delete(ctx context.Context, guid ident.GUID) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existed, err := tx.DeleteTransactionRows(ctx, guid)
		if err != nil {
			return err
		}
		if !existed {
			return fmt.Errorf("transactions: %w: guid %s", shared.ErrNotFound, guid)
		}
		return nil
	})
}

// FindCounterpart returns the other side of each transaction matching the
// account and exact description.
func (s *Service) FindCounterpart(ctx context.Context, accountGUID ident.GUID, description string) ([]RegisterRow, error) {
	return s.repo.FindCounterpart(ctx, accountGUID, description)
}

// Register returns the account's register rows: all of them, or only the
// trailing year when the corresponding setting is off.
func (s *Service) Register(ctx context.Context, accountGUID ident.GUID, includeOlderThanOneYear bool) ([]RegisterRow, error) {
	if includeOlderThanOneYear {
		return s.repo.ListForAccount(ctx, accountGUID)
	}
	cutoff := ident.TimestampOf(ident.Now().Time().AddDate(-1, 0, 0))
	return s.repo.ListForAccountSince(ctx, accountGUID, cutoff)
}
