package transactions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/commodities"
	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
	"github.com/keepbook/keepbook/internal/ledger/shared"
)

type fakeAccounts struct {
	known map[ident.GUID]accounts.Account
}

func (f *fakeAccounts) Get(_ context.Context, guid ident.GUID) (accounts.Account, error) {
	a, ok := f.known[guid]
	if !ok {
		return accounts.Account{}, shared.ErrNotFound
	}
	return a, nil
}

type fakeCommodities struct {
	known map[ident.GUID]commodities.Commodity
}

func (f *fakeCommodities) Get(_ context.Context, guid ident.GUID) (commodities.Commodity, error) {
	c, ok := f.known[guid]
	if !ok {
		return commodities.Commodity{}, shared.ErrNotFound
	}
	return c, nil
}

type recordingRepo struct {
	Repository
	txCalls int
}

func (r *recordingRepo) WithTx(context.Context, func(context.Context, TxRepository) error) error {
	r.txCalls++
	return nil
}

func validInput(currency, target, counter ident.GUID) SaveInput {
	post, _ := ident.ParseTimestamp("20240115000000")
	return SaveInput{
		GUID:               ident.NewGUID(),
		CurrencyGUID:       currency,
		PostDate:           post,
		Description:        "Groceries run",
		TargetAccountGUID:  target,
		CounterAccountGUID: counter,
		Amount:             numeric.New(-4250, 100),
	}
}

func TestSaveInputValidate(t *testing.T) {
	currency, target, counter := ident.NewGUID(), ident.NewGUID(), ident.NewGUID()

	ok := validInput(currency, target, counter)
	require.NoError(t, ok.Validate())

	missingGUID := ok
	missingGUID.GUID = ident.NilGUID
	assert.Error(t, missingGUID.Validate())

	missingPost := ok
	missingPost.PostDate = ident.Timestamp{}
	assert.Error(t, missingPost.Validate())

	sameAccounts := ok
	sameAccounts.CounterAccountGUID = sameAccounts.TargetAccountGUID
	assert.Error(t, sameAccounts.Validate())

	badDenom := ok
	badDenom.Amount = numeric.New(1, 0)
	assert.Error(t, badDenom.Validate())
}

func TestSaveChecksReferencesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	currency, target, counter := ident.NewGUID(), ident.NewGUID(), ident.NewGUID()

	commodityStore := &fakeCommodities{known: map[ident.GUID]commodities.Commodity{
		currency: {GUID: currency, Mnemonic: "USD", Fraction: 100},
	}}
	accountStore := &fakeAccounts{known: map[ident.GUID]accounts.Account{
		target:  {GUID: target, Name: "Checking"},
		counter: {GUID: counter, Name: "Groceries"},
	}}
	repo := &recordingRepo{}
	svc := NewService(repo, accountStore, commodityStore)

	missingCurrency := validInput(ident.NewGUID(), target, counter)
	err := svc.Save(ctx, missingCurrency)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	missingTarget := validInput(currency, ident.NewGUID(), counter)
	err = svc.Save(ctx, missingTarget)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	missingCounter := validInput(currency, target, ident.NewGUID())
	err = svc.Save(ctx, missingCounter)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Zero(t, repo.txCalls, "no storage transaction may start for invalid references")
}
