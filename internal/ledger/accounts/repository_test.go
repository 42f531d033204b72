package accounts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepbook/keepbook/internal/ledger/commodities"
	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/shared"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

func openTestBook(t *testing.T) *sql.DB {
	t.Helper()
	handle, err := platformdb.Open(context.Background(), filepath.Join(t.TempDir(), "book.gnucash"))
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })
	return handle
}

func seedUSD(t *testing.T, handle *sql.DB) commodities.Commodity {
	t.Helper()
	usd := commodities.Commodity{
		GUID:      ident.NewGUID(),
		Namespace: commodities.NamespaceCurrency,
		Mnemonic:  "USD",
		Fullname:  "US Dollar",
		Fraction:  100,
	}
	require.NoError(t, commodities.NewRepository(handle).Save(context.Background(), usd))
	return usd
}

func account(name string, kind AccountType, commodity, parent ident.GUID) Account {
	return Account{
		GUID:          ident.NewGUID(),
		Name:          name,
		Type:          kind,
		CommodityGUID: commodity,
		ParentGUID:    parent,
	}
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	usd := seedUSD(t, handle)
	repo := NewRepository(handle)

	checking := account("Checking", TypeBank, usd.GUID, ident.NilGUID)
	checking.Description = "day to day money"
	require.NoError(t, repo.Save(ctx, checking))

	got, err := repo.Get(ctx, checking.GUID)
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.Name)
	assert.Equal(t, TypeBank, got.Type)
	assert.Equal(t, usd.GUID, got.CommodityGUID)
	assert.Equal(t, int64(100), got.CommoditySCU, "scu follows the commodity fraction")
	assert.True(t, got.ParentGUID.IsNil())

	require.NoError(t, repo.Delete(ctx, checking.GUID))
	_, err = repo.Get(ctx, checking.GUID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSaveReplacesByGUID(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	usd := seedUSD(t, handle)
	repo := NewRepository(handle)

	a := account("Wallet", TypeCash, usd.GUID, ident.NilGUID)
	require.NoError(t, repo.Save(ctx, a))

	a.Name = "Cash Wallet"
	a.Hidden = true
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.Get(ctx, a.GUID)
	require.NoError(t, err)
	assert.Equal(t, "Cash Wallet", got.Name)
	assert.True(t, got.Hidden)

	var count int
	require.NoError(t, handle.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count))
	assert.Equal(t, 1, count, "re-save must not duplicate the row")
}

func TestSaveRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	repo := NewRepository(handle)

	bad := account("Odd", AccountType("MYSTERY"), ident.NilGUID, ident.NilGUID)
	err := repo.Save(ctx, bad)
	assert.ErrorIs(t, err, ident.ErrInvalidFormat)
}

func TestDeleteMissingAccountFailsLoudly(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	repo := NewRepository(handle)

	err := repo.Delete(ctx, ident.NewGUID())
	var rce *shared.RowCountError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, int64(0), rce.Affected)
}

func TestGetNilGUIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	repo := NewRepository(handle)

	_, err := repo.Get(ctx, ident.NilGUID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListActiveFilters(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	usd := seedUSD(t, handle)
	repo := NewRepository(handle)

	root := account(RootAccountName, TypeRoot, ident.NilGUID, ident.NilGUID)
	require.NoError(t, repo.Save(ctx, root))

	visible := account("Checking", TypeBank, usd.GUID, root.GUID)
	hidden := account("Old Savings", TypeBank, usd.GUID, root.GUID)
	hidden.Hidden = true
	placeholder := account("Buckets", TypeAsset, usd.GUID, root.GUID)
	placeholder.Placeholder = true
	income := account("Salary", TypeIncome, usd.GUID, root.GUID)
	expenses := account("Expenses", TypeAsset, usd.GUID, root.GUID)

	for _, a := range []Account{visible, hidden, placeholder, income, expenses} {
		require.NoError(t, repo.Save(ctx, a))
	}

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, visible.GUID, active[0].GUID)

	postable, err := repo.ListAllPostable(ctx)
	require.NoError(t, err)
	assert.Len(t, postable, 5, "postable excludes only the synthetic roots")
}

func TestFindTopLevelByKind(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	usd := seedUSD(t, handle)
	repo := NewRepository(handle)

	root := account(RootAccountName, TypeRoot, ident.NilGUID, ident.NilGUID)
	assets := account("Assets", TypeAsset, usd.GUID, root.GUID)
	checking := account("Checking", TypeAsset, usd.GUID, assets.GUID)
	for _, a := range []Account{root, assets, checking} {
		require.NoError(t, repo.Save(ctx, a))
	}

	top, err := repo.FindTopLevelByKind(ctx, TypeAsset)
	require.NoError(t, err)
	assert.Equal(t, assets.GUID, top.GUID)

	_, err = repo.FindTopLevelByKind(ctx, TypeLiability)
	var ambiguous *shared.AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 0, ambiguous.Matches)
}

func TestFindUniqueByNameAmbiguity(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	usd := seedUSD(t, handle)
	repo := NewRepository(handle)

	first := account("Groceries", TypeExpense, usd.GUID, ident.NilGUID)
	require.NoError(t, repo.Save(ctx, first))

	got, err := repo.FindUniqueByName(ctx, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, first.GUID, got.GUID)

	second := account("Groceries", TypeExpense, usd.GUID, ident.NilGUID)
	require.NoError(t, repo.Save(ctx, second))

	_, err = repo.FindUniqueByName(ctx, "Groceries")
	var ambiguous *shared.AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Matches)

	_, err = repo.FindUniqueByName(ctx, "No Such Account")
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 0, ambiguous.Matches)
}

func TestFindUniquePrefix(t *testing.T) {
	ctx := context.Background()
	handle := openTestBook(t)
	usd := seedUSD(t, handle)
	repo := NewRepository(handle)

	groceries := account("Groceries", TypeExpense, usd.GUID, ident.NilGUID)
	gas := account("Gasoline", TypeExpense, usd.GUID, ident.NilGUID)
	for _, a := range []Account{groceries, gas} {
		require.NoError(t, repo.Save(ctx, a))
	}

	got, err := repo.FindUniquePrefix(ctx, "Gro")
	require.NoError(t, err)
	assert.Equal(t, groceries.GUID, got.GUID)

	_, err = repo.FindUniquePrefix(ctx, "G")
	var ambiguous *shared.AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Matches)
}
