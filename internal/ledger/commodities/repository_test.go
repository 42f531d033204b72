package commodities

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/shared"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

func openTestRepo(t *testing.T) Repository {
	t.Helper()
	handle, err := platformdb.Open(context.Background(), filepath.Join(t.TempDir(), "book.gnucash"))
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })
	return NewRepository(handle)
}

func usd() Commodity {
	return Commodity{
		GUID:      ident.NewGUID(),
		Namespace: NamespaceCurrency,
		Mnemonic:  "USD",
		Fullname:  "US Dollar",
		Fraction:  100,
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	c := usd()
	c.QuoteFlag = true
	c.QuoteSource = "currency"
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.Get(ctx, c.GUID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSaveReplacesByGUID(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	c := usd()
	require.NoError(t, repo.Save(ctx, c))

	c.Fullname = "United States Dollar"
	require.NoError(t, repo.Save(ctx, c))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "United States Dollar", all[0].Fullname)
}

func TestListOrdersByNamespaceAndMnemonic(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	eur := usd()
	eur.GUID = ident.NewGUID()
	eur.Mnemonic = "EUR"
	eur.Fullname = "Euro"
	require.NoError(t, repo.Save(ctx, usd()))
	require.NoError(t, repo.Save(ctx, eur))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "EUR", all[0].Mnemonic)
	assert.Equal(t, "USD", all[1].Mnemonic)
}

func TestGetNilAndMissing(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_, err := repo.Get(ctx, ident.NilGUID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.Get(ctx, ident.NewGUID())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteIsStrictAboutRowCount(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	c := usd()
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, repo.Delete(ctx, c.GUID))

	err := repo.Delete(ctx, c.GUID)
	var rowCount *shared.RowCountError
	require.ErrorAs(t, err, &rowCount)
	assert.Zero(t, rowCount.Affected)
}
