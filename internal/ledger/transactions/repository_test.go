package transactions

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/commodities"
	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
	"github.com/keepbook/keepbook/internal/ledger/shared"
	"github.com/keepbook/keepbook/internal/ledger/slots"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

// testBook is a freshly bootstrapped book with a currency and two postable
// accounts, enough for a simple transfer.
type testBook struct {
	handle   *sql.DB
	usd      commodities.Commodity
	checking accounts.Account
	grocery  accounts.Account
	svc      *Service
}

func newTestBook(t *testing.T) *testBook {
	t.Helper()
	ctx := context.Background()

	handle, err := platformdb.Open(ctx, filepath.Join(t.TempDir(), "book.gnucash"))
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	usd := commodities.Commodity{
		GUID:      ident.NewGUID(),
		Namespace: commodities.NamespaceCurrency,
		Mnemonic:  "USD",
		Fullname:  "US Dollar",
		Fraction:  100,
	}
	require.NoError(t, commodities.NewRepository(handle).Save(ctx, usd))

	accountRepo := accounts.NewRepository(handle)
	checking := accounts.Account{
		GUID: ident.NewGUID(), Name: "Checking", Type: accounts.TypeBank, CommodityGUID: usd.GUID,
	}
	grocery := accounts.Account{
		GUID: ident.NewGUID(), Name: "Groceries", Type: accounts.TypeExpense, CommodityGUID: usd.GUID,
	}
	require.NoError(t, accountRepo.Save(ctx, checking))
	require.NoError(t, accountRepo.Save(ctx, grocery))

	return &testBook{
		handle:   handle,
		usd:      usd,
		checking: checking,
		grocery:  grocery,
		svc:      NewService(NewRepository(handle), accountRepo, commodities.NewRepository(handle)),
	}
}

func (b *testBook) transfer(t *testing.T, guid ident.GUID, post string, desc string, amount numeric.Numeric) SaveInput {
	t.Helper()
	postDate, err := ident.ParseTimestamp(post)
	require.NoError(t, err)
	return SaveInput{
		GUID:               guid,
		CurrencyGUID:       b.usd.GUID,
		PostDate:           postDate,
		Description:        desc,
		TargetAccountGUID:  b.checking.GUID,
		CounterAccountGUID: b.grocery.GUID,
		Amount:             amount,
	}
}

func (b *testBook) countRows(t *testing.T, table string, col string, guid ident.GUID) int {
	t.Helper()
	var n int
	err := b.handle.QueryRow(
		`SELECT COUNT(*) FROM `+table+` WHERE `+col+`=?`, guid.Compact()).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestSaveWritesBalancedSplits(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	in := book.transfer(t, ident.NewGUID(), "20240115000000", "Groceries run", numeric.New(-4250, 100))
	in.Memo = "  weekly shop  "
	require.NoError(t, book.svc.Save(ctx, in))

	got, err := book.svc.Get(ctx, in.GUID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries run", got.Description)
	assert.Equal(t, "20240115000000", got.PostDate.String())
	assert.False(t, got.EnterDate.IsZero(), "enter date defaults to now")
	require.Len(t, got.Splits, 2)

	var target, counter Split
	for _, s := range got.Splits {
		switch s.AccountGUID {
		case book.checking.GUID:
			target = s
		case book.grocery.GUID:
			counter = s
		}
	}
	assert.Equal(t, numeric.New(-4250, 100), target.Value)
	assert.Equal(t, numeric.New(4250, 100), counter.Value)
	assert.Equal(t, target.Value, target.Quantity)
	assert.Equal(t, ReconcileNo, target.ReconcileState)
	sum, err := target.Value.Add(counter.Value)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	noteSlots, err := slots.NewRepository(book.handle).ByOwner(ctx, in.GUID)
	require.NoError(t, err)
	require.Len(t, noteSlots, 1)
	assert.Equal(t, slots.NameNotes, noteSlots[0].Name)
	assert.Equal(t, "weekly shop", noteSlots[0].StringVal)
}

func TestResaveReplacesInsteadOfAccumulating(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	guid := ident.NewGUID()
	first := book.transfer(t, guid, "20240115000000", "Groceries run", numeric.New(-4250, 100))
	first.Memo = "original note"
	require.NoError(t, book.svc.Save(ctx, first))

	edited := book.transfer(t, guid, "20240116000000", "Groceries run, corrected", numeric.New(-4300, 100))
	require.NoError(t, book.svc.Save(ctx, edited))

	assert.Equal(t, 1, book.countRows(t, "transactions", "guid", guid))
	assert.Equal(t, 2, book.countRows(t, "splits", "tx_guid", guid))
	assert.Equal(t, 0, book.countRows(t, "slots", "obj_guid", guid), "dropping the memo removes the note slot")

	got, err := book.svc.Get(ctx, guid)
	require.NoError(t, err)
	assert.Equal(t, "Groceries run, corrected", got.Description)
	assert.Equal(t, "20240116000000", got.PostDate.String())
	for _, s := range got.Splits {
		assert.NotEqual(t, int64(4250), s.Value.Num)
		assert.NotEqual(t, int64(-4250), s.Value.Num)
	}
}

func TestDeleteRemovesSplitsAndSlots(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	in := book.transfer(t, ident.NewGUID(), "20240115000000", "Groceries run", numeric.New(-4250, 100))
	in.Memo = "to be removed"
	require.NoError(t, book.svc.Save(ctx, in))

	require.NoError(t, book.svc.Delete(ctx, in.GUID))
	assert.Equal(t, 0, book.countRows(t, "transactions", "guid", in.GUID))
	assert.Equal(t, 0, book.countRows(t, "splits", "tx_guid", in.GUID))
	assert.Equal(t, 0, book.countRows(t, "slots", "obj_guid", in.GUID))

	err := book.svc.Delete(ctx, in.GUID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFindCounterpartReturnsOtherSide(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	older := book.transfer(t, ident.NewGUID(), "20240101000000", "Groceries run", numeric.New(-4000, 100))
	newer := book.transfer(t, ident.NewGUID(), "20240201000000", "Groceries run", numeric.New(-4250, 100))
	unrelated := book.transfer(t, ident.NewGUID(), "20240115000000", "Fuel", numeric.New(-6000, 100))
	require.NoError(t, book.svc.Save(ctx, older))
	require.NoError(t, book.svc.Save(ctx, newer))
	require.NoError(t, book.svc.Save(ctx, unrelated))

	rows, err := book.svc.FindCounterpart(ctx, book.checking.GUID, "Groceries run")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.GUID, rows[0].TxGUID, "newest post date first")
	assert.Equal(t, older.GUID, rows[1].TxGUID)
	for _, row := range rows {
		assert.Equal(t, book.grocery.GUID, row.OtherAccountGUID)
		assert.Equal(t, "Groceries", row.OtherAccountName)
		assert.Equal(t, "USD", row.CurrencyMnemonic)
	}
}

func TestRegisterWindowsOnSetting(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	recentPost := ident.TimestampOf(ident.Now().Time().AddDate(0, -1, 0))
	ancientPost := ident.TimestampOf(ident.Now().Time().AddDate(-3, 0, 0))
	recent := book.transfer(t, ident.NewGUID(), recentPost.String(), "Groceries run", numeric.New(-4250, 100))
	ancient := book.transfer(t, ident.NewGUID(), ancientPost.String(), "Old groceries", numeric.New(-1000, 100))
	require.NoError(t, book.svc.Save(ctx, recent))
	require.NoError(t, book.svc.Save(ctx, ancient))

	all, err := book.svc.Register(ctx, book.checking.GUID, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ancient.GUID, all[0].TxGUID, "register sorts by post date ascending")

	windowed, err := book.svc.Register(ctx, book.checking.GUID, false)
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, recent.GUID, windowed[0].TxGUID)
	assert.Equal(t, numeric.New(-4250, 100), windowed[0].Value)
	assert.Equal(t, "Groceries", windowed[0].OtherAccountName)
}
