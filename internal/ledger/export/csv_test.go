package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
	"github.com/keepbook/keepbook/internal/ledger/transactions"
)

func TestWriteRegister(t *testing.T) {
	post, err := ident.ParseTimestamp("20240115000000")
	require.NoError(t, err)

	rows := []transactions.RegisterRow{
		{
			TxGUID:           ident.NewGUID(),
			PostDate:         post,
			Description:      "Groceries run",
			Memo:             "weekly shop",
			Value:            numeric.New(-4250, 100),
			OtherAccountName: "Groceries",
			CurrencyMnemonic: "USD",
		},
		{
			TxGUID:           ident.NewGUID(),
			PostDate:         post,
			Description:      "Bonus, with comma",
			Value:            numeric.New(123456789, 100),
			OtherAccountName: "Salary",
			CurrencyMnemonic: "USD",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, rows))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, registerHeader, parsed[0])
	assert.Equal(t, []string{"2024-01-15", "", "Groceries run", "weekly shop", "Groceries", "-42.5", "USD", "-42.50"}, parsed[1])
	assert.Equal(t, "1,234,567.89", parsed[2][7], "display amount groups digits")
	assert.Equal(t, "1234567.89", parsed[2][5])
}

func TestWriteRegisterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, nil))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 1, "header only")
}
