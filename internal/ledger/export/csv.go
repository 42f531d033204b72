// Package export renders ledger views for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/keepbook/keepbook/internal/ledger/transactions"
)

var registerHeader = []string{"date", "num", "description", "memo", "category", "amount", "currency", "amount_display"}

// WriteRegister streams an account register as CSV. The amount column keeps
// the exact decimal value; amount_display adds locale digit grouping for
// spreadsheet-unfriendly readers.
func WriteRegister(w io.Writer, rows []transactions.RegisterRow) error {
	printer := message.NewPrinter(language.English)
	out := csv.NewWriter(w)

	if err := out.Write(registerHeader); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.PostDate.Time().Format("2006-01-02"),
			row.Num,
			row.Description,
			row.Memo,
			row.OtherAccountName,
			row.Value.Decimal().String(),
			row.CurrencyMnemonic,
			printer.Sprintf("%.2f", row.Value.Decimal().InexactFloat64()),
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}
