// Package commodities stores the currency and security definitions that
// accounts and transactions reference.
package commodities

import "github.com/keepbook/keepbook/internal/ledger/ident"

// Commodity is a currency or tradeable unit. Fraction is the divisor that
// defines the smallest representable unit (100 for a currency with cents).
type Commodity struct {
	GUID        ident.GUID
	Namespace   string
	Mnemonic    string
	Fullname    string
	CUSIP       string
	Fraction    int64
	QuoteFlag   bool
	QuoteSource string
	QuoteTZ     string
}

// NamespaceCurrency is the namespace ordinary currencies live under.
const NamespaceCurrency = "CURRENCY"
