package balances

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keepbook/keepbook/internal/ledger/ident"
	"github.com/keepbook/keepbook/internal/ledger/numeric"
	"github.com/keepbook/keepbook/internal/ledger/shared"
)

// Service folds store subtotals into exact balances.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Of computes the account's balance from splits posted on or before asOf,
// today when asOf is zero. Subtotals carrying different denominators are
// rescaled to a common one before summation; only a sum that cannot be
// represented exactly in 64 bits fails.
func (s *Service) Of(ctx context.Context, accountGUID ident.GUID, asOf ident.Timestamp) (numeric.Numeric, error) {
	if asOf.IsZero() {
		asOf = ident.Now()
	}
	parts, err := s.repo.Partials(ctx, accountGUID)
	if err != nil {
		return numeric.Numeric{}, err
	}
	if len(parts) == 0 {
		return numeric.Numeric{}, fmt.Errorf("balances: account %s: %w", accountGUID, shared.ErrNotFound)
	}
	return foldPartials(parts, asOf)
}

// ForActiveAccounts computes one balance per listed account in a single
// store pass.
func (s *Service) ForActiveAccounts(ctx context.Context, asOf ident.Timestamp) ([]AccountBalance, error) {
	if asOf.IsZero() {
		asOf = ident.Now()
	}
	rows, err := s.repo.PartialsForActiveAccounts(ctx)
	if err != nil {
		return nil, err
	}

	var out []AccountBalance
	for _, row := range rows {
		// Subtotal rows for one account are adjacent in the result.
		if n := len(out); n == 0 || out[n-1].Account.GUID != row.Account.GUID {
			out = append(out, AccountBalance{
				Account:  row.Account,
				Balance:  numeric.Zero(row.Partial.Fraction),
				Mnemonic: row.Mnemonic,
			})
		}
		last := &out[len(out)-1]
		sum, err := applyPartial(last.Balance, row.Partial, asOf)
		if err != nil {
			return nil, fmt.Errorf("balances: account %q: %w", row.Account.Name, err)
		}
		last.Balance = sum
	}
	return out, nil
}

// Window lists the account's splits posted inside [from, thru] together
// with per-category totals, where the category is the other account of
// each transaction.
func (s *Service) Window(ctx context.Context, accountGUID ident.GUID, from, thru ident.Timestamp) ([]WindowRow, []CategoryTotal, error) {
	all, err := s.repo.Window(ctx, accountGUID)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]WindowRow, 0, len(all))
	for _, row := range all {
		if row.PostDate.Before(from) || thru.Before(row.PostDate) {
			continue
		}
		rows = append(rows, row)
	}

	totals := make([]CategoryTotal, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		i, seen := index[row.Category]
		if !seen {
			index[row.Category] = len(totals)
			totals = append(totals, CategoryTotal{Category: row.Category, Total: row.Value})
			continue
		}
		sum, err := totals[i].Total.Add(row.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("balances: category %q: %w", row.Category, err)
		}
		totals[i].Total = sum
	}
	return rows, totals, nil
}

func foldPartials(parts []Partial, asOf ident.Timestamp) (numeric.Numeric, error) {
	sum := numeric.Zero(parts[0].Fraction)
	for _, p := range parts {
		next, err := applyPartial(sum, p, asOf)
		if err != nil {
			return numeric.Numeric{}, fmt.Errorf("balances: %w", err)
		}
		sum = next
	}
	return sum, nil
}

// applyPartial adds one subtotal to a running balance. Empty subtotals
// stand for an account without splits and contribute nothing; any other
// subtotal must carry a parseable post date on or before asOf to count.
func applyPartial(sum numeric.Numeric, p Partial, asOf ident.Timestamp) (numeric.Numeric, error) {
	if !p.Denom.Valid {
		return sum, nil
	}
	posted, err := postedAt(p.PostDate)
	if err != nil {
		return numeric.Numeric{}, err
	}
	if asOf.Before(posted) {
		return sum, nil
	}
	next, err := sum.Add(numeric.New(p.Num, p.Denom.Int64))
	if err != nil {
		return numeric.Numeric{}, fmt.Errorf("fold subtotals: %w", err)
	}
	return next, nil
}

// postedAt parses a stored post date with the same strictness as the rest
// of the package. A missing date is as unreadable as a garbled one.
func postedAt(raw sql.NullString) (ident.Timestamp, error) {
	if !raw.Valid {
		return ident.Timestamp{}, fmt.Errorf("transaction post date missing: %w", ident.ErrInvalidFormat)
	}
	ts, err := ident.ParseTimestamp(raw.String)
	if err != nil {
		return ident.Timestamp{}, fmt.Errorf("transaction post date: %w", err)
	}
	return ts, nil
}
