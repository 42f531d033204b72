package accounts

import (
	"context"

	"github.com/keepbook/keepbook/internal/ledger/ident"
)

// Service exposes account store operations to the shell and to the other
// ledger components. Balances are computed separately on read; the account
// record never caches one.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, guid ident.GUID) (Account, error) {
	return s.repo.Get(ctx, guid)
}

func (s *Service) ListActive(ctx context.Context) ([]Account, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListAllPostable(ctx context.Context) ([]Account, error) {
	return s.repo.ListAllPostable(ctx)
}

func (s *Service) FindTopLevelByKind(ctx context.Context, kind AccountType) (Account, error) {
	return s.repo.FindTopLevelByKind(ctx, kind)
}

func (s *Service) FindUniqueByName(ctx context.Context, name string) (Account, error) {
	return s.repo.FindUniqueByName(ctx, name)
}

func (s *Service) FindUniquePrefix(ctx context.Context, prefix string) (Account, error) {
	return s.repo.FindUniquePrefix(ctx, prefix)
}

func (s *Service) ListWithRecentActivity(ctx context.Context, days int) ([]Account, error) {
	return s.repo.ListWithRecentActivity(ctx, ident.Now(), days)
}

func (s *Service) Save(ctx context.Context, a Account) error {
	return s.repo.Save(ctx, a)
}

func (s *Service) Delete(ctx context.Context, guid ident.GUID) error {
	return s.repo.Delete(ctx, guid)
}
