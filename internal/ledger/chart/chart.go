// Package chart seeds a new book with a default chart of accounts.
package chart

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/commodities"
	"github.com/keepbook/keepbook/internal/ledger/ident"
)

//go:embed template.yaml
var defaultTemplate []byte

// Template describes the starting book: one currency and a small account
// tree under the root.
type Template struct {
	Currency struct {
		Mnemonic string `yaml:"mnemonic"`
		Fullname string `yaml:"fullname"`
		Fraction int64  `yaml:"fraction"`
	} `yaml:"currency"`
	Accounts []Node `yaml:"accounts"`
}

// Node is one account in the template tree.
type Node struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Placeholder bool   `yaml:"placeholder"`
	Children    []Node `yaml:"children"`
}

// Default decodes the embedded template.
func Default() (Template, error) {
	var t Template
	if err := yaml.Unmarshal(defaultTemplate, &t); err != nil {
		return Template{}, fmt.Errorf("chart: decode template: %w", err)
	}
	return t, nil
}

// Seeder populates a freshly created book.
type Seeder struct {
	commodities commodities.Repository
	accounts    accounts.Repository
}

func NewSeeder(commodityRepo commodities.Repository, accountRepo accounts.Repository) *Seeder {
	return &Seeder{commodities: commodityRepo, accounts: accountRepo}
}

// SeedIfEmpty applies the template when the book holds no commodities yet.
// An already populated book is left untouched.
func (s *Seeder) SeedIfEmpty(ctx context.Context, t Template) (bool, error) {
	existing, err := s.commodities.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := s.seed(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) seed(ctx context.Context, t Template) error {
	currency := commodities.Commodity{
		GUID:      ident.NewGUID(),
		Namespace: commodities.NamespaceCurrency,
		Mnemonic:  t.Currency.Mnemonic,
		Fullname:  t.Currency.Fullname,
		Fraction:  t.Currency.Fraction,
	}
	if err := s.commodities.Save(ctx, currency); err != nil {
		return err
	}

	root := accounts.Account{
		GUID: ident.NewGUID(),
		Name: accounts.RootAccountName,
		Type: accounts.TypeRoot,
	}
	templateRoot := accounts.Account{
		GUID: ident.NewGUID(),
		Name: accounts.TemplateRootName,
		Type: accounts.TypeRoot,
	}
	if err := s.accounts.Save(ctx, root); err != nil {
		return err
	}
	if err := s.accounts.Save(ctx, templateRoot); err != nil {
		return err
	}

	for _, node := range t.Accounts {
		if err := s.plant(ctx, node, root.GUID, currency.GUID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) plant(ctx context.Context, node Node, parent, currency ident.GUID) error {
	kind, err := accounts.ParseAccountType(node.Type)
	if err != nil {
		return fmt.Errorf("chart: account %q: %w", node.Name, err)
	}
	a := accounts.Account{
		GUID:          ident.NewGUID(),
		Name:          node.Name,
		Type:          kind,
		CommodityGUID: currency,
		ParentGUID:    parent,
		Placeholder:   node.Placeholder,
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := s.plant(ctx, child, a.GUID, currency); err != nil {
			return err
		}
	}
	return nil
}
