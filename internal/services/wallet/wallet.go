// Package wallet is the REST module for personal finance: wallets, transactions,
// budgets, subscriptions, savings goals and their lookup collections.
package wallet

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/nvms/internal/api"
)

// Endpoints, all under wallet/.
const (
	WalletsPath       = "wallet/wallets/"
	TransactionsPath  = "wallet/transactions/"
	BudgetsPath       = "wallet/budgets/"
	SubscriptionsPath = "wallet/subscriptions/"
	SavingsGoalsPath  = "wallet/savings-goals/"
	CategoriesPath    = "wallet/categories/"
	TagsPath          = "wallet/tags/"
	CurrenciesPath    = "wallet/currencies/"
)

// ReferenceData is the lookup snapshot a finance screen loads once to fill its
// selects.
type ReferenceData struct {
	Wallets    []Wallet   `json:"wallets" yaml:"wallets"`
	Currencies []Currency `json:"currencies" yaml:"currencies"`
	Categories []Category `json:"categories" yaml:"categories"`
	Tags       []Tag      `json:"tags" yaml:"tags"`
}

// Service groups the wallet sub-resources.
type Service struct {
	Wallets       *api.Resource[Wallet]
	Transactions  *api.Resource[Transaction]
	Budgets       *api.Resource[Budget]
	Subscriptions *api.Resource[Subscription]
	SavingsGoals  *api.Resource[SavingsGoal]
	Categories    *api.Resource[Category]
	Tags          *api.Resource[Tag]
	Currencies    *api.Resource[Currency]
}

// New creates the service.
func New(client *api.Client) *Service {
	return &Service{
		Wallets:       api.NewResource[Wallet](client, "wallet", WalletsPath),
		Transactions:  api.NewResource[Transaction](client, "transaction", TransactionsPath),
		Budgets:       api.NewResource[Budget](client, "budget", BudgetsPath),
		Subscriptions: api.NewResource[Subscription](client, "subscription", SubscriptionsPath),
		SavingsGoals:  api.NewResource[SavingsGoal](client, "savings goal", SavingsGoalsPath),
		Categories:    api.NewResource[Category](client, "category", CategoriesPath),
		Tags:          api.NewResource[Tag](client, "tag", TagsPath),
		Currencies:    api.NewResource[Currency](client, "currency", CurrenciesPath),
	}
}

// ListTransactions returns transactions of the given kind; an empty kind returns both.
func (s *Service) ListTransactions(ctx context.Context, kind Kind) ([]Transaction, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q: want income or expense", kind)
	}
	params := url.Values{}
	if kind != "" {
		params.Set("type", string(kind))
	}
	return s.Transactions.All(ctx, params)
}

// ReferenceData fetches wallets, currencies, categories and tags concurrently.
// The first failure cancels the rest.
func (s *Service) ReferenceData(ctx context.Context) (*ReferenceData, error) {
	var ref ReferenceData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wallets, err := s.Wallets.All(ctx, nil)
		ref.Wallets = wallets
		return err
	})
	g.Go(func() error {
		currencies, err := s.Currencies.All(ctx, nil)
		ref.Currencies = currencies
		return err
	})
	g.Go(func() error {
		categories, err := s.Categories.All(ctx, nil)
		ref.Categories = categories
		return err
	})
	g.Go(func() error {
		tags, err := s.Tags.All(ctx, nil)
		ref.Tags = tags
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ref, nil
}
