package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/listview"
	"github.com/felixgeelhaar/nvms/internal/services/wallet"
	"github.com/felixgeelhaar/nvms/internal/tui"
	"github.com/felixgeelhaar/nvms/internal/ux"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Personal finance: wallets, transactions, budgets and goals",
}

var walletRefDataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Show wallets, currencies, categories and tags",
	RunE:  runWalletRefData,
}

// walletListing declares one `wallet <name> list` command.
type walletListing[T listview.Fielder] struct {
	use     string
	aliases []string
	short   string
	sort    string
	columns []tui.Column
	flags   func(list *cobra.Command)
	load    func(ctx context.Context, svc *wallet.Service, cmd *cobra.Command) ([]T, error)
}

func (l walletListing[T]) command() *cobra.Command {
	parent := &cobra.Command{Use: l.use, Aliases: l.aliases, Short: l.short}
	list := &cobra.Command{
		Use:   "list",
		Short: l.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			items, err := l.load(cmd.Context(), wallet.New(a.client), cmd)
			if err != nil {
				return err
			}
			return a.print(listTable(items, l.columns, listview.FieldOf[T], sortStateFrom(cmd)))
		},
	}
	addSortFlags(list, l.sort)
	if l.flags != nil {
		l.flags(list)
	}
	parent.AddCommand(list)
	return parent
}

func init() {
	walletCmd.AddCommand(walletListing[wallet.Wallet]{
		use:   "wallets",
		short: "List wallets",
		sort:  "name",
		columns: []tui.Column{
			{Field: "id", Title: "ID", Width: 6},
			{Field: "name", Title: "Name", Width: 24},
			{Field: "balance", Title: "Balance", Width: 12},
			{Field: "currency", Title: "Currency", Width: 9},
			{Field: "is_active", Title: "Active", Width: 7},
		},
		load: func(ctx context.Context, svc *wallet.Service, _ *cobra.Command) ([]wallet.Wallet, error) {
			return svc.Wallets.All(ctx, nil)
		},
	}.command())

	walletCmd.AddCommand(walletListing[wallet.Transaction]{
		use:     "transactions",
		aliases: []string{"tx"},
		short:   "List transactions",
		sort:    "date",
		columns: []tui.Column{
			{Field: "id", Title: "ID", Width: 6},
			{Field: "date", Title: "Date", Width: 11},
			{Field: "type", Title: "Type", Width: 8},
			{Field: "amount", Title: "Amount", Width: 12},
			{Field: "wallet", Title: "Wallet", Width: 7},
			{Field: "category", Title: "Category", Width: 9},
			{Field: "description", Title: "Description", Width: 30},
		},
		flags: func(list *cobra.Command) {
			list.Flags().String("type", "", "only income or expense transactions")
		},
		load: func(ctx context.Context, svc *wallet.Service, cmd *cobra.Command) ([]wallet.Transaction, error) {
			kind, _ := cmd.Flags().GetString("type")
			return svc.ListTransactions(ctx, wallet.Kind(kind))
		},
	}.command())

	walletCmd.AddCommand(walletListing[wallet.Budget]{
		use:   "budgets",
		short: "List budgets",
		sort:  "name",
		columns: []tui.Column{
			{Field: "id", Title: "ID", Width: 6},
			{Field: "name", Title: "Name", Width: 24},
			{Field: "amount", Title: "Amount", Width: 12},
			{Field: "spent", Title: "Spent", Width: 12},
			{Field: "period", Title: "Period", Width: 10},
			{Field: "end_date", Title: "Ends", Width: 11},
		},
		load: func(ctx context.Context, svc *wallet.Service, _ *cobra.Command) ([]wallet.Budget, error) {
			return svc.Budgets.All(ctx, nil)
		},
	}.command())

	walletCmd.AddCommand(walletListing[wallet.Subscription]{
		use:     "subscriptions",
		aliases: []string{"subs"},
		short:   "List subscriptions",
		sort:    "next_payment_date",
		columns: []tui.Column{
			{Field: "id", Title: "ID", Width: 6},
			{Field: "name", Title: "Name", Width: 24},
			{Field: "amount", Title: "Amount", Width: 12},
			{Field: "billing_cycle", Title: "Cycle", Width: 10},
			{Field: "next_payment_date", Title: "Next payment", Width: 12},
			{Field: "is_active", Title: "Active", Width: 7},
		},
		load: func(ctx context.Context, svc *wallet.Service, _ *cobra.Command) ([]wallet.Subscription, error) {
			return svc.Subscriptions.All(ctx, nil)
		},
	}.command())

	walletCmd.AddCommand(walletListing[wallet.SavingsGoal]{
		use:   "goals",
		short: "List savings goals",
		sort:  "deadline",
		columns: []tui.Column{
			{Field: "id", Title: "ID", Width: 6},
			{Field: "name", Title: "Name", Width: 24},
			{Field: "current_amount", Title: "Saved", Width: 12},
			{Field: "target_amount", Title: "Target", Width: 12},
			{Field: "progress", Title: "%", Width: 6},
			{Field: "deadline", Title: "Deadline", Width: 11},
		},
		load: func(ctx context.Context, svc *wallet.Service, _ *cobra.Command) ([]wallet.SavingsGoal, error) {
			return svc.SavingsGoals.All(ctx, nil)
		},
	}.command())

	walletCmd.AddCommand(walletRefDataCmd)
	rootCmd.AddCommand(walletCmd)
}

func runWalletRefData(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	ref, err := wallet.New(a.client).ReferenceData(cmd.Context())
	if err != nil {
		return err
	}
	return a.print(refDataView(ref))
}

func refDataView(ref *wallet.ReferenceData) ux.KeyValues {
	return ux.KeyValues{Records: ref}.
		Add("Wallets", optionList(wallet.Options(ref.Wallets))).
		Add("Currencies", optionList(wallet.Options(ref.Currencies))).
		Add("Categories", optionList(wallet.Options(ref.Categories))).
		Add("Tags", optionList(wallet.Options(ref.Tags)))
}

func optionList(opts []api.Option) string {
	if len(opts) == 0 {
		return "-"
	}
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = fmt.Sprintf("%s (#%s)", o.Label, o.ID)
	}
	return strings.Join(parts, ", ")
}
