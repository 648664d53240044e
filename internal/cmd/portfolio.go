package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/listview"
	"github.com/felixgeelhaar/nvms/internal/services/portfolio"
	"github.com/felixgeelhaar/nvms/internal/tui"
)

var portfolioColumns = []tui.Column{
	{Field: "id", Title: "ID", Width: 6},
	{Field: "title", Title: "Title", Width: 32},
	{Field: "category", Title: "Category", Width: 16},
	{Field: "client", Title: "Client", Width: 16},
	{Field: "completed_at", Title: "Completed", Width: 11},
	{Field: "featured", Title: "Featured", Width: 9},
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Browse the portfolio",
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolio items",
	Long: `List portfolio items. With --public the anonymous public listing is used
and no login is needed.

Examples:
  nvms portfolio list
  nvms portfolio list --public --sort completed_at --desc`,
	RunE: runPortfolioList,
}

func init() {
	portfolioListCmd.Flags().Bool("public", false, "use the public listing (no login required)")
	addSortFlags(portfolioListCmd, "order")

	portfolioCmd.AddCommand(portfolioListCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func runPortfolioList(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	svc := portfolio.New(a.client)
	var items []portfolio.Item
	if public, _ := cmd.Flags().GetBool("public"); public {
		items, err = svc.Public(cmd.Context())
	} else {
		if err := a.requireLogin(); err != nil {
			return err
		}
		items, err = svc.List(cmd.Context())
	}
	if err != nil {
		return err
	}
	return a.print(listTable(items, portfolioColumns, listview.FieldOf[portfolio.Item], sortStateFrom(cmd)))
}
