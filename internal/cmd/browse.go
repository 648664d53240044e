package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/listview"
	"github.com/felixgeelhaar/nvms/internal/services/portfolio"
	"github.com/felixgeelhaar/nvms/internal/services/projects"
	"github.com/felixgeelhaar/nvms/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open an interactive, sortable list",
	Long: `Open a full-screen list. Press 1-9 to sort by a column (again to reverse),
s to cycle the sort column, r to reload, d to delete the highlighted row where
supported, and q to quit.`,
}

var browseProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse projects",
	RunE:  runBrowseProjects,
}

var browsePortfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Browse portfolio items",
	RunE:  runBrowsePortfolio,
}

func init() {
	browseCmd.AddCommand(browseProjectsCmd)
	browseCmd.AddCommand(browsePortfolioCmd)
	rootCmd.AddCommand(browseCmd)
}

func projectsView(ctx context.Context, a *app) tui.ListView[projects.Project] {
	svc := projects.New(a.client)
	return tui.NewListView(tui.ListViewConfig[projects.Project]{
		Title:      "Projects",
		Columns:    projectColumns,
		Field:      listview.FieldOf[projects.Project],
		Comparator: listview.DefaultComparator(),
		Sort:       listview.SortState{Field: "title", Direction: listview.Asc},
		Load: func(ctx context.Context) ([]projects.Project, error) {
			return svc.List(ctx, projects.Filter{})
		},
		Delete: func(ctx context.Context, p projects.Project) error {
			return svc.Delete(ctx, p.ID.String())
		},
		Context: ctx,
		Logger:  a.logger,
	})
}

func runBrowseProjects(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	_, err = tui.Run(cmd.Context(), projectsView(cmd.Context(), a))
	return err
}

func runBrowsePortfolio(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	svc := portfolio.New(a.client)
	view := tui.NewListView(tui.ListViewConfig[portfolio.Item]{
		Title:      "Portfolio",
		Columns:    portfolioColumns,
		Field:      listview.FieldOf[portfolio.Item],
		Comparator: listview.DefaultComparator(),
		Sort:       listview.SortState{Field: "order", Direction: listview.Asc},
		Load:       svc.List,
		Context:    cmd.Context(),
		Logger:     a.logger,
	})
	_, err = tui.Run(cmd.Context(), view)
	return err
}
