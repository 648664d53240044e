package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/nav"
	"github.com/felixgeelhaar/nvms/internal/session"
)

var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "Show the navigation entries available to the current user",
	Long: `Show the navigation tree filtered by the current user's groups.
Without a valid session only entries without group requirements are shown.`,
	RunE: runNav,
}

func init() {
	rootCmd.AddCommand(navCmd)
}

func runNav(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	return a.print(visibleNav(cmd.Context(), a))
}

// navTree is the filtered tree; text output draws it, structured output lists it.
type navTree []nav.Item

func (t navTree) Text() string { return nav.Render(t) }
func (t navTree) Data() any    { return []nav.Item(t) }

func visibleNav(ctx context.Context, a *app) navTree {
	var groups []string
	if a.session.Mount(ctx).State == session.StateAuthenticated {
		groups = a.session.Groups()
	}
	return navTree(a.navPolicy().Filter(nav.DefaultTree(), groups))
}
