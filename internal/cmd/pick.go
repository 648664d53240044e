package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/services/portfolio"
	"github.com/felixgeelhaar/nvms/internal/services/projects"
	"github.com/felixgeelhaar/nvms/internal/services/wallet"
	"github.com/felixgeelhaar/nvms/internal/tui"
)

// pickResources maps resource names to their collection endpoints.
var pickResources = map[string]string{
	"projects":   projects.Path,
	"portfolio":  portfolio.Path,
	"wallets":    wallet.WalletsPath,
	"categories": wallet.CategoriesPath,
	"tags":       wallet.TagsPath,
	"currencies": wallet.CurrenciesPath,
}

var pickCmd = &cobra.Command{
	Use:   "pick [resource]",
	Short: "Interactively pick a record and print its id",
	Long: `Open a searchable select over a collection and print the id of the chosen
record. Typing filters the loaded options; when nothing matches, the server is
searched after a short pause.

The resource is one of ` + strings.Join(pickResourceNames(), ", ") + `, or a
collection path such as "wallet/budgets/". Without one, search.url is used.

Examples:
  nvms pick projects
  nvms pick categories --value 3
  PROJECT=$(nvms pick projects --required)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPick,
}

func init() {
	pickCmd.Flags().String("value", "", "currently selected id (its label is loaded if needed)")
	pickCmd.Flags().Bool("required", false, "do not offer an empty choice")
	pickCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return pickResourceNames(), cobra.ShellCompDirectiveNoFileComp
	}

	rootCmd.AddCommand(pickCmd)
}

func pickResourceNames() []string {
	names := make([]string, 0, len(pickResources))
	for name := range pickResources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolvePickPath turns a resource name or path into a collection path.
func resolvePickPath(arg, fallback string) (string, error) {
	if arg == "" {
		return fallback, nil
	}
	if path, ok := pickResources[arg]; ok {
		return path, nil
	}
	if strings.Contains(arg, "/") {
		return arg, nil
	}
	return "", fmt.Errorf("invalid argument %q: want one of %s or a collection path", arg, strings.Join(pickResourceNames(), ", "))
}

func runPick(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	path, err := resolvePickPath(arg, a.cfg.Search.URL)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	options, err := a.client.Options(ctx, path)
	if err != nil {
		return err
	}

	value, _ := cmd.Flags().GetString("value")
	required, _ := cmd.Flags().GetBool("required")
	sel := tui.NewSearchSelect(tui.SearchSelectConfig{
		Options:   options,
		Value:     value,
		SearchURL: path,
		Required:  required,
		Debounce:  a.cfg.Search.Debounce,
		Searcher:  a.client,
		Context:   ctx,
		Logger:    a.logger,
	})

	final, err := tui.Run(ctx, tui.NewPicker("Pick from "+path, sel))
	if err != nil {
		return err
	}
	picked, ok := final.(tui.Picker).Result()
	if !ok {
		return fmt.Errorf("no selection made")
	}
	fmt.Fprintln(a.out, picked.ID)
	return nil
}
