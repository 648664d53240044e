package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/listview"
	"github.com/felixgeelhaar/nvms/internal/services/projects"
	"github.com/felixgeelhaar/nvms/internal/tui"
	"github.com/felixgeelhaar/nvms/internal/ux"
)

var projectColumns = []tui.Column{
	{Field: "id", Title: "ID", Width: 6},
	{Field: "title", Title: "Title", Width: 32},
	{Field: "status", Title: "Status", Width: 12},
	{Field: "priority", Title: "Priority", Width: 9},
	{Field: "end_date", Title: "Due", Width: 11},
	{Field: "progress", Title: "Progress", Width: 9},
	{Field: "budget", Title: "Budget", Width: 12},
}

func projectStatuses() []string   { return projects.Statuses }
func projectPriorities() []string { return projects.Priorities }

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List projects, optionally filtered by status, priority or a search term.

Status and priority sort by workflow order rather than alphabetically.

Examples:
  nvms projects list --status in_progress
  nvms projects list --sort priority --desc
  nvms projects list --format json`,
	RunE: runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Long: `Create a project. Missing values are prompted for on a terminal.
Field errors returned by the server are reported as they are.`,
	RunE: runProjectsCreate,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

func init() {
	projectsListCmd.Flags().String("status", "", "filter by status ("+strings.Join(projects.Statuses, ", ")+")")
	projectsListCmd.Flags().String("priority", "", "filter by priority ("+strings.Join(projects.Priorities, ", ")+")")
	projectsListCmd.Flags().String("search", "", "server-side search term")
	addSortFlags(projectsListCmd, "title")
	_ = projectsListCmd.RegisterFlagCompletionFunc("status", fixedCompletion(projectStatuses))
	_ = projectsListCmd.RegisterFlagCompletionFunc("priority", fixedCompletion(projectPriorities))

	addProjectInputFlags(projectsCreateCmd)

	projectsDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	var filter projects.Filter
	filter.Status, _ = cmd.Flags().GetString("status")
	filter.Priority, _ = cmd.Flags().GetString("priority")
	filter.Search, _ = cmd.Flags().GetString("search")
	if filter.Status != "" && !slices.Contains(projects.Statuses, filter.Status) {
		return fmt.Errorf("invalid argument %q for --status: want one of %s", filter.Status, strings.Join(projects.Statuses, ", "))
	}
	if filter.Priority != "" && !slices.Contains(projects.Priorities, filter.Priority) {
		return fmt.Errorf("invalid argument %q for --priority: want one of %s", filter.Priority, strings.Join(projects.Priorities, ", "))
	}

	items, err := projects.New(a.client).List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return a.print(listTable(items, projectColumns, listview.FieldOf[projects.Project], sortStateFrom(cmd)))
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	p, err := projects.New(a.client).Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return a.print(projectDetail(p))
}

func projectDetail(p *projects.Project) ux.KeyValues {
	return ux.KeyValues{Records: p}.
		Add("ID", p.ID.String()).
		Add("Title", p.Title).
		Add("Description", ux.PlainText(p.Description)).
		Add("Status", tui.FormatValue(p.Status)).
		Add("Priority", tui.FormatValue(p.Priority)).
		Add("Start", tui.FormatValue(p.StartDate)).
		Add("End", tui.FormatValue(p.EndDate)).
		Add("Budget", tui.FormatValue(p.Budget)).
		Add("Progress", tui.FormatValue(p.Progress))
}

func runProjectsCreate(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	in, err := projectInput(cmd)
	if err != nil {
		return err
	}

	p, err := projects.New(a.client).Create(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created project %s (%s)\n", p.ID, p.Title)
	return nil
}

func addProjectInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "project title")
	cmd.Flags().String("description", "", "project description")
	cmd.Flags().String("status", "", "initial status")
	cmd.Flags().String("priority", "", "priority")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().String("budget", "", "budget amount")
}

// projectInput collects the create body from flags, prompting for the title
// and enums on a terminal.
func projectInput(cmd *cobra.Command) (projects.Input, error) {
	var in projects.Input
	in.Title, _ = cmd.Flags().GetString("title")
	in.Description, _ = cmd.Flags().GetString("description")
	in.Status, _ = cmd.Flags().GetString("status")
	in.Priority, _ = cmd.Flags().GetString("priority")
	in.StartDate, _ = cmd.Flags().GetString("start")
	in.EndDate, _ = cmd.Flags().GetString("end")

	if budget, _ := cmd.Flags().GetString("budget"); budget != "" {
		f, err := strconv.ParseFloat(budget, 64)
		if err != nil {
			return in, fmt.Errorf("invalid argument %q for --budget: %w", budget, err)
		}
		d := api.Decimal(f)
		in.Budget = &d
	}

	if !tui.ShouldPrompt() {
		if in.Title == "" {
			return in, fmt.Errorf("required flag(s) \"title\" not set")
		}
		return in, nil
	}

	var err error
	if in.Title == "" {
		if in.Title, err = tui.PromptForString(tui.Prompt{Message: "Title", Required: true}); err != nil {
			return in, err
		}
	}
	if in.Status == "" {
		if in.Status, err = tui.PromptForSelect("Status", projects.Statuses, projects.StatusPlanning); err != nil {
			return in, err
		}
	}
	if in.Priority == "" {
		if in.Priority, err = tui.PromptForSelect("Priority", projects.Priorities, projects.PriorityMedium); err != nil {
			return in, err
		}
	}
	return in, nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("refusing to delete without confirmation; pass --yes")
		}
		ok, err := tui.PromptForConfirmation(fmt.Sprintf("Delete project %s?", args[0]), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}

	if err := projects.New(a.client).Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted project %s\n", args[0])
	return nil
}
