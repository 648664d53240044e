package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/health"
	"github.com/felixgeelhaar/nvms/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check connectivity, stored tokens and the session",
	Long: `Run diagnostics against the configured backend: whether it answers, whether
a token is stored and still valid, and whether the token resolves to a user.

Exits non-zero when any check is unhealthy.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	reports := diagnose(cmd.Context(), a)
	if err := a.print(doctorTable(reports)); err != nil {
		return err
	}
	if health.OverallStatus(reports) == health.StatusUnhealthy {
		return fmt.Errorf("one or more checks are unhealthy")
	}
	return nil
}

func diagnose(ctx context.Context, a *app) []health.Report {
	manager := health.NewManager(
		health.APIChecker{Client: a.client, Path: api.MePath},
		health.TokenChecker{Tokens: a.tokens},
		health.SessionChecker{Session: a.session, HasToken: a.client.HasToken},
	)
	if a.cfg.API.Timeout > 0 {
		manager.WithTimeout(a.cfg.API.Timeout)
	}
	return manager.Check(ctx)
}

func doctorTable(reports []health.Report) ux.Table {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{r.Name, r.Result.Status.String(), r.Result.Message, details(r.Result.Details)})
	}
	return ux.Table{
		Headers: []string{"Check", "Status", "Message", "Details"},
		Rows:    rows,
		Records: reports,
	}
}

func details(d map[string]string) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + d[k]
	}
	return strings.Join(parts, " ")
}
