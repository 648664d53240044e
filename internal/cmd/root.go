package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/config"
)

var (
	cfgFile string
	v       = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "nvms",
	Short: "Terminal client for the NVMS platform",
	Long: `nvms is a terminal client for the NVMS management platform.

It signs in against the NVMS backend, keeps the session alive by refreshing
access tokens, and gives access to projects, the portfolio and the personal
finance wallet from the command line or through interactive screens.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nvms/config.yaml)")
	flags.String("api-url", "", "NVMS API base URL (env NVMS_API_URL)")
	flags.String("format", "", "output format: text, json or yaml")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	_ = v.BindPFlag("api.base_url", flags.Lookup("api-url"))
	_ = v.BindPFlag("output.format", flags.Lookup("format"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
}
