package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nvms/internal/config"
	"github.com/felixgeelhaar/nvms/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit nvms configuration",
	Long: `Manage the nvms configuration stored at ~/.nvms/config.yaml.

Values are resolved from defaults, the config file, NVMS_* environment
variables (NVMS_API_URL for the backend) and command-line flags, in that order.

Examples:
  nvms config init --api-url https://nvms.example.com/api/
  nvms config view --format yaml
  nvms config get api.base_url
  nvms config set search.debounce 500ms
  nvms config path`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the effective settings",
	RunE:  runConfigInit,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	RunE:  runConfigView,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value by dotted key",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value by dotted key",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigView(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if a.cfg.Output.Format == "" || a.cfg.Output.Format == "text" {
		return a.print(configText{a.cfg})
	}
	return a.print(a.cfg)
}

// configText renders the configuration as YAML in text mode.
type configText struct{ cfg *config.Config }

func (c configText) Text() string {
	data, err := config.Marshal(c.cfg)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(v, cfgFile); err != nil {
		return err
	}
	key := args[0]
	if !slices.Contains(config.Keys(), key) {
		return errors.NewConfigInvalidError(fmt.Sprintf("unknown key %q", key))
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := configPath()
	cfg, err := config.Set(path, args[0], args[1])
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), configPath())
	return nil
}
