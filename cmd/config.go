package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launcher/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage launcher configuration",
	Long:  `View and modify launcher configuration settings.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Available keys:
  timeout       Maximum duration of one extension invocation (e.g. 30s)
  manifest_ttl  How long fetched manifests are cached (e.g. 1h, 0 disables)
  log_level     debug, info, warn or error`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get configuration value(s)",
	Long:  `Get a specific configuration value or all values if no key is provided.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("%w\nAvailable keys: %s", err, strings.Join(config.Keys(), ", "))
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		// Show all config
		fmt.Fprintf(out, "%-13s %s\n", "path:", cfg.Path())
		for _, key := range config.Keys() {
			value, _ := cfg.Get(key)
			fmt.Fprintf(out, "%-13s %s\n", key+":", value)
		}
		fmt.Fprintf(out, "%-13s %d\n", "extensions:", len(cfg.Extensions))
		return nil
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(out, value)
	return nil
}
