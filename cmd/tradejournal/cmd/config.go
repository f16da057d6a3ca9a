package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage the tradejournal configuration file.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  tradejournal config init -o tradejournal.yaml
  tradejournal config validate -f tradejournal.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "tradejournal.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(w, "\nEdit the file and run with:")
	fmt.Fprintf(w, "  tradejournal --config %s watch\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(w, "  Journal: %s (keep %d snapshots)\n", cfg.Storage.DBPath, cfg.Storage.SnapshotKeep)
	fmt.Fprintf(w, "  Rollover every %s, backup every %s\n", cfg.Schedule.RolloverEvery, cfg.Schedule.BackupEvery)
	fmt.Fprintf(w, "  Log: %s/%s\n", cfg.Log.Level, cfg.Log.Format)
	return nil
}
