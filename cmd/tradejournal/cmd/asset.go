package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/journal"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage asset payout ratios",
	Long: `Assets map a name to the payout ratio a winning trade earns.

Examples:
  tradejournal asset set SOLUSDT 0.85
  tradejournal asset set ADAUSDT 0.86 --rename ADA
  tradejournal asset rm SOLUSDT`,
}

var assetSetCmd = &cobra.Command{
	Use:   "set <name> <ratio>",
	Short: "Add or change an asset",
	Args:  cobra.ExactArgs(2),
	RunE:  runAssetSet,
}

var assetRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove an asset",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetRm,
}

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets and payout ratios",
	Args:  cobra.NoArgs,
	RunE:  runAssetList,
}

var assetRename string

func init() {
	rootCmd.AddCommand(assetCmd)
	assetCmd.AddCommand(assetSetCmd)
	assetCmd.AddCommand(assetRmCmd)
	assetCmd.AddCommand(assetListCmd)

	assetSetCmd.Flags().StringVar(&assetRename, "rename", "", "new name for the asset")
}

func runAssetSet(cmd *cobra.Command, args []string) error {
	name, ratio := args[0], journal.ParseAmount(args[1])
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		if assetRename != "" {
			if err := d.RenameAsset(ctx, name, assetRename, ratio); err != nil {
				return fmt.Errorf("rename asset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed %s to %s (%.2f)\n", name, assetRename, ratio)
			return nil
		}
		if err := d.SetAsset(ctx, name, ratio); err != nil {
			return fmt.Errorf("set asset: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s pays %.2f\n", name, ratio)
		return nil
	})
}

func runAssetRm(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		if err := d.RemoveAsset(ctx, args[0]); err != nil {
			return fmt.Errorf("remove asset: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
		return nil
	})
}

func runAssetList(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		s := d.Settings()
		for _, name := range s.AssetNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %.2f\n", name, s.Assets[name])
		}
		return nil
	})
}
