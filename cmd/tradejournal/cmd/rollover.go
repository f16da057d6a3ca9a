package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Fold the previous days' results into the bankroll",
	Long: `Check the calendar day and, when it has moved on since the last
rollover, fold the unfolded trade result into the initial bankroll.
Running it again on the same day does nothing. Every other command does
this check on startup.`,
	Args: cobra.NoArgs,
	RunE: runRollover,
}

func init() {
	rootCmd.AddCommand(rolloverCmd)
}

func runRollover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, true, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	f, ok, err := s.d.Rollover(ctx)
	if err != nil {
		return fmt.Errorf("rollover: %w", err)
	}
	w := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(w, "Bankroll already current for %s\n", s.d.Settings().LastRolloverDate)
		return nil
	}
	fmt.Fprintf(w, "✓ Rolled over to %s\n", f.Today)
	fmt.Fprintf(w, "  Initial bankroll: %.2f -> %.2f (%+.2f)\n", f.PrevInitial, f.NewInitial, f.Folded)
	return nil
}
