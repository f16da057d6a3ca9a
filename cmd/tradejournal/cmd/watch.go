package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/risk"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the rollover and auto-backup jobs until interrupted",
	Long: `Keep the journal current: check the day every
schedule.rollover_every, take a snapshot every schedule.backup_every and
print threshold crossings as they happen. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	onEvent := func(e risk.Event) {
		fmt.Fprintf(out, "[%s] %s: %s\n", e.At.Format("15:04:05"), e.Rule, e.Msg)
	}

	s, err := openSession(ctx, true, onEvent)
	if err != nil {
		return err
	}
	defer s.Close()

	every, err := s.cfg.Schedule.Rollover()
	if err != nil {
		return err
	}
	backup, err := s.cfg.Schedule.Backup()
	if err != nil {
		return err
	}

	sch := dashboard.NewScheduler(s.d, every, backup)
	if err := sch.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", s.cfg.Storage.DBPath)

	<-ctx.Done()
	sch.Stop()
	return nil
}
