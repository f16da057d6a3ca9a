package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change bankroll settings",
	Long: `Show or change the bankroll, goal and threshold settings.

Amount types are currency (R$) or percent (%). Percent targets are taken
from the capital base: the current or the initial bankroll.

Examples:
  tradejournal settings show
  tradejournal settings set --bankroll 1000 --goal 5 --goal-type percent
  tradejournal settings set --stop-loss 10 --stop-loss-type % --base initial`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings; all given flags apply together or not at all",
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

var (
	setBankroll     string
	setGoal         string
	setGoalType     string
	setStopLoss     string
	setStopLossType string
	setStopWin      string
	setStopWinType  string
	setEntry        string
	setBase         string
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	f := settingsSetCmd.Flags()
	f.StringVar(&setBankroll, "bankroll", "", "initial bankroll")
	f.StringVar(&setGoal, "goal", "", "daily goal")
	f.StringVar(&setGoalType, "goal-type", "", "currency or percent")
	f.StringVar(&setStopLoss, "stop-loss", "", "stop-loss threshold, 0 disables")
	f.StringVar(&setStopLossType, "stop-loss-type", "", "currency or percent")
	f.StringVar(&setStopWin, "stop-win", "", "stop-win threshold, 0 disables")
	f.StringVar(&setStopWinType, "stop-win-type", "", "currency or percent")
	f.StringVar(&setEntry, "entry", "", "entry stake as percent of the base, 0-100")
	f.StringVar(&setBase, "base", "", "capital base: current or initial")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		out, err := yaml.Marshal(d.Settings())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	})
}

// settingsPatch builds a patch from the flags that were given.
func settingsPatch(cmd *cobra.Command) (settings.Patch, error) {
	var p settings.Patch
	flags := cmd.Flags()

	num := func(name, v string, dst **float64) {
		if flags.Changed(name) {
			x := journal.ParseAmount(v)
			*dst = &x
		}
	}
	num("bankroll", setBankroll, &p.InitialBankroll)
	num("goal", setGoal, &p.DailyGoal)
	num("stop-loss", setStopLoss, &p.StopLoss)
	num("stop-win", setStopWin, &p.StopWin)
	num("entry", setEntry, &p.EntryPercentage)

	kinds := []struct {
		name string
		v    string
		dst  **settings.AmountType
	}{
		{"goal-type", setGoalType, &p.GoalType},
		{"stop-loss-type", setStopLossType, &p.StopLossType},
		{"stop-win-type", setStopWinType, &p.StopWinType},
	}
	for _, k := range kinds {
		if !flags.Changed(k.name) {
			continue
		}
		t, err := settings.ParseAmountType(k.v)
		if err != nil {
			return p, err
		}
		*k.dst = &t
	}

	if flags.Changed("base") {
		b, err := settings.ParseCapitalBase(setBase)
		if err != nil {
			return p, err
		}
		p.CapitalBase = &b
	}
	return p, nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	p, err := settingsPatch(cmd)
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		if _, err := d.ApplySettings(ctx, p); err != nil {
			return fmt.Errorf("apply settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Settings updated")
		return nil
	})
}
