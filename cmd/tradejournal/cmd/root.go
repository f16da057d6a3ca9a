package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/risk"
	"github.com/rustyeddy/tradejournal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A trade journal and bankroll dashboard",
	Long: `Tradejournal logs trades and cash movements against a bankroll and
reports on daily goals, stop-loss and stop-win thresholds.

It provides tools for:
  - Recording, editing and duplicating trades
  - Deposits and withdrawals
  - Daily, period and filtered reports
  - Importing backups, spreadsheets and screenshot text
  - Automatic day rollover and snapshots

State lives in a local SQLite file.`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	dbPath   string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite journal (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

type session struct {
	cfg   *config.Config
	log   *slog.Logger
	store *storage.SQLite
	d     *dashboard.Dashboard
}

func (s *session) Close() error { return s.store.Close() }

// openSession opens the journal named by the configuration. Unless
// skipRollover is set the day check runs once, as it does at startup of
// every long-running process.
func openSession(ctx context.Context, skipRollover bool, onEvent func(risk.Event)) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLite(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	d, err := dashboard.Open(ctx, store, dashboard.Options{
		Location:     loc,
		Logger:       log,
		SnapshotKeep: cfg.Storage.SnapshotKeep,
		OnEvent:      onEvent,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	if !skipRollover {
		if _, _, err := d.Rollover(ctx); err != nil {
			log.Error("rollover failed", "err", err)
		}
	}
	return &session{cfg: cfg, log: log, store: store, d: d}, nil
}

// withDashboard opens the journal, runs f and closes it.
func withDashboard(cmd *cobra.Command, f func(ctx context.Context, d *dashboard.Dashboard) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, false, nil)
	if err != nil {
		return err
	}
	defer s.Close()
	return f(ctx, s.d)
}
