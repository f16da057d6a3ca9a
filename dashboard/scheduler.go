package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the periodic jobs: the day-rollover check and the
// automatic snapshot. Jobs run through the Dashboard, so they never
// interleave with each other or with user mutations.
type Scheduler struct {
	cron     *cron.Cron
	d        *Dashboard
	rollover time.Duration
	backup   time.Duration
}

// NewScheduler returns a scheduler for d. A backup interval of 0 turns
// automatic snapshots off.
func NewScheduler(d *Dashboard, rolloverEvery, backupEvery time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(d.loc), cron.WithChain(cron.Recover(cron.DiscardLogger))),
		d:        d,
		rollover: rolloverEvery,
		backup:   backupEvery,
	}
}

// Start runs one rollover check immediately and then schedules the jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.rollover <= 0 {
		return fmt.Errorf("rollover interval must be positive")
	}

	s.RolloverJob(ctx)

	if _, err := s.cron.AddFunc(every(s.rollover), func() { s.RolloverJob(ctx) }); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	if s.backup > 0 {
		if _, err := s.cron.AddFunc(every(s.backup), func() { s.BackupJob(ctx) }); err != nil {
			return fmt.Errorf("schedule backup: %w", err)
		}
	}

	s.cron.Start()
	s.d.log.Info("scheduler started", "rollover", s.rollover, "backup", s.backup)
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.d.log.Info("scheduler stopped")
}

// RolloverJob checks the day and re-evaluates the thresholds. A failure
// leaves the baseline stale for the next tick.
func (s *Scheduler) RolloverJob(ctx context.Context) {
	if _, _, err := s.d.Rollover(ctx); err != nil {
		s.d.log.Error("rollover failed", "err", err)
		return
	}
	s.d.Check()
}

func (s *Scheduler) BackupJob(ctx context.Context) {
	info, err := s.d.Snapshot(ctx)
	if err != nil {
		s.d.log.Error("auto-backup failed", "err", err)
		return
	}
	s.d.log.Info("auto-backup saved", "id", info.ID, "trades", info.Trades)
}

func every(d time.Duration) string {
	return "@every " + d.String()
}
