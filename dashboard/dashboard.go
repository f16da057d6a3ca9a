// Package dashboard is the single writer over the journal. Every
// mutation, scheduled job and import goes through one mutex, is
// persisted, and is followed by a threshold check.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rustyeddy/tradejournal/bankroll"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/id"
	"github.com/rustyeddy/tradejournal/risk"
	"github.com/rustyeddy/tradejournal/rollover"
	"github.com/rustyeddy/tradejournal/settings"
	"github.com/rustyeddy/tradejournal/storage"
)

// Options configures a Dashboard. Zero values pick the defaults.
type Options struct {
	Now          func() time.Time
	Location     *time.Location
	Logger       *slog.Logger
	SnapshotKeep int              // default 20
	OnEvent      func(risk.Event) // called for every threshold crossing
}

type Dashboard struct {
	mu sync.Mutex

	store    storage.Store
	now      func() time.Time
	loc      *time.Location
	log      *slog.Logger
	keep     int
	onEvent  func(risk.Event)
	ids      *id.Sequence
	records  *journal.Store
	settings *settings.Store
	monitor  *risk.Monitor
}

// Open loads the persisted state from store. Unreadable values fall back
// to their defaults; only a failing store is an error.
func Open(ctx context.Context, store storage.Store, opts Options) (*Dashboard, error) {
	d := &Dashboard{
		store:   store,
		now:     opts.Now,
		loc:     opts.Location,
		log:     opts.Logger,
		keep:    opts.SnapshotKeep,
		onEvent: opts.OnEvent,
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	if d.keep <= 0 {
		d.keep = 20
	}

	today := d.today()
	st, err := storage.Load(ctx, store, today, d.log)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}

	d.ids = id.NewSequence(d.now)
	d.records = journal.NewStore(d.ids, st.Trades, st.Transactions)
	d.settings, err = settings.NewStore(st.Settings)
	if err != nil {
		d.log.Warn("stored settings rejected, using defaults", "err", err)
		d.settings, _ = settings.NewStore(settings.Default(today))
	}
	d.monitor = risk.NewMonitor(d.now)

	d.log.Debug("journal opened",
		"trades", len(st.Trades),
		"transactions", len(st.Transactions),
		"lastRollover", st.Settings.LastRolloverDate)
	return d, nil
}

// Today is the current journal date in the configured location.
func (d *Dashboard) Today() string { return d.today() }

// Now is the dashboard clock in the configured location.
func (d *Dashboard) Now() time.Time { return d.now().In(d.loc) }

func (d *Dashboard) today() string {
	return rollover.Today(d.now(), d.loc)
}

// commit persists the state and evaluates the thresholds. Callers hold mu.
func (d *Dashboard) commit(ctx context.Context, op string) error {
	if err := storage.Save(ctx, d.store, d.state()); err != nil {
		return fmt.Errorf("%s: save: %w", op, err)
	}
	d.checkLocked()
	return nil
}

func (d *Dashboard) state() storage.State {
	return storage.State{
		Settings:     d.settings.Get(),
		Trades:       d.records.Trades(),
		Transactions: d.records.Transactions(),
	}
}

func (d *Dashboard) checkLocked() []risk.Event {
	s := d.settings.Get()
	trades := d.records.Trades()
	fig := bankroll.Compute(s, trades, d.records.Transactions())
	today := d.today()
	daily := bankroll.Daily(trades, today, s, fig.Base)

	events := d.monitor.Check(risk.PolicyFor(s, fig.Base), risk.Snapshot{
		Date:            today,
		RunningTotal:    fig.RunningTotal,
		DailyProfitLoss: daily.DailyProfitLoss,
	})
	for _, e := range events {
		d.log.Warn("threshold crossed", "rule", e.Rule, "msg", e.Msg, "date", e.Date)
		if d.onEvent != nil {
			d.onEvent(e)
		}
	}
	return events
}

// Check re-evaluates the thresholds without changing anything.
func (d *Dashboard) Check() []risk.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLocked()
}

// Firing lists the rules currently breached.
func (d *Dashboard) Firing() []risk.Rule {
	return d.monitor.Firing()
}

// AddTrade builds a trade from form input and stores it.
func (d *Dashboard) AddTrade(ctx context.Context, in journal.TradeInput) (journal.Trade, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := journal.BuildTrade(in, d.settings.Get().PayoutRatio(in.Asset))
	if err != nil {
		return journal.Trade{}, err
	}
	if t, err = d.records.AddTrade(t); err != nil {
		return journal.Trade{}, err
	}
	return t, d.commit(ctx, "add trade")
}

// EditTrade replaces the trade with tradeID by the one built from in.
func (d *Dashboard) EditTrade(ctx context.Context, tradeID int64, in journal.TradeInput) (journal.Trade, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := journal.BuildTrade(in, d.settings.Get().PayoutRatio(in.Asset))
	if err != nil {
		return journal.Trade{}, err
	}
	if t, err = d.records.UpdateTrade(tradeID, t); err != nil {
		return journal.Trade{}, err
	}
	return t, d.commit(ctx, "edit trade")
}

func (d *Dashboard) DuplicateTrade(ctx context.Context, tradeID int64) (journal.Trade, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.records.DuplicateTrade(tradeID)
	if err != nil {
		return journal.Trade{}, err
	}
	return t, d.commit(ctx, "duplicate trade")
}

func (d *Dashboard) RemoveTrade(ctx context.Context, tradeID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.records.RemoveTrade(tradeID); err != nil {
		return err
	}
	return d.commit(ctx, "remove trade")
}

// AddTransaction records a deposit or withdrawal. An empty date means
// today.
func (d *Dashboard) AddTransaction(ctx context.Context, c journal.CashTransaction) (journal.CashTransaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c.Date == "" {
		c.Date = d.today()
	}
	c, err := d.records.AddTransaction(c)
	if err != nil {
		return journal.CashTransaction{}, err
	}
	return c, d.commit(ctx, "add transaction")
}

func (d *Dashboard) EditTransaction(ctx context.Context, ts int64, c journal.CashTransaction) (journal.CashTransaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.records.UpdateTransaction(ts, c)
	if err != nil {
		return journal.CashTransaction{}, err
	}
	return c, d.commit(ctx, "edit transaction")
}

func (d *Dashboard) RemoveTransaction(ctx context.Context, ts int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.records.RemoveTransaction(ts); err != nil {
		return err
	}
	return d.commit(ctx, "remove transaction")
}

// ApplySettings validates and applies p as a whole.
func (d *Dashboard) ApplySettings(ctx context.Context, p settings.Patch) (settings.Settings, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.settings.Apply(p)
	if err != nil {
		return s, err
	}
	return s, d.commit(ctx, "apply settings")
}

func (d *Dashboard) SetAsset(ctx context.Context, name string, ratio float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.settings.SetAsset(name, ratio); err != nil {
		return err
	}
	return d.commit(ctx, "set asset")
}

func (d *Dashboard) RenameAsset(ctx context.Context, oldName, newName string, ratio float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.settings.RenameAsset(oldName, newName, ratio); err != nil {
		return err
	}
	return d.commit(ctx, "rename asset")
}

func (d *Dashboard) RemoveAsset(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.settings.RemoveAsset(name); err != nil {
		return err
	}
	return d.commit(ctx, "remove asset")
}

// ClearAll drops every record and restores the factory settings.
func (d *Dashboard) ClearAll(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records.Clear()
	d.settings.Reset(d.today())
	d.monitor.Reset()
	d.log.Info("journal cleared")
	return d.commit(ctx, "clear")
}

// Rollover folds the unfolded trade result into the initial bankroll
// when the date has moved on. ok is false when the baseline was already
// current.
func (d *Dashboard) Rollover(ctx context.Context) (f rollover.Fold, ok bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	today := d.today()
	f, ok = rollover.Plan(d.settings.Get(), d.records.Trades(), today)
	if !ok {
		return f, false, nil
	}
	if _, err := d.settings.Fold(f.Today, f.NewInitial, f.RolledOverTotal); err != nil {
		return f, false, err
	}
	d.log.Info("rolled over",
		"date", f.Today,
		"prevInitial", f.PrevInitial,
		"folded", f.Folded,
		"newInitial", f.NewInitial)
	return f, true, d.commit(ctx, "rollover")
}

// view copies the state under the lock.
func (d *Dashboard) view() storage.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state()
}

// Settings returns a copy of the current settings.
func (d *Dashboard) Settings() settings.Settings { return d.view().Settings }

func (d *Dashboard) Trades() []journal.Trade { return d.view().Trades }

func (d *Dashboard) Transactions() []journal.CashTransaction { return d.view().Transactions }

func (d *Dashboard) Trade(tradeID int64) (journal.Trade, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.records.GetTrade(tradeID)
}

// Figures computes the headline bankroll block.
func (d *Dashboard) Figures() bankroll.Figures {
	st := d.view()
	return bankroll.Compute(st.Settings, st.Trades, st.Transactions)
}

func (d *Dashboard) Stats() bankroll.Stats {
	return bankroll.Summarize(d.Trades())
}

// Daily reports on date, today when empty.
func (d *Dashboard) Daily(date string) bankroll.DailyReport {
	if date == "" {
		date = d.today()
	}
	st := d.view()
	base := bankroll.Compute(st.Settings, st.Trades, st.Transactions).Base
	return bankroll.Daily(st.Trades, date, st.Settings, base)
}

func (d *Dashboard) Period(start, end string) (bankroll.PeriodReport, error) {
	st := d.view()
	base := bankroll.Compute(st.Settings, st.Trades, st.Transactions).Base
	return bankroll.Period(st.Trades, start, end, st.Settings, base)
}

func (d *Dashboard) Detailed(f bankroll.Filter) bankroll.DetailedReport {
	return bankroll.Detailed(d.Trades(), f)
}

// ExportCSV writes every trade in the CSV export layout.
func (d *Dashboard) ExportCSV(w io.Writer) error {
	return journal.WriteCSV(w, d.Trades())
}
