package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/id"
	"github.com/rustyeddy/tradejournal/settings"
	"github.com/rustyeddy/tradejournal/storage"
)

// ImportReport summarises a merge import.
type ImportReport struct {
	Trades          importer.Result `json:"trades"`
	Transactions    importer.Result `json:"transactions"`
	SettingsApplied bool            `json:"settingsApplied"`
	Ignored         []string        `json:"ignored,omitempty"` // settings present but invalid
}

// ImportBackup merges a backup document. A document that does not parse
// changes nothing. Settings fields that are present and valid replace
// the current ones. An imported bankroll brings the backup's folded
// trade total with it, so the backup's trades are not counted on top of
// a bankroll that already includes them.
func (d *Dashboard) ImportBackup(ctx context.Context, r io.Reader) (ImportReport, error) {
	b, err := importer.ParseBackup(r)
	if err != nil {
		return ImportReport{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var rep ImportReport
	trades, tres := importer.MergeTrades(d.records.Trades(), b.Trades, d.ids)
	txs, xres := importer.MergeTransactions(d.records.Transactions(), b.Transactions)
	rep.Trades, rep.Transactions = tres, xres

	if err := d.records.AppendTrades(trades); err != nil {
		return rep, fmt.Errorf("import backup: %w", err)
	}
	if err := d.records.AppendTransactions(txs); err != nil {
		return rep, fmt.Errorf("import backup: %w", err)
	}

	p, ignored := b.Patch()
	rep.Ignored = ignored
	if _, err := d.settings.Apply(p); err != nil {
		d.log.Warn("backup settings rejected", "err", err)
	} else {
		rep.SettingsApplied = true
	}
	if initial, rolledOver, ok := b.Baseline(); ok {
		if _, err := d.settings.Rebase(initial, rolledOver); err != nil {
			d.log.Warn("backup bankroll rejected", "err", err)
		} else {
			rep.SettingsApplied = true
		}
	}

	d.log.Info("backup imported",
		"tradesAdded", tres.Added, "tradesSkipped", tres.Skipped, "tradesRejected", tres.Rejected,
		"txAdded", xres.Added, "txSkipped", xres.Skipped, "txRejected", xres.Rejected,
		"ignored", ignored)
	return rep, d.commit(ctx, "import backup")
}

// ImportCSV merges the rows of a spreadsheet export.
func (d *Dashboard) ImportCSV(ctx context.Context, r io.Reader) (importer.Result, error) {
	rows, err := importer.ReadCSV(r)
	if err != nil {
		return importer.Result{}, err
	}
	return d.importRows(ctx, rows, "csv")
}

// ImportOCR merges the trades recognised in screenshot text. name is the
// image file name; a ddmmyyyy date in it is used for lines without one.
func (d *Dashboard) ImportOCR(ctx context.Context, text, name string) (importer.Result, error) {
	date := importer.DateFromName(name, d.today())
	rows := importer.ParseOCRText(text, d.Settings().Assets, date)
	return d.importRows(ctx, rows, "ocr")
}

func (d *Dashboard) importRows(ctx context.Context, rows []importer.Row, source string) (importer.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	incoming := importer.RowsToTrades(rows, d.settings.Get().PayoutRatio)
	trades, res := importer.MergeTrades(d.records.Trades(), incoming, d.ids)
	if err := d.records.AppendTrades(trades); err != nil {
		return res, fmt.Errorf("import %s: %w", source, err)
	}
	d.log.Info("trades imported", "source", source, "added", res.Added, "skipped", res.Skipped, "rejected", res.Rejected)
	return res, d.commit(ctx, "import "+source)
}

// Backup captures the whole journal.
func (d *Dashboard) Backup() importer.Backup {
	st := d.view()
	return importer.BuildBackup(st.Settings, st.Trades, st.Transactions)
}

func (d *Dashboard) ExportBackup(w io.Writer) error {
	return importer.WriteBackup(w, d.Backup())
}

// Snapshot stores the current backup document and prunes the oldest
// snapshots beyond the configured limit.
func (d *Dashboard) Snapshot(ctx context.Context) (storage.SnapshotInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.state()
	b := importer.BuildBackup(st.Settings, st.Trades, st.Transactions)
	doc, err := b.Marshal()
	if err != nil {
		return storage.SnapshotInfo{}, fmt.Errorf("snapshot: %w", err)
	}
	info := storage.SnapshotInfo{ID: id.New(), Created: d.now().UTC(), Trades: len(b.Trades)}
	if err := d.store.SaveSnapshot(ctx, info, doc); err != nil {
		return info, fmt.Errorf("snapshot: %w", err)
	}
	n, err := d.store.PruneSnapshots(ctx, d.keep)
	if err != nil {
		return info, fmt.Errorf("prune snapshots: %w", err)
	}
	d.log.Debug("snapshot saved", "id", info.ID, "trades", info.Trades, "pruned", n)
	return info, nil
}

func (d *Dashboard) ListSnapshots(ctx context.Context) ([]storage.SnapshotInfo, error) {
	return d.store.ListSnapshots(ctx)
}

// Restore replaces the whole journal, settings and rollover baseline
// included, with the snapshot snapID.
func (d *Dashboard) Restore(ctx context.Context, snapID string) error {
	doc, err := d.store.GetSnapshot(ctx, snapID)
	if err != nil {
		return err
	}
	b, err := importer.ParseBackup(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", snapID, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := b.Settings(d.today())
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", snapID, err)
	}
	ss, err := settings.NewStore(s)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", snapID, err)
	}

	d.records = journal.NewStore(d.ids, b.Trades, b.Transactions)
	d.settings = ss
	d.monitor.Reset()
	d.log.Info("snapshot restored", "id", snapID, "trades", len(b.Trades), "transactions", len(b.Transactions))
	return d.commit(ctx, "restore")
}
