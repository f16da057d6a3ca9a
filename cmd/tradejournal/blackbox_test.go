//go:build blackbox

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var journalBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "tradejournal-blackbox-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	journalBin = filepath.Join(tmp, "tradejournal")

	// Build the binary once for all tests.
	cmd := exec.Command("go", "build", "-o", journalBin, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func run(t *testing.T, db string, args ...string) string {
	t.Helper()

	cmd := exec.Command(journalBin, append([]string{"--db", db, "--log-level", "error"}, args...)...)
	cmd.Dir = filepath.Dir(db)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command failed: %v\nargs: %v\noutput:\n%s", err, args, string(out))
	}
	return string(out)
}

func TestImportBackupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "a.db")

	run(t, db, "settings", "set", "--bankroll", "1000", "--goal", "20", "--goal-type", "R$")
	run(t, db, "trade", "add", "--date", "2025-01-16", "--time", "10:00", "--asset", "XRPUSDT", "--bet", "20", "--outcome", "win")
	run(t, db, "trade", "add", "--date", "2025-01-16", "--time", "10:30", "--asset", "ADAUSDT", "--bet", "10", "--outcome", "loss")

	backup := filepath.Join(dir, "backup.json")
	run(t, db, "export", "backup", "-o", backup)

	other := filepath.Join(dir, "b.db")
	out := run(t, other, "import", "backup", backup)
	if !strings.Contains(out, "Trades: 2 added, 0 duplicates skipped") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	out = run(t, other, "import", "backup", backup)
	if !strings.Contains(out, "Trades: 0 added, 2 duplicates skipped") {
		t.Fatalf("second import should skip everything:\n%s", out)
	}

	out = run(t, other, "report", "daily", "2025-01-16")
	if !strings.Contains(out, "8.00") {
		t.Fatalf("daily P/L 18.00 - 10.00 missing:\n%s", out)
	}
}

func TestSnapshotRestoreAfterClear(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "j.db")

	run(t, db, "trade", "add", "--asset", "BNBUSDT", "--bet", "10", "--outcome", "win")
	run(t, db, "clear", "--yes")

	out := run(t, db, "snapshot", "list")
	id := strings.Fields(out)[0]
	run(t, db, "snapshot", "restore", id)

	out = run(t, db, "report", "stats")
	if !strings.Contains(out, "Trades:        1") {
		t.Fatalf("restore should bring the trade back:\n%s", out)
	}
}
