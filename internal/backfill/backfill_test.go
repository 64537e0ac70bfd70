package backfill

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/lock"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
	"github.com/MikeSquared-Agency/aktivasi/internal/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memTable struct {
	mu   sync.Mutex
	rows map[string][][]string
}

func (m *memTable) ReadAll(_ context.Context, table string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.rows[table]...), nil
}

func (m *memTable) Append(_ context.Context, table string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string][][]string{}
	}
	m.rows[table] = append(m.rows[table], row)
	return nil
}

const pastes = `TANGGAL : 2026-10-12
TEKNISI : Budi
SN ONT : ZTEGC0000001
NIK ONT : 1111
OWNER : BGES
---
SN ONT : ZTEGC0000002
NIK ONT : 2222
----------
OWNER : WMS
---
TEKNISI : Siti
SN ONT : ztegc0000001
NIK ONT : 1111
`

func TestReadPastes(t *testing.T) {
	date := time.Date(2026, time.October, 14, 0, 0, 0, 0, period.LoadLocation(period.DefaultTimezone))
	got := ReadPastes(pastes, "a.txt", date, "Import")

	if len(got) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(got))
	}
	first := got[0].Record
	if first.DateLabel != "Senin, 12 Oktober 2026" || first.TechnicianLabel != "Budi" || first.Owner != "BGES" {
		t.Errorf("unexpected first record %+v", first)
	}
	second := got[1].Record
	if second.DateLabel != "Rabu, 14 Oktober 2026" || second.TechnicianLabel != "Import" {
		t.Errorf("expected defaults on second record, got %+v", second)
	}
	if got[2].Record.ONTSerialNumber != "" {
		t.Errorf("third paste has no key, got %+v", got[2].Record)
	}
	if got[3].Origin != "a.txt#4" {
		t.Errorf("unexpected origin %q", got[3].Origin)
	}
}

func TestReadCSV(t *testing.T) {
	export := report.CSV([]activation.Record{
		{DateLabel: "Rabu, 14 Oktober 2026", ONTSerialNumber: "S1", ONTNik: "N1", TechnicianLabel: "Budi"},
	})

	got, err := ReadCSV(strings.NewReader(export), "x.csv")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != 1 || got[0].Record.ONTSerialNumber != "S1" || got[0].Origin != "x.csv:2" {
		t.Errorf("unexpected candidates %+v", got)
	}

	if _, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n"), "bad.csv"); err == nil {
		t.Error("expected error for csv without activation header")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestRunner_ImportsAndSkipsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01-pastes.txt", pastes)
	writeFile(t, dir, "02-export.csv", report.CSV([]activation.Record{
		{DateLabel: "Rabu, 14 Oktober 2026", ONTSerialNumber: "ZTEGC0000002", ONTNik: "2222"},
		{DateLabel: "Rabu, 14 Oktober 2026", ONTSerialNumber: "ZTEGC0000003", ONTNik: "3333"},
	}))
	writeFile(t, dir, "notes.md", "ignored")

	table := &memTable{}
	statePath := filepath.Join(dir, "state", "import.json")
	cfg := Config{Path: dir, Table: "AKTIVASI", Technician: "Import", StatePath: statePath}

	sum, err := NewRunner(cfg, table, lock.NewLocal(time.Second), discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Files != 2 || sum.Imported != 3 || sum.Duplicates != 2 || sum.Invalid != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}

	rows := table.rows["AKTIVASI"]
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "TANGGAL" {
		t.Errorf("expected header first, got %v", rows[0])
	}

	// A second run resumes and imports nothing.
	again, err := NewRunner(cfg, table, lock.NewLocal(time.Second), discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Files != 0 || len(table.rows["AKTIVASI"]) != 4 {
		t.Errorf("expected nothing on resume, got %+v", again)
	}
}

func TestRunner_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pastes.txt", pastes)

	table := &memTable{}
	cfg := Config{Path: path, Table: "AKTIVASI", Technician: "Import", DryRun: true}

	sum, err := NewRunner(cfg, table, lock.NewLocal(time.Second), discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Imported != 2 || sum.Duplicates != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(table.rows["AKTIVASI"]) != 0 {
		t.Error("dry run must not write")
	}
}
