package backfill

import (
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
)

// Config holds the import command configuration.
type Config struct {
	Path       string    // file or directory to import
	Table      string    // activation table
	Technician string    // technician label for pastes without a TEKNISI line
	Date       time.Time // date for pastes without a TANGGAL line; zero uses the file's mtime
	DryRun     bool
	StatePath  string         // resumable state file; empty disables resume
	Location   *time.Location // timezone for file mtimes and TANGGAL lines; nil uses period.DefaultTimezone
}

// FileSource indicates how a file is read.
type FileSource int

const (
	SourcePaste FileSource = iota
	SourceCSV
)

func (s FileSource) String() string {
	if s == SourceCSV {
		return "csv"
	}
	return "paste"
}

// Candidate is one record read from an import file, before validation.
type Candidate struct {
	Record  activation.Record
	Dialect string
	Origin  string // file and position
}

// Summary totals one import run.
type Summary struct {
	Files      int
	Imported   int
	Duplicates int
	Invalid    int
}
