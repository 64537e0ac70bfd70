package backfill

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/parser"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
)

var separatorRe = regexp.MustCompile(`(?m)^\s*-{3,}\s*$`)

// discoverFiles returns the importable files under root in lexical order.
// A root that is a file is returned as is.
func discoverFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".csv":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func sourceOf(path string) FileSource {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return SourceCSV
	}
	return SourcePaste
}

// ReadPastes splits text into pastes separated by "---" lines and parses
// each one. A "TANGGAL :" line, read in date's location, sets the record
// date and a "TEKNISI :" line the technician; otherwise date and technician
// are used.
func ReadPastes(text, origin string, date time.Time, technician string) []Candidate {
	var out []Candidate
	for i, paste := range separatorRe.Split(text, -1) {
		if strings.TrimSpace(paste) == "" {
			continue
		}

		tech := technician
		if v := labelValue(paste, "TEKNISI"); v != "" {
			tech = v
		}
		d := parser.Parse(paste, activation.User{Handle: tech})

		d.DateLabel = period.FormatLabel(date)
		if v := labelValue(paste, "TANGGAL"); v != "" {
			if t, err := period.ParseAnchor(v, date.Location()); err == nil {
				d.DateLabel = period.FormatLabel(t)
			}
		}

		out = append(out, Candidate{
			Record:  d.Record,
			Dialect: d.Dialect,
			Origin:  fmt.Sprintf("%s#%d", origin, i+1),
		})
	}
	return out
}

func labelValue(text, name string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		if !strings.HasPrefix(upper, name) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(name):])
		if strings.HasPrefix(rest, ":") {
			return strings.TrimSpace(rest[1:])
		}
	}
	return ""
}

// ReadCSV reads a table export. The first row must be the activation
// header.
func ReadCSV(r io.Reader, origin string) ([]Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", origin, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !isHeader(rows[0]) {
		return nil, fmt.Errorf("read csv %s: first row is not the activation header", origin)
	}

	out := make([]Candidate, 0, len(rows)-1)
	for i, row := range rows[1:] {
		out = append(out, Candidate{
			Record:  activation.RecordFromRow(row),
			Dialect: "CSV",
			Origin:  fmt.Sprintf("%s:%d", origin, i+2),
		})
	}
	return out, nil
}

func isHeader(row []string) bool {
	h := activation.Header()
	if len(row) < len(h) {
		return false
	}
	for i := range h {
		if !strings.EqualFold(strings.TrimSpace(row[i]), h[i]) {
			return false
		}
	}
	return true
}

func (r *Runner) readFile(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sourceOf(path) == SourceCSV {
		return ReadCSV(f, path)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	loc := r.cfg.Location
	if loc == nil {
		loc = period.LoadLocation(period.DefaultTimezone)
	}
	date := r.cfg.Date.In(loc)
	if r.cfg.Date.IsZero() {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		date = info.ModTime().In(loc)
	}
	return ReadPastes(string(data), path, date, r.cfg.Technician), nil
}
