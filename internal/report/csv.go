package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
)

// WriteCSV writes the header line followed by one line per record, in table
// column order. Fields containing a comma, a quote or a line break are
// quoted with embedded quotes doubled.
func WriteCSV(w io.Writer, records []activation.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(activation.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders records as CSV text.
func CSV(records []activation.Record) string {
	var sb strings.Builder
	// strings.Builder writes never fail.
	_ = WriteCSV(&sb, records)
	return sb.String()
}

// ExportFilename names an export file for label and period key, e.g.
// "aktivasi_budi_weekly_20261012.csv".
func ExportFilename(label, periodKey, stamp string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(label))
	return fmt.Sprintf("aktivasi_%s_%s_%s.csv", clean, periodKey, stamp)
}
