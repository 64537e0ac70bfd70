package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
)

// Period is a reporting window size.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Title is the Indonesian heading used in rendered reports.
func (p Period) Title() string {
	switch p {
	case Daily:
		return "Harian"
	case Weekly:
		return "Mingguan"
	case Monthly:
		return "Bulanan"
	default:
		return string(p)
	}
}

// ParsePeriod accepts English and Indonesian period names.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "harian", "hari", "today":
		return Daily, nil
	case "weekly", "mingguan", "minggu", "week":
		return Weekly, nil
	case "monthly", "bulanan", "bulan", "month":
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Window returns the inclusive [start, end] bounds of the period containing
// anchor's calendar day, in anchor's location. Weeks run Monday through
// Sunday.
func Window(p Period, anchor time.Time) (time.Time, time.Time) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	endOfDay := func(t time.Time) time.Time {
		return t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	switch p {
	case Weekly:
		offset := 1 - int(day.Weekday())
		if day.Weekday() == time.Sunday {
			offset = -6
		}
		start := day.AddDate(0, 0, offset)
		return start, endOfDay(start.AddDate(0, 0, 6))
	case Monthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, endOfDay(start.AddDate(0, 1, -1))
	default:
		return day, endOfDay(day)
	}
}

// Filter keeps the records whose date label falls inside the period
// containing anchor. Labels are read as dates in anchor's location. Records
// with unparsable labels are excluded.
func Filter(records []activation.Record, p Period, anchor time.Time) []activation.Record {
	start, end := Window(p, anchor)
	var out []activation.Record
	for _, r := range records {
		t, ok := ParseLabel(r.DateLabel, anchor.Location())
		if !ok {
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
