// Package report aggregates activation records and renders summaries.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
)

// GroupBy selects the record field to aggregate on.
type GroupBy int

const (
	ByTechnician GroupBy = iota
	ByOwner
	ByWorkzone
)

// Placeholder labels a group whose field was empty.
const Placeholder = "-"

// RankingSize is the length of the stand-alone technician ranking.
const RankingSize = 20

// Count is one ranked group.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func keyOf(r activation.Record, by GroupBy) string {
	var v string
	switch by {
	case ByOwner:
		v = r.Owner
	case ByWorkzone:
		v = r.Workzone
	default:
		v = r.TechnicianLabel
	}
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return Placeholder
	}
	return v
}

// Aggregate counts records per uppercased group label, ordered by count
// descending. Groups with equal counts keep the order in which they first
// appear in records.
func Aggregate(records []activation.Record, by GroupBy) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, r := range records {
		k := keyOf(r, by)
		i, ok := index[k]
		if !ok {
			i = len(counts)
			index[k] = i
			counts = append(counts, Count{Label: k})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// Top returns at most n leading entries of an already sorted ranking.
func Top(counts []Count, n int) []Count {
	if n <= 0 || len(counts) <= n {
		return counts
	}
	return counts[:n]
}

// TopN is the per-section ranking length for a period's summary.
func TopN(p period.Period) int {
	switch p {
	case period.Weekly:
		return 10
	case period.Monthly:
		return 15
	default:
		return 5
	}
}

// Summary is the full report for one period window.
type Summary struct {
	Period      period.Period `json:"period"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Total       int           `json:"total"`
	Technicians []Count       `json:"technicians"`
	Workzones   []Count       `json:"workzones"`
	Owners      []Count       `json:"owners"`
}

// BuildSummary filters records to the period containing anchor and ranks
// them by technician, workzone and owner.
func BuildSummary(records []activation.Record, p period.Period, anchor time.Time) Summary {
	in := period.Filter(records, p, anchor)
	start, end := period.Window(p, anchor)
	n := TopN(p)
	return Summary{
		Period:      p,
		Start:       start,
		End:         end,
		Total:       len(in),
		Technicians: Top(Aggregate(in, ByTechnician), n),
		Workzones:   Top(Aggregate(in, ByWorkzone), n),
		Owners:      Top(Aggregate(in, ByOwner), n),
	}
}

// OwnRecords returns the records attributed to technician label, compared
// case-insensitively.
func OwnRecords(records []activation.Record, label string) []activation.Record {
	want := strings.TrimSpace(label)
	var out []activation.Record
	for _, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.TechnicianLabel), want) {
			out = append(out, r)
		}
	}
	return out
}
