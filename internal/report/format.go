package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
)

func writeRange(sb *strings.Builder, p period.Period, start, end time.Time) {
	if p == period.Daily {
		fmt.Fprintf(sb, "Tanggal: %s\n", period.FormatLabel(start))
		return
	}
	fmt.Fprintf(sb, "Periode: %s s/d %s\n", period.FormatLabel(start), period.FormatLabel(end))
}

func writeSection(sb *strings.Builder, title string, counts []Count) {
	fmt.Fprintf(sb, "\n*%s*\n", title)
	if len(counts) == 0 {
		sb.WriteString("_Belum ada data._\n")
		return
	}
	for i, c := range counts {
		fmt.Fprintf(sb, "%d. %s: %d\n", i+1, c.Label, c.Count)
	}
}

// RenderSummary renders a summary in fixed section order: totals,
// technicians, workzones, owners.
func RenderSummary(s Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Laporan Aktivasi %s*\n", s.Period.Title())
	writeRange(&sb, s.Period, s.Start, s.End)
	fmt.Fprintf(&sb, "Total aktivasi: %d\n", s.Total)

	writeSection(&sb, fmt.Sprintf("Teknisi (top %d)", TopN(s.Period)), s.Technicians)
	writeSection(&sb, "Workzone", s.Workzones)
	writeSection(&sb, "Owner", s.Owners)

	return strings.TrimRight(sb.String(), "\n")
}

// RenderRanking renders the technician ranking of the period containing
// anchor.
func RenderRanking(records []activation.Record, p period.Period, anchor time.Time) string {
	in := period.Filter(records, p, anchor)
	start, end := period.Window(p, anchor)

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Ranking Teknisi %s*\n", p.Title())
	writeRange(&sb, p, start, end)
	writeSection(&sb, fmt.Sprintf("Top %d", RankingSize), Top(Aggregate(in, ByTechnician), RankingSize))
	return strings.TrimRight(sb.String(), "\n")
}

// RenderUserStats renders one technician's totals for the period containing
// anchor, broken down by workzone and owner.
func RenderUserStats(records []activation.Record, label string, p period.Period, anchor time.Time) string {
	in := period.Filter(OwnRecords(records, label), p, anchor)
	start, end := period.Window(p, anchor)

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Aktivasi %s: %s*\n", p.Title(), label)
	writeRange(&sb, p, start, end)
	fmt.Fprintf(&sb, "Total aktivasi: %d\n", len(in))
	writeSection(&sb, "Workzone", Aggregate(in, ByWorkzone))
	writeSection(&sb, "Owner", Aggregate(in, ByOwner))
	return strings.TrimRight(sb.String(), "\n")
}

// RenderAccepted renders the confirmation reply for a stored record.
func RenderAccepted(r activation.Record, dialect string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Aktivasi tersimpan* (%s)\n", dialect)
	field := func(name, v string) {
		if v == "" {
			v = Placeholder
		}
		fmt.Fprintf(&sb, "%s: %s\n", name, v)
	}
	h := activation.Header()
	row := r.Row()
	for i := range h {
		field(h[i], row[i])
	}
	return strings.TrimRight(sb.String(), "\n")
}
