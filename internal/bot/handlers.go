package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/hermes"
	"github.com/MikeSquared-Agency/aktivasi/internal/parser"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
	"github.com/MikeSquared-Agency/aktivasi/internal/report"
)

type commandSpec struct {
	run    func(b *Bot, ctx context.Context, user activation.User, cmd Command) (string, error)
	admin  bool
	public bool
}

var commands = map[string]commandSpec{
	CmdSubmit: {run: (*Bot).submit},
	CmdReport: {run: (*Bot).report},
	CmdTop:    {run: (*Bot).top},
	CmdMine:   {run: (*Bot).mine},
	CmdExport: {run: (*Bot).export},
	CmdDedupe: {run: (*Bot).dedupe, admin: true},
	CmdHelp:   {run: (*Bot).help, public: true},
}

const helpText = `*Perintah aktivasi*
/aktivasi <teks order> : simpan data aktivasi (atau kirim teks yang berisi SN ONT)
/laporan [harian|mingguan|bulanan] [tanggal] : laporan lengkap
/top [periode] [tanggal] : ranking teknisi
/saya [periode] [tanggal] : rekap aktivasi anda
/export [periode] [tanggal] : CSV data anda
/dedupe : hapus data duplikat (admin)
Tanggal: 2026-10-14 atau 14/10/2026`

func (b *Bot) help(context.Context, activation.User, Command) (string, error) {
	return helpText, nil
}

func (b *Bot) submit(ctx context.Context, user activation.User, cmd Command) (string, error) {
	draft := parser.Parse(cmd.Body, user)
	rec, err := parser.Validate(draft)
	if err != nil {
		return "", err
	}
	rec.DateLabel = period.FormatLabel(b.now())

	release, err := b.locker.Acquire(ctx, b.opts.ActivationTable)
	if err != nil {
		return "", storeErr("lock activation table", err)
	}
	defer release()

	rows, err := b.table.ReadAll(ctx, b.opts.ActivationTable)
	if err != nil {
		return "", storeErr("read activations", err)
	}
	if activation.IsDuplicate(activation.RecordsFromRows(rows), draft) {
		return "", fmt.Errorf("%w: %s / %s", ErrDuplicateRecord, rec.ONTSerialNumber, rec.ONTNik)
	}

	if len(rows) == 0 {
		if err := b.table.Append(ctx, b.opts.ActivationTable, activation.Header()); err != nil {
			return "", storeErr("write header", err)
		}
	}
	if err := b.table.Append(ctx, b.opts.ActivationTable, rec.Row()); err != nil {
		return "", storeErr("append activation", err)
	}

	b.logger.Info("activation recorded",
		"dialect", draft.Dialect,
		"sn_ont", rec.ONTSerialNumber,
		"technician", rec.TechnicianLabel,
	)
	b.publish(hermes.SubjectActivationRecorded, hermes.ActivationRecorded{
		EventID:    hermes.NewEventID(),
		Serial:     rec.ONTSerialNumber,
		Nik:        rec.ONTNik,
		Owner:      rec.Owner,
		Workzone:   rec.Workzone,
		Technician: rec.TechnicianLabel,
		Dialect:    draft.Dialect,
		RecordedAt: b.now(),
	})

	return report.RenderAccepted(rec, draft.Dialect), nil
}

func (b *Bot) report(ctx context.Context, _ activation.User, cmd Command) (string, error) {
	p, anchor, err := b.periodArgs(cmd.Args, period.Daily)
	if err != nil {
		return "", err
	}
	records, err := b.records(ctx)
	if err != nil {
		return "", err
	}
	return report.RenderSummary(report.BuildSummary(records, p, anchor)), nil
}

func (b *Bot) top(ctx context.Context, _ activation.User, cmd Command) (string, error) {
	p, anchor, err := b.periodArgs(cmd.Args, period.Monthly)
	if err != nil {
		return "", err
	}
	records, err := b.records(ctx)
	if err != nil {
		return "", err
	}
	return report.RenderRanking(records, p, anchor), nil
}

func (b *Bot) mine(ctx context.Context, user activation.User, cmd Command) (string, error) {
	p, anchor, err := b.periodArgs(cmd.Args, period.Monthly)
	if err != nil {
		return "", err
	}
	records, err := b.records(ctx)
	if err != nil {
		return "", err
	}
	return report.RenderUserStats(records, user.DisplayLabel(), p, anchor), nil
}

func (b *Bot) export(ctx context.Context, user activation.User, cmd Command) (string, error) {
	p, anchor, err := b.periodArgs(cmd.Args, period.Monthly)
	if err != nil {
		return "", err
	}
	records, err := b.records(ctx)
	if err != nil {
		return "", err
	}

	label := user.DisplayLabel()
	own := period.Filter(report.OwnRecords(records, label), p, anchor)
	if len(own) == 0 {
		return fmt.Sprintf("Belum ada data aktivasi %s untuk periode ini.", label), nil
	}

	start, _ := period.Window(p, anchor)
	name := report.ExportFilename(label, string(p), start.Format("20060102"))
	return fmt.Sprintf("*%s* (%d baris)\n```\n%s```", name, len(own), report.CSV(own)), nil
}

func (b *Bot) dedupe(ctx context.Context, user activation.User, _ Command) (string, error) {
	res, err := DedupeTable(ctx, b.table, b.locker, b.opts.ActivationTable, false)
	if err != nil {
		return "", err
	}

	b.logger.Info("activation table deduped", "dropped", res.Dropped, "remaining", res.Remaining, "user", user.Handle)
	if res.Dropped > 0 {
		b.publish(hermes.SubjectActivationDeduped, hermes.ActivationDeduped{
			EventID:   hermes.NewEventID(),
			Table:     b.opts.ActivationTable,
			Dropped:   res.Dropped,
			Remaining: res.Remaining,
			By:        user.Handle,
			DedupedAt: b.now(),
		})
	}
	return fmt.Sprintf("Dedupe selesai: %d baris dihapus, %d data tersisa.", res.Dropped, res.Remaining), nil
}

func (b *Bot) records(ctx context.Context) ([]activation.Record, error) {
	rows, err := b.table.ReadAll(ctx, b.opts.ActivationTable)
	if err != nil {
		return nil, storeErr("read activations", err)
	}
	return activation.RecordsFromRows(rows), nil
}

// periodArgs reads an optional period name followed by an optional anchor
// date. The anchor defaults to today.
func (b *Bot) periodArgs(args []string, def period.Period) (period.Period, time.Time, error) {
	p := def
	if len(args) > 0 {
		if q, err := period.ParsePeriod(args[0]); err == nil {
			p = q
			args = args[1:]
		}
	}

	anchor := b.now()
	if len(args) > 0 {
		t, err := period.ParseAnchor(strings.Join(args, " "), anchor.Location())
		if err != nil {
			return "", time.Time{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		anchor = t
	}
	return p, anchor, nil
}
