package backfill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/lock"
)

// Table is the part of the record store an import needs.
type Table interface {
	ReadAll(ctx context.Context, table string) ([][]string, error)
	Append(ctx context.Context, table string, row []string) error
}

// Runner imports historical activation pastes and table exports into the
// activation table. Every record goes through the same key validation and
// duplicate check as a chat submission. Runs are resumable per file.
type Runner struct {
	cfg    Config
	table  Table
	locker lock.Locker
	logger *slog.Logger
}

func NewRunner(cfg Config, t Table, l lock.Locker, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, table: t, locker: l, logger: logger}
}

// Run executes the import.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return Summary{}, fmt.Errorf("load state: %w", err)
	}

	files, err := discoverFiles(r.cfg.Path)
	if err != nil {
		return Summary{}, fmt.Errorf("discover files: %w", err)
	}

	var pending []string
	for _, f := range files {
		if !state.IsProcessed(f) {
			pending = append(pending, f)
		}
	}
	state.FilesRemaining = len(pending)
	r.logger.Info("files to import", "total", len(files), "pending", len(pending), "dry_run", r.cfg.DryRun)

	var sum Summary
	for _, path := range pending {
		select {
		case <-ctx.Done():
			r.logger.Info("import interrupted, saving state")
			r.saveState(state)
			return sum, ctx.Err()
		default:
		}

		candidates, err := r.readFile(path)
		if err != nil {
			r.logger.Warn("failed to read import file", "path", path, "error", err)
			state.AddError(err.Error())
			continue
		}

		fs, err := r.importFile(ctx, candidates)
		if err != nil {
			// Store failures stop the run; the file is retried next time.
			state.AddError(fmt.Sprintf("import %s: %v", path, err))
			r.saveState(state)
			return sum, fmt.Errorf("import %s: %w", path, err)
		}

		r.logger.Info("file imported",
			"path", path,
			"source", sourceOf(path).String(),
			"imported", fs.Imported,
			"duplicates", fs.Duplicates,
			"invalid", fs.Invalid,
		)

		sum.Files++
		sum.Imported += fs.Imported
		sum.Duplicates += fs.Duplicates
		sum.Invalid += fs.Invalid

		if !r.cfg.DryRun {
			state.MarkProcessed(path)
			state.Imported += fs.Imported
			state.Duplicates += fs.Duplicates
			state.Invalid += fs.Invalid
			state.FilesRemaining--
			r.saveState(state)
		}
	}

	return sum, nil
}

// importFile appends the valid, unseen candidates of one file under the
// writer lock. Keys already in the table or earlier in the file count as
// duplicates.
func (r *Runner) importFile(ctx context.Context, candidates []Candidate) (Summary, error) {
	release, err := r.locker.Acquire(ctx, r.cfg.Table)
	if err != nil {
		return Summary{}, fmt.Errorf("lock %s: %w", r.cfg.Table, err)
	}
	defer release()

	rows, err := r.table.ReadAll(ctx, r.cfg.Table)
	if err != nil {
		return Summary{}, fmt.Errorf("read %s: %w", r.cfg.Table, err)
	}

	seen := make(map[activation.Key]struct{}, len(rows))
	for _, rec := range activation.RecordsFromRows(rows) {
		if k := rec.Key(); !k.Empty() {
			seen[k] = struct{}{}
		}
	}

	needHeader := len(rows) == 0
	var sum Summary
	for _, c := range candidates {
		key := c.Record.Key()
		if key.Empty() {
			r.logger.Debug("skipping record without key", "origin", c.Origin)
			sum.Invalid++
			continue
		}
		if _, dup := seen[key]; dup {
			sum.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		if !r.cfg.DryRun {
			if needHeader {
				if err := r.table.Append(ctx, r.cfg.Table, activation.Header()); err != nil {
					return sum, fmt.Errorf("write header: %w", err)
				}
				needHeader = false
			}
			if err := r.table.Append(ctx, r.cfg.Table, c.Record.Row()); err != nil {
				return sum, fmt.Errorf("append %s: %w", c.Origin, err)
			}
		}
		sum.Imported++
	}
	return sum, nil
}

func (r *Runner) saveState(s *ImportState) {
	if err := s.Save(); err != nil {
		r.logger.Warn("failed to save import state", "error", err)
	}
}
