package bot

import (
	"context"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/lock"
)

// DedupeResult reports a bulk dedup pass.
type DedupeResult struct {
	Dropped   int
	Remaining int
}

// DedupeTable removes duplicate and keyless rows from table under the
// writer lock and rewrites the table in place. With dryRun the table is
// left untouched.
func DedupeTable(ctx context.Context, t Table, l lock.Locker, table string, dryRun bool) (DedupeResult, error) {
	release, err := l.Acquire(ctx, table)
	if err != nil {
		return DedupeResult{}, storeErr("lock activation table", err)
	}
	defer release()

	rows, err := t.ReadAll(ctx, table)
	if err != nil {
		return DedupeResult{}, storeErr("read activations", err)
	}
	kept, dropped := activation.Dedupe(rows)

	res := DedupeResult{Dropped: dropped}
	if len(kept) > 1 {
		res.Remaining = len(kept) - 1
	}
	if dryRun || dropped == 0 {
		return res, nil
	}

	if err := t.ReplaceRange(ctx, table, "A1:L", kept); err != nil {
		return DedupeResult{}, storeErr("rewrite activations", err)
	}
	return res, nil
}
