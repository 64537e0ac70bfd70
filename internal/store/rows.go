package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ReadAll returns every row of table in row order. Gaps left by a partial
// range rewrite are skipped.
func (s *Store) ReadAll(ctx context.Context, table string) ([][]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cells FROM sheet_rows
		WHERE sheet = $1
		ORDER BY row_num`, table)
	if err != nil {
		return nil, fmt.Errorf("query rows %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// Append adds row after the last row of table.
func (s *Store) Append(ctx context.Context, table string, row []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent appends to the same sheet within the database.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table); err != nil {
		return fmt.Errorf("lock sheet %s: %w", table, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sheet_rows (sheet, row_num, cells)
		SELECT $1, COALESCE(MAX(row_num), 0) + 1, $2
		FROM sheet_rows WHERE sheet = $1`,
		table, row,
	)
	if err != nil {
		return fmt.Errorf("append row %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReplaceRange clears the rows covered by rangeSpec (A1 notation, for
// example "A1:L" or "A2:L500") and writes rows starting at the range's first
// row. Rows that do not fit a bounded range are dropped. Only whole rows are
// replaced; the column letters bound nothing.
func (s *Store) ReplaceRange(ctx context.Context, table, rangeSpec string, rows [][]string) error {
	r, err := ParseRange(rangeSpec)
	if err != nil {
		return err
	}
	if r.EndRow > 0 && len(rows) > r.Rows() {
		rows = rows[:r.Rows()]
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table); err != nil {
		return fmt.Errorf("lock sheet %s: %w", table, err)
	}

	if r.EndRow > 0 {
		_, err = tx.Exec(ctx, `DELETE FROM sheet_rows WHERE sheet = $1 AND row_num BETWEEN $2 AND $3`, table, r.StartRow, r.EndRow)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM sheet_rows WHERE sheet = $1 AND row_num >= $2`, table, r.StartRow)
	}
	if err != nil {
		return fmt.Errorf("clear range %s!%s: %w", table, rangeSpec, err)
	}

	batch := &pgx.Batch{}
	for i, row := range rows {
		batch.Queue(`INSERT INTO sheet_rows (sheet, row_num, cells) VALUES ($1, $2, $3)`, table, r.StartRow+i, row)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("write range %s!%s: %w", table, rangeSpec, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
