package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a spreadsheet-like row table kept in Postgres. Each named table
// ("sheet") is an ordered list of rows of string cells, 1-based like a
// spreadsheet, with the header in row 1.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
	sheet   TEXT    NOT NULL,
	row_num INTEGER NOT NULL,
	cells   TEXT[]  NOT NULL DEFAULT '{}',
	PRIMARY KEY (sheet, row_num)
)`

// Migrate creates the row table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create sheet_rows: %w", err)
	}
	return nil
}

// EnsureHeader writes header as row 1 of table when the table is empty.
func (s *Store) EnsureHeader(ctx context.Context, table string, header []string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sheet_rows (sheet, row_num, cells)
		VALUES ($1, 1, $2)
		ON CONFLICT (sheet, row_num) DO NOTHING`,
		table, header,
	)
	if err != nil {
		return fmt.Errorf("ensure header %s: %w", table, err)
	}
	return nil
}
