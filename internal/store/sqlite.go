// Package store persists the pieces of candleterm that outlive a session:
// the watchlist in SQLite and fetched bar history in Parquet files. The
// chart engine itself is stateless; only the surrounding application reads
// and writes here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// WatchlistEntry is one tracked ticker.
type WatchlistEntry struct {
	Symbol  string
	Name    string
	AddedAt time.Time
}

// SQLiteStore persists the watchlist in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS watchlist (
			symbol   TEXT PRIMARY KEY,
			name     TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMP NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add inserts a symbol into the watchlist. Adding an existing symbol is a
// no-op.
func (s *SQLiteStore) Add(ctx context.Context, symbol, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlist (symbol, name, added_at) VALUES (?, ?, ?)`,
		symbol, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adding %s: %w", symbol, err)
	}
	return nil
}

// Remove deletes a symbol from the watchlist.
func (s *SQLiteStore) Remove(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("removing %s: %w", symbol, err)
	}
	return nil
}

// List returns all watchlist entries in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]WatchlistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, name, added_at FROM watchlist ORDER BY added_at, symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []WatchlistEntry
	for rows.Next() {
		var e WatchlistEntry
		if err := rows.Scan(&e.Symbol, &e.Name, &e.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Seed inserts the given symbols only when the watchlist is empty, so a
// configured default list applies on first run without resurrecting
// removed symbols later.
func (s *SQLiteStore) Seed(ctx context.Context, symbols []string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM watchlist`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, sym := range symbols {
		if err := s.Add(ctx, sym, ""); err != nil {
			return err
		}
	}
	return nil
}
