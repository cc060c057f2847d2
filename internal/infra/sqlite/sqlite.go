// Package sqlite is the local persistence backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dvloznov/household-finance/internal/store"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Storage implements store.Store on a single SQLite file.
type Storage struct {
	db     *sql.DB
	dbPath string
}

var _ store.Store = (*Storage)(nil)

// Open creates the database file if needed and migrates it to the latest schema.
func Open(ctx context.Context, dbPath string) (*Storage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite.Open: empty database path")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open database: %w", err)
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: ping database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func checkAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, store.ErrNotFound)
	}
	return nil
}
