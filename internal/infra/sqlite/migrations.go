package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// ExpectedSchemaVersion is the latest schema version this binary writes.
const ExpectedSchemaVersion = 2

type migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, q := range queries {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("execute query: %w", err)
		}
	}
	return nil
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					household TEXT NOT NULL,
					date TEXT NOT NULL,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL,
					category TEXT NOT NULL,
					member TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_household_date ON transactions(household, date)`,

				`CREATE TABLE IF NOT EXISTS budget_items (
					id TEXT PRIMARY KEY,
					household TEXT NOT NULL,
					month TEXT NOT NULL,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL,
					category TEXT NOT NULL,
					is_recurring INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX IF NOT EXISTS idx_budget_household_month ON budget_items(household, month)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Savings goals",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					household TEXT NOT NULL,
					name TEXT NOT NULL,
					target_amount TEXT NOT NULL,
					current_amount TEXT NOT NULL,
					deadline TEXT NOT NULL,
					category TEXT NOT NULL,
					priority TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_goals_household ON goals(household)`,
			)
		},
	},
}

// Migrate applies every migration newer than PRAGMA user_version, one transaction each.
func (s *Storage) Migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("Migrate: get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("Migrate: begin transaction: %w", err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("Migrate: migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("Migrate: update schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("Migrate: commit migration %d: %w", m.Version, err)
		}
	}

	var final int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("Migrate: verify schema version: %w", err)
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("Migrate: schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}
