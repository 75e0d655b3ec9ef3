// Package sqlite implements the repository ports on an embedded SQLite
// database. It is the single-node alternative to the postgres adapter.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the database file at path and runs migrations.
func Open(path string) (*DB, error) {
	s, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := s.Ping(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := s.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := s.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	s.SetMaxOpenConns(1)

	d := &DB{sql: s}
	if err := d.migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database file.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			age INTEGER NOT NULL DEFAULT 0,
			gender TEXT NOT NULL DEFAULT '',
			height_cm REAL NOT NULL DEFAULT 0,
			weight_kg REAL NOT NULL DEFAULT 0,
			steps_goal INTEGER NOT NULL DEFAULT 10000,
			calories_goal INTEGER NOT NULL DEFAULT 2000,
			target_weight_kg REAL NOT NULL DEFAULT 70,
			steps_today INTEGER NOT NULL DEFAULT 0,
			calories_today INTEGER NOT NULL DEFAULT 0,
			weight_today REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			user_email TEXT NOT NULL,
			day TEXT NOT NULL,
			steps INTEGER NOT NULL DEFAULT 0,
			calories INTEGER NOT NULL DEFAULT 0,
			weight_kg REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (user_email, day)
		);`,
		`CREATE TABLE IF NOT EXISTS hourly_stats (
			user_email TEXT NOT NULL,
			day TEXT NOT NULL,
			hour INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
			steps INTEGER NOT NULL DEFAULT 0,
			calories INTEGER NOT NULL DEFAULT 0,
			weight_kg REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (user_email, day, hour)
		);`,
		`CREATE TABLE IF NOT EXISTS sensor_baselines (
			user_email TEXT PRIMARY KEY,
			raw REAL NOT NULL,
			day TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
