// Package postgres implements the repository ports on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			age INT NOT NULL DEFAULT 0,
			gender TEXT NOT NULL DEFAULT '',
			height_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
			weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			steps_goal INT NOT NULL DEFAULT 10000,
			calories_goal INT NOT NULL DEFAULT 2000,
			target_weight_kg DOUBLE PRECISION NOT NULL DEFAULT 70,
			steps_today INT NOT NULL DEFAULT 0,
			calories_today INT NOT NULL DEFAULT 0,
			weight_today DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			user_email TEXT NOT NULL,
			day TEXT NOT NULL,
			steps INT NOT NULL DEFAULT 0,
			calories INT NOT NULL DEFAULT 0,
			weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (user_email, day)
		);`,
		`CREATE TABLE IF NOT EXISTS hourly_stats (
			user_email TEXT NOT NULL,
			day TEXT NOT NULL,
			hour INT NOT NULL CHECK (hour BETWEEN 0 AND 23),
			steps INT NOT NULL DEFAULT 0,
			calories INT NOT NULL DEFAULT 0,
			weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (user_email, day, hour)
		);`,
		`CREATE TABLE IF NOT EXISTS sensor_baselines (
			user_email TEXT PRIMARY KEY,
			raw DOUBLE PRECISION NOT NULL,
			day TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_stats_day ON daily_stats(day);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
