package sqlite

import (
	"context"
	"database/sql"

	"fittrack/internal/domain"
)

var (
	_ domain.ActivityRepository = (*DB)(nil)
	_ domain.BaselineStore      = (*DB)(nil)
)

func (d *DB) UpsertDaily(ctx context.Context, email, day string, steps, calories int, weightKg float64) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO daily_stats (user_email, day, steps, calories, weight_kg)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_email, day) DO UPDATE SET
			steps = excluded.steps,
			calories = excluded.calories,
			weight_kg = excluded.weight_kg`,
		email, day, steps, calories, weightKg)
	return err
}

func (d *DB) UpsertHourly(ctx context.Context, email, day string, hour, steps, calories int, weightKg float64) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO hourly_stats (user_email, day, hour, steps, calories, weight_kg)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_email, day, hour) DO UPDATE SET
			steps = excluded.steps,
			calories = excluded.calories,
			weight_kg = excluded.weight_kg`,
		email, day, hour, steps, calories, weightKg)
	return err
}

func (d *DB) DailyStat(ctx context.Context, email, day string) (*domain.DailyStat, error) {
	var s domain.DailyStat
	err := d.sql.QueryRowContext(ctx,
		`SELECT user_email, day, steps, calories, weight_kg
		FROM daily_stats WHERE user_email = ? AND day = ?`,
		email, day).Scan(&s.Email, &s.Day, &s.Steps, &s.Calories, &s.WeightKg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DB) HourlyStat(ctx context.Context, email, day string, hour int) (*domain.HourlyStat, error) {
	var s domain.HourlyStat
	err := d.sql.QueryRowContext(ctx,
		`SELECT user_email, day, hour, steps, calories, weight_kg
		FROM hourly_stats WHERE user_email = ? AND day = ? AND hour = ?`,
		email, day, hour).Scan(&s.Email, &s.Day, &s.Hour, &s.Steps, &s.Calories, &s.WeightKg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DB) HourlyStatsForDay(ctx context.Context, email, day string) ([]domain.HourlyStat, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT user_email, day, hour, steps, calories, weight_kg
		FROM hourly_stats WHERE user_email = ? AND day = ? ORDER BY hour`,
		email, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HourlyStat
	for rows.Next() {
		var s domain.HourlyStat
		if err := rows.Scan(&s.Email, &s.Day, &s.Hour, &s.Steps, &s.Calories, &s.WeightKg); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DB) Baseline(ctx context.Context, email string) (*domain.SensorBaseline, error) {
	var b domain.SensorBaseline
	err := d.sql.QueryRowContext(ctx,
		`SELECT user_email, raw, day FROM sensor_baselines WHERE user_email = ?`,
		email).Scan(&b.Email, &b.Raw, &b.Day)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (d *DB) SaveBaseline(ctx context.Context, email string, raw float64, day string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO sensor_baselines (user_email, raw, day)
		VALUES (?, ?, ?)
		ON CONFLICT (user_email) DO UPDATE SET raw = excluded.raw, day = excluded.day`,
		email, raw, day)
	return err
}
