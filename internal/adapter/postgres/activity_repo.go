package postgres

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
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_email, day) DO UPDATE SET
			steps = EXCLUDED.steps,
			calories = EXCLUDED.calories,
			weight_kg = EXCLUDED.weight_kg`,
		email, day, steps, calories, weightKg)
	return err
}

func (d *DB) UpsertHourly(ctx context.Context, email, day string, hour, steps, calories int, weightKg float64) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO hourly_stats (user_email, day, hour, steps, calories, weight_kg)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_email, day, hour) DO UPDATE SET
			steps = EXCLUDED.steps,
			calories = EXCLUDED.calories,
			weight_kg = EXCLUDED.weight_kg`,
		email, day, hour, steps, calories, weightKg)
	return err
}

func (d *DB) DailyStat(ctx context.Context, email, day string) (*domain.DailyStat, error) {
	var s domain.DailyStat
	err := d.sql.QueryRowContext(ctx,
		`SELECT user_email, day, steps, calories, weight_kg
		FROM daily_stats WHERE user_email = $1 AND day = $2`,
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
		FROM hourly_stats WHERE user_email = $1 AND day = $2 AND hour = $3`,
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
		FROM hourly_stats WHERE user_email = $1 AND day = $2 ORDER BY hour`,
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
		`SELECT user_email, raw, day FROM sensor_baselines WHERE user_email = $1`,
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
		VALUES ($1, $2, $3)
		ON CONFLICT (user_email) DO UPDATE SET raw = EXCLUDED.raw, day = EXCLUDED.day`,
		email, raw, day)
	return err
}
