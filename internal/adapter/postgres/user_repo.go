package postgres

import (
	"context"
	"database/sql"

	"fittrack/internal/domain"
)

var _ domain.UserRepository = (*DB)(nil)

const userColumns = `id, email, password_hash, first_name, last_name, age, gender,
	height_cm, weight_kg, steps_goal, calories_goal, target_weight_kg,
	steps_today, calories_today, weight_today, created_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Age, &u.Gender,
		&u.HeightCm, &u.WeightKg, &u.StepsGoal, &u.CaloriesGoal, &u.TargetWeightKg,
		&u.StepsToday, &u.CaloriesToday, &u.WeightToday, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (d *DB) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, age, gender,
			height_cm, weight_kg, steps_goal, calories_goal, target_weight_kg,
			steps_today, calories_today, weight_today, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Age, u.Gender,
		u.HeightCm, u.WeightKg, u.StepsGoal, u.CaloriesGoal, u.TargetWeightKg,
		u.StepsToday, u.CaloriesToday, u.WeightToday, u.CreatedAt)
	if err := row.Scan(&u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (d *DB) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE users SET first_name = $1, last_name = $2, age = $3, gender = $4,
			height_cm = $5
		WHERE email = $6`,
		p.FirstName, p.LastName, p.Age, p.Gender, p.HeightCm, email)
	return err
}

func (d *DB) UpdateGoals(ctx context.Context, email string, stepsGoal, caloriesGoal int, targetWeightKg float64) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE users SET steps_goal = $1, calories_goal = $2, target_weight_kg = $3 WHERE email = $4`,
		stepsGoal, caloriesGoal, targetWeightKg, email)
	return err
}

func (d *DB) UpdateDailyWeight(ctx context.Context, email string, weightKg float64) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE users SET weight_today = $1 WHERE email = $2`, weightKg, email)
	return err
}

func (d *DB) UpdateLiveCounters(ctx context.Context, email string, steps, calories int) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE users SET steps_today = $1, calories_today = $2 WHERE email = $3`,
		steps, calories, email)
	return err
}
