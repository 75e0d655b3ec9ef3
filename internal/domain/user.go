// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Defaults applied when a user has no explicit goal or weight configuration.
const (
	DefaultStepsGoal    = 10000
	DefaultCaloriesGoal = 2000
	DefaultWeightKg     = 70.0
)

// User represents a registered account. Email is the identity key used by
// all activity records. StepsToday and CaloriesToday are live counters
// maintained by the tracker during the day; goal fields are set via the
// profile screens.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Age          int
	Gender       string
	HeightCm     float64
	WeightKg     float64

	StepsGoal      int
	CaloriesGoal   int
	TargetWeightKg float64

	StepsToday    int
	CaloriesToday int
	WeightToday   float64

	CreatedAt time.Time
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Age       int
	Gender    string
	HeightCm  float64
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Count(ctx context.Context) (int, error)
	UpdateProfile(ctx context.Context, email string, p ProfileUpdate) error
	UpdateGoals(ctx context.Context, email string, stepsGoal, caloriesGoal int, targetWeightKg float64) error
	UpdateDailyWeight(ctx context.Context, email string, weightKg float64) error
	UpdateLiveCounters(ctx context.Context, email string, steps, calories int) error
}
