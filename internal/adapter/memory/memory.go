// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fittrack/internal/domain"
)

// DB implements every repository port in memory.
type DB struct {
	mu        sync.Mutex
	users     []*domain.User
	daily     map[string]domain.DailyStat
	hourly    map[string]domain.HourlyStat
	baselines map[string]domain.SensorBaseline
	sessions  map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		daily:     make(map[string]domain.DailyStat),
		hourly:    make(map[string]domain.HourlyStat),
		baselines: make(map[string]domain.SensorBaseline),
		sessions:  make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.ActivityRepository = (*DB)(nil)
var _ domain.BaselineStore = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

func dailyKey(email, day string) string {
	return email + "|" + day
}

func hourlyKey(email, day string, hour int) string {
	return fmt.Sprintf("%s|%s|%02d", email, day, hour)
}

// --- ActivityRepository ---

// UpsertDaily inserts or replaces the daily bucket for (email, day).
func (db *DB) UpsertDaily(ctx context.Context, email, day string, steps, calories int, weightKg float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.daily[dailyKey(email, day)] = domain.DailyStat{
		Email: email, Day: day, Steps: steps, Calories: calories, WeightKg: weightKg,
	}
	return nil
}

// UpsertHourly inserts or replaces the hourly bucket for (email, day, hour).
func (db *DB) UpsertHourly(ctx context.Context, email, day string, hour, steps, calories int, weightKg float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.hourly[hourlyKey(email, day, hour)] = domain.HourlyStat{
		Email: email, Day: day, Hour: hour, Steps: steps, Calories: calories, WeightKg: weightKg,
	}
	return nil
}

// DailyStat returns the daily bucket, or nil if none exists.
func (db *DB) DailyStat(ctx context.Context, email, day string) (*domain.DailyStat, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if st, ok := db.daily[dailyKey(email, day)]; ok {
		ret := st
		return &ret, nil
	}
	return nil, nil
}

// HourlyStat returns the hourly bucket, or nil if none exists.
func (db *DB) HourlyStat(ctx context.Context, email, day string, hour int) (*domain.HourlyStat, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if st, ok := db.hourly[hourlyKey(email, day, hour)]; ok {
		ret := st
		return &ret, nil
	}
	return nil, nil
}

// HourlyStatsForDay returns all hourly buckets for a day in hour order.
func (db *DB) HourlyStatsForDay(ctx context.Context, email, day string) ([]domain.HourlyStat, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.HourlyStat
	for _, st := range db.hourly {
		if st.Email == email && st.Day == day {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

// --- BaselineStore ---

// Baseline returns the user's sensor baseline, or nil if none was captured.
func (db *DB) Baseline(ctx context.Context, email string) (*domain.SensorBaseline, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if b, ok := db.baselines[email]; ok {
		ret := b
		return &ret, nil
	}
	return nil, nil
}

// SaveBaseline records the baseline, overwriting any stale entry.
func (db *DB) SaveBaseline(ctx context.Context, email string, raw float64, day string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.baselines[email] = domain.SensorBaseline{Email: email, Raw: raw, Day: day}
	return nil
}

// --- UserRepository ---

// GetByEmail retrieves a user by email, or nil if not found.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID, or nil if not found.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if existing.Email == u.Email {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	stored := *u
	stored.ID = db.userIDCounter
	stored.CreatedAt = time.Now().UTC()
	db.users = append(db.users, &stored)

	ret := stored
	return &ret, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// UpdateProfile updates the editable profile fields.
func (db *DB) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.findLocked(email)
	if u == nil {
		return errors.New("user not found")
	}
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Age = p.Age
	u.Gender = p.Gender
	u.HeightCm = p.HeightCm
	return nil
}

// UpdateGoals updates the goal fields.
func (db *DB) UpdateGoals(ctx context.Context, email string, stepsGoal, caloriesGoal int, targetWeightKg float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.findLocked(email)
	if u == nil {
		return errors.New("user not found")
	}
	u.StepsGoal = stepsGoal
	u.CaloriesGoal = caloriesGoal
	u.TargetWeightKg = targetWeightKg
	return nil
}

// UpdateDailyWeight records today's weight on the user row.
func (db *DB) UpdateDailyWeight(ctx context.Context, email string, weightKg float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.findLocked(email)
	if u == nil {
		return errors.New("user not found")
	}
	u.WeightToday = weightKg
	return nil
}

// UpdateLiveCounters stores the live step/calorie counters.
func (db *DB) UpdateLiveCounters(ctx context.Context, email string, steps, calories int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.findLocked(email)
	if u == nil {
		return errors.New("user not found")
	}
	u.StepsToday = steps
	u.CaloriesToday = calories
	return nil
}

func (db *DB) findLocked(email string) *domain.User {
	for _, u := range db.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence on top of the shared DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token, or nil if absent or expired.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		ret := *s
		return &ret, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
