package app

import (
	"context"
	"errors"

	"fittrack/internal/domain"
)

// trackerHook lets profile changes reach an active tracking session;
// implemented by TrackerService.
type trackerHook interface {
	RearmGoal(ctx context.Context, email string) error
	UpdateWeight(email string, weightKg float64)
}

// ProfileService encapsulates profile, goal and daily-weight use cases.
type ProfileService struct {
	users   domain.UserRepository
	tracker trackerHook
}

// NewProfileService creates a ProfileService backed by the given repository.
// tracker may be nil when no tracking session needs re-arming (tests).
func NewProfileService(users domain.UserRepository, tracker trackerHook) *ProfileService {
	return &ProfileService{users: users, tracker: tracker}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile updates the editable profile fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) error {
	if p.Age < 0 || p.HeightCm < 0 {
		return errors.New("age and height must not be negative")
	}
	return s.users.UpdateProfile(ctx, email, p)
}

// UpdateGoals updates the daily step/calorie goals and the target weight,
// then re-arms the tracking session so a raised goal resumes tracking.
func (s *ProfileService) UpdateGoals(ctx context.Context, email string, stepsGoal, caloriesGoal int, targetWeightKg float64) error {
	if stepsGoal <= 0 || caloriesGoal <= 0 {
		return errors.New("goals must be positive")
	}
	if err := s.users.UpdateGoals(ctx, email, stepsGoal, caloriesGoal, targetWeightKg); err != nil {
		return err
	}
	if s.tracker != nil {
		return s.tracker.RearmGoal(ctx, email)
	}
	return nil
}

// RecordWeight stores today's weight measurement.
func (s *ProfileService) RecordWeight(ctx context.Context, email string, weightKg float64) error {
	if weightKg <= 0 {
		return errors.New("weight must be > 0")
	}
	if err := s.users.UpdateDailyWeight(ctx, email, weightKg); err != nil {
		return err
	}
	if s.tracker != nil {
		s.tracker.UpdateWeight(email, weightKg)
	}
	return nil
}
