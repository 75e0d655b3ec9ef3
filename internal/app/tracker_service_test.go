package app_test

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fittrack/internal/adapter/memory"
	"fittrack/internal/app"
	"fittrack/internal/domain"
)

const testEmail = "ada@example.com"

func newTracker(t *testing.T, stepsGoal int) (*app.TrackerService, *memory.DB) {
	t.Helper()
	db := memory.New()
	_, err := db.Create(context.Background(), &domain.User{
		Email:          testEmail,
		FirstName:      "Ada",
		StepsGoal:      stepsGoal,
		CaloriesGoal:   domain.DefaultCaloriesGoal,
		WeightKg:       70.0,
		WeightToday:    70.0,
		TargetWeightKg: 70.0,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return app.NewTrackerService(db, db, db, zerolog.Nop()), db
}

// at builds a local timestamp on the given day at the given hour. January
// dates avoid DST transitions skewing the hour arithmetic.
func at(day string, hour int) time.Time {
	d, err := time.ParseInLocation(domain.DayFormat, day, time.Local)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func mustReading(t *testing.T, svc *app.TrackerService, raw float64, now time.Time) app.Reading {
	t.Helper()
	r, err := svc.HandleSensorReading(context.Background(), testEmail, raw, now)
	if err != nil {
		t.Fatalf("HandleSensorReading(%v): %v", raw, err)
	}
	return r
}

func TestHandleSensorReading_FirstReadingStartsAtZero(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	r := mustReading(t, svc, 5000, at("2026-01-05", 9))
	if r.Skipped {
		t.Fatal("first reading should not be skipped")
	}
	if r.Steps != 0 || r.Calories != 0 {
		t.Fatalf("expected 0 steps/calories at baseline capture, got %d/%d", r.Steps, r.Calories)
	}

	b, err := db.Baseline(context.Background(), testEmail)
	if err != nil || b == nil {
		t.Fatalf("expected persisted baseline, got %v (err %v)", b, err)
	}
	if b.Raw != 5000 || b.Day != "2026-01-05" {
		t.Fatalf("baseline = %+v, want raw 5000 day 2026-01-05", b)
	}
}

func TestHandleSensorReading_DeltaAndBuckets(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	r := mustReading(t, svc, 5500, at("2026-01-05", 10))

	if r.Steps != 500 {
		t.Fatalf("expected 500 steps, got %d", r.Steps)
	}
	wantCal := domain.CaloriesFromSteps(500, 70.0)
	if r.Calories != wantCal {
		t.Fatalf("expected %d calories, got %d", wantCal, r.Calories)
	}

	svc.Flush()

	daily, err := db.DailyStat(context.Background(), testEmail, "2026-01-05")
	if err != nil || daily == nil {
		t.Fatalf("expected daily stat, got %v (err %v)", daily, err)
	}
	if daily.Steps != 500 || daily.Calories != wantCal {
		t.Fatalf("daily = %+v, want steps 500 calories %d", daily, wantCal)
	}

	hourly, err := db.HourlyStat(context.Background(), testEmail, "2026-01-05", 10)
	if err != nil || hourly == nil {
		t.Fatalf("expected hourly stat, got %v (err %v)", hourly, err)
	}
	if hourly.Steps != 500 {
		t.Fatalf("hourly steps = %d, want 500", hourly.Steps)
	}
}

func TestHandleSensorReading_RepeatedUpsertsKeepOneRecord(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	mustReading(t, svc, 1000, at("2026-01-05", 9))
	mustReading(t, svc, 1100, at("2026-01-05", 9))
	mustReading(t, svc, 1250, at("2026-01-05", 9))
	svc.Flush()

	stats, err := db.HourlyStatsForDay(context.Background(), testEmail, "2026-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected a single hourly bucket, got %d", len(stats))
	}
	if stats[0].Steps != 250 {
		t.Fatalf("expected latest value 250, got %d", stats[0].Steps)
	}
}

func TestHandleSensorReading_ClampsBelowBaseline(t *testing.T) {
	svc, _ := newTracker(t, domain.DefaultStepsGoal)

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	r := mustReading(t, svc, 4000, at("2026-01-05", 10))
	if r.Skipped {
		t.Fatal("anomalous reading should still be processed")
	}
	if r.Steps != 0 {
		t.Fatalf("expected steps clamped to 0, got %d", r.Steps)
	}
}

func TestHandleSensorReading_MalformedInputSkipped(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	for _, raw := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		r := mustReading(t, svc, raw, at("2026-01-05", 9))
		if !r.Skipped {
			t.Fatalf("expected reading %v to be skipped", raw)
		}
	}

	svc.Flush()
	b, _ := db.Baseline(context.Background(), testEmail)
	if b != nil {
		t.Fatalf("malformed input must not capture a baseline, got %+v", b)
	}
}

func TestHandleSensorReading_DayRolloverArchivesAndResets(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	mustReading(t, svc, 5600, at("2026-01-05", 22))

	// Counter keeps running overnight; first reading of the new day must
	// close out Jan 5 with its final tally and restart from zero.
	r := mustReading(t, svc, 7000, at("2026-01-06", 7))
	if r.Steps != 0 {
		t.Fatalf("expected 0 steps after rollover, got %d", r.Steps)
	}

	svc.Flush()

	archived, err := db.DailyStat(context.Background(), testEmail, "2026-01-05")
	if err != nil || archived == nil {
		t.Fatalf("expected archived stat for outgoing day, got %v (err %v)", archived, err)
	}
	if archived.Steps != 600 {
		t.Fatalf("archived steps = %d, want 600", archived.Steps)
	}

	r = mustReading(t, svc, 7250, at("2026-01-06", 8))
	if r.Steps != 250 {
		t.Fatalf("expected 250 steps from new baseline, got %d", r.Steps)
	}

	b, _ := db.Baseline(context.Background(), testEmail)
	if b == nil || b.Raw != 7000 || b.Day != "2026-01-06" {
		t.Fatalf("baseline = %+v, want raw 7000 day 2026-01-06", b)
	}
}

func TestHandleSensorReading_GoalOneShot(t *testing.T) {
	svc, db := newTracker(t, 500)

	var fired atomic.Int32
	done := make(chan struct{}, 4)
	svc.SetGoalCompletedFunc(func(email string, steps int) {
		fired.Add(1)
		done <- struct{}{}
	})

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	r := mustReading(t, svc, 5600, at("2026-01-05", 10))
	if !r.GoalCompleted {
		t.Fatal("expected goal completion at 600 >= 500 steps")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goal callback did not fire")
	}

	r = mustReading(t, svc, 5700, at("2026-01-05", 11))
	if !r.Skipped {
		t.Fatal("expected readings after completion to be skipped")
	}
	if r.GoalCompleted {
		t.Fatal("completion must not re-trigger")
	}

	svc.Flush()
	if got := fired.Load(); got != 1 {
		t.Fatalf("goal callback fired %d times, want 1", got)
	}

	// Raising the goal above current progress re-arms tracking.
	if err := db.UpdateGoals(context.Background(), testEmail, 2000, domain.DefaultCaloriesGoal, 70.0); err != nil {
		t.Fatalf("update goals: %v", err)
	}
	if err := svc.RearmGoal(context.Background(), testEmail); err != nil {
		t.Fatalf("rearm goal: %v", err)
	}

	r = mustReading(t, svc, 5800, at("2026-01-05", 12))
	if r.Skipped {
		t.Fatal("expected tracking to resume after goal raise")
	}
	if r.Steps != 800 {
		t.Fatalf("expected 800 steps, got %d", r.Steps)
	}
	if r.GoalCompleted {
		t.Fatal("800 < 2000 must not complete the goal")
	}
}

func TestHandleSensorReading_GoalResetsOnNewDay(t *testing.T) {
	svc, _ := newTracker(t, 500)

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	mustReading(t, svc, 5600, at("2026-01-05", 10)) // completes

	r := mustReading(t, svc, 6000, at("2026-01-06", 8))
	if r.Skipped {
		t.Fatal("new day must resume tracking after completion")
	}
	if r.Steps != 0 {
		t.Fatalf("expected fresh baseline on new day, got %d steps", r.Steps)
	}
}

func TestHandleSensorReading_DefaultWeightWhenUnset(t *testing.T) {
	db := memory.New()
	// SSO-provisioned account: no weight recorded yet.
	if _, err := db.Create(context.Background(), &domain.User{Email: testEmail, StepsGoal: domain.DefaultStepsGoal, CaloriesGoal: domain.DefaultCaloriesGoal}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	svc := app.NewTrackerService(db, db, db, zerolog.Nop())

	mustReading(t, svc, 0, at("2026-01-05", 9))
	r := mustReading(t, svc, 1000, at("2026-01-05", 10))

	want := domain.CaloriesFromSteps(1000, domain.DefaultWeightKg)
	if r.Calories != want {
		t.Fatalf("expected default-weight calories %d, got %d", want, r.Calories)
	}
}

func TestHandleSensorReading_ResumesFromPersistedBaseline(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	mustReading(t, svc, 5400, at("2026-01-05", 10))
	svc.StopTracking(testEmail)

	// A fresh service (process restart) re-derives the session from the
	// store instead of re-capturing the baseline mid-day.
	svc2 := app.NewTrackerService(db, db, db, zerolog.Nop())
	r := mustReading(t, svc2, 5900, at("2026-01-05", 11))
	if r.Steps != 900 {
		t.Fatalf("expected 900 steps from persisted baseline, got %d", r.Steps)
	}
}

func TestRollupTodayHourly_GapFilled(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	if err := db.UpsertHourly(context.Background(), testEmail, "2026-01-05", 9, 812, 44, 70.0); err != nil {
		t.Fatalf("seed hourly: %v", err)
	}

	points, err := svc.RollupTodayHourly(context.Background(), testEmail, "2026-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(points))
	}
	for h, p := range points {
		if p.Hour != h {
			t.Fatalf("point %d has hour %d, want ascending hour order", h, p.Hour)
		}
		want := 0
		if h == 9 {
			want = 812
		}
		if p.Steps != want {
			t.Errorf("hour %d steps = %d, want %d", h, p.Steps, want)
		}
	}
}

func TestRollupTodayHourly_EmptyDay(t *testing.T) {
	svc, _ := newTracker(t, domain.DefaultStepsGoal)

	points, err := svc.RollupTodayHourly(context.Background(), testEmail, "2026-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Steps != 0 {
			t.Fatalf("hour %d should be zero-filled, got %d", p.Hour, p.Steps)
		}
	}
}

func TestRollupLast7Days_FixedLengthAscending(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	if err := db.UpsertDaily(context.Background(), testEmail, "2026-01-05", 4200, 231, 70.0); err != nil {
		t.Fatalf("seed daily: %v", err)
	}
	if err := db.UpsertDaily(context.Background(), testEmail, "2026-01-03", 900, 49, 70.0); err != nil {
		t.Fatalf("seed daily: %v", err)
	}

	points, err := svc.RollupLast7Days(context.Background(), testEmail, "2026-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	if points[0].Day != "2025-12-30" || points[6].Day != "2026-01-05" {
		t.Fatalf("range = %s..%s, want 2025-12-30..2026-01-05", points[0].Day, points[6].Day)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Day <= points[i-1].Day {
			t.Fatalf("points not in ascending date order: %s after %s", points[i].Day, points[i-1].Day)
		}
	}
	if points[6].Steps != 4200 || points[6].Calories != 231 {
		t.Fatalf("end day = %+v, want steps 4200 calories 231", points[6])
	}
	if points[4].Steps != 900 {
		t.Fatalf("2026-01-03 steps = %d, want 900", points[4].Steps)
	}
	for _, i := range []int{0, 1, 2, 3, 5} {
		if points[i].Steps != 0 || points[i].Calories != 0 {
			t.Fatalf("day %s should be zero-filled, got %+v", points[i].Day, points[i])
		}
	}
}

func TestRollupLast7Days_AllEmpty(t *testing.T) {
	svc, _ := newTracker(t, domain.DefaultStepsGoal)

	points, err := svc.RollupLast7Days(context.Background(), testEmail, "2026-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("expected 7 points even with no records, got %d", len(points))
	}
	for _, p := range points {
		if p.Steps != 0 || p.Calories != 0 {
			t.Fatalf("expected all-zero series, got %+v", p)
		}
	}
}

func TestRollupLast7Days_BadDate(t *testing.T) {
	svc, _ := newTracker(t, domain.DefaultStepsGoal)
	if _, err := svc.RollupLast7Days(context.Background(), testEmail, "05/01/2026"); err == nil {
		t.Fatal("expected error for malformed end date")
	}
}

func TestArchiveAndResetDailyProgress(t *testing.T) {
	svc, db := newTracker(t, domain.DefaultStepsGoal)

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	mustReading(t, svc, 5800, at("2026-01-05", 10))
	svc.Flush()

	if err := svc.ArchiveAndResetDailyProgress(context.Background(), testEmail, "2026-01-05"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	st, err := db.DailyStat(context.Background(), testEmail, "2026-01-05")
	if err != nil || st == nil {
		t.Fatalf("expected archived stat, got %v (err %v)", st, err)
	}
	if st.Steps != 800 {
		t.Fatalf("archived steps = %d, want 800", st.Steps)
	}

	u, err := db.GetByEmail(context.Background(), testEmail)
	if err != nil || u == nil {
		t.Fatalf("get user: %v", err)
	}
	if u.StepsToday != 0 || u.CaloriesToday != 0 {
		t.Fatalf("live counters = %d/%d, want reset to 0", u.StepsToday, u.CaloriesToday)
	}
}

func TestTodaySummary_UsesLiveSession(t *testing.T) {
	svc, _ := newTracker(t, domain.DefaultStepsGoal)

	mustReading(t, svc, 5000, at("2026-01-05", 9))
	mustReading(t, svc, 8200, at("2026-01-05", 12))

	sum, err := svc.TodaySummary(context.Background(), testEmail, at("2026-01-05", 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Steps != 3200 {
		t.Fatalf("summary steps = %d, want 3200", sum.Steps)
	}
	if sum.StepsGoal != domain.DefaultStepsGoal {
		t.Fatalf("summary goal = %d, want %d", sum.StepsGoal, domain.DefaultStepsGoal)
	}
	if sum.GoalCompleted {
		t.Fatal("goal should not be completed")
	}
}
