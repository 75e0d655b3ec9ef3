package memory_test

import (
	"context"
	"testing"
	"time"

	"fittrack/internal/adapter/memory"
	"fittrack/internal/domain"
)

func TestDailyUpsertIsLastWriteWins(t *testing.T) {
	db := memory.New()
	ctx := context.Background()

	for _, steps := range []int{100, 250, 180} {
		if err := db.UpsertDaily(ctx, "a@example.com", "2026-01-14", steps, steps/2, 70); err != nil {
			t.Fatalf("UpsertDaily: %v", err)
		}
	}

	st, err := db.DailyStat(ctx, "a@example.com", "2026-01-14")
	if err != nil {
		t.Fatalf("DailyStat: %v", err)
	}
	if st == nil || st.Steps != 180 {
		t.Fatalf("daily stat = %+v, want steps 180", st)
	}
}

func TestHourlyBucketsAreIndependent(t *testing.T) {
	db := memory.New()
	ctx := context.Background()

	_ = db.UpsertHourly(ctx, "a@example.com", "2026-01-14", 9, 100, 5, 70)
	_ = db.UpsertHourly(ctx, "a@example.com", "2026-01-14", 10, 300, 16, 70)
	_ = db.UpsertHourly(ctx, "a@example.com", "2026-01-15", 9, 50, 2, 70)
	_ = db.UpsertHourly(ctx, "b@example.com", "2026-01-14", 9, 999, 55, 70)

	stats, err := db.HourlyStatsForDay(ctx, "a@example.com", "2026-01-14")
	if err != nil {
		t.Fatalf("HourlyStatsForDay: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d buckets, want 2", len(stats))
	}
	if stats[0].Hour != 9 || stats[1].Hour != 10 {
		t.Fatalf("buckets not in hour order: %+v", stats)
	}

	st, err := db.HourlyStat(ctx, "a@example.com", "2026-01-14", 10)
	if err != nil {
		t.Fatalf("HourlyStat: %v", err)
	}
	if st == nil || st.Steps != 300 {
		t.Fatalf("hour 10 = %+v, want steps 300", st)
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	db := memory.New()
	ctx := context.Background()

	b, err := db.Baseline(ctx, "a@example.com")
	if err != nil || b != nil {
		t.Fatalf("Baseline before save = %+v, %v; want nil, nil", b, err)
	}

	if err := db.SaveBaseline(ctx, "a@example.com", 4521.5, "2026-01-14"); err != nil {
		t.Fatalf("SaveBaseline: %v", err)
	}
	if err := db.SaveBaseline(ctx, "a@example.com", 12.0, "2026-01-15"); err != nil {
		t.Fatalf("SaveBaseline overwrite: %v", err)
	}

	b, err = db.Baseline(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	if b == nil || b.Raw != 12.0 || b.Day != "2026-01-15" {
		t.Fatalf("baseline = %+v, want raw 12 on 2026-01-15", b)
	}
}

func TestUserCreateAndUpdate(t *testing.T) {
	db := memory.New()
	ctx := context.Background()

	u, err := db.Create(ctx, &domain.User{Email: "a@example.com", StepsGoal: 10000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("created user has no id")
	}

	if _, err := db.Create(ctx, &domain.User{Email: "a@example.com"}); err == nil {
		t.Fatal("duplicate create did not fail")
	}

	if err := db.UpdateGoals(ctx, "a@example.com", 12000, 2400, 65); err != nil {
		t.Fatalf("UpdateGoals: %v", err)
	}
	if err := db.UpdateLiveCounters(ctx, "a@example.com", 500, 27); err != nil {
		t.Fatalf("UpdateLiveCounters: %v", err)
	}

	got, err := db.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StepsGoal != 12000 || got.TargetWeightKg != 65 || got.StepsToday != 500 {
		t.Fatalf("user after updates = %+v", got)
	}
}

func TestSessionExpiry(t *testing.T) {
	db := memory.New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, 1, "live", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, 1, "stale", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s, err := repo.GetByToken(ctx, "stale")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if s != nil {
		t.Fatal("expired session returned")
	}

	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}

	s, err = repo.GetByToken(ctx, "live")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if s == nil || s.UserID != 1 {
		t.Fatalf("live session = %+v", s)
	}
}
