package app

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fittrack/internal/domain"
)

type trackingPhase int

const (
	phaseNotTracking trackingPhase = iota
	phaseTracking
	phaseGoalCompleted
)

// Reading is the outcome of processing one sensor event. Skipped is true
// when the event was rejected (malformed value, or the session already
// completed its goal). GoalCompleted is true only on the event that crossed
// the step goal.
type Reading struct {
	Skipped       bool   `json:"skipped"`
	Day           string `json:"day,omitempty"`
	Hour          int    `json:"hour"`
	Steps         int    `json:"steps"`
	Calories      int    `json:"calories"`
	GoalCompleted bool   `json:"goalCompleted"`
}

// HourPoint is a single entry in the 24-point hourly series.
type HourPoint struct {
	Hour  int `json:"hour"`
	Steps int `json:"steps"`
}

// DayPoint is a single entry in the 7-point daily series.
type DayPoint struct {
	Day      string `json:"day"`
	Steps    int    `json:"steps"`
	Calories int    `json:"calories"`
}

// Summary is the dashboard view of today's progress.
type Summary struct {
	Day            string  `json:"day"`
	Steps          int     `json:"steps"`
	Calories       int     `json:"calories"`
	StepsGoal      int     `json:"stepsGoal"`
	CaloriesGoal   int     `json:"caloriesGoal"`
	WeightToday    float64 `json:"weightToday"`
	TargetWeightKg float64 `json:"targetWeightKg"`
	GoalCompleted  bool    `json:"goalCompleted"`
}

// GoalCompletedFunc is invoked once per tracking session when the step goal
// is first reached.
type GoalCompletedFunc func(email string, steps int)

// trackingSession is the in-process state for one user's tracking session.
// The baseline is the raw cumulative sensor value seen at the first reading
// of baselineDay; live counters are authoritative between store writes.
type trackingSession struct {
	phase         trackingPhase
	baselineRaw   float64
	baselineDay   string
	stepsToday    int
	caloriesToday int
	weightToday   float64
	stepsGoal     int
	caloriesGoal  int
}

// TrackerService converts raw cumulative step-sensor readings into
// calendar-bucketed activity records and serves the rollup views consumed
// by the dashboard charts. One instance owns all tracking sessions; events
// for a given user are expected to arrive serially.
type TrackerService struct {
	activity  domain.ActivityRepository
	users     domain.UserRepository
	baselines domain.BaselineStore
	log       zerolog.Logger

	onGoalCompleted GoalCompletedFunc

	mu       sync.Mutex
	sessions map[string]*trackingSession

	writeQueue chan bucketWrite
	writes     sync.WaitGroup
}

// bucketWrite is one queued store write for a sensor reading.
type bucketWrite struct {
	email    string
	day      string
	hour     int
	steps    int
	calories int
	weight   float64
}

// NewTrackerService creates a TrackerService backed by the given
// repositories and starts its store-write worker.
func NewTrackerService(activity domain.ActivityRepository, users domain.UserRepository, baselines domain.BaselineStore, log zerolog.Logger) *TrackerService {
	s := &TrackerService{
		activity:   activity,
		users:      users,
		baselines:  baselines,
		log:        log,
		sessions:   make(map[string]*trackingSession),
		writeQueue: make(chan bucketWrite, 256),
	}
	go s.writeLoop()
	return s
}

// Close stops the store-write worker after draining queued writes.
func (s *TrackerService) Close() {
	close(s.writeQueue)
	s.Flush()
}

// SetGoalCompletedFunc registers the one-shot goal-completion callback.
func (s *TrackerService) SetGoalCompletedFunc(fn GoalCompletedFunc) {
	s.onGoalCompleted = fn
}

// HandleSensorReading processes one cumulative step-counter event observed
// at now (in the user's local timezone). Live counters update synchronously;
// the bucket upserts are posted to the store without waiting.
func (s *TrackerService) HandleSensorReading(ctx context.Context, email string, rawCumulativeSteps float64, now time.Time) (Reading, error) {
	if math.IsNaN(rawCumulativeSteps) || math.IsInf(rawCumulativeSteps, 0) || rawCumulativeSteps < 0 {
		// Malformed device input: drop the reading, no state change.
		return Reading{Skipped: true}, nil
	}

	today := now.Format(domain.DayFormat)
	hour := now.Hour()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSessionLocked(ctx, email)

	if sess.phase == phaseGoalCompleted && sess.baselineDay == today {
		return Reading{Skipped: true}, nil
	}

	if sess.baselineDay != today {
		// Close out the outgoing day before the baseline moves, otherwise
		// its final tally is lost.
		if sess.baselineDay != "" {
			s.archiveLocked(ctx, email, sess, sess.baselineDay)
		}
		sess.baselineRaw = rawCumulativeSteps
		sess.baselineDay = today
		sess.phase = phaseTracking
		if err := s.baselines.SaveBaseline(ctx, email, rawCumulativeSteps, today); err != nil {
			s.log.Error().Err(err).Str("email", email).Msg("save sensor baseline")
		}
	}
	if sess.phase == phaseNotTracking {
		sess.phase = phaseTracking
	}

	// A device reboot mid-day resets the cumulative counter below the
	// baseline; the delta clamps to 0 and stays there until the next day's
	// capture. Known limitation, kept from the original tracker.
	delta := rawCumulativeSteps - sess.baselineRaw
	if delta < 0 {
		delta = 0
	}
	steps := int(delta)

	weight := effectiveWeight(sess.weightToday)
	calories := domain.CaloriesFromSteps(steps, weight)

	sess.stepsToday = steps
	sess.caloriesToday = calories

	s.persistReading(email, today, hour, steps, calories, weight)

	r := Reading{Day: today, Hour: hour, Steps: steps, Calories: calories}
	if steps >= sess.stepsGoal {
		sess.phase = phaseGoalCompleted
		r.GoalCompleted = true
		if fn := s.onGoalCompleted; fn != nil {
			go fn(email, steps)
		}
	}
	return r, nil
}

// RollupTodayHourly returns the hourly step series for a local day: exactly
// 24 entries in ascending hour order, 0 for any hour without a record.
func (s *TrackerService) RollupTodayHourly(ctx context.Context, email, day string) ([]HourPoint, error) {
	stats, err := s.activity.HourlyStatsForDay(ctx, email, day)
	if err != nil {
		return nil, err
	}
	points := make([]HourPoint, 24)
	for h := range points {
		points[h].Hour = h
	}
	for _, st := range stats {
		if st.Hour >= 0 && st.Hour < len(points) {
			points[st.Hour].Steps = st.Steps
		}
	}
	return points, nil
}

// RollupLast7Days returns the daily series covering endDay-6 through endDay
// inclusive: exactly 7 entries in ascending date order, zero-valued for days
// without a record.
func (s *TrackerService) RollupLast7Days(ctx context.Context, email, endDay string) ([]DayPoint, error) {
	end, err := time.ParseInLocation(domain.DayFormat, endDay, time.Local)
	if err != nil {
		return nil, err
	}

	points := make([]DayPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := end.AddDate(0, 0, -i).Format(domain.DayFormat)
		p := DayPoint{Day: day}
		st, err := s.activity.DailyStat(ctx, email, day)
		if err != nil {
			return nil, err
		}
		if st != nil {
			p.Steps = st.Steps
			p.Calories = st.Calories
		}
		points = append(points, p)
	}
	return points, nil
}

// ArchiveAndResetDailyProgress writes the live counters as the daily record
// for asOfDay (the day being closed out), then resets them to 0.
func (s *TrackerService) ArchiveAndResetDailyProgress(ctx context.Context, email, asOfDay string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSessionLocked(ctx, email)
	weight := effectiveWeight(sess.weightToday)
	if err := s.activity.UpsertDaily(ctx, email, asOfDay, sess.stepsToday, sess.caloriesToday, weight); err != nil {
		return err
	}
	sess.stepsToday = 0
	sess.caloriesToday = 0
	if err := s.users.UpdateLiveCounters(ctx, email, 0, 0); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("reset live counters")
	}
	return nil
}

// StartTracking arms a tracking session for the user; called when the
// dashboard becomes visible. If the stored baseline belongs to an earlier
// day it is re-derived on the next sensor reading.
func (s *TrackerService) StartTracking(ctx context.Context, email string, now time.Time) {
	today := now.Format(domain.DayFormat)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSessionLocked(ctx, email)
	if sess.phase == phaseGoalCompleted && sess.baselineDay == today {
		return
	}
	sess.phase = phaseTracking
}

// StopTracking discards the user's in-process session and waits for pending
// store writes; called when the dashboard is hidden. Counters survive in the
// store and are re-read on resume.
func (s *TrackerService) StopTracking(email string) {
	s.mu.Lock()
	delete(s.sessions, email)
	s.mu.Unlock()
	s.Flush()
}

// RearmGoal reloads the user's goals and resumes tracking if the current
// progress is below the (presumably raised) step goal. Called after a goal
// update from the profile screens.
func (s *TrackerService) RearmGoal(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSessionLocked(ctx, email)
	if u != nil {
		if u.StepsGoal > 0 {
			sess.stepsGoal = u.StepsGoal
		}
		if u.CaloriesGoal > 0 {
			sess.caloriesGoal = u.CaloriesGoal
		}
	}
	if sess.phase == phaseGoalCompleted && sess.stepsToday < sess.stepsGoal {
		sess.phase = phaseTracking
	}
	return nil
}

// UpdateWeight propagates a new weight measurement into an active tracking
// session so subsequent calorie derivations use it.
func (s *TrackerService) UpdateWeight(email string, weightKg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[email]; ok {
		sess.weightToday = weightKg
	}
}

// TodaySummary returns the live progress view for the dashboard.
func (s *TrackerService) TodaySummary(ctx context.Context, email string, now time.Time) (Summary, error) {
	today := now.Format(domain.DayFormat)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Day:          today,
		StepsGoal:    domain.DefaultStepsGoal,
		CaloriesGoal: domain.DefaultCaloriesGoal,
		WeightToday:  domain.DefaultWeightKg,
	}
	if u != nil {
		if u.StepsGoal > 0 {
			sum.StepsGoal = u.StepsGoal
		}
		if u.CaloriesGoal > 0 {
			sum.CaloriesGoal = u.CaloriesGoal
		}
		sum.WeightToday = u.WeightToday
		sum.TargetWeightKg = u.TargetWeightKg
		sum.Steps = u.StepsToday
		sum.Calories = u.CaloriesToday
	}

	s.mu.Lock()
	if sess, ok := s.sessions[email]; ok && sess.baselineDay == today {
		sum.Steps = sess.stepsToday
		sum.Calories = sess.caloriesToday
		sum.StepsGoal = sess.stepsGoal
		sum.CaloriesGoal = sess.caloriesGoal
		sum.GoalCompleted = sess.phase == phaseGoalCompleted
	}
	s.mu.Unlock()

	return sum, nil
}

// Flush blocks until all posted store writes have finished.
func (s *TrackerService) Flush() {
	s.writes.Wait()
}

// ensureSessionLocked returns the user's tracking session, deriving it from
// the user row and the persisted baseline on first touch. Missing or broken
// configuration falls back to the documented defaults rather than failing.
func (s *TrackerService) ensureSessionLocked(ctx context.Context, email string) *trackingSession {
	if sess, ok := s.sessions[email]; ok {
		return sess
	}

	sess := &trackingSession{
		stepsGoal:    domain.DefaultStepsGoal,
		caloriesGoal: domain.DefaultCaloriesGoal,
		weightToday:  domain.DefaultWeightKg,
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("load user for tracking")
	}
	if u != nil {
		if u.StepsGoal > 0 {
			sess.stepsGoal = u.StepsGoal
		}
		if u.CaloriesGoal > 0 {
			sess.caloriesGoal = u.CaloriesGoal
		}
		sess.weightToday = u.WeightToday
		sess.stepsToday = u.StepsToday
		sess.caloriesToday = u.CaloriesToday
	}

	b, err := s.baselines.Baseline(ctx, email)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("load sensor baseline")
	}
	if b != nil {
		sess.baselineRaw = b.Raw
		sess.baselineDay = b.Day
	}

	s.sessions[email] = sess
	return sess
}

// archiveLocked closes out asOfDay from the live counters and resets them.
// Failures are logged and absorbed: rollover must never block the new day's
// first reading.
func (s *TrackerService) archiveLocked(ctx context.Context, email string, sess *trackingSession, asOfDay string) {
	weight := effectiveWeight(sess.weightToday)
	if err := s.activity.UpsertDaily(ctx, email, asOfDay, sess.stepsToday, sess.caloriesToday, weight); err != nil {
		s.log.Error().Err(err).Str("email", email).Str("day", asOfDay).Msg("archive daily stats")
	}
	sess.stepsToday = 0
	sess.caloriesToday = 0
	if err := s.users.UpdateLiveCounters(ctx, email, 0, 0); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("reset live counters")
	}
}

// persistReading queues the bucket upserts for one reading. Writes are
// fire-and-forget: a failure is logged, not retried, and never blocks the
// next sensor event. The single worker keeps writes in event order so
// last-write-wins buckets end up holding the latest values. A full queue
// drops the write; the next reading re-upserts the current totals anyway.
func (s *TrackerService) persistReading(email, day string, hour, steps, calories int, weight float64) {
	s.writes.Add(1)
	select {
	case s.writeQueue <- bucketWrite{email: email, day: day, hour: hour, steps: steps, calories: calories, weight: weight}:
	default:
		s.writes.Done()
		s.log.Warn().Str("email", email).Msg("write queue full, dropping bucket write")
	}
}

func (s *TrackerService) writeLoop() {
	for w := range s.writeQueue {
		ctx := context.Background()
		if err := s.activity.UpsertHourly(ctx, w.email, w.day, w.hour, w.steps, w.calories, w.weight); err != nil {
			s.log.Error().Err(err).Str("email", w.email).Str("day", w.day).Int("hour", w.hour).Msg("upsert hourly stats")
		}
		if err := s.activity.UpsertDaily(ctx, w.email, w.day, w.steps, w.calories, w.weight); err != nil {
			s.log.Error().Err(err).Str("email", w.email).Str("day", w.day).Msg("upsert daily stats")
		}
		if err := s.users.UpdateLiveCounters(ctx, w.email, w.steps, w.calories); err != nil {
			s.log.Error().Err(err).Str("email", w.email).Msg("update live counters")
		}
		s.writes.Done()
	}
}

func effectiveWeight(weightKg float64) float64 {
	if weightKg <= 0 {
		return domain.DefaultWeightKg
	}
	return weightKg
}
