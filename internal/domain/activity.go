package domain

import "context"

// DayFormat is the layout for local calendar day keys.
const DayFormat = "2006-01-02"

// DailyStat is the activity bucket for one user and one local calendar day.
// Steps and Calories hold the latest known totals for that day; WeightKg is
// a point-in-time snapshot of the user's weight at the last write, not the
// day's ending weight. At most one record exists per (email, day).
type DailyStat struct {
	Email    string  `json:"email"`
	Day      string  `json:"day"`
	Steps    int     `json:"steps"`
	Calories int     `json:"calories"`
	WeightKg float64 `json:"weightKg"`
}

// HourlyStat is the activity bucket for one user, day and hour of day
// (0-23). Steps is the day's cumulative total as observed at that hour, not
// a per-hour delta. At most one record exists per (email, day, hour).
type HourlyStat struct {
	Email    string  `json:"email"`
	Day      string  `json:"day"`
	Hour     int     `json:"hour"`
	Steps    int     `json:"steps"`
	Calories int     `json:"calories"`
	WeightKg float64 `json:"weightKg"`
}

// ActivityRepository is the port for activity bucket persistence. Upserts
// are last-write-wins on their composite key; reads return (nil, nil) when
// the bucket does not exist.
type ActivityRepository interface {
	UpsertDaily(ctx context.Context, email, day string, steps, calories int, weightKg float64) error
	UpsertHourly(ctx context.Context, email, day string, hour, steps, calories int, weightKg float64) error
	DailyStat(ctx context.Context, email, day string) (*DailyStat, error)
	HourlyStat(ctx context.Context, email, day string, hour int) (*HourlyStat, error)
	HourlyStatsForDay(ctx context.Context, email, day string) ([]HourlyStat, error)
}
