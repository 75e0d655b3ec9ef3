package domain

import "context"

// SensorBaseline records the raw cumulative step-counter value observed at
// the first reading of a local calendar day. Today's step count is the
// sensor's current value minus this baseline. A stale baseline (Day behind
// today) is simply overwritten at the next reading.
type SensorBaseline struct {
	Email string
	Raw   float64
	Day   string
}

// BaselineStore is the small key-value port for per-user baselines.
// Baseline returns (nil, nil) when none has been captured yet.
type BaselineStore interface {
	Baseline(ctx context.Context, email string) (*SensorBaseline, error)
	SaveBaseline(ctx context.Context, email string, raw float64, day string) error
}
