package domain_test

import (
	"testing"

	"fittrack/internal/domain"
)

func TestCaloriesFromSteps(t *testing.T) {
	tests := []struct {
		name     string
		steps    int
		weightKg float64
		want     int
	}{
		{"reference value", 1000, 70.0, 55},
		{"zero steps", 0, 70.0, 0},
		{"truncates, never rounds", 100, 70.0, 5},
		{"heavier user burns more", 1000, 100.0, 78},
		{"ten thousand steps", 10000, 70.0, 552},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.CaloriesFromSteps(tc.steps, tc.weightKg)
			if got != tc.want {
				t.Fatalf("CaloriesFromSteps(%d, %v) = %d, want %d", tc.steps, tc.weightKg, got, tc.want)
			}
		})
	}
}

func TestCaloriesFromSteps_Deterministic(t *testing.T) {
	first := domain.CaloriesFromSteps(12345, 82.4)
	for i := 0; i < 100; i++ {
		if got := domain.CaloriesFromSteps(12345, 82.4); got != first {
			t.Fatalf("calorie model not deterministic: %d vs %d", got, first)
		}
	}
}
