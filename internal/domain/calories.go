package domain

// Average stride length used by the linear calorie model.
const stepLengthMeters = 0.762

// CaloriesFromSteps estimates calories burned for a step count at the given
// body weight. The model is distance (km) x weight (kg) x 1.036, truncated
// to an integer. It is a coarse linear estimate, not a physiological one,
// but the truncation matters: charts and stored buckets must agree on the
// exact value.
func CaloriesFromSteps(steps int, weightKg float64) int {
	distanceKm := float64(steps) * stepLengthMeters / 1000.0
	return int(distanceKm * weightKg * 1.036)
}
