package rooms

const scoreBase = 100

// Score computes the points awarded for one answer. A wrong answer scores
// zero. A correct answer scores between 50 (at the deadline) and 100 (full
// time remaining), scaled linearly; remaining time outside [0, total] is
// clamped into that range.
func Score(correct bool, totalMs, remainingMs int64) int {
	if !correct {
		return 0
	}
	if totalMs < 1 {
		totalMs = 1
	}
	fraction := float64(remainingMs) / float64(totalMs)
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	speed := 0.5 + 0.5*fraction
	return int(scoreBase * speed)
}
