package rooms

import "testing"

func TestScore_WrongAnswerScoresZero(t *testing.T) {
	if got := Score(false, 20000, 20000); got != 0 {
		t.Errorf("Score(false, ...) = %d, want 0", got)
	}
	if got := Score(false, 20000, 0); got != 0 {
		t.Errorf("Score(false, ...) = %d, want 0", got)
	}
}

func TestScore_FullTimeRemaining(t *testing.T) {
	if got := Score(true, 20000, 20000); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestScore_AtDeadline(t *testing.T) {
	if got := Score(true, 20000, 0); got != 50 {
		t.Errorf("Score = %d, want 50", got)
	}
}

func TestScore_QuarterTimeRemaining(t *testing.T) {
	// floor(100 * (0.5 + 0.5*0.25)) == 62
	if got := Score(true, 20000, 5000); got != 62 {
		t.Errorf("Score = %d, want 62", got)
	}
}

func TestScore_ClampsOutOfRange(t *testing.T) {
	if got := Score(true, 20000, -500); got != 50 {
		t.Errorf("negative remaining: Score = %d, want 50", got)
	}
	if got := Score(true, 20000, 50000); got != 100 {
		t.Errorf("over-full remaining: Score = %d, want 100", got)
	}
	if got := Score(true, 0, 0); got != 50 {
		t.Errorf("zero total: Score = %d, want 50", got)
	}
}

func TestScore_MonotonicInRemaining(t *testing.T) {
	const total = 20000
	prev := -1
	for remaining := int64(0); remaining <= total; remaining += 250 {
		got := Score(true, total, remaining)
		if got < 50 || got > 100 {
			t.Fatalf("Score(true, %d, %d) = %d, outside [50,100]", total, remaining, got)
		}
		if got < prev {
			t.Fatalf("Score not monotonic: %d after %d at remaining=%d", got, prev, remaining)
		}
		prev = got
	}
}
