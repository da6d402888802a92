package fsrs

import (
	"math"
	"testing"
	"time"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
)

func TestFuzzedIntervalDays_BelowThresholdUnchanged(t *testing.T) {
	t.Parallel()
	got := fuzzedIntervalDays(2.0, 36500, fixedFuzz(0.5))
	if got != 2 {
		t.Errorf("fuzzedIntervalDays(2.0) = %d, want 2 (below 2.5 day threshold)", got)
	}
}

func TestFuzzedIntervalDays_WithinBounds(t *testing.T) {
	t.Parallel()
	const days = 50.0
	minIvl, maxIvl := fuzzRange(int(days), 36500)

	for _, u := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		got := fuzzedIntervalDays(days, 36500, fixedFuzz(u))
		// The reference formula can occasionally land one day past max_ivl
		// before the final maximumInterval cap — allow that slack here.
		if got < minIvl || got > maxIvl+1 {
			t.Errorf("u=%v: fuzzed=%d, want within [%d, %d+1]", u, got, minIvl, maxIvl)
		}
	}
}

func TestFuzzedIntervalDays_CappedAtMaximumInterval(t *testing.T) {
	t.Parallel()
	got := fuzzedIntervalDays(36490, 36500, fixedFuzz(0.999))
	if got > 36500 {
		t.Errorf("fuzzed = %d, exceeds maximum_interval 36500", got)
	}
}

func TestFuzzRange_NeverBelowTwoDays(t *testing.T) {
	t.Parallel()
	minIvl, _ := fuzzRange(3, 36500)
	if minIvl < 2 {
		t.Errorf("min_ivl = %d, want >= 2", minIvl)
	}
}

func TestReviewCard_FuzzBoundProperty(t *testing.T) {
	t.Parallel()
	sched := DefaultScheduler()
	sched.EnableFuzzing = true
	sched.FuzzSource = fixedFuzz(0.3)

	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stability := 250.0
	card := CardState[numeric.F64]{CardID: 1, State: domain.Review,
		Stability: numeric.F64(stability), HasStability: true,
		Difficulty: numeric.F64(5), HasDifficulty: true,
		LastReview: &last,
	}

	reviewAt := last.Add(250 * 24 * time.Hour)
	unfuzzedSched := sched
	unfuzzedSched.EnableFuzzing = false
	unfuzzed, _, _ := unfuzzedSched.ReviewCard(card, domain.Good, reviewAt, nil)
	unfuzzedDays := int(math.Round(unfuzzed.Due.Sub(reviewAt).Hours() / 24))

	minIvl, maxIvl := fuzzRange(unfuzzedDays, sched.MaximumInterval)

	fuzzed, _, err := sched.ReviewCard(card, domain.Good, reviewAt, nil)
	if err != nil {
		t.Fatalf("ReviewCard: %v", err)
	}
	gotDays := int(math.Round(fuzzed.Due.Sub(reviewAt).Hours() / 24))

	if gotDays < minIvl || gotDays > maxIvl+1 {
		t.Errorf("fuzzed interval %d outside [%d, %d+1]", gotDays, minIvl, maxIvl)
	}
}
