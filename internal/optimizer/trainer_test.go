package optimizer

import (
	"testing"
	"time"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/fsrs"
	"github.com/kristynaumlaufova/fsrs-go/internal/replay"
)

func TestComputeOptimalParameters_BelowThresholdReturnsDefault(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var logs []domain.ReviewLog
	for i := 0; i < 10; i++ {
		logs = append(logs, domain.ReviewLog{
			CardID: 1, Rating: domain.Good,
			ReviewDatetime: t0.Add(time.Duration(i) * 24 * time.Hour),
		})
	}

	got := ComputeOptimalParameters(logs)
	if got != fsrs.DefaultParameters {
		t.Error("expected default parameters for a dataset below the minimum review threshold")
	}
}

func TestComputeOptimalParameters_EmptyLogsReturnsDefault(t *testing.T) {
	t.Parallel()
	got := ComputeOptimalParameters(nil)
	if got != fsrs.DefaultParameters {
		t.Error("expected default parameters for an empty dataset")
	}
}

// syntheticLogs builds enough review history across numCards cards,
// reviewsPerCard reviews apart by three days each, to clear
// MinReviewsRequired and exercise the full training loop.
func syntheticLogs(numCards, reviewsPerCard int) []domain.ReviewLog {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ratings := []domain.Rating{domain.Good, domain.Good, domain.Hard, domain.Good, domain.Easy, domain.Again}

	var logs []domain.ReviewLog
	for card := 1; card <= numCards; card++ {
		for i := 0; i < reviewsPerCard; i++ {
			logs = append(logs, domain.ReviewLog{
				CardID:         int64(card),
				Rating:         ratings[i%len(ratings)],
				ReviewDatetime: t0.Add(time.Duration(card) * time.Hour).Add(time.Duration(i) * 72 * time.Hour),
			})
		}
	}
	return logs
}

func TestComputeOptimalParameters_AboveThresholdStaysWithinBounds(t *testing.T) {
	logs := syntheticLogs(20, 40)

	got := ComputeOptimalParameters(logs)
	for i, v := range got {
		if v < fsrs.LowerBounds[i] || v > fsrs.UpperBounds[i] {
			t.Errorf("params[%d] = %v, outside [%v, %v]", i, v, fsrs.LowerBounds[i], fsrs.UpperBounds[i])
		}
	}
}

func TestComputeOptimalParameters_Deterministic(t *testing.T) {
	logs := syntheticLogs(20, 40)

	a := ComputeOptimalParameters(logs)
	b := ComputeOptimalParameters(logs)
	if a != b {
		t.Errorf("ComputeOptimalParameters is not deterministic: %v != %v", a, b)
	}
}

func TestCountEligibleReviews_ExcludesFirstReviewPerCard(t *testing.T) {
	t.Parallel()
	logs := syntheticLogs(3, 5)
	groups, ids := replay.GroupByCard(logs)

	got := countEligibleReviews(groups, ids)
	want := 3 * (5 - 1) // one ineligible "first" review per card
	if got != want {
		t.Errorf("countEligibleReviews = %d, want %d", got, want)
	}
}
