package fsrs

import (
	"testing"
	"time"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
)

func defaultDualScheduler(tape *numeric.Tape) Scheduler[*numeric.Dual] {
	var p [NumParameters]*numeric.Dual
	for i, v := range DefaultParameters {
		p[i] = tape.Param(v)
	}
	return Scheduler[*numeric.Dual]{
		Kernel:          NewKernel(p, tape.Param(0.9)),
		LearningSteps:   DefaultLearningSteps,
		RelearningSteps: DefaultRelearningSteps,
		MaximumInterval: 36500,
	}
}

// TestGetCardRetrievability_DualZeroForNeverReviewedCard guards against a
// nil-pointer panic: a brand-new CardState[*numeric.Dual] has a nil
// Stability (the zero value of *Dual), so the "never reviewed" branch must
// not call any method on it.
func TestGetCardRetrievability_DualZeroForNeverReviewedCard(t *testing.T) {
	t.Parallel()
	tape := numeric.NewTape()
	sched := defaultDualScheduler(tape)

	card := CardState[*numeric.Dual]{CardID: 1, State: domain.Learning, Step: new(int)}
	r := sched.GetCardRetrievability(card, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if r.Float64() != 0 {
		t.Errorf("retrievability = %v, want 0 for a never-reviewed card", r.Float64())
	}
}

func TestReviewCard_DualFirstReviewDoesNotPanic(t *testing.T) {
	t.Parallel()
	tape := numeric.NewTape()
	sched := defaultDualScheduler(tape)

	card := CardState[*numeric.Dual]{CardID: 1, State: domain.Learning, Step: new(int)}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	next, _, err := sched.ReviewCard(card, domain.Good, t0, nil)
	if err != nil {
		t.Fatalf("ReviewCard: %v", err)
	}
	if !next.HasStability || !next.HasDifficulty {
		t.Error("expected stability and difficulty to be set after first review")
	}
}

func TestReviewCard_DualGradientFlowsToParameters(t *testing.T) {
	t.Parallel()
	tape := numeric.NewTape()
	sched := defaultDualScheduler(tape)

	card := CardState[*numeric.Dual]{CardID: 1, State: domain.Learning, Step: new(int)}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	next, _, err := sched.ReviewCard(card, domain.Good, t0, nil)
	if err != nil {
		t.Fatalf("ReviewCard: %v", err)
	}

	tape.Backward(next.Stability)
	if sched.Kernel.Params[2].Grad() == 0 {
		t.Error("expected nonzero gradient on params[2] (initial stability for Good) after backward")
	}
}
