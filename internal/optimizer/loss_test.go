package optimizer

import (
	"testing"

	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
)

func TestBCELoss_SmallWhenPredictionMatchesTarget(t *testing.T) {
	t.Parallel()
	if got := bceLoss(numeric.F64(0.999), 1).Float64(); got > 0.01 {
		t.Errorf("bceLoss(0.999, 1) = %v, want small", got)
	}
	if got := bceLoss(numeric.F64(0.001), 0).Float64(); got > 0.01 {
		t.Errorf("bceLoss(0.001, 0) = %v, want small", got)
	}
}

func TestBCELoss_LargeWhenPredictionContradictsTarget(t *testing.T) {
	t.Parallel()
	got := bceLoss(numeric.F64(0.001), 1).Float64()
	if got < 5 {
		t.Errorf("bceLoss(0.001, 1) = %v, want large", got)
	}
}

func TestBCELoss_ClampsExtremesWithoutProducingInf(t *testing.T) {
	t.Parallel()
	got := bceLoss(numeric.F64(0), 1).Float64()
	if got <= 0 || got > 100 {
		t.Errorf("bceLoss(0, 1) = %v, want finite and positive", got)
	}
	got = bceLoss(numeric.F64(1), 0).Float64()
	if got <= 0 || got > 100 {
		t.Errorf("bceLoss(1, 0) = %v, want finite and positive", got)
	}
}

func TestBCELoss_GradientPointsTowardTarget(t *testing.T) {
	t.Parallel()
	tape := numeric.NewTape()
	p := tape.Param(0.5)
	loss := bceLoss(p, 1.0)
	tape.Backward(loss)
	// Increasing a prediction toward a target of 1 should reduce loss, so
	// d(loss)/d(p) must be negative.
	if p.Grad() >= 0 {
		t.Errorf("grad = %v, want negative (loss decreases as p -> 1)", p.Grad())
	}
}
