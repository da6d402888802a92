package optimizer

import (
	"math"
	"testing"
)

// TestAdam_ConvergesOnQuadratic drives Adam toward the minimum of a simple
// convex loss (x-3)^2, independent of any FSRS machinery, to validate the
// update rule itself.
func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	t.Parallel()
	adam := NewAdam(1, 0.1)
	params := []float64{0}

	for i := 0; i < 500; i++ {
		grad := 2 * (params[0] - 3) // d/dx (x-3)^2
		adam.Step(params, []float64{grad})
	}

	if math.Abs(params[0]-3) > 1e-2 {
		t.Errorf("params[0] = %v, want close to 3", params[0])
	}
}

func TestAdam_ZeroGradientLeavesParamsUnchanged(t *testing.T) {
	t.Parallel()
	adam := NewAdam(2, 0.05)
	params := []float64{1.5, -2.5}
	adam.Step(params, []float64{0, 0})

	if params[0] != 1.5 || params[1] != -2.5 {
		t.Errorf("params changed under zero gradient: %v", params)
	}
}

func TestAdam_SetLRAffectsSubsequentSteps(t *testing.T) {
	t.Parallel()
	a := NewAdam(1, 1.0)
	a.SetLR(0)
	params := []float64{5}
	a.Step(params, []float64{10})

	if params[0] != 5 {
		t.Errorf("params[0] = %v, want unchanged at 5 with lr=0", params[0])
	}
}
