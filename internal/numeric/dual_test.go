package numeric

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDual_MulGradient(t *testing.T) {
	t.Parallel()
	tape := NewTape()
	x := tape.Param(3)
	y := tape.Param(4)
	z := x.Mul(y)

	tape.Backward(z)

	if !almostEqual(z.Float64(), 12) {
		t.Fatalf("z = %v, want 12", z.Float64())
	}
	if !almostEqual(x.Grad(), 4) {
		t.Fatalf("dz/dx = %v, want 4", x.Grad())
	}
	if !almostEqual(y.Grad(), 3) {
		t.Fatalf("dz/dy = %v, want 3", y.Grad())
	}
}

func TestDual_ChainRule(t *testing.T) {
	t.Parallel()
	tape := NewTape()
	x := tape.Param(2)
	// f(x) = (x + 1)^2 = x^2 + 2x + 1; f'(x) = 2x + 2 = 6 at x=2.
	one := x.Lift(1)
	sum := x.Add(one)
	two := x.Lift(2)
	f := sum.Pow(two)

	tape.Backward(f)

	if !almostEqual(f.Float64(), 9) {
		t.Fatalf("f(2) = %v, want 9", f.Float64())
	}
	if !almostEqual(x.Grad(), 6) {
		t.Fatalf("f'(2) = %v, want 6", x.Grad())
	}
}

func TestDual_PowGradientFlowsIntoExponent(t *testing.T) {
	t.Parallel()
	tape := NewTape()
	base := tape.Param(2)
	exp := tape.Param(10)
	// f = base^exp; df/dbase = exp*base^(exp-1), df/dexp = base^exp*ln(base).
	f := base.Pow(exp)

	tape.Backward(f)

	if !almostEqual(f.Float64(), 1024) {
		t.Fatalf("2^10 = %v, want 1024", f.Float64())
	}
	if !almostEqual(base.Grad(), 10*512) {
		t.Fatalf("df/dbase = %v, want %v", base.Grad(), 10*512.0)
	}
	want := 1024 * math.Log(2)
	if !almostEqual(exp.Grad(), want) {
		t.Fatalf("df/dexp = %v, want %v", exp.Grad(), want)
	}
}

func TestDual_ExpGradient(t *testing.T) {
	t.Parallel()
	tape := NewTape()
	x := tape.Param(1)
	y := x.Exp()

	tape.Backward(y)

	if !almostEqual(y.Float64(), math.E) {
		t.Fatalf("exp(1) = %v, want e", y.Float64())
	}
	if !almostEqual(x.Grad(), math.E) {
		t.Fatalf("d/dx exp(x) at 1 = %v, want e", x.Grad())
	}
}

func TestDual_ClampSaturatesGradient(t *testing.T) {
	t.Parallel()
	tape := NewTape()
	x := tape.Param(100)
	lo := x.Lift(0)
	hi := x.Lift(1)
	clamped := x.Clamp(lo, hi)

	tape.Backward(clamped)

	if !almostEqual(clamped.Float64(), 1) {
		t.Fatalf("clamp(100, 0, 1) = %v, want 1", clamped.Float64())
	}
	if x.Grad() != 0 {
		t.Fatalf("gradient should not flow through a saturated clamp, got %v", x.Grad())
	}
}

func TestDual_Detach(t *testing.T) {
	t.Parallel()
	tape := NewTape()
	x := tape.Param(5)
	y := x.Mul(x.Lift(2))
	detached := y.Detach()

	z := detached.Mul(detached.Lift(3))
	tape.Backward(z)

	if !almostEqual(detached.Float64(), 10) {
		t.Fatalf("detached value = %v, want 10", detached.Float64())
	}
	if x.Grad() != 0 {
		t.Fatalf("gradient should not flow back through a detached node, got %v", x.Grad())
	}
}

func TestF64_MatchesMath(t *testing.T) {
	t.Parallel()
	a, b := F64(3), F64(4)
	if a.Add(b) != 7 {
		t.Fatalf("Add: got %v", a.Add(b))
	}
	if a.Mul(b) != 12 {
		t.Fatalf("Mul: got %v", a.Mul(b))
	}
	if got := F64(2).Pow(F64(10)); got != 1024 {
		t.Fatalf("Pow: got %v", got)
	}
	if got := F64(5).Clamp(1, 4); got != 4 {
		t.Fatalf("Clamp: got %v", got)
	}
}
