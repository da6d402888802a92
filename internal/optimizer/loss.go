package optimizer

import "github.com/kristynaumlaufova/fsrs-go/internal/numeric"

// bceLoss is the binary cross-entropy between a predicted probability and a
// binary target (0 or 1), with the prediction clamped away from the
// boundary to avoid an infinite gradient when it saturates.
func bceLoss[T numeric.Scalar[T]](predicted T, target float64) T {
	eps := predicted.Lift(1e-7)
	one := predicted.Lift(1)
	p := predicted.Clamp(eps, one.Sub(eps))
	y := predicted.Lift(target)

	recall := y.Mul(p.Log())
	forget := one.Sub(y).Mul(one.Sub(p).Log())
	return recall.Add(forget).Neg()
}
