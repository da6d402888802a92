// Package numeric abstracts the arithmetic used by the scheduler math kernel
// over two concrete representations: plain float64 for serving, and a
// reverse-mode differentiable scalar for parameter fitting. The kernel in
// package fsrs is written once against the Scalar constraint and instantiated
// against both.
package numeric

// Scalar is the arithmetic surface the scheduler math kernel needs: the four
// basic operations, exp/pow for the FSRS decay curves, min/max/clamp for the
// documented bounds, and Lift to bring a plain constant (e.g. "1.0", a
// parameter index) into the same representation as the receiver.
//
// T must satisfy Scalar[T] itself — every method takes and returns T, never
// the interface, so arithmetic chains stay in the concrete type and never
// lose the autodiff tape (for Dual) or box a float64 (for F64).
type Scalar[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Neg() T
	Exp() T
	Log() T
	Pow(T) T
	Max(T) T
	Min(T) T
	Clamp(lo, hi T) T

	// Lift returns a new constant, on the same underlying representation as
	// the receiver (e.g. the same autodiff tape), wrapping v. The receiver's
	// own value is not used.
	Lift(v float64) T

	// Float64 extracts the plain value, discarding any gradient information.
	Float64() float64
}
