package optimizer

import "math"

// Adam is a minimal Adam optimizer over a flat parameter vector, applied
// in place to the 21 FSRS weights during parameter fitting.
type Adam struct {
	lr, beta1, beta2, eps float64
	m, v                  []float64
	step                  int
}

// NewAdam returns an Adam optimizer for numParams weights at the given
// learning rate, using the standard beta1=0.9, beta2=0.999, eps=1e-8.
func NewAdam(numParams int, lr float64) *Adam {
	return &Adam{
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
		m:     make([]float64, numParams),
		v:     make([]float64, numParams),
	}
}

// SetLR overrides the current learning rate, for use with an external
// schedule (e.g. cosine annealing) applied between steps.
func (a *Adam) SetLR(lr float64) { a.lr = lr }

// Step applies one Adam update to params in place using grads. Both slices
// must have the same length as the optimizer was constructed with.
func (a *Adam) Step(params, grads []float64) {
	a.step++
	b1t := math.Pow(a.beta1, float64(a.step))
	b2t := math.Pow(a.beta2, float64(a.step))

	for i := range params {
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*grads[i]
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*grads[i]*grads[i]

		mHat := a.m[i] / (1 - b1t)
		vHat := a.v[i] / (1 - b2t)

		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}
