package optimizer

import "math"

// CosineAnnealing reproduces the closed form of a single-cycle cosine
// annealing learning rate schedule: the rate falls from baseLR to 0 over
// tMax steps following a half cosine, then would begin rising again were
// the schedule run past tMax (it never is here; training performs exactly
// tMax gradient steps).
type CosineAnnealing struct {
	baseLR float64
	tMax   int
	step   int
}

// NewCosineAnnealing returns a schedule starting at baseLR and completing
// one half-cosine cycle over tMax steps.
func NewCosineAnnealing(baseLR float64, tMax int) *CosineAnnealing {
	return &CosineAnnealing{baseLR: baseLR, tMax: tMax}
}

// LR returns the learning rate for the current step.
func (c *CosineAnnealing) LR() float64 {
	if c.tMax <= 0 {
		return c.baseLR
	}
	return c.baseLR * 0.5 * (1 + math.Cos(math.Pi*float64(c.step)/float64(c.tMax)))
}

// Advance moves the schedule forward one step, to be called once per
// completed gradient step.
func (c *CosineAnnealing) Advance() { c.step++ }
