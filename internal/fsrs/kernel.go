// Package fsrs implements the FSRS scheduler: the math kernel that turns a
// card's stability/difficulty into a retrievability or an interval, and the
// state machine that drives a card through Learning, Review and Relearning.
//
// The kernel (this file) is generic over numeric.Scalar so it can be
// instantiated against plain float64 for serving and against
// *numeric.Dual for parameter fitting, without duplicating a single formula.
package fsrs

import (
	"math"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
)

// NumParameters is the fixed width of the FSRS-5 weight vector (indices 0..20).
const NumParameters = 21

// DefaultParameters are the FSRS-5 reference weights.
var DefaultParameters = [NumParameters]float64{
	0.2172, 1.1771, 3.2602, 16.1507, 7.0114, 0.57, 2.0966, 0.0069, 1.5261, 0.112,
	1.0178, 1.849, 0.1133, 0.3127, 2.2934, 0.2191, 3.0004, 0.7536, 0.3332, 0.1437,
	0.2,
}

// LowerBounds and UpperBounds are the optimizer's elementwise clamp bounds
// for the 21 parameters.
var (
	LowerBounds = [NumParameters]float64{
		0.001, 0.001, 0.001, 0.001, 1.0, 0.1, 0.1, 0.0, 0.0, 0.0,
		0.01, 0.1, 0.01, 0.01, 0.01, 0.0, 1.0, 0.0, 0.0, 0.0,
		0.1,
	}
	UpperBounds = [NumParameters]float64{
		100.0, 100.0, 100.0, 100.0, 10.0, 4.0, 4.0, 0.75, 4.5, 0.8,
		3.5, 5.0, 0.25, 0.9, 4.0, 1.0, 6.0, 2.0, 2.0, 0.8,
		0.8,
	}
)

// Kernel holds the 21 FSRS parameters and the decay/factor derived from
// them, instantiated against a concrete numeric.Scalar representation.
// It has no notion of calendar time or card state; Scheduler builds on
// top of it to dispatch by (state, rating).
type Kernel[T numeric.Scalar[T]] struct {
	Params           [NumParameters]T
	DesiredRetention T
	Decay            T
	Factor           T
}

// NewKernel derives DECAY = -params[20] and FACTOR = 0.9^(1/DECAY) - 1.
func NewKernel[T numeric.Scalar[T]](params [NumParameters]T, desiredRetention T) Kernel[T] {
	decay := params[20].Neg()
	one := params[20].Lift(1)
	factor := params[20].Lift(0.9).Pow(one.Div(decay)).Sub(one)
	return Kernel[T]{Params: params, DesiredRetention: desiredRetention, Decay: decay, Factor: factor}
}

func clampStability[T numeric.Scalar[T]](x T) T {
	return x.Max(x.Lift(0.001))
}

func clampDifficulty[T numeric.Scalar[T]](x T) T {
	return x.Clamp(x.Lift(1.0), x.Lift(10.0))
}

// Retrievability computes R(t, S) = (1 + FACTOR*t/S)^DECAY for a card that
// has already been reviewed at least once. Callers are responsible for the
// "never reviewed" case (retrievability 0), since that depends on Card
// state the kernel does not see.
func (k Kernel[T]) Retrievability(elapsedDays int, stability T) T {
	one := stability.Lift(1)
	days := stability.Lift(float64(elapsedDays))
	return one.Add(k.Factor.Mul(days).Div(stability)).Pow(k.Decay)
}

// InitialStability returns S0(rating) = clamp_S(params[rating-1]).
func (k Kernel[T]) InitialStability(rating domain.Rating) T {
	return clampStability(k.Params[int(rating)-1])
}

// InitialDifficulty returns
//
//	D0(rating) = clamp_D(params[4] - exp(params[5]*(rating-1)) + 1)
func (k Kernel[T]) InitialDifficulty(rating domain.Rating) T {
	p4, p5 := k.Params[4], k.Params[5]
	ratingMinus1 := p5.Lift(float64(int(rating) - 1))
	d0 := p4.Sub(p5.Mul(ratingMinus1).Exp()).Add(p4.Lift(1))
	return clampDifficulty(d0)
}

// NextIntervalDays converts stability and the kernel's desired retention
// into a whole number of days, clamped to [1, maximumInterval]. This step
// never needs a gradient — it only ever feeds calendar arithmetic, never
// the loss — so it always works in plain float64.
func (k Kernel[T]) NextIntervalDays(stability T, maximumInterval int) int {
	s := stability.Float64()
	factor := k.Factor.Float64()
	decay := k.Decay.Float64()
	retention := k.DesiredRetention.Float64()

	days := (s / factor) * (math.Pow(retention, 1/decay) - 1)
	rounded := int(math.Round(days))
	if rounded < 1 {
		rounded = 1
	}
	if rounded > maximumInterval {
		rounded = maximumInterval
	}
	return rounded
}

// ShortTermStability updates stability for a same-day review:
//
//	g = exp(params[17]*(rating-3+params[18])) * s^(-params[19])
//
// floored at 1 when rating is Good or Easy.
func (k Kernel[T]) ShortTermStability(stability T, rating domain.Rating) T {
	p17, p18, p19 := k.Params[17], k.Params[18], k.Params[19]
	ratingTerm := p17.Lift(float64(int(rating)-3)).Add(p18)
	g := p17.Mul(ratingTerm).Exp().Mul(stability.Pow(p19.Neg()))
	if rating == domain.Good || rating == domain.Easy {
		g = g.Max(g.Lift(1))
	}
	return clampStability(stability.Mul(g))
}

// NextDifficulty applies mean-reversion toward D0(Easy).
func (k Kernel[T]) NextDifficulty(difficulty T, rating domain.Rating) T {
	p6, p7 := k.Params[6], k.Params[7]
	dTarget := k.InitialDifficulty(domain.Easy)

	delta := p6.Mul(p6.Lift(float64(int(rating) - 3))).Neg()
	ten := difficulty.Lift(10)
	damping := ten.Sub(difficulty).Mul(delta).Div(difficulty.Lift(9))
	dLinear := difficulty.Add(damping)

	meanReverted := p7.Mul(dTarget).Add(p7.Lift(1).Sub(p7).Mul(dLinear))
	return clampDifficulty(meanReverted)
}

// NextStability dispatches to the forget or recall branch by rating, then
// clamps the result.
func (k Kernel[T]) NextStability(difficulty, stability, retrievability T, rating domain.Rating) T {
	var next T
	if rating == domain.Again {
		next = k.nextForgetStability(difficulty, stability, retrievability)
	} else {
		next = k.nextRecallStability(difficulty, stability, retrievability, rating)
	}
	return clampStability(next)
}

func (k Kernel[T]) nextForgetStability(difficulty, stability, retrievability T) T {
	p11, p12, p13, p14, p17, p18 := k.Params[11], k.Params[12], k.Params[13], k.Params[14], k.Params[17], k.Params[18]

	longTerm := p11.
		Mul(difficulty.Pow(p12.Neg())).
		Mul(stability.Add(stability.Lift(1)).Pow(p13).Sub(stability.Lift(1))).
		Mul(retrievability.Lift(1).Sub(retrievability).Mul(p14).Exp())

	shortTerm := stability.Div(p17.Mul(p18).Exp())

	return longTerm.Min(shortTerm)
}

func (k Kernel[T]) nextRecallStability(difficulty, stability, retrievability T, rating domain.Rating) T {
	p8, p9, p10 := k.Params[8], k.Params[9], k.Params[10]

	hardPenalty := stability.Lift(1)
	if rating == domain.Hard {
		hardPenalty = k.Params[15]
	}
	easyBonus := stability.Lift(1)
	if rating == domain.Easy {
		easyBonus = k.Params[16]
	}

	elevenMinusD := difficulty.Lift(11).Sub(difficulty)
	recallGrowth := retrievability.Lift(1).Sub(retrievability).Mul(p10).Exp().Sub(retrievability.Lift(1))

	multiplier := p8.Exp().
		Mul(elevenMinusD).
		Mul(stability.Pow(p9.Neg())).
		Mul(recallGrowth).
		Mul(hardPenalty).
		Mul(easyBonus)

	return stability.Mul(stability.Lift(1).Add(multiplier))
}
