package fsrs

import (
	"fmt"
	"time"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
)

// CardState is the generic working representation review_card operates on.
// domain.Card is the float64-typed, JSON-serializable record used for
// serving and storage; CardState[T] is the same shape parameterized over
// whichever numeric.Scalar the caller is working in — numeric.F64 on the
// serving path, *numeric.Dual during parameter fitting, where stability and
// difficulty must carry a gradient back to the 21 parameters.
type CardState[T numeric.Scalar[T]] struct {
	CardID        int64
	State         domain.State
	Step          *int
	Stability     T
	HasStability  bool
	Difficulty    T
	HasDifficulty bool
	Due           time.Time
	LastReview    *time.Time
}

// FromCard converts a domain.Card into a CardState[numeric.F64] for the
// serving path.
func FromCard(c domain.Card) CardState[numeric.F64] {
	cs := CardState[numeric.F64]{
		CardID:     c.CardID,
		State:      c.State,
		Step:       c.Step,
		Due:        c.Due,
		LastReview: c.LastReview,
	}
	if c.Stability != nil {
		cs.Stability = numeric.F64(*c.Stability)
		cs.HasStability = true
	}
	if c.Difficulty != nil {
		cs.Difficulty = numeric.F64(*c.Difficulty)
		cs.HasDifficulty = true
	}
	return cs
}

// ToCard converts a CardState[numeric.F64] back into a domain.Card.
func ToCard(cs CardState[numeric.F64]) domain.Card {
	c := domain.Card{
		CardID:     cs.CardID,
		State:      cs.State,
		Step:       cs.Step,
		Due:        cs.Due,
		LastReview: cs.LastReview,
	}
	if cs.HasStability {
		v := float64(cs.Stability)
		c.Stability = &v
	}
	if cs.HasDifficulty {
		v := float64(cs.Difficulty)
		c.Difficulty = &v
	}
	return c
}

// Scheduler is the immutable FSRS configuration: the kernel plus the
// step ladders and interval policy that drive the state machine.
type Scheduler[T numeric.Scalar[T]] struct {
	Kernel          Kernel[T]
	LearningSteps   []time.Duration
	RelearningSteps []time.Duration
	MaximumInterval int
	EnableFuzzing   bool

	// FuzzSource overrides the process-wide fuzz generator; nil means use
	// the default. Tests set this to obtain determinism without disabling
	// EnableFuzzing.
	FuzzSource FuzzSource
}

// DefaultLearningSteps and DefaultRelearningSteps are the scheduler's
// default step ladders.
var (
	DefaultLearningSteps   = []time.Duration{1 * time.Minute, 10 * time.Minute}
	DefaultRelearningSteps = []time.Duration{10 * time.Minute}
)

// NewScheduler builds a Scheduler[numeric.F64] for the serving path from
// plain float64 parameters.
func NewScheduler(params [NumParameters]float64, desiredRetention float64, learningSteps, relearningSteps []time.Duration, maximumInterval int, enableFuzzing bool) Scheduler[numeric.F64] {
	var p [NumParameters]numeric.F64
	for i, v := range params {
		p[i] = numeric.F64(v)
	}
	return Scheduler[numeric.F64]{
		Kernel:          NewKernel(p, numeric.F64(desiredRetention)),
		LearningSteps:   learningSteps,
		RelearningSteps: relearningSteps,
		MaximumInterval: maximumInterval,
		EnableFuzzing:   enableFuzzing,
	}
}

// DefaultScheduler returns a Scheduler[numeric.F64] with every documented
// default: default parameters, desired_retention=0.9, the default step
// ladders, maximum_interval=36500, fuzzing enabled.
func DefaultScheduler() Scheduler[numeric.F64] {
	return NewScheduler(DefaultParameters, 0.9, DefaultLearningSteps, DefaultRelearningSteps, 36500, true)
}

func (s Scheduler[T]) fuzzSource() FuzzSource {
	if s.FuzzSource != nil {
		return s.FuzzSource
	}
	return defaultFuzzSource()
}

// DaysBetween returns the whole number of days elapsed between earlier and
// later, floored, never negative. Shared by the scheduler's own interval
// arithmetic and by the replay and optimizer packages, which need the same
// same-day test against a card's review history.
func DaysBetween(later, earlier time.Time) int {
	d := later.Sub(earlier)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// GetCardRetrievability returns the card's predicted recall probability at
// currentTime. A card with no prior review has retrievability 0.
//
// The zero retrievability is lifted from the kernel's own parameters rather
// than a zero-value T: for T = *numeric.Dual, the zero value is a nil
// pointer, and nil has no tape to attach a constant to.
func (s Scheduler[T]) GetCardRetrievability(card CardState[T], currentTime time.Time) T {
	if card.LastReview == nil {
		return s.Kernel.Params[0].Lift(0)
	}
	elapsed := DaysBetween(currentTime, *card.LastReview)
	return s.Kernel.Retrievability(elapsed, card.Stability)
}

// ReviewCard reviews card with rating at reviewTime (defaulting to now, UTC,
// if the zero time is passed) and returns the updated card and the
// resulting log entry. card is never mutated; the return value is a fresh
// CardState.
//
// reviewTime must be UTC; any other location is rejected.
func (s Scheduler[T]) ReviewCard(card CardState[T], rating domain.Rating, reviewTime time.Time, reviewDuration *int) (CardState[T], domain.ReviewLog, error) {
	if reviewTime.IsZero() {
		reviewTime = time.Now().UTC()
	} else if reviewTime.Location() != time.UTC {
		return CardState[T]{}, domain.ReviewLog{}, fmt.Errorf("fsrs: %w", domain.ErrInvalidReviewTime)
	}

	next := card // shallow copy; Step is replaced wholesale below, never mutated through the old pointer

	var daysSinceLast *int
	if card.LastReview != nil {
		d := DaysBetween(reviewTime, *card.LastReview)
		daysSinceLast = &d
	}

	var interval time.Duration

	switch card.State {
	case domain.Learning:
		interval = s.reviewLearningOrRelearning(&next, rating, daysSinceLast, reviewTime, s.LearningSteps, true)
	case domain.Relearning:
		interval = s.reviewLearningOrRelearning(&next, rating, daysSinceLast, reviewTime, s.RelearningSteps, false)
	case domain.Review:
		interval = s.reviewReview(&next, rating, daysSinceLast, reviewTime)
	default:
		return CardState[T]{}, domain.ReviewLog{}, fmt.Errorf("fsrs: card %d: invalid state %d", card.CardID, int(card.State))
	}

	if s.EnableFuzzing && next.State == domain.Review {
		days := fuzzedIntervalDays(interval.Hours()/24, s.MaximumInterval, s.fuzzSource())
		interval = time.Duration(days) * 24 * time.Hour
	}

	next.Due = reviewTime.Add(interval)
	next.LastReview = &reviewTime

	log := domain.ReviewLog{
		CardID:         card.CardID,
		Rating:         rating,
		ReviewDatetime: reviewTime,
		ReviewDuration: reviewDuration,
	}
	return next, log, nil
}

// updateStabilityDifficulty applies the first-review / short-term / long-term
// update rule shared by all three states. firstReviewAllowed gates the
// "brand new card" branch, which per the reference only ever applies in the
// Learning state.
func (s Scheduler[T]) updateStabilityDifficulty(card *CardState[T], rating domain.Rating, daysSinceLast *int, retrievability T, firstReviewAllowed bool) {
	switch {
	case firstReviewAllowed && !card.HasStability && !card.HasDifficulty:
		card.Stability = s.Kernel.InitialStability(rating)
		card.Difficulty = s.Kernel.InitialDifficulty(rating)
	case daysSinceLast != nil && *daysSinceLast < 1:
		card.Stability = s.Kernel.ShortTermStability(card.Stability, rating)
		card.Difficulty = s.Kernel.NextDifficulty(card.Difficulty, rating)
	default:
		card.Stability = s.Kernel.NextStability(card.Difficulty, card.Stability, retrievability, rating)
		card.Difficulty = s.Kernel.NextDifficulty(card.Difficulty, rating)
	}
	card.HasStability = true
	card.HasDifficulty = true
}

// reviewLearningOrRelearning implements both the Learning and Relearning
// branches, which are identical in shape and differ only in which step
// ladder and "brand new card" allowance apply.
func (s Scheduler[T]) reviewLearningOrRelearning(card *CardState[T], rating domain.Rating, daysSinceLast *int, reviewTime time.Time, steps []time.Duration, firstReviewAllowed bool) time.Duration {
	retrievability := s.GetCardRetrievability(*card, reviewTime)
	s.updateStabilityDifficulty(card, rating, daysSinceLast, retrievability, firstReviewAllowed)

	graduates := func() time.Duration {
		card.State = domain.Review
		card.Step = nil
		days := s.Kernel.NextIntervalDays(card.Stability, s.MaximumInterval)
		return time.Duration(days) * 24 * time.Hour
	}

	step := 0
	if card.Step != nil {
		step = *card.Step
	}

	if len(steps) == 0 || (step >= len(steps) && (rating == domain.Hard || rating == domain.Good || rating == domain.Easy)) {
		return graduates()
	}

	switch rating {
	case domain.Again:
		zero := 0
		card.Step = &zero
		return steps[0]

	case domain.Hard:
		// step unchanged
		switch {
		case step == 0 && len(steps) == 1:
			return time.Duration(float64(steps[0]) * 1.5)
		case step == 0 && len(steps) >= 2:
			return (steps[0] + steps[1]) / 2
		default:
			return steps[step]
		}

	case domain.Good:
		if step+1 == len(steps) {
			return graduates()
		}
		next := step + 1
		card.Step = &next
		return steps[next]

	case domain.Easy:
		return graduates()

	default:
		return graduates()
	}
}

func (s Scheduler[T]) reviewReview(card *CardState[T], rating domain.Rating, daysSinceLast *int, reviewTime time.Time) time.Duration {
	retrievability := s.GetCardRetrievability(*card, reviewTime)
	s.updateStabilityDifficulty(card, rating, daysSinceLast, retrievability, false)

	switch rating {
	case domain.Again:
		if len(s.RelearningSteps) == 0 {
			days := s.Kernel.NextIntervalDays(card.Stability, s.MaximumInterval)
			return time.Duration(days) * 24 * time.Hour
		}
		card.State = domain.Relearning
		step := 0
		card.Step = &step
		return s.RelearningSteps[0]

	default: // Hard, Good, Easy
		days := s.Kernel.NextIntervalDays(card.Stability, s.MaximumInterval)
		return time.Duration(days) * 24 * time.Hour
	}
}
