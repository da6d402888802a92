// Package optimizer fits FSRS scheduler parameters to a user's review
// history by gradient descent: each review log is replayed through the
// scheduler using differentiable scalars, the predicted retrievability at
// each non-same-day step is compared against whether the review actually
// succeeded, and the 21 weights are nudged to reduce that error.
package optimizer

import (
	"math"
	"math/rand"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/fsrs"
	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
	"github.com/kristynaumlaufova/fsrs-go/internal/replay"
)

const (
	numEpochs         = 5
	miniBatchSize     = 512
	learningRate      = 4e-2
	trainingRetention = 0.9
	// shuffleSeed fixes the per-epoch card ordering so a given log set always
	// trains to the same parameters.
	shuffleSeed = 42
)

// MinReviewsRequired is the fewest eligible (non-same-day, prior-review)
// review steps needed before fitting is attempted; below this, the default
// parameters are returned unchanged.
const MinReviewsRequired = miniBatchSize

// ComputeOptimalParameters fits FSRS parameters to logs. If logs contain
// fewer than MinReviewsRequired eligible review steps, it returns
// fsrs.DefaultParameters unchanged — there is not enough signal to fit 21
// weights reliably.
func ComputeOptimalParameters(logs []domain.ReviewLog) [fsrs.NumParameters]float64 {
	groups, ids := replay.GroupByCard(logs)

	numReviews := countEligibleReviews(groups, ids)
	if numReviews < MinReviewsRequired {
		return fsrs.DefaultParameters
	}

	params := fsrs.DefaultParameters
	adam := NewAdam(fsrs.NumParameters, learningRate)
	tMax := int(math.Ceil(float64(numReviews)/float64(miniBatchSize))) * numEpochs
	cosine := NewCosineAnnealing(learningRate, tMax)
	rng := rand.New(rand.NewSource(shuffleSeed))

	cardIDs := append([]int64(nil), ids...)

	bestParams := params
	bestLoss := math.Inf(1)

	for epoch := 0; epoch < numEpochs; epoch++ {
		rng.Shuffle(len(cardIDs), func(i, j int) { cardIDs[i], cardIDs[j] = cardIDs[j], cardIDs[i] })

		runEpoch(&params, cardIDs, groups, adam, cosine)

		epochLoss := computeBatchLoss(params, groups, ids)
		if epochLoss < bestLoss {
			bestLoss = epochLoss
			bestParams = params
		}
	}

	return bestParams
}

// runEpoch streams every card's (truncated) review history through a
// differentiable scheduler built from the current params, taking an Adam
// step every time miniBatchSize eligible losses have accumulated (and once
// more for whatever remains at the end), clamping params back into bounds
// after each step.
func runEpoch(params *[fsrs.NumParameters]float64, cardIDs []int64, groups map[int64][]domain.ReviewLog, adam *Adam, cosine *CosineAnnealing) {
	tape := numeric.NewTape()
	nodes := liftParams(tape, *params)
	sched := dualScheduler(nodes)

	var stepLosses []*numeric.Dual

	flush := func() {
		if len(stepLosses) == 0 {
			return
		}
		total := stepLosses[0]
		for _, l := range stepLosses[1:] {
			total = total.Add(l)
		}
		tape.Backward(total)

		grads := make([]float64, fsrs.NumParameters)
		for i, n := range nodes {
			grads[i] = n.Grad()
		}
		adam.SetLR(cosine.LR())
		adam.Step(params[:], grads)
		clampParams(params)
		cosine.Advance()

		tape.Reset()
		nodes = liftParams(tape, *params)
		sched = dualScheduler(nodes)
		stepLosses = nil
	}

	for _, cardID := range cardIDs {
		history := groups[cardID]
		if len(history) > replay.MaxSeqLen {
			history = history[:replay.MaxSeqLen]
		}

		var card fsrs.CardState[*numeric.Dual]
		for i, log := range history {
			if i == 0 {
				card = fsrs.CardState[*numeric.Dual]{
					CardID: cardID,
					State:  domain.Learning,
					Step:   new(int),
					Due:    log.ReviewDatetime,
				}
			}

			predicted := sched.GetCardRetrievability(card, log.ReviewDatetime)
			eligible := card.LastReview != nil && fsrs.DaysBetween(log.ReviewDatetime, *card.LastReview) > 0

			if eligible {
				target := 0.0
				if log.Rating != domain.Again {
					target = 1.0
				}
				stepLosses = append(stepLosses, bceLoss(predicted, target))
			}

			next, _, err := sched.ReviewCard(card, log.Rating, log.ReviewDatetime, nil)
			if err != nil {
				break
			}
			card = next

			if len(stepLosses) == miniBatchSize {
				flush()
				if card.HasStability {
					card.Stability = card.Stability.Detach()
				}
				if card.HasDifficulty {
					card.Difficulty = card.Difficulty.Detach()
				}
			}
		}
	}

	flush()
}

// computeBatchLoss is the plain (non-differentiable) replay of the full
// dataset against params, used only to pick the best-performing epoch.
func computeBatchLoss(params [fsrs.NumParameters]float64, groups map[int64][]domain.ReviewLog, ids []int64) float64 {
	sched := fsrs.NewScheduler(params, trainingRetention, fsrs.DefaultLearningSteps, fsrs.DefaultRelearningSteps, 36500, false)

	var total float64
	var count int
	for _, cardID := range ids {
		history := groups[cardID]
		if len(history) > replay.MaxSeqLen {
			history = history[:replay.MaxSeqLen]
		}

		var card fsrs.CardState[numeric.F64]
		for i, log := range history {
			if i == 0 {
				card = fsrs.CardState[numeric.F64]{
					CardID: cardID,
					State:  domain.Learning,
					Step:   new(int),
					Due:    log.ReviewDatetime,
				}
			}

			predicted := sched.GetCardRetrievability(card, log.ReviewDatetime)
			if card.LastReview != nil && fsrs.DaysBetween(log.ReviewDatetime, *card.LastReview) > 0 {
				target := 0.0
				if log.Rating != domain.Again {
					target = 1.0
				}
				total += bceLoss(predicted, target).Float64()
				count++
			}

			next, _, err := sched.ReviewCard(card, log.Rating, log.ReviewDatetime, nil)
			if err != nil {
				break
			}
			card = next
		}
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// countEligibleReviews counts the non-same-day review steps across every
// card's (truncated) history, using the default-parameter scheduler. This
// mirrors the reference implementation's eligibility count, which is
// computed before training starts to size the learning rate schedule.
func countEligibleReviews(groups map[int64][]domain.ReviewLog, ids []int64) int {
	sched := fsrs.DefaultScheduler()
	sched.EnableFuzzing = false

	var count int
	for _, cardID := range ids {
		history := groups[cardID]
		if len(history) > replay.MaxSeqLen {
			history = history[:replay.MaxSeqLen]
		}

		var card fsrs.CardState[numeric.F64]
		for i, log := range history {
			if i == 0 {
				card = fsrs.CardState[numeric.F64]{
					CardID: cardID,
					State:  domain.Learning,
					Step:   new(int),
					Due:    log.ReviewDatetime,
				}
			}
			if card.LastReview != nil && fsrs.DaysBetween(log.ReviewDatetime, *card.LastReview) > 0 {
				count++
			}

			next, _, err := sched.ReviewCard(card, log.Rating, log.ReviewDatetime, nil)
			if err != nil {
				break
			}
			card = next
		}
	}
	return count
}

func liftParams(tape *numeric.Tape, params [fsrs.NumParameters]float64) [fsrs.NumParameters]*numeric.Dual {
	var nodes [fsrs.NumParameters]*numeric.Dual
	for i, v := range params {
		nodes[i] = tape.Param(v)
	}
	return nodes
}

func dualScheduler(params [fsrs.NumParameters]*numeric.Dual) fsrs.Scheduler[*numeric.Dual] {
	k := fsrs.NewKernel(params, params[0].Lift(trainingRetention))
	return fsrs.Scheduler[*numeric.Dual]{
		Kernel:          k,
		LearningSteps:   fsrs.DefaultLearningSteps,
		RelearningSteps: fsrs.DefaultRelearningSteps,
		MaximumInterval: 36500,
		EnableFuzzing:   false,
	}
}

func clampParams(params *[fsrs.NumParameters]float64) {
	for i := range params {
		if params[i] < fsrs.LowerBounds[i] {
			params[i] = fsrs.LowerBounds[i]
		}
		if params[i] > fsrs.UpperBounds[i] {
			params[i] = fsrs.UpperBounds[i]
		}
	}
}
