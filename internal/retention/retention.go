// Package retention finds the desired_retention value that minimizes
// expected study time per unit of retained knowledge, by simulating a
// year of reviews under each of a handful of candidate retention targets
// and picking the cheapest.
package retention

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/fsrs"
	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
)

// Candidates are the desired_retention values the simulation chooses
// between.
var Candidates = []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95}

// MinLogsRequired is the fewest review logs compute_optimal_retention needs
// to estimate rating/duration distributions from.
const MinLogsRequired = 512

const (
	numCardsSimulate = 1000
	simulationSeed   = 42
)

var (
	simulationStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	simulationEnd   = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ratingCosts holds the empirical probability and average review_duration
// of each rating, separately for a card's first review and every
// subsequent one — recall (hard/good/easy) is conditioned on the card
// having been successfully recalled, since "was it recalled" is itself
// decided by the simulated desired_retention, not by these probabilities.
type ratingCosts struct {
	firstAgainProb, firstHardProb, firstGoodProb, firstEasyProb             float64
	firstAgainCost, firstHardCost, firstGoodCost, firstEasyCost             float64
	hardProb, goodProb, easyProb                                           float64
	againCost, hardCost, goodCost, easyCost                                float64
}

// ComputeOptimalRetention returns the candidate retention with the lowest
// simulated cost-per-unit-knowledge, using parameters for the scheduler
// driving the simulation.
//
// The reference implementation declares this function's return type as a
// list despite always returning a single float; Go has no reason to carry
// that over; this simply returns the chosen float64.
func ComputeOptimalRetention(logs []domain.ReviewLog, parameters [fsrs.NumParameters]float64) (float64, error) {
	if err := validateLogs(logs); err != nil {
		return 0, err
	}

	costs := computeRatingCosts(logs)

	best := Candidates[0]
	bestCost := simulateCost(best, parameters, costs)
	for _, retention := range Candidates[1:] {
		cost := simulateCost(retention, parameters, costs)
		if cost < bestCost {
			bestCost = cost
			best = retention
		}
	}
	return best, nil
}

func validateLogs(logs []domain.ReviewLog) error {
	if len(logs) < MinLogsRequired {
		return fmt.Errorf("retention: %w", domain.ErrInsufficientLogs)
	}
	for _, log := range logs {
		if log.ReviewDuration == nil {
			return fmt.Errorf("retention: %w", domain.ErrInsufficientLogs)
		}
	}
	return nil
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum int
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

// computeRatingCosts estimates rating-distribution probabilities and mean
// review durations from logs, splitting each card's first review (which
// has no preceding recall/forget outcome to condition on) from the rest.
func computeRatingCosts(logs []domain.ReviewLog) ratingCosts {
	sorted := append([]domain.ReviewLog(nil), logs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CardID != sorted[j].CardID {
			return sorted[i].CardID < sorted[j].CardID
		}
		return sorted[i].ReviewDatetime.Before(sorted[j].ReviewDatetime)
	})

	seen := make(map[int64]bool)
	var firstAgain, firstHard, firstGood, firstEasy []int
	var again, hard, good, easy []int

	for _, log := range sorted {
		duration := *log.ReviewDuration
		if !seen[log.CardID] {
			seen[log.CardID] = true
			switch log.Rating {
			case domain.Again:
				firstAgain = append(firstAgain, duration)
			case domain.Hard:
				firstHard = append(firstHard, duration)
			case domain.Good:
				firstGood = append(firstGood, duration)
			case domain.Easy:
				firstEasy = append(firstEasy, duration)
			}
			continue
		}
		switch log.Rating {
		case domain.Again:
			again = append(again, duration)
		case domain.Hard:
			hard = append(hard, duration)
		case domain.Good:
			good = append(good, duration)
		case domain.Easy:
			easy = append(easy, duration)
		}
	}

	numFirst := len(firstAgain) + len(firstHard) + len(firstGood) + len(firstEasy)
	numRecall := len(hard) + len(good) + len(easy)

	var c ratingCosts
	if numFirst > 0 {
		c.firstAgainProb = float64(len(firstAgain)) / float64(numFirst)
		c.firstHardProb = float64(len(firstHard)) / float64(numFirst)
		c.firstGoodProb = float64(len(firstGood)) / float64(numFirst)
		c.firstEasyProb = float64(len(firstEasy)) / float64(numFirst)
	}
	if numRecall > 0 {
		c.hardProb = float64(len(hard)) / float64(numRecall)
		c.goodProb = float64(len(good)) / float64(numRecall)
		c.easyProb = float64(len(easy)) / float64(numRecall)
	}

	c.firstAgainCost = mean(firstAgain)
	c.firstHardCost = mean(firstHard)
	c.firstGoodCost = mean(firstGood)
	c.firstEasyCost = mean(firstEasy)
	c.againCost = mean(again)
	c.hardCost = mean(hard)
	c.goodCost = mean(good)
	c.easyCost = mean(easy)

	return c
}

// weightedChoice draws an index from weights the same way Python's
// random.choices does: a uniform draw over the cumulative weight, located
// by the first cumulative bucket that exceeds it.
func weightedChoice(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := rng.Float64() * total

	cum := 0.0
	for i, w := range weights {
		cum += w
		if cum > x {
			return i
		}
	}
	return len(weights) - 1
}

// simulateCost runs numCardsSimulate synthetic cards through calendar year
// 2025 under desiredRetention and returns total simulated study time per
// unit of retained knowledge (desiredRetention * numCardsSimulate).
func simulateCost(desiredRetention float64, parameters [fsrs.NumParameters]float64, costs ratingCosts) float64 {
	rng := rand.New(rand.NewSource(simulationSeed))
	sched := fsrs.NewScheduler(parameters, desiredRetention, fsrs.DefaultLearningSteps, fsrs.DefaultRelearningSteps, 36500, false)

	var totalCost float64
	for i := 0; i < numCardsSimulate; i++ {
		step := 0
		card := fsrs.CardState[numeric.F64]{CardID: int64(i), State: domain.Learning, Step: &step}
		curr := simulationStart

		for curr.Before(simulationEnd) {
			var rating domain.Rating
			var cost float64

			if curr.Equal(simulationStart) {
				idx := weightedChoice(rng, []float64{costs.firstAgainProb, costs.firstHardProb, costs.firstGoodProb, costs.firstEasyProb})
				switch idx {
				case 0:
					rating, cost = domain.Again, costs.firstAgainCost
				case 1:
					rating, cost = domain.Hard, costs.firstHardCost
				case 2:
					rating, cost = domain.Good, costs.firstGoodCost
				default:
					rating, cost = domain.Easy, costs.firstEasyCost
				}
			} else {
				recalled := weightedChoice(rng, []float64{desiredRetention, 1 - desiredRetention}) == 0
				if !recalled {
					rating, cost = domain.Again, costs.againCost
				} else {
					idx := weightedChoice(rng, []float64{costs.hardProb, costs.goodProb, costs.easyProb})
					switch idx {
					case 0:
						rating, cost = domain.Hard, costs.hardCost
					case 1:
						rating, cost = domain.Good, costs.goodCost
					default:
						rating, cost = domain.Easy, costs.easyCost
					}
				}
			}

			totalCost += cost

			next, _, err := sched.ReviewCard(card, rating, curr, nil)
			if err != nil {
				break
			}
			card = next
			curr = card.Due
		}
	}

	totalKnowledge := desiredRetention * float64(numCardsSimulate)
	return totalCost / totalKnowledge
}
