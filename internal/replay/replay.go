// Package replay reconstructs per-card state sequences from a sorted
// review log, for both accounting (plain float64) and parameter fitting
// (differentiable scalars) — the same reconstruction, instantiated twice.
package replay

import (
	"sort"

	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/fsrs"
	"github.com/kristynaumlaufova/fsrs-go/internal/numeric"
)

// daysSinceLastReview delegates to the scheduler's own day-counting so the
// same-day test here matches the scheduler's interval arithmetic exactly.
var daysSinceLastReview = fsrs.DaysBetween

// MaxSeqLen caps how many of a card's earliest reviews are replayed.
const MaxSeqLen = 64

// Step is one reconstructed review event.
type Step[T numeric.Scalar[T]] struct {
	CardID                  int64
	PredictedRetrievability T
	ObservedRecall          bool
	SameDay                 bool
	HadPriorReview          bool
}

// Eligible reports whether this step should contribute to the optimizer's
// loss: only non-same-day reviews of a card that had already been reviewed
// once before count.
func (s Step[T]) Eligible() bool {
	return s.HadPriorReview && !s.SameDay
}

// GroupByCard buckets logs by card_id and sorts each bucket ascending by
// review time, returning card ids in ascending order for deterministic
// iteration.
func GroupByCard(logs []domain.ReviewLog) (map[int64][]domain.ReviewLog, []int64) {
	groups := make(map[int64][]domain.ReviewLog)
	for _, log := range logs {
		groups[log.CardID] = append(groups[log.CardID], log)
	}
	ids := make([]int64, 0, len(groups))
	for id, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			return g[i].ReviewDatetime.Before(g[j].ReviewDatetime)
		})
		groups[id] = g
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return groups, ids
}

// Replay drives scheduler over every card's (truncated) review history and
// emits one Step per review.
func Replay[T numeric.Scalar[T]](scheduler fsrs.Scheduler[T], logs []domain.ReviewLog) []Step[T] {
	groups, ids := GroupByCard(logs)

	var steps []Step[T]
	for _, cardID := range ids {
		history := groups[cardID]
		if len(history) > MaxSeqLen {
			history = history[:MaxSeqLen]
		}

		var card fsrs.CardState[T]
		for i, log := range history {
			if i == 0 {
				card = fsrs.CardState[T]{
					CardID: cardID,
					State:  domain.Learning,
					Step:   new(int),
					Due:    log.ReviewDatetime,
				}
			}

			predicted := scheduler.GetCardRetrievability(card, log.ReviewDatetime)
			hadPriorReview := card.LastReview != nil
			sameDay := hadPriorReview && daysSinceLastReview(log.ReviewDatetime, *card.LastReview) == 0

			steps = append(steps, Step[T]{
				CardID:                  cardID,
				PredictedRetrievability: predicted,
				ObservedRecall:          log.Rating != domain.Again,
				SameDay:                 sameDay,
				HadPriorReview:          hadPriorReview,
			})

			next, _, err := scheduler.ReviewCard(card, log.Rating, log.ReviewDatetime, log.ReviewDuration)
			if err != nil {
				break
			}
			card = next
		}
	}
	return steps
}
