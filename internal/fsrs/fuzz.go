package fsrs

import (
	"math"
	"math/rand"
	"sync"
)

// fuzzBand is one segment of the piecewise fuzz delta formula.
type fuzzBand struct {
	start, end float64
	factor     float64
}

var fuzzBands = []fuzzBand{
	{start: 2.5, end: 7.0, factor: 0.15},
	{start: 7.0, end: 20.0, factor: 0.10},
	{start: 20.0, end: math.Inf(1), factor: 0.05},
}

// FuzzSource is the seam tests use to make fuzzing deterministic: anything
// producing a uniform draw in [0, 1).
type FuzzSource interface {
	Float64() float64
}

// processFuzzState guards the process-wide, non-reproducible generator the
// scheduler uses in production. It is deliberately not seeded with a fixed
// value; tests that need determinism disable fuzzing instead of reaching
// into this source.
var processFuzzState = struct {
	mu  sync.Mutex
	rnd *rand.Rand
}{rnd: rand.New(rand.NewSource(rand.Int63()))}

type processRand struct{}

func (processRand) Float64() float64 {
	processFuzzState.mu.Lock()
	defer processFuzzState.mu.Unlock()
	return processFuzzState.rnd.Float64()
}

// defaultFuzzSource returns the process-wide fuzz source.
func defaultFuzzSource() FuzzSource {
	return processRand{}
}

// fuzzRange computes the [min_ivl, max_ivl] window for an unfuzzed interval
// of intervalDays, clamped against the 2-day floor and maximumInterval.
func fuzzRange(intervalDays, maximumInterval int) (minIvl, maxIvl int) {
	delta := 1.0
	days := float64(intervalDays)
	for _, b := range fuzzBands {
		span := math.Min(days, b.end) - b.start
		if span < 0 {
			span = 0
		}
		delta += b.factor * span
	}

	minIvl = int(math.Round(days - delta))
	maxIvl = int(math.Round(days + delta))

	minIvl = max(2, minIvl)
	maxIvl = min(maxIvl, maximumInterval)
	minIvl = min(minIvl, maxIvl)

	return minIvl, maxIvl
}

// fuzzedIntervalDays applies bounded randomization to an interval already
// computed in days. Intervals below 2.5 days are returned unchanged.
//
// The draw intentionally matches the reference formula exactly:
// round(u*(max-min+1) + min), which can occasionally land one day past
// max_ivl before the final maximumInterval cap. This is a known quirk,
// preserved rather than fixed.
func fuzzedIntervalDays(intervalDays float64, maximumInterval int, src FuzzSource) int {
	if intervalDays < 2.5 {
		return int(math.Round(intervalDays))
	}

	minIvl, maxIvl := fuzzRange(int(intervalDays), maximumInterval)

	u := src.Float64()
	fuzzed := int(math.Round(u*float64(maxIvl-minIvl+1) + float64(minIvl)))

	if fuzzed > maximumInterval {
		fuzzed = maximumInterval
	}
	return fuzzed
}
