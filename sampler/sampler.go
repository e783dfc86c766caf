// Package sampler implements the stochastic Monte-Carlo responsibility
// estimator: a per-size stratified sampler with a
// significance-probe step and variance-reducing global/local counter
// split, run independently by a pool of seeded workers and merged by
// simple elementwise summation.
package sampler

import (
	"context"
	"math/big"
	"math/rand"

	"blame/game"
	"blame/groups"
	"blame/progress"
)

var one = big.NewRat(1, 1)

// Counters accumulates one worker's raw sample statistics, indexed by
// coalition size 1..n (index 0 unused) and, for the per-size slices, by
// player. SamplesPerWeightLocal is an exact rational, not a float: it
// carries fractional sample-equivalents (size-m)/m that must cancel
// precisely against SamplesPerWeightGlobal when combined into a count,
// the same requirement that keeps every other counter in the core
// exact rather than approximate.
type Counters struct {
	N                      int
	TotalSamples           uint64
	SamplesPerWeightGlobal []uint64     // [size]
	SamplesPerWeightLocal  [][]*big.Rat // [size][player]
	SignificantPerWeight   [][]uint64   // [size][player]
}

// NewCounters allocates zeroed counters for an n-player game.
func NewCounters(n int) *Counters {
	c := &Counters{
		N:                      n,
		SamplesPerWeightGlobal: make([]uint64, n+1),
		SamplesPerWeightLocal:  make([][]*big.Rat, n+1),
		SignificantPerWeight:   make([][]uint64, n+1),
	}
	for s := range c.SamplesPerWeightLocal {
		c.SamplesPerWeightLocal[s] = make([]*big.Rat, n)
		for p := range c.SamplesPerWeightLocal[s] {
			c.SamplesPerWeightLocal[s][p] = new(big.Rat)
		}
		c.SignificantPerWeight[s] = make([]uint64, n)
	}
	return c
}

// Merge sums other's counters into c elementwise: total_samples,
// samples_per_weight_global, samples_per_weight_local, and
// significant_per_weight all merge by addition.
func (c *Counters) Merge(other *Counters) {
	c.TotalSamples += other.TotalSamples
	for s := range c.SamplesPerWeightGlobal {
		c.SamplesPerWeightGlobal[s] += other.SamplesPerWeightGlobal[s]
		for p := range c.SamplesPerWeightLocal[s] {
			c.SamplesPerWeightLocal[s][p].Add(c.SamplesPerWeightLocal[s][p], other.SamplesPerWeightLocal[s][p])
			c.SignificantPerWeight[s][p] += other.SignificantPerWeight[s][p]
		}
	}
}

// Samples returns the exact sample count backing size s's estimate for
// player q: the global count (every sample at this size) plus q's
// signed local adjustment.
func (c *Counters) Samples(s, q int) *big.Rat {
	return new(big.Rat).Add(new(big.Rat).SetUint64(c.SamplesPerWeightGlobal[s]), c.SamplesPerWeightLocal[s][q])
}

// Budget bounds one worker's run: exactly one of Samples or a context
// deadline should be used. For sample budgets, split the total evenly
// across workers; for time budgets, every worker uses the same
// wall-clock deadline instead.
type Budget struct {
	// Samples is the number of samples this worker should draw. Zero
	// means unbounded — run until ctx is done.
	Samples int
}

// RunWorker draws samples one at a time, each testing a random
// coalition's pivotality at a randomly drawn size, until budget or ctx
// is exhausted, against a private clone of g. It
// does not mutate g itself, and does not look at g's Owner/ChangeCount
// after returning (each sample is bracketed by install/evaluate/clear).
func RunWorker(ctx context.Context, g *game.Game, sg groups.StateGroups, budget Budget, samplesPerWinning int, rng *rand.Rand, reporter *progress.Reporter) (*Counters, error) {
	n := sg.Len()
	clone := g.Clone()
	counters := NewCounters(n)

	for i := 0; budget.Samples == 0 || i < budget.Samples; i++ {
		select {
		case <-ctx.Done():
			return counters, nil
		default:
		}

		runOneSample(clone, sg, n, samplesPerWinning, rng, counters)
		if reporter != nil {
			reporter.AddSamples(1)
		}
	}

	return counters, nil
}

func runOneSample(clone *game.Game, sg groups.StateGroups, n, samplesPerWinning int, rng *rand.Rand, counters *Counters) {
	k := 1 + rng.Intn(n)
	members := reservoirChoose(n, k, rng)

	sg.SetStateMask(clone, maskOf(members))
	winner := clone.Solve()

	if winner == game.SafeWins {
		m := samplesPerWinning
		if k < m {
			m = k
		}
		if m > 0 {
			// Each probed member stands in for size/m members, so it
			// must additionally carry (size-m)/m local weight beyond
			// the one global sample every probed member already gets.
			sampleFactor := big.NewRat(int64(k-m), int64(m))

			probedIdx := reservoirChoose(k, m, rng)
			probed := make(map[int]bool, m)
			for _, idx := range probedIdx {
				probed[idx] = true
			}

			for idx, q := range members {
				if probed[idx] {
					sg.RemoveFromCoalition(clone, q)
					flip := clone.Solve()
					sg.AddToCoalition(clone, q)
					if flip == game.ReachWins {
						counters.SignificantPerWeight[k][q]++
					}
					counters.SamplesPerWeightLocal[k][q].Add(counters.SamplesPerWeightLocal[k][q], sampleFactor)
				} else {
					counters.SamplesPerWeightLocal[k][q].Sub(counters.SamplesPerWeightLocal[k][q], one)
				}
			}
		}
	}
	counters.SamplesPerWeightGlobal[k]++

	sg.ClearStateMask(clone, maskOf(members))
	counters.TotalSamples++
}

func maskOf(members []int) uint64 {
	var mask uint64
	for _, m := range members {
		mask |= 1 << uint(m)
	}
	return mask
}

// reservoirChoose implements reservoir sampling for streaming selection:
// iterate i = 0..n, accept i with probability remaining/(n-i) until k
// are chosen. Used both to draw the sampled coalition (over all n
// players) and to draw the significance-probe subset (over the k
// coalition members).
func reservoirChoose(n, k int, rng *rand.Rand) []int {
	chosen := make([]int, 0, k)
	remaining := k
	for i := 0; i < n && remaining > 0; i++ {
		if rng.Float64() < float64(remaining)/float64(n-i) {
			chosen = append(chosen, i)
			remaining--
		}
	}
	return chosen
}
