package sampler

import (
	"math/big"

	"blame/responsibility"
	"blame/weights"
)

// Estimate converts merged counters into one responsibility.Result per
// player, using exact rational arithmetic throughout: the only place a
// stochastic run's output differs from the exact engines' is that the
// inputs are sampled, not enumerated, not that the combination math is
// approximate.
//
// For Shapley, it takes the fast path directly to value_by_size,
// bypassing count_by_size and the generic weight multiplication
// entirely (the algebraic simplification this estimator preserves
// exactly). For Banzhaf and Count, it estimates count_by_size and
// defers to responsibility.ApplyWeights exactly as the exact
// calculator does.
func Estimate(counters *Counters, wt weights.Type, samplesPerWinning int) []*responsibility.Result {
	n := counters.N
	results := make([]*responsibility.Result, n)
	for p := range results {
		results[p] = responsibility.NewResult(p, n)
	}

	factors := significantFactors(n, samplesPerWinning)

	for s := 1; s <= n; s++ {
		factor := factors[s]
		for q := 0; q < n; q++ {
			nSQ := counters.Samples(s, q)
			if nSQ.Sign() <= 0 {
				continue
			}
			sSQ := new(big.Rat).SetUint64(counters.SignificantPerWeight[s][q])

			if wt == weights.Shapley {
				value := new(big.Rat).Quo(sSQ, big.NewRat(int64(s), 1))
				value.Mul(value, factor)
				value.Quo(value, nSQ)
				results[q].ValueBySize[s] = value
				continue
			}

			nC := weights.Binomial(n, s)
			count := new(big.Rat).Mul(sSQ, factor)
			count.Quo(count, nSQ)
			count.Mul(count, new(big.Rat).SetInt(nC))
			results[q].CountBySize[s] = count
		}
	}

	if wt == weights.Shapley {
		for _, r := range results {
			r.TotalValue = new(big.Rat)
			for s := 1; s <= n; s++ {
				r.TotalValue.Add(r.TotalValue, r.ValueBySize[s])
			}
		}
		return results
	}

	responsibility.ApplyWeights(results, wt)
	return results
}

// significantFactors returns, for each size s, the exact rational
// s / min(s, samplesPerWinning): the scale-up applied to the
// unscaled significant-sample counter, since only min(s,
// samplesPerWinning) of a coalition's s members are ever probed per
// sample.
func significantFactors(n, samplesPerWinning int) []*big.Rat {
	factors := make([]*big.Rat, n+1)
	factors[0] = new(big.Rat).Set(one)
	for s := 1; s <= n; s++ {
		denom := s
		if samplesPerWinning < denom {
			denom = samplesPerWinning
		}
		if denom <= 0 {
			factors[s] = new(big.Rat)
			continue
		}
		factors[s] = big.NewRat(int64(s), int64(denom))
	}
	return factors
}
