package responsibility

import (
	"math/big"

	"blame/log"
	"blame/weights"
)

// ApplyWeights computes each result's value_by_size and total_value
// from its count_by_size:
// total_value = Σ_{s=1..n} count_by_size[s] · weight[s].
func ApplyWeights(results []*Result, wt weights.Type) {
	if len(results) == 0 {
		return
	}
	w := weights.Vector(wt, results[0].N)
	for _, r := range results {
		r.TotalValue = new(big.Rat)
		for s := 1; s <= r.N; s++ {
			r.ValueBySize[s] = new(big.Rat).Mul(r.CountBySize[s], w[s])
			r.TotalValue.Add(r.TotalValue, r.ValueBySize[s])
		}
	}
}

// WarnIfShapleyDoesNotSumToOne logs (does not fail) the
// consistency check: for Shapley weights the player totals sum to
// exactly 1 when the empty coalition loses and the full coalition wins,
// and to 0 otherwise, so a warning is logged for any other sum.
func WarnIfShapleyDoesNotSumToOne(results []*Result) {
	sum := new(big.Rat)
	for _, r := range results {
		sum.Add(sum, r.TotalValue)
	}
	if sum.Cmp(new(big.Rat)) != 0 && sum.Cmp(big.NewRat(1, 1)) != 0 {
		log.L().Warnw("responsibility: Shapley totals do not sum to 0 or 1", "sum", sum.RatString())
	}
}
