package responsibility

import (
	"math/big"

	"blame/game"
	"blame/groups"
	"blame/weights"
)

// ComputeOptimisticClosedForm implements the optimistic flavour: g must have been
// built with game.BuildOptimistic (off-path states default to Safe),
// and sg must be the on-path-only player set (groups.NewOnPathStates).
// A player participates iff, placed alone in the Safe coalition, Safe
// wins. For every participant, count_by_size[s] = C(ℓ, s-1) for
// s = 1..ℓ+1, where ℓ = n - w and w is the number of participants: it
// is pivotal in exactly the permutations where s-1 of the ℓ
// non-participants precede it.
func ComputeOptimisticClosedForm(g *game.Game, sg groups.StateGroups) []*Result {
	n := sg.Len()
	participating := make([]bool, n)
	w := 0
	for p := 0; p < n; p++ {
		sg.AddToCoalition(g, p)
		win := g.Solve()
		sg.RemoveFromCoalition(g, p)
		if win == game.SafeWins {
			participating[p] = true
			w++
		}
	}

	l := n - w
	results := newResultSet(n)
	for p, ok := range participating {
		if !ok {
			continue
		}
		for s := 1; s <= l+1; s++ {
			results[p].CountBySize[s] = new(big.Rat).SetInt(weights.Binomial(l, s-1))
		}
	}
	return results
}
