// Package responsibility combines the solver's pivotal-coalition counts
// with a cooperative-game weight vector, including the
// optimistic closed form.
package responsibility

import "math/big"

var one = big.NewRat(1, 1)

// Result is one player's ResponsibilityResult: pivotal-coalition
// counts by size, the weighted value contributed by each size, and the
// combined total. All arithmetic is exact rationals; floating point
// only ever appears at display time.
type Result struct {
	GroupIndex  int
	N           int
	CountBySize []*big.Rat
	ValueBySize []*big.Rat
	TotalValue  *big.Rat
}

// NewResult allocates a zeroed Result for a player in an n-player game.
func NewResult(groupIndex, n int) *Result {
	r := &Result{
		GroupIndex:  groupIndex,
		N:           n,
		CountBySize: make([]*big.Rat, n+1),
		ValueBySize: make([]*big.Rat, n+1),
		TotalValue:  new(big.Rat),
	}
	for s := range r.CountBySize {
		r.CountBySize[s] = new(big.Rat)
		r.ValueBySize[s] = new(big.Rat)
	}
	return r
}

// Add merges other's counts into r elementwise, matching the
// "per-thread ResponsibilityResults are merged by summing count_by_size
// elementwise".
func (r *Result) Add(other *Result) {
	for s := range r.CountBySize {
		r.CountBySize[s].Add(r.CountBySize[s], other.CountBySize[s])
	}
}
