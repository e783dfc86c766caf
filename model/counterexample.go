package model

import "fmt"

// Counterexample is the ordered sequence of state indices describing
// the offending run: it starts at the transition system's initial
// state, every consecutive pair is connected by an existing transition,
// and the final state is bad.
type Counterexample []int

// ErrMalformedCounterexample is returned by Validate when the
// counterexample violates one of its structural invariants.
var ErrMalformedCounterexample = fmt.Errorf("malformed counterexample")

// Validate checks the counterexample's structural invariants.
func (cx Counterexample) Validate(ts *TransitionSystem) error {
	if len(cx) == 0 {
		return fmt.Errorf("%w: empty path", ErrMalformedCounterexample)
	}
	if cx[0] != ts.Initial {
		return fmt.Errorf("%w: path starts at state %d, want initial state %d", ErrMalformedCounterexample, cx[0], ts.Initial)
	}
	for i := 0; i+1 < len(cx); i++ {
		u, v := cx[i], cx[i+1]
		if u < 0 || u >= len(ts.States) || v < 0 || v >= len(ts.States) {
			return fmt.Errorf("%w: step %d references out-of-range state (%d -> %d)", ErrMalformedCounterexample, i, u, v)
		}
		if !ts.HasTransition(u, v) {
			return fmt.Errorf("%w: no transition %d -> %d at step %d", ErrMalformedCounterexample, u, v, i)
		}
	}
	last := cx[len(cx)-1]
	if !ts.States[last].IsBad {
		return fmt.Errorf("%w: final state %d is not marked bad", ErrMalformedCounterexample, last)
	}
	return nil
}

// Edges returns the consecutive (source, destination) pairs along the
// path, in order.
func (cx Counterexample) Edges() [][2]int {
	edges := make([][2]int, 0, len(cx)-1)
	for i := 0; i+1 < len(cx); i++ {
		edges = append(edges, [2]int{cx[i], cx[i+1]})
	}
	return edges
}

// Contains reports whether state s appears anywhere on the path.
func (cx Counterexample) Contains(s int) bool {
	for _, st := range cx {
		if st == s {
			return true
		}
	}
	return false
}
