// Package model holds the input data the responsibility engine consumes:
// a TransitionSystem and a Counterexample over it. Both are produced
// upstream (the model-checker invocation and the textual parser are out
// of scope for this module, per the design notes) and are read-only to
// everything downstream of this package.
package model

import "fmt"

// Variable is one dimension of a state's valuation tuple: a name and the
// ordered list of value names it may take (the valuation index into
// this slice is what State.Values stores).
type Variable struct {
	Name   string
	Values []string
}

// Label is a (label_index, name) pair as read from the parsed label
// file; which states carry it is recorded per-state in State.LabelIdxs,
// not here. Multiple labels may share member states.
type Label struct {
	Index int
	Name  string
}

// State is one vertex of the transition system: a tuple of variable
// valuation indices, its outgoing transitions (by destination state
// index), the labels it carries, and whether it is a distinguished bad
// state.
type State struct {
	// Values[i] indexes into Variables[i].Values.
	Values     []int
	Successors []int
	LabelIdxs  []int
	IsBad      bool
}

// TransitionSystem is the finite state-transition model the
// responsibility engine reduces to a reachability game.
type TransitionSystem struct {
	States    []State
	Initial   int
	Variables []Variable
	Labels    []Label
}

// SuccessorCount returns the outgoing arity of state s.
func (ts *TransitionSystem) SuccessorCount(s int) int {
	return len(ts.States[s].Successors)
}

// HasTransition reports whether there is an edge from u to v.
func (ts *TransitionSystem) HasTransition(u, v int) bool {
	for _, succ := range ts.States[u].Successors {
		if succ == v {
			return true
		}
	}
	return false
}

// Validate checks the transition system's structural invariants: variable valuation
// indices are well-formed, exactly one initial state, at least one bad
// state, and every outgoing transition names an existing state.
func (ts *TransitionSystem) Validate() error {
	if ts.Initial < 0 || ts.Initial >= len(ts.States) {
		return fmt.Errorf("%w: initial state index %d out of range [0,%d)", ErrMalformedSystem, ts.Initial, len(ts.States))
	}

	anyBad := false
	for i, s := range ts.States {
		if s.IsBad {
			anyBad = true
		}
		if len(s.Values) != len(ts.Variables) {
			return fmt.Errorf("%w: state %d has %d values, want %d (one per variable)", ErrMalformedSystem, i, len(s.Values), len(ts.Variables))
		}
		for vi, val := range s.Values {
			if val < 0 || val >= len(ts.Variables[vi].Values) {
				return fmt.Errorf("%w: state %d variable %q value index %d out of range [0,%d)",
					ErrMalformedSystem, i, ts.Variables[vi].Name, val, len(ts.Variables[vi].Values))
			}
		}
		for _, succ := range s.Successors {
			if succ < 0 || succ >= len(ts.States) {
				return fmt.Errorf("%w: state %d has transition to out-of-range state %d", ErrMalformedSystem, i, succ)
			}
		}
	}

	if !anyBad {
		return fmt.Errorf("%w: no state is marked bad", ErrMalformedSystem)
	}

	return nil
}

// ErrMalformedSystem is returned by Validate when the transition system
// violates one of its structural invariants.
var ErrMalformedSystem = fmt.Errorf("malformed transition system")
