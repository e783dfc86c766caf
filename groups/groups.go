// Package groups maps a "player" bit position onto the underlying game
// states it controls. Everything above this layer
// addresses players by dense index 0..n-1; StateGroups is the only
// place that knows how a player index translates to one or more Game
// states.
package groups

import (
	"fmt"
	"math/bits"
	"sort"

	"blame/game"
	"blame/model"
)

// MaxPlayers is the hard limit imposed by the 64-bit coalition bitmask.
const MaxPlayers = 64

// ErrTooManyPlayers is returned by the constructors when a run would
// need more than MaxPlayers bit positions.
var ErrTooManyPlayers = fmt.Errorf("groups: more than %d player groups", MaxPlayers)

// StateGroups maps player bit positions to underlying Game states and
// drives coalition membership through them.
type StateGroups interface {
	// Len returns the number of players n.
	Len() int
	// AddToCoalition places every state belonging to player i into g's
	// Safe coalition.
	AddToCoalition(g *game.Game, i int)
	// RemoveFromCoalition releases every state belonging to player i
	// from g's Safe coalition.
	RemoveFromCoalition(g *game.Game, i int)
	// SetStateMask adds every player whose bit is set in mask.
	SetStateMask(g *game.Game, mask uint64)
	// ClearStateMask removes every player whose bit is set in mask.
	ClearStateMask(g *game.Game, mask uint64)
	// GetName returns a human-readable name for player i.
	GetName(i int, ts *model.TransitionSystem) string
}

// Individual is the StateGroups implementation backing the pessimistic
// (significant-states-only) and optimistic (on-path-only) variants:
// bit i is exactly one game state.
type Individual struct {
	states []int
}

// NewIndividual builds a StateGroups over the given states, one player
// per state, in ascending order.
func NewIndividual(states []int) (*Individual, error) {
	if len(states) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyPlayers, len(states))
	}
	sorted := append([]int(nil), states...)
	sort.Ints(sorted)
	return &Individual{states: sorted}, nil
}

// NewSignificantStates builds the pessimistic variant's player set:
// every significant state (more than one successor, not bad) of g.
func NewSignificantStates(g *game.Game) (*Individual, error) {
	var states []int
	for s := 0; s < g.NumStates(); s++ {
		if g.IsSignificant(s) {
			states = append(states, s)
		}
	}
	return NewIndividual(states)
}

// NewOnPathStates builds the optimistic variant's player set: every
// significant state that lies on the counterexample path, i.e. whose
// default owner is Path.
func NewOnPathStates(g *game.Game) (*Individual, error) {
	var states []int
	for s := 0; s < g.NumStates(); s++ {
		if g.IsSignificant(s) && g.DefaultOwner(s) == game.Path {
			states = append(states, s)
		}
	}
	return NewIndividual(states)
}

func (ind *Individual) Len() int { return len(ind.states) }

func (ind *Individual) AddToCoalition(g *game.Game, i int) {
	g.AddState(ind.states[i])
}

func (ind *Individual) RemoveFromCoalition(g *game.Game, i int) {
	g.RemoveState(ind.states[i])
}

func (ind *Individual) SetStateMask(g *game.Game, mask uint64) {
	forEachBit(mask, func(i int) { ind.AddToCoalition(g, i) })
}

func (ind *Individual) ClearStateMask(g *game.Game, mask uint64) {
	forEachBit(mask, func(i int) { ind.RemoveFromCoalition(g, i) })
}

func (ind *Individual) GetName(i int, ts *model.TransitionSystem) string {
	return fmt.Sprintf("state_%d", ind.states[i])
}

// Grouped is the StateGroups implementation backing label-grouped runs:
// bit i is every member state of the i-th named group. Groups may
// overlap, which is exactly why Game's coalition membership is
// reference-counted rather than a plain flag.
type Grouped struct {
	groups []game.LabelGroup
}

// NewGrouped builds a StateGroups over g's label groups (including the
// synthetic "unlabelled" group, if present).
func NewGrouped(g *game.Game) (*Grouped, error) {
	if len(g.Labels) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyPlayers, len(g.Labels))
	}
	return &Grouped{groups: g.Labels}, nil
}

func (gr *Grouped) Len() int { return len(gr.groups) }

func (gr *Grouped) AddToCoalition(g *game.Game, i int) {
	for _, s := range gr.groups[i].Members {
		g.AddState(s)
	}
}

func (gr *Grouped) RemoveFromCoalition(g *game.Game, i int) {
	for _, s := range gr.groups[i].Members {
		g.RemoveState(s)
	}
}

func (gr *Grouped) SetStateMask(g *game.Game, mask uint64) {
	forEachBit(mask, func(i int) { gr.AddToCoalition(g, i) })
}

func (gr *Grouped) ClearStateMask(g *game.Game, mask uint64) {
	forEachBit(mask, func(i int) { gr.RemoveFromCoalition(g, i) })
}

func (gr *Grouped) GetName(i int, ts *model.TransitionSystem) string {
	return gr.groups[i].Name
}

func forEachBit(mask uint64, f func(i int)) {
	for mask != 0 {
		i := bits.TrailingZeros64(mask)
		f(i)
		mask &^= 1 << uint(i)
	}
}
