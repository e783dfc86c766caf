package groups

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"blame/game"
	"blame/model"
)

func orGatedSystem() (*model.TransitionSystem, model.Counterexample) {
	// The "OR-gated" shape in miniature: a single significant state 0
	// branching to 1 (on-path, leading to bad state 3) and to the safe
	// sink 2, so state 0 is the only player and can veto on its own.
	ts := &model.TransitionSystem{
		Initial:   0,
		Variables: []model.Variable{{Name: "pc", Values: []string{"a", "b", "c", "d"}}},
		States: []model.State{
			{Values: []int{0}, Successors: []int{1, 2}},
			{Values: []int{1}, Successors: []int{3}},
			{Values: []int{2}},
			{Values: []int{3}, IsBad: true},
		},
	}
	return ts, model.Counterexample{0, 1, 3}
}

func buildOrGated(t *testing.T) *game.Game {
	ts, cx := orGatedSystem()
	g, err := game.Build(ts, cx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestNewSignificantStates(t *testing.T) {
	Convey("Given the OR-gated game", t, func() {
		g := buildOrGated(t)
		sg, err := NewSignificantStates(g)
		So(err, ShouldBeNil)

		Convey("only state 0 has more than one successor", func() {
			So(sg.Len(), ShouldEqual, 1)
			So(sg.GetName(0, nil), ShouldEqual, "state_0")
		})
	})
}

func TestNewOnPathStates(t *testing.T) {
	Convey("Given the OR-gated game", t, func() {
		g := buildOrGated(t)
		sg, err := NewOnPathStates(g)
		So(err, ShouldBeNil)

		Convey("state 0 is both significant and on-path", func() {
			So(sg.Len(), ShouldEqual, 1)
		})
	})
}

func TestIndividualCoalitionRoundTrip(t *testing.T) {
	Convey("Given an Individual grouping over two states", t, func() {
		g := buildOrGated(t)
		sg, err := NewIndividual([]int{0, 1})
		So(err, ShouldBeNil)
		So(sg.Len(), ShouldEqual, 2)

		Convey("SetStateMask then ClearStateMask round-trips ownership", func() {
			before := append([]game.Owner(nil), g.Owner...)
			sg.SetStateMask(g, 0b11)
			So(g.Owner[0], ShouldEqual, game.Safe)
			So(g.Owner[1], ShouldEqual, game.Safe)
			sg.ClearStateMask(g, 0b11)
			So(g.Owner, ShouldResemble, before)
		})

		Convey("AddToCoalition/RemoveFromCoalition address one bit at a time", func() {
			sg.AddToCoalition(g, 1)
			So(g.Owner[1], ShouldEqual, game.Safe)
			So(g.Owner[0], ShouldNotEqual, game.Safe)
			sg.RemoveFromCoalition(g, 1)
			So(g.Owner[1], ShouldNotEqual, game.Safe)
		})
	})
}

func TestNewIndividualRejectsTooManyPlayers(t *testing.T) {
	Convey("Given more than 64 candidate states", t, func() {
		states := make([]int, MaxPlayers+1)
		for i := range states {
			states[i] = i
		}
		_, err := NewIndividual(states)
		Convey("the constructor fails", func() {
			So(errors.Is(err, ErrTooManyPlayers), ShouldBeTrue)
		})
	})
}

func TestGroupedOverlappingMembership(t *testing.T) {
	Convey("Given two label groups that share a state", t, func() {
		ts := &model.TransitionSystem{
			Initial:   0,
			Variables: []model.Variable{{Name: "pc", Values: []string{"a", "b"}}},
			Labels:    []model.Label{{Index: 0, Name: "g1"}, {Index: 1, Name: "g2"}},
			States: []model.State{
				{Values: []int{0}, Successors: []int{1}, LabelIdxs: []int{0, 1}},
				{Values: []int{1}, IsBad: true},
			},
		}
		g, err := game.Build(ts, model.Counterexample{0, 1})
		So(err, ShouldBeNil)

		sg, err := NewGrouped(g)
		So(err, ShouldBeNil)
		// g1, g2, and the synthetic "unlabelled" group holding bad state 1.
		So(sg.Len(), ShouldEqual, 3)

		Convey("adding both groups then removing one leaves the shared state Safe", func() {
			sg.AddToCoalition(g, 0)
			sg.AddToCoalition(g, 1)
			So(g.ChangeCount[0], ShouldEqual, 2)

			sg.RemoveFromCoalition(g, 0)
			So(g.Owner[0], ShouldEqual, game.Safe)

			sg.RemoveFromCoalition(g, 1)
			So(g.Owner[0], ShouldNotEqual, game.Safe)
		})
	})
}

func TestNamesHelper(t *testing.T) {
	Convey("Given an Individual grouping", t, func() {
		sg, err := NewIndividual([]int{4, 2})
		So(err, ShouldBeNil)

		Convey("Names preserves sorted order, not constructor argument order", func() {
			So(Names(sg, nil), ShouldResemble, []string{"state_2", "state_4"})
		})
	})
}
