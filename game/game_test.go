package game

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"blame/model"
)

// s1System builds a minimal three-state game, initial state
// with two outgoing transitions (one on-path to bad, one to a safe
// sink); one significant player.
func s1System() (*model.TransitionSystem, model.Counterexample) {
	ts := &model.TransitionSystem{
		Initial:   0,
		Variables: []model.Variable{{Name: "pc", Values: []string{"a", "b", "c"}}},
		States: []model.State{
			{Values: []int{0}, Successors: []int{1, 2}},
			{Values: []int{1}, IsBad: true},
			{Values: []int{2}},
		},
	}
	return ts, model.Counterexample{0, 1}
}

func TestBuild(t *testing.T) {
	Convey("Given the S1 three-state game", t, func() {
		ts, cx := s1System()
		g, err := Build(ts, cx)
		So(err, ShouldBeNil)

		Convey("default owners follow the counterexample path", func() {
			So(g.DefaultOwner(0), ShouldEqual, Path)
			So(g.DefaultOwner(1), ShouldEqual, Reach)
			So(g.DefaultOwner(2), ShouldEqual, Reach)
		})

		Convey("owners start at their default", func() {
			So(g.Owner[0], ShouldEqual, Path)
			So(g.Owner[2], ShouldEqual, Reach)
		})

		Convey("the on-path edge is marked", func() {
			preds := g.Incoming(1)
			So(len(preds), ShouldEqual, 1)
			So(preds[0].Source, ShouldEqual, 0)
			So(preds[0].OnPath, ShouldBeTrue)
		})

		Convey("the off-path edge from the same source is not marked", func() {
			preds := g.Incoming(2)
			So(len(preds), ShouldEqual, 1)
			So(preds[0].OnPath, ShouldBeFalse)
		})

		Convey("state 0 is significant, bad and sink states are not", func() {
			So(g.IsSignificant(0), ShouldBeTrue)
			So(g.IsSignificant(1), ShouldBeFalse)
			So(g.IsSignificant(2), ShouldBeFalse)
		})
	})
}

func TestSolveEmptyCoalition(t *testing.T) {
	Convey("Given S1 with no coalition installed", t, func() {
		ts, cx := s1System()
		g, err := Build(ts, cx)
		So(err, ShouldBeNil)

		Convey("Reach wins: the Path player drives straight into bad", func() {
			So(g.Solve(), ShouldEqual, ReachWins)
		})
	})
}

func TestSolveWithSignificantStateInCoalition(t *testing.T) {
	Convey("Given S1 with state 0 placed in the Safe coalition", t, func() {
		ts, cx := s1System()
		g, err := Build(ts, cx)
		So(err, ShouldBeNil)

		g.AddState(0)
		Convey("Safe wins: it routes away from bad", func() {
			So(g.Solve(), ShouldEqual, SafeWins)
		})

		Convey("clearing the coalition restores the default owner and Reach wins again", func() {
			g.RemoveState(0)
			So(g.Owner[0], ShouldEqual, Path)
			So(g.ChangeCount[0], ShouldEqual, 0)
			So(g.Solve(), ShouldEqual, ReachWins)
		})
	})
}

func TestCoalitionRefCounting(t *testing.T) {
	Convey("Given a state added to the coalition twice (two overlapping groups)", t, func() {
		ts, cx := s1System()
		g, err := Build(ts, cx)
		So(err, ShouldBeNil)

		g.AddState(0)
		g.AddState(0)
		So(g.ChangeCount[0], ShouldEqual, 2)
		So(g.Owner[0], ShouldEqual, Safe)

		Convey("removing once leaves it Safe", func() {
			g.RemoveState(0)
			So(g.ChangeCount[0], ShouldEqual, 1)
			So(g.Owner[0], ShouldEqual, Safe)
		})

		Convey("removing twice restores the default owner", func() {
			g.RemoveState(0)
			g.RemoveState(0)
			So(g.ChangeCount[0], ShouldEqual, 0)
			So(g.Owner[0], ShouldEqual, Path)
		})
	})
}

func TestCloneIsIndependent(t *testing.T) {
	Convey("Given a cloned game", t, func() {
		ts, cx := s1System()
		g, err := Build(ts, cx)
		So(err, ShouldBeNil)

		clone := g.Clone()
		clone.AddState(0)

		Convey("mutating the clone's coalition does not affect the original", func() {
			So(g.Owner[0], ShouldEqual, Path)
			So(clone.Owner[0], ShouldEqual, Safe)
		})
	})
}

func TestRoundTripSetThenClear(t *testing.T) {
	Convey("Given any coalition bracketed by set-then-clear", t, func() {
		ts, cx := s1System()
		g, err := Build(ts, cx)
		So(err, ShouldBeNil)

		ownerBefore := append([]Owner(nil), g.Owner...)
		changeBefore := append([]int(nil), g.ChangeCount...)

		g.AddState(0)
		g.AddState(2)
		_ = g.Solve()
		g.RemoveState(2)
		g.RemoveState(0)

		Convey("the game is bit-identical to its starting state", func() {
			So(g.Owner, ShouldResemble, ownerBefore)
			So(g.ChangeCount, ShouldResemble, changeBefore)
		})
	})
}

func TestBadInitialStateIsImmediateReachWin(t *testing.T) {
	Convey("Given a counterexample of length one (the initial state is itself bad)", t, func() {
		ts := &model.TransitionSystem{
			Initial:   0,
			Variables: []model.Variable{{Name: "pc", Values: []string{"a"}}},
			States: []model.State{
				{Values: []int{0}, IsBad: true},
			},
		}
		g, err := Build(ts, model.Counterexample{0})
		So(err, ShouldBeNil)

		Convey("Reach wins trivially", func() {
			So(g.Solve(), ShouldEqual, ReachWins)
		})
	})
}

func TestBuildRejectsInvalidSystem(t *testing.T) {
	Convey("Given a system with no bad states", t, func() {
		ts := &model.TransitionSystem{
			Initial:   0,
			Variables: []model.Variable{{Name: "pc", Values: []string{"a"}}},
			States:    []model.State{{Values: []int{0}}},
		}
		Convey("Build fails validation before marking anything", func() {
			_, err := Build(ts, model.Counterexample{0})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBuildLabelGroups(t *testing.T) {
	Convey("Given a system with overlapping labels and an unlabelled state", t, func() {
		ts := &model.TransitionSystem{
			Initial:   0,
			Variables: []model.Variable{{Name: "pc", Values: []string{"a", "b", "c"}}},
			Labels:    []model.Label{{Index: 0, Name: "cs1"}, {Index: 1, Name: "cs2"}},
			States: []model.State{
				{Values: []int{0}, Successors: []int{1, 2}, LabelIdxs: []int{0, 1}},
				{Values: []int{1}, IsBad: true, LabelIdxs: []int{1}},
				{Values: []int{2}},
			},
		}
		g, err := Build(ts, model.Counterexample{0, 1})
		So(err, ShouldBeNil)

		Convey("labels retain their declared order, with unlabelled appended last", func() {
			So(len(g.Labels), ShouldEqual, 3)
			So(g.Labels[0].Name, ShouldEqual, "cs1")
			So(g.Labels[0].Members, ShouldResemble, []int{0})
			So(g.Labels[1].Name, ShouldEqual, "cs2")
			So(g.Labels[1].Members, ShouldResemble, []int{0, 1})
			So(g.Labels[2].Name, ShouldEqual, "unlabelled")
			So(g.Labels[2].Members, ShouldResemble, []int{2})
		})
	})
}

func TestBuildMarkingFailsOnDuplicateTransition(t *testing.T) {
	Convey("Given a state with the same successor listed twice", t, func() {
		ts := &model.TransitionSystem{
			Initial:   0,
			Variables: []model.Variable{{Name: "pc", Values: []string{"a", "b"}}},
			States: []model.State{
				{Values: []int{0}, Successors: []int{1, 1}},
				{Values: []int{1}, IsBad: true},
			},
		}
		Convey("Build rejects the ambiguous predecessor mapping", func() {
			_, err := Build(ts, model.Counterexample{0, 1})
			So(errors.Is(err, ErrMarking), ShouldBeTrue)
		})
	})
}
