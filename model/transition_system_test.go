package model

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func twoStateSystem() *TransitionSystem {
	return &TransitionSystem{
		Initial:   0,
		Variables: []Variable{{Name: "pc", Values: []string{"a", "b"}}},
		States: []State{
			{Values: []int{0}, Successors: []int{1}},
			{Values: []int{1}, Successors: nil, IsBad: true},
		},
	}
}

func TestTransitionSystemValidate(t *testing.T) {
	Convey("Given a well-formed two-state system", t, func() {
		ts := twoStateSystem()
		Convey("Validate succeeds", func() {
			So(ts.Validate(), ShouldBeNil)
		})
	})

	Convey("Given a system with no bad state", t, func() {
		ts := twoStateSystem()
		ts.States[1].IsBad = false
		Convey("Validate fails with ErrMalformedSystem", func() {
			So(errors.Is(ts.Validate(), ErrMalformedSystem), ShouldBeTrue)
		})
	})

	Convey("Given a system with an out-of-range initial state", t, func() {
		ts := twoStateSystem()
		ts.Initial = 5
		Convey("Validate fails", func() {
			So(errors.Is(ts.Validate(), ErrMalformedSystem), ShouldBeTrue)
		})
	})

	Convey("Given a state with a dangling transition", t, func() {
		ts := twoStateSystem()
		ts.States[0].Successors = []int{9}
		Convey("Validate fails", func() {
			So(errors.Is(ts.Validate(), ErrMalformedSystem), ShouldBeTrue)
		})
	})

	Convey("Given a state with an out-of-range value index", t, func() {
		ts := twoStateSystem()
		ts.States[0].Values = []int{7}
		Convey("Validate fails", func() {
			So(errors.Is(ts.Validate(), ErrMalformedSystem), ShouldBeTrue)
		})
	})
}

func TestHasTransitionAndSuccessorCount(t *testing.T) {
	ts := twoStateSystem()
	Convey("HasTransition reflects the successor list", t, func() {
		So(ts.HasTransition(0, 1), ShouldBeTrue)
		So(ts.HasTransition(1, 0), ShouldBeFalse)
	})
	Convey("SuccessorCount counts outgoing edges", t, func() {
		So(ts.SuccessorCount(0), ShouldEqual, 1)
		So(ts.SuccessorCount(1), ShouldEqual, 0)
	})
}
