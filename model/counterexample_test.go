package model

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCounterexampleValidate(t *testing.T) {
	ts := twoStateSystem()

	Convey("Given a counterexample that matches the system", t, func() {
		cx := Counterexample{0, 1}
		Convey("Validate succeeds", func() {
			So(cx.Validate(ts), ShouldBeNil)
		})
		Convey("Edges returns the single step", func() {
			So(cx.Edges(), ShouldResemble, [][2]int{{0, 1}})
		})
		Convey("Contains finds both states", func() {
			So(cx.Contains(0), ShouldBeTrue)
			So(cx.Contains(1), ShouldBeTrue)
			So(cx.Contains(2), ShouldBeFalse)
		})
	})

	Convey("Given an empty counterexample", t, func() {
		cx := Counterexample{}
		Convey("Validate fails", func() {
			So(errors.Is(cx.Validate(ts), ErrMalformedCounterexample), ShouldBeTrue)
		})
	})

	Convey("Given a counterexample not starting at the initial state", t, func() {
		cx := Counterexample{1}
		Convey("Validate fails", func() {
			So(errors.Is(cx.Validate(ts), ErrMalformedCounterexample), ShouldBeTrue)
		})
	})

	Convey("Given a counterexample with a missing transition", t, func() {
		ts3 := &TransitionSystem{
			Initial:   0,
			Variables: []Variable{{Name: "pc", Values: []string{"a", "b", "c"}}},
			States: []State{
				{Values: []int{0}, Successors: []int{1}},
				{Values: []int{1}, Successors: nil},
				{Values: []int{2}, Successors: nil, IsBad: true},
			},
		}
		cx := Counterexample{0, 2}
		Convey("Validate fails", func() {
			So(errors.Is(cx.Validate(ts3), ErrMalformedCounterexample), ShouldBeTrue)
		})
	})

	Convey("Given a counterexample whose final state is not bad", t, func() {
		ts2 := twoStateSystem()
		ts2.States[1].IsBad = false
		ts2.States = append(ts2.States, State{Values: []int{1}, IsBad: true})
		ts2.States[1].Successors = []int{2}
		cx := Counterexample{0, 1}
		Convey("Validate fails", func() {
			So(errors.Is(cx.Validate(ts2), ErrMalformedCounterexample), ShouldBeTrue)
		})
	})
}
