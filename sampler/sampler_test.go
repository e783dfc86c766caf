package sampler

import (
	"context"
	"math/big"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"blame/game"
	"blame/groups"
	"blame/model"
	"blame/weights"
)

// orGatedChain mirrors the fixture used by the solver and responsibility
// packages: n significant players in series, each with an off-path
// escape successor.
func orGatedChain(n int) (*model.TransitionSystem, model.Counterexample) {
	numStates := 1 + n + n + 1
	badIdx := 1 + 2*n
	ts := &model.TransitionSystem{
		Initial:   0,
		Variables: []model.Variable{{Name: "pc", Values: []string{"x"}}},
		States:    make([]model.State, numStates),
	}
	cx := model.Counterexample{0}
	ts.States[0] = model.State{Values: []int{0}, Successors: []int{1}}
	for i := 0; i < n; i++ {
		playerIdx := 1 + i
		sinkIdx := 1 + n + i
		next := playerIdx + 1
		if i == n-1 {
			next = badIdx
		}
		ts.States[playerIdx] = model.State{Values: []int{0}, Successors: []int{next, sinkIdx}}
		ts.States[sinkIdx] = model.State{Values: []int{0}}
		cx = append(cx, playerIdx)
	}
	ts.States[badIdx] = model.State{Values: []int{0}, IsBad: true}
	cx = append(cx, badIdx)
	return ts, cx
}

func TestDeriveSeedsIsDeterministic(t *testing.T) {
	Convey("Given the same top-level seed twice", t, func() {
		a := DeriveSeeds(42, 4)
		b := DeriveSeeds(42, 4)

		Convey("the derived worker seeds are identical", func() {
			So(a, ShouldResemble, b)
		})

		Convey("a different seed produces different worker seeds", func() {
			c := DeriveSeeds(43, 4)
			So(a, ShouldNotResemble, c)
		})
	})
}

func TestSplitSampleBudget(t *testing.T) {
	Convey("Given 10 samples over 3 workers", t, func() {
		budgets := SplitSampleBudget(10, 3)
		Convey("the remainder goes to the low-indexed workers", func() {
			So(budgets, ShouldResemble, []int{4, 3, 3})
		})
	})
}

func TestReservoirChooseExactlyK(t *testing.T) {
	Convey("Given many draws of k from n", t, func() {
		rng := rand.New(rand.NewSource(1))
		for trial := 0; trial < 200; trial++ {
			chosen := reservoirChoose(10, 4, rng)
			So(len(chosen), ShouldEqual, 4)
			seen := map[int]bool{}
			for _, c := range chosen {
				So(seen[c], ShouldBeFalse)
				seen[c] = true
				So(c, ShouldBeBetween, -1, 10)
			}
		}
	})
}

func TestRunWorkerConvergesOnOrGatedChain(t *testing.T) {
	Convey("Given the 3-player OR-gated chain sampled heavily", t, func() {
		ts, cx := orGatedChain(3)
		g, err := game.Build(ts, cx)
		So(err, ShouldBeNil)
		sg, err := groups.NewSignificantStates(g)
		So(err, ShouldBeNil)

		rng := rand.New(rand.NewSource(7))
		counters, err := RunWorker(context.Background(), g, sg, Budget{Samples: 20000}, 8, rng, nil)
		So(err, ShouldBeNil)
		So(counters.TotalSamples, ShouldEqual, uint64(20000))

		results := Estimate(counters, weights.Shapley, 8)

		Convey("every player's estimated Shapley share is in the same ballpark as the true 1/3", func() {
			for _, r := range results {
				f, _ := r.TotalValue.Float64()
				So(f, ShouldBeBetween, 0.1, 0.6)
			}
		})
	})
}

func TestCountersMerge(t *testing.T) {
	Convey("Given two counter sets", t, func() {
		a := NewCounters(2)
		a.TotalSamples = 3
		a.SamplesPerWeightGlobal[1] = 2
		a.SamplesPerWeightLocal[1][0] = big.NewRat(3, 2)
		a.SignificantPerWeight[1][0] = 1

		b := NewCounters(2)
		b.TotalSamples = 5
		b.SamplesPerWeightGlobal[1] = 1
		b.SamplesPerWeightLocal[1][0] = big.NewRat(-1, 2)
		b.SignificantPerWeight[1][0] = 2

		a.Merge(b)

		Convey("every field sums elementwise", func() {
			So(a.TotalSamples, ShouldEqual, uint64(8))
			So(a.SamplesPerWeightGlobal[1], ShouldEqual, uint64(3))
			So(a.SamplesPerWeightLocal[1][0].Cmp(big.NewRat(1, 1)), ShouldEqual, 0)
			So(a.SignificantPerWeight[1][0], ShouldEqual, uint64(3))
		})
	})
}
