package model

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodeTransitionSystem(t *testing.T) {
	Convey("Given a JSON transition system", t, func() {
		raw := `{
			"initial": 0,
			"variables": [{"name": "pc", "values": ["a", "b"]}],
			"labels": [{"index": 0, "name": "cs"}],
			"states": [
				{"values": [0], "successors": [1], "labels": [0]},
				{"values": [1], "bad": true}
			]
		}`
		ts, err := DecodeTransitionSystem(strings.NewReader(raw))
		So(err, ShouldBeNil)

		Convey("it decodes into the same shape Validate expects", func() {
			So(ts.Validate(), ShouldBeNil)
			So(ts.States[0].LabelIdxs, ShouldResemble, []int{0})
			So(ts.States[1].IsBad, ShouldBeTrue)
		})
	})
}

func TestLoadCounterexampleMissingFile(t *testing.T) {
	Convey("Given a nonexistent path", t, func() {
		_, err := LoadCounterexample("/nonexistent/path.json")
		Convey("it fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
