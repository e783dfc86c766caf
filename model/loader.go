package model

import (
	"encoding/json"
	"io"
	"os"
)

// jsonTransitionSystem and jsonCounterexample are minimal JSON-wire
// shapes for the demo CLI loader. The real model-checker integration
// that produces a TransitionSystem/Counterexample pair is out of scope
// for this module; this loader exists only so cmd/blamectl
// has something to read a worked example from.
type jsonVariable struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type jsonLabel struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type jsonState struct {
	Values     []int `json:"values"`
	Successors []int `json:"successors"`
	Labels     []int `json:"labels"`
	Bad        bool  `json:"bad"`
}

type jsonTransitionSystem struct {
	Initial   int            `json:"initial"`
	Variables []jsonVariable `json:"variables"`
	Labels    []jsonLabel    `json:"labels"`
	States    []jsonState    `json:"states"`
}

// LoadTransitionSystem reads a TransitionSystem from a JSON file.
func LoadTransitionSystem(path string) (*TransitionSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTransitionSystem(f)
}

// DecodeTransitionSystem reads a TransitionSystem from JSON on r.
func DecodeTransitionSystem(r io.Reader) (*TransitionSystem, error) {
	var raw jsonTransitionSystem
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	ts := &TransitionSystem{
		Initial: raw.Initial,
	}
	for _, v := range raw.Variables {
		ts.Variables = append(ts.Variables, Variable{Name: v.Name, Values: v.Values})
	}
	for _, l := range raw.Labels {
		ts.Labels = append(ts.Labels, Label{Index: l.Index, Name: l.Name})
	}
	for _, s := range raw.States {
		ts.States = append(ts.States, State{
			Values:     s.Values,
			Successors: s.Successors,
			LabelIdxs:  s.Labels,
			IsBad:      s.Bad,
		})
	}

	return ts, nil
}

// LoadCounterexample reads a Counterexample from a JSON file holding a
// bare array of state indices.
func LoadCounterexample(path string) (Counterexample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cx Counterexample
	if err := json.NewDecoder(f).Decode(&cx); err != nil {
		return nil, err
	}
	return cx, nil
}
