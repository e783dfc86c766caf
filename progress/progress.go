// Package progress reports how far an in-flight solve/sample/compute
// run has gotten. It deliberately knows nothing about coalitions,
// games, or samples — it is the one surface a dashboard is allowed to
// depend on, keeping the core itself free of any UI concern.
package progress

import "blame/atomic_float"

// Snapshot is a point-in-time read of a run's progress.
type Snapshot struct {
	Stage    string
	Fraction float64
	Samples  uint64
}

// Reporter is updated by worker goroutines and read by a single
// dashboard/console consumer: any number of writers feeding one
// reader, backed by a lock-free float so the writers never block each
// other.
type Reporter struct {
	stage   string
	total   float64
	done    *atomic_float.AtomicFloat64
	samples *atomic_float.AtomicFloat64
}

// NewReporter returns a Reporter for a stage expected to process total
// units of work (e.g. 2^n coalitions, or a sample budget).
func NewReporter(stage string, total float64) *Reporter {
	return &Reporter{
		stage:   stage,
		total:   total,
		done:    atomic_float.NewAtomicFloat64(0),
		samples: atomic_float.NewAtomicFloat64(0),
	}
}

// Advance is called by a worker as it completes units of work (e.g.
// after finishing a block). Retries its CAS against the live value, so
// concurrent advances from many workers never lose an increment.
func (r *Reporter) Advance(units float64) {
	for {
		if _, ok := r.done.AtomicAdd(units); ok {
			return
		}
	}
}

// AddSamples is the sampler's equivalent of Advance, tracking raw
// sample count rather than a work-unit fraction.
func (r *Reporter) AddSamples(n float64) {
	for {
		if _, ok := r.samples.AtomicAdd(n); ok {
			return
		}
	}
}

// Read returns the current snapshot. Safe to call from any goroutine,
// but by convention only the designated single reporting consumer does.
func (r *Reporter) Read() Snapshot {
	fraction := 0.0
	if r.total > 0 {
		fraction = r.done.AtomicRead() / r.total
	}
	return Snapshot{
		Stage:    r.stage,
		Fraction: fraction,
		Samples:  uint64(r.samples.AtomicRead()),
	}
}
