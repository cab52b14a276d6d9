// Package tracker accumulates per-step contributions of temperature-driven
// rate processes. Every phenological stage and leaf clock is built on one.
package tracker

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tracker records calc(value)*timestep once per simulation step.
type Tracker interface {
	// Update appends the transformed contribution of value.
	Update(value float64)

	// Rate is the mean of the history for plain trackers, or its sum for
	// accumulators.
	Rate() float64

	// Period is the elapsed time covered by the history, in days.
	Period() float64

	Count() int
	Empty() bool
	Reset()
	Timestep() float64
}

// Aggregation selects how Rate reduces the history.
type Aggregation int

const (
	// Mean is used by running-average temperature trackers.
	Mean Aggregation = iota

	// Sum is used by accumulators: GDD, beta-function growth, stress duration.
	Sum
)

// CalcFunc transforms a raw input (usually a temperature) into a per-day rate.
type CalcFunc func(value float64) float64

// Identity returns its input unchanged.
func Identity(value float64) float64 { return value }

// Series is the concrete history behind every tracker in this package.
type Series struct {
	calc        CalcFunc
	aggregation Aggregation
	timestep    float64
	values      []float64
}

// New creates a tracker with the given transform, aggregation and timestep
// (fraction of a day).
func New(calc CalcFunc, aggregation Aggregation, timestep float64) *Series {
	if calc == nil {
		calc = Identity
	}
	return &Series{
		calc:        calc,
		aggregation: aggregation,
		timestep:    timestep,
	}
}

// NewTracker is a plain mean tracker.
func NewTracker(timestep float64) *Series {
	return New(Identity, Mean, timestep)
}

// NewTemperatureTracker is a mean tracker whose timestep is always 1, so
// Rate is the running mean of the raw temperatures it saw.
func NewTemperatureTracker() *Series {
	return New(Identity, Mean, 1)
}

// NewAccumulator sums its raw inputs scaled by timestep.
func NewAccumulator(timestep float64) *Series {
	return New(Identity, Sum, timestep)
}

func (s *Series) Update(value float64) {
	s.values = append(s.values, s.calc(value)*s.timestep)
}

// Rate returns NaN for an empty mean tracker; an empty accumulator is 0.
func (s *Series) Rate() float64 {
	if s.aggregation == Sum {
		return floats.Sum(s.values)
	}
	if len(s.values) == 0 {
		return math.NaN()
	}
	return stat.Mean(s.values, nil)
}

func (s *Series) Period() float64 {
	return float64(len(s.values)) * s.timestep
}

func (s *Series) Count() int {
	return len(s.values)
}

func (s *Series) Empty() bool {
	return len(s.values) == 0
}

func (s *Series) Reset() {
	s.values = nil
}

func (s *Series) Timestep() float64 {
	return s.timestep
}

// SetInitialValue replaces the history with a single entry.
func (s *Series) SetInitialValue(value float64) {
	s.values = []float64{value}
}

// Calc exposes the transform for callers that need the instantaneous rate.
func (s *Series) Calc(value float64) float64 {
	return s.calc(value)
}
