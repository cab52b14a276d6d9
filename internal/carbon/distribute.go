package carbon

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Sink is one leaf competing for leaf carbon.
type Sink struct {
	PotentialArea float64 // cm2
	Growing       bool
	Dead          bool
}

// Weighting scales a leaf's sink strength by its position or activity.
type Weighting func(rank int, s Sink) float64

// Uniform gives every live leaf the same weight.
func Uniform(int, Sink) float64 { return 1 }

// GrowingPoint favours leaves that are still expanding.
func GrowingPoint(_ int, s Sink) float64 {
	if s.Growing {
		return 1
	}
	return 0.5
}

// conservationTolerance is the relative mismatch accepted between the leaf
// carbon and the sum handed to individual leaves.
const conservationTolerance = 1e-9

// DistributeLeaf splits the leaf carbon among sinks in proportion to weight
// times potential area. Dead leaves get nothing. The result is all zero
// when no sink has any strength.
func (c *Carbon) DistributeLeaf(leaf float64, sinks []Sink, weight Weighting) []float64 {
	if weight == nil {
		weight = Uniform
	}
	shares := make([]float64, len(sinks))
	for i, s := range sinks {
		if s.Dead {
			continue
		}
		shares[i] = weight(i+1, s) * s.PotentialArea
	}
	total := floats.Sum(shares)
	if total <= 0 {
		return make([]float64, len(sinks))
	}
	floats.Scale(leaf/total, shares)

	if sum := floats.Sum(shares); !scalar.EqualWithinAbsOrRel(sum, leaf, 1e-12, conservationTolerance) {
		c.logger.Warnw("leaf carbon not conserved",
			"leaf", leaf,
			"distributed", sum,
		)
	}
	return shares
}
