package tracker

import "math"

// LeafInductionRate tracks the mean number of leaves to be induced during
// the inductive phase (Grant 1989, eq. 4). Unlike the accumulators it
// averages; its temperature input is itself a running mean seeded from the
// growing-season temperature the first time it is updated.
type LeafInductionRate struct {
	*Series

	growingSeason   Tracker
	temperature     *Series
	juvenileLeaves  float64
	dayLength       func() float64
	dayLengthActive bool
}

// NewLeafInductionRate builds the induction tracker. When dayLengthSensitive
// is false the photoperiod term is always zero. dayLength is read at each
// update and may be nil in that case.
func NewLeafInductionRate(growingSeason Tracker, juvenileLeaves float64, dayLengthSensitive bool, dayLength func() float64) *LeafInductionRate {
	l := &LeafInductionRate{
		growingSeason:   growingSeason,
		temperature:     NewTemperatureTracker(),
		juvenileLeaves:  juvenileLeaves,
		dayLength:       dayLength,
		dayLengthActive: dayLengthSensitive && dayLength != nil,
	}
	// Rate is a mean of leaf numbers, not a time integral.
	l.Series = New(l.induce, Mean, 1)
	return l
}

func (l *LeafInductionRate) induce(T float64) float64 {
	if l.temperature.Empty() && l.growingSeason != nil && !l.growingSeason.Empty() {
		l.temperature.Update(l.growingSeason.Rate())
	}
	l.temperature.Update(T)
	T = l.temperature.Rate()
	return InducedLeaves(T, l.juvenileLeaves, l.photoperiod())
}

func (l *LeafInductionRate) photoperiod() float64 {
	if !l.dayLengthActive {
		return math.NaN()
	}
	return l.dayLength()
}

// InducedLeaves is the instantaneous leaf-number induction for mean
// temperature T. A NaN dayLength disables the photoperiod term.
func InducedLeaves(T, juvenileLeaves, dayLength float64) float64 {
	byTemperature := math.Max(0, 13.6-1.89*T+0.081*T*T-0.001*T*T*T)
	byPhotoperiod := 0.0
	if !math.IsNaN(dayLength) {
		byPhotoperiod = math.Max(0, 0.1*(juvenileLeaves-10)*(dayLength-12.5))
	}
	return byTemperature + byPhotoperiod
}

// MeanTemperature is the induction-period mean temperature, NaN before the
// first update.
func (l *LeafInductionRate) MeanTemperature() float64 {
	return l.temperature.Rate()
}

func (l *LeafInductionRate) Reset() {
	l.Series.Reset()
	l.temperature.Reset()
}
