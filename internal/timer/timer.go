// Package timer converts between calendar time and the day numbers used by
// the crop and soil input files, and steps the simulation clock.
package timer

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// USDAEpoch is the Julian date from which weather and initials files count
// days; 1900-03-01 is day 1.
const USDAEpoch = 2415078.5

// JulianDay returns the day number of t counted from USDAEpoch, rounded to
// the nearest day.
func JulianDay(t time.Time) int {
	return int(math.Round(julian.TimeToJD(t.UTC()) - USDAEpoch))
}

// FromJulianDay returns the UTC time at the start of day number jday, to
// the second. Fractional days map to the time of day.
func FromJulianDay(jday float64) time.Time {
	return julian.JDToTime(jday + USDAEpoch).UTC().Round(time.Second)
}

// Timer is the simulation clock.
type Timer struct {
	Time time.Time
	Step time.Duration
}

func New(start time.Time, step time.Duration) *Timer {
	return &Timer{Time: start, Step: step}
}

// NewFromJulianDay starts the clock at the beginning of day jday.
func NewFromJulianDay(jday int, step time.Duration) *Timer {
	return New(FromJulianDay(float64(jday)), step)
}

// Tick advances the clock by one step.
func (t *Timer) Tick() {
	t.Time = t.Time.Add(t.Step)
}

// JulianDay is the day number of the current time.
func (t *Timer) JulianDay() int {
	return JulianDay(t.Time)
}

// Before reports whether the clock has not yet reached the end of day
// jday, inclusive.
func (t *Timer) Before(jday int) bool {
	return t.Time.Before(FromJulianDay(float64(jday + 1)))
}

// StepDays is the step length in days.
func (t *Timer) StepDays() float64 {
	return t.Step.Hours() / 24
}

// StepMinutes is the step length in minutes.
func (t *Timer) StepMinutes() float64 {
	return t.Step.Minutes()
}
