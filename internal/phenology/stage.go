package phenology

import (
	"github.com/chrissnell/maizsim/internal/tracker"
)

// Stage is one developmental phase driven by a tracker. A stage is updated
// only while Ready() && !Over(); Finish runs once, on the step Over() first
// turns true.
type Stage interface {
	Name() string
	Ready() bool
	Over() bool
	Update(T float64)
	Finish()
	Rate() float64
	Tracker() tracker.Tracker

	finished() bool
	markFinished()
}

// stage holds what every concrete stage shares. Once a stage has finished it
// reports Over() regardless of its threshold predicate.
type stage struct {
	name    string
	pheno   *Phenology
	tracker tracker.Tracker
	done    bool
}

func (s *stage) Name() string { return s.name }

func (s *stage) Update(T float64) { s.tracker.Update(T) }

func (s *stage) Rate() float64 { return s.tracker.Rate() }

func (s *stage) Tracker() tracker.Tracker { return s.tracker }

func (s *stage) Finish() {}

func (s *stage) finished() bool { return s.done }

func (s *stage) markFinished() { s.done = true }

// recorder accumulates a thermal total for the whole season. Always ready,
// never over.
type recorder struct {
	stage
}

func (r *recorder) Ready() bool { return true }

func (r *recorder) Over() bool { return false }

// Reset clears the recorded total.
func (r *recorder) Reset() { r.tracker.Reset() }
