package phenology

import (
	"github.com/chrissnell/maizsim/internal/tracker"
)

// Germination accumulates beta-function units from sowing; complete at 0.5.
type Germination struct {
	stage
}

func (s *Germination) Ready() bool { return true }

func (s *Germination) Over() bool { return s.done || s.Rate() >= 0.5 }

func (s *Germination) Finish() { s.pheno.transition(s.name) }

// Emergence starts after germination; complete at 1.0. Finishing
// re-baselines the GDD recorder so it counts degree days since emergence.
type Emergence struct {
	stage
	emergeGDD float64
}

func (s *Emergence) Ready() bool { return s.pheno.germination.Over() }

func (s *Emergence) Over() bool { return s.done || s.Rate() >= 1.0 }

func (s *Emergence) Finish() {
	s.pheno.transition(s.name)
	s.emergeGDD = s.pheno.gdd.Rate()
	s.pheno.gdd.Reset()
}

// LeafInitiation counts leaf primordia initiated at the shoot apex. It keeps
// initiating until the tassel is initiated.
type LeafInitiation struct {
	stage
	initialLeaves int
}

// Leaves is the number of initiated leaves including the embryonic ones.
func (s *LeafInitiation) Leaves() int {
	return s.initialLeaves + int(s.Rate())
}

func (s *LeafInitiation) Ready() bool { return s.pheno.germination.Over() }

func (s *LeafInitiation) Over() bool { return s.done || s.pheno.tasselInitiation.Over() }

// LeafAppearance counts visible leaf tips.
type LeafAppearance struct {
	stage
}

func (s *LeafAppearance) Leaves() int {
	return int(s.Rate())
}

func (s *LeafAppearance) Ready() bool {
	return s.Leaves() < s.pheno.leafInitiation.Leaves()
}

// Over requires a fixed final leaf number, otherwise appearance could
// briefly catch up with initiation and stop for good.
func (s *LeafAppearance) Over() bool {
	if s.done {
		return true
	}
	initiated := s.pheno.leafInitiation.Leaves()
	return s.pheno.tasselInitiation.Over() && initiated > 0 && s.Leaves() >= initiated
}

// TasselInitiation runs once the juvenile leaves are initiated and ends
// when enough extra leaves have been induced (Grant 1989).
type TasselInitiation struct {
	stage
	juvenileLeaves int
	appearedLeaves int
}

// AddedLeaves is the number of leaves initiated beyond the juvenile ones.
func (s *TasselInitiation) AddedLeaves() int {
	return s.pheno.leafInitiation.Leaves() - s.juvenileLeaves
}

// LeavesToInduce is the mean induction over the inductive phase, NaN before
// the first update.
func (s *TasselInitiation) LeavesToInduce() float64 {
	return s.Rate()
}

// AppearedLeaves is the visible leaf count snapshot taken at tassel
// initiation.
func (s *TasselInitiation) AppearedLeaves() int {
	return s.appearedLeaves
}

// LeavesToAppear counts the leaves still hidden in the whorl at tassel
// initiation.
func (s *TasselInitiation) LeavesToAppear() int {
	return s.pheno.leafInitiation.Leaves() - s.appearedLeaves
}

func (s *TasselInitiation) Ready() bool { return s.AddedLeaves() >= 0 }

func (s *TasselInitiation) Over() bool {
	// NaN compares false until the first update
	return s.done || float64(s.AddedLeaves()) >= s.LeavesToInduce()
}

func (s *TasselInitiation) Finish() {
	s.appearedLeaves = s.pheno.leafAppearance.Leaves()
	s.pheno.transition(s.name)
}

// Silking completes a configurable number of phyllochrons after the last
// leaf tip appears.
type Silking struct {
	stage
	phyllochrons float64
}

func (s *Silking) Ready() bool {
	return s.pheno.tasselInitiation.Over() && s.pheno.leafAppearance.Over()
}

func (s *Silking) Over() bool { return s.done || s.Rate() >= s.phyllochrons }

func (s *Silking) Finish() { s.pheno.transition(s.name) }

// GrainFillingInitiation marks the start of the linear grain filling phase,
// a fixed number of degree days after silking.
type GrainFillingInitiation struct {
	stage
	gdd float64
}

func (s *GrainFillingInitiation) Ready() bool { return s.pheno.silking.Over() }

func (s *GrainFillingInitiation) Over() bool { return s.done || s.Rate() >= s.gdd }

func (s *GrainFillingInitiation) Finish() { s.pheno.transition(s.name) }

// Maturity accumulates degree days from emergence up to the cultivar rating.
type Maturity struct {
	stage
	gddRating float64
}

func (s *Maturity) Ready() bool { return s.pheno.emergence.Over() }

func (s *Maturity) Over() bool { return s.done || s.Rate() >= s.gddRating }

func (s *Maturity) Finish() { s.pheno.transition(s.name) }

// Death is over once every initiated leaf has dropped.
type Death struct {
	stage
}

func (s *Death) Ready() bool { return true }

func (s *Death) Over() bool {
	return s.done || s.pheno.conditions.DroppedLeaves >= s.pheno.leafInitiation.Leaves()
}

func (s *Death) Finish() { s.pheno.transition(s.name) }

// phyllochronRecorder counts phyllochrons elapsed since tassel initiation.
type phyllochronRecorder struct {
	recorder
}

func (r *phyllochronRecorder) Ready() bool { return r.pheno.tasselInitiation.Over() }

func newStage(p *Phenology, name string, t tracker.Tracker) stage {
	return stage{name: name, pheno: p, tracker: t}
}
