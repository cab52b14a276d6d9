// Package morphology holds the plant's organs: leaves and stems grouped in
// nodal units, the ear and the root system.
package morphology

import (
	"math"

	"github.com/chrissnell/maizsim/internal/tracker"
)

// Development is the part of phenology organs read every step.
// *phenology.Phenology satisfies it.
type Development interface {
	Timestep() float64
	Temperature() float64
	GrowingTemperature() float64
	OptimalTemperature() float64
	LeavesAppeared() int
	LeavesGeneric() int
	LeavesPotential() int
}

// organGDD accumulates organ thermal time without an optimum cap.
var organGDD = tracker.GDDParams{Base: 8.0, Opt: math.Inf(1), Max: 43.3}

// Organ is the state every organ shares.
type Organ struct {
	dev          Development
	gdd          *tracker.Series
	temperature  float64 // C
	carbohydrate float64 // g CH2O
	nitrogen     float64 // mg
}

func newOrgan(dev Development) Organ {
	return Organ{
		dev:         dev,
		gdd:         tracker.NewGrowingDegreeDays(organGDD, dev.Timestep()),
		temperature: 25.0,
	}
}

// Age is the chronological age in days.
func (o *Organ) Age() float64 { return o.gdd.Period() }

// PhysiologicalAge is the thermal age in degree days.
func (o *Organ) PhysiologicalAge() float64 { return o.gdd.Rate() }

func (o *Organ) Temperature() float64 { return o.temperature }

// Mass is the dry mass in g, tracked as carbohydrate.
func (o *Organ) Mass() float64 { return o.carbohydrate }

func (o *Organ) SetMass(mass float64) { o.carbohydrate = mass }

func (o *Organ) Nitrogen() float64 { return o.nitrogen }

func (o *Organ) ImportCarbohydrate(amount float64) { o.carbohydrate += amount }

func (o *Organ) ImportNitrogen(amount float64) { o.nitrogen += amount }

func (o *Organ) update() {
	o.temperature = o.dev.Temperature()
	o.gdd.Update(o.temperature)
}

// Stem is the internode of one nodal unit.
type Stem struct {
	Organ
	Rank     int
	Length   float64 // cm
	Diameter float64 // cm
}

func (s *Stem) Update() { s.update() }

// Ear collects husk, cob and grain carbon.
type Ear struct{ Organ }

func NewEar(dev Development) *Ear { return &Ear{Organ: newOrgan(dev)} }

func (e *Ear) Update() { e.update() }

// Root is the whole root system; its growth happens in the soil model.
type Root struct{ Organ }

func NewRoot(dev Development) *Root { return &Root{Organ: newOrgan(dev)} }

func (r *Root) Update() { r.update() }

// NodalUnit is a leaf and the stem segment it sits on.
type NodalUnit struct {
	Rank int
	Leaf *Leaf
	Stem *Stem
}

// NewNodalUnit creates unit rank, counted from 1 at the base.
func NewNodalUnit(dev Development, rank int) *NodalUnit {
	return &NodalUnit{
		Rank: rank,
		Leaf: NewLeaf(dev, rank),
		Stem: &Stem{Organ: newOrgan(dev), Rank: rank},
	}
}

func (n *NodalUnit) Mass() float64 {
	return n.Leaf.Mass() + n.Stem.Mass()
}

// Update advances the leaf, given the predawn leaf water potential in MPa,
// and the stem.
func (n *NodalUnit) Update(predawnLWP float64) {
	n.Leaf.Update(predawnLWP)
	n.Stem.Update()
}
