// Package soil stands in for a soil model when none is coupled. It keeps
// the plant's roots watered and fed and follows the air for temperature.
package soil

import (
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/maizsim/internal/types"
)

// Model is the soil side of the plant-soil exchange. Prepare returns the
// state the plant sees this step; Update books what the plant handed back.
type Model interface {
	Prepare(w types.WeatherState) types.SoilState
	Update(f types.PlantFeedback, transpiration float64)
}

// Params fix the water status and rooting of a Prescribed soil.
type Params struct {
	LeafWaterPotential        float64 // MPa
	PredawnLeafWaterPotential float64 // MPa
	InitialRootWeight         float64 // g plant-1
	MaxRootDepth              float64 // cm
	AvailableWater            float64 // cm plant-1
	TimestepMinutes           float64
}

// Prescribed is a soil that never limits the plant. Roots get the carbon
// they ask for, water supply matches the last transpiration and nitrogen
// uptake matches the last demand. Soil temperature is the mean air
// temperature of the last day.
type Prescribed struct {
	state       types.SoilState
	stepsPerDay float64
	air         []float64
	next        int
}

var _ Model = (*Prescribed)(nil)

// NewPrescribed sets up the soil before the first step.
func NewPrescribed(p Params) *Prescribed {
	stepsPerDay := 24 * 60 / p.TimestepMinutes
	return &Prescribed{
		stepsPerDay: stepsPerDay,
		air:         make([]float64, 0, int(stepsPerDay)),
		state: types.SoilState{
			LeafWaterPotential:        p.LeafWaterPotential,
			PredawnLeafWaterPotential: p.PredawnLeafWaterPotential,
			TotalRootWeight:           p.InitialRootWeight,
			MaxRootDepth:              p.MaxRootDepth,
			AvailableWater:            p.AvailableWater,
		},
	}
}

// Prepare folds this step's air temperature into the soil temperature.
func (s *Prescribed) Prepare(w types.WeatherState) types.SoilState {
	if len(s.air) < cap(s.air) {
		s.air = append(s.air, w.TAir)
	} else {
		s.air[s.next] = w.TAir
		s.next = (s.next + 1) % len(s.air)
	}
	s.state.TSoil = stat.Mean(s.air, nil)
	return s.state
}

// Update grants the plant's root carbon request and sets next step's water
// and nitrogen supply to this step's use.
func (s *Prescribed) Update(f types.PlantFeedback, transpiration float64) {
	supply := f.RootCarbonRequest / s.stepsPerDay
	s.state.MinRootCarbonSupply = supply
	s.state.ActualRootCarbonSupply = supply
	s.state.MaxRootCarbonSupply = f.RootCarbonMax / s.stepsPerDay
	s.state.TotalRootWeight += supply

	s.state.ETSupply = transpiration
	s.state.NitrogenUptake = f.NitrogenDemand
}

// State returns the current soil state.
func (s *Prescribed) State() types.SoilState {
	return s.state
}
