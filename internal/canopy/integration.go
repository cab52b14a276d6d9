package canopy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/maizsim/internal/atmosphere"
	"github.com/chrissnell/maizsim/internal/gasexchange"
)

// Molar masses used for unit conversion, g mol-1.
const (
	MolarMassC    = 12.0
	MolarMassCO2  = 44.0
	MolarMassCH2O = 30.0
	MolarMassH2O  = 18.0
)

const molPerUmol = 1e-6

// Integrator runs the leaf model once for sunlit and once for shaded
// foliage and scales the results to a plant.
type Integrator struct {
	Model           *gasexchange.Model
	PlantDensity    float64 // plants m-2
	TimestepMinutes float64
}

// Exchange is one canopy gas-exchange step. Per-area rates are LAI
// weighted sums per m2 ground; per-plant amounts cover a whole timestep.
type Exchange struct {
	Sunlit    gasexchange.Result
	Shaded    gasexchange.Result
	SunlitLAI float64
	ShadedLAI float64
	SunlitPFD float64
	ShadedPFD float64

	plantDensity float64
	stepSeconds  float64
}

// Integrate solves sunlit and shaded leaves with their own PFD; every other
// input is shared. The PFD in w is ignored.
func (c *Integrator) Integrate(w atmosphere.Weather, leaf gasexchange.Leaf, rad *Radiation) (Exchange, error) {
	if c.PlantDensity <= 0 || c.TimestepMinutes <= 0 {
		return Exchange{}, fmt.Errorf("plant density %v and timestep %v must be positive", c.PlantDensity, c.TimestepMinutes)
	}
	e := Exchange{
		SunlitLAI:    rad.SunlitLAI(),
		ShadedLAI:    rad.ShadedLAI(),
		SunlitPFD:    rad.SunlitPFD(),
		ShadedPFD:    rad.ShadedPFD(),
		plantDensity: c.PlantDensity,
		stepSeconds:  60 * c.TimestepMinutes,
	}

	var err error
	w.PFD = e.SunlitPFD
	if e.Sunlit, err = c.Model.Exchange(w, leaf); err != nil {
		return Exchange{}, fmt.Errorf("sunlit leaves: %w", err)
	}
	w.PFD = e.ShadedPFD
	if e.Shaded, err = c.Model.Exchange(w, leaf); err != nil {
		return Exchange{}, fmt.Errorf("shaded leaves: %w", err)
	}
	return e, nil
}

// ETSupply converts the soil's water supply in g plant-1 per step to the
// leaf-area flux the leaf model takes, mol m-2 s-1. Zero without leaves.
func (c *Integrator) ETSupply(gramsPerPlant, lai float64) float64 {
	if lai <= 0 || c.TimestepMinutes <= 0 {
		return 0
	}
	return gramsPerPlant * c.PlantDensity / (60 * c.TimestepMinutes) / MolarMassH2O / lai
}

func (e Exchange) LAI() float64 {
	return e.SunlitLAI + e.ShadedLAI
}

func (e Exchange) weighted(sunlit, shaded float64) float64 {
	return floats.Dot([]float64{e.SunlitLAI, e.ShadedLAI}, []float64{sunlit, shaded})
}

// GrossCO2 in umol CO2 m-2 ground s-1.
func (e Exchange) GrossCO2() float64 {
	return e.weighted(e.Sunlit.AGross, e.Shaded.AGross)
}

// NetCO2 in umol CO2 m-2 ground s-1.
func (e Exchange) NetCO2() float64 {
	return e.weighted(e.Sunlit.ANet, e.Shaded.ANet)
}

// TranspirationH2O in mol H2O m-2 ground s-1.
func (e Exchange) TranspirationH2O() float64 {
	return e.weighted(e.Sunlit.ET, e.Shaded.ET)
}

// perPlantStep is zero for an Exchange that was never integrated.
func (e Exchange) perPlantStep(perGround float64) float64 {
	if e.plantDensity <= 0 {
		return 0
	}
	return perGround / e.plantDensity * e.stepSeconds
}

// Assimilation is gross uptake in g CO2 plant-1 per step.
func (e Exchange) Assimilation() float64 {
	return e.perPlantStep(e.GrossCO2()) * molPerUmol * MolarMassCO2
}

// Gross is gross assimilate in g CH2O plant-1 per step.
func (e Exchange) Gross() float64 {
	return e.perPlantStep(e.GrossCO2()) * molPerUmol * MolarMassCH2O
}

// Net is net assimilate in g CH2O plant-1 per step.
func (e Exchange) Net() float64 {
	return e.perPlantStep(e.NetCO2()) * molPerUmol * MolarMassCH2O
}

// Transpiration in g H2O plant-1 per step.
func (e Exchange) Transpiration() float64 {
	return e.perPlantStep(e.TranspirationH2O()) * MolarMassH2O
}

// LeafTemperature is the LAI weighted mean, or the sunlit leaf temperature
// when there is no foliage.
func (e Exchange) LeafTemperature() float64 {
	lai := e.LAI()
	if lai <= 0 {
		return e.Sunlit.TLeaf
	}
	return e.weighted(e.Sunlit.TLeaf, e.Shaded.TLeaf) / lai
}

// Conductance is the mean stomatal conductance over the canopy. It is zero
// whenever either fraction has no leaf area, which is the case every night.
func (e Exchange) Conductance() float64 {
	if e.SunlitLAI == 0 || e.ShadedLAI == 0 {
		return 0
	}
	return math.Max(0, e.weighted(e.Sunlit.Gs, e.Shaded.Gs)/e.LAI())
}

// VPD around sunlit leaves, kPa.
func (e Exchange) VPD() float64 {
	return math.Max(0, e.Sunlit.VPD)
}

// Converged reports whether both leaf solves converged.
func (e Exchange) Converged() bool {
	return e.Sunlit.Converged && e.Shaded.Converged
}
