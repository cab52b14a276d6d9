package gasexchange

import (
	"math"

	"github.com/chrissnell/maizsim/internal/atmosphere"
)

const (
	latentHeat    = 44000     // J mol-1 at 25C
	psychrometer  = 6.66e-4   // C-1
	heatCapacity  = 29.3      // J mol-1 C-1
	emissivity    = 0.97      // leaf
	stefanBoltz   = 5.6697e-8 // W m-2 K-4
	photonPerWatt = 4.55      // umol J-1 in the PAR band
)

// LeafTemperature solves the leaf energy budget (Campbell and Norman 1998,
// pp 224-225) for conductances gb and gv. With no transpiration supply jw
// the linearised Penman form is used; otherwise jw (mol m-2 s-1) sets the
// latent heat loss directly. Radiative terms cover both leaf sides.
func LeafTemperature(w atmosphere.Weather, gb, gv, jw float64) float64 {
	tk := w.TAir + kelvin

	gha := gb * (0.135 / 0.147)
	gr := 4 * emissivity * stefanBoltz * math.Pow(tk, 3) / heatCapacity * 2
	ghr := gha + gr
	thermalAir := emissivity * stefanBoltz * math.Pow(tk, 4) * 2
	psc1 := psychrometer * ghr / gv

	par := w.PFD / photonPerWatt
	// NIR assumed to carry the same energy as PAR
	nir := par
	const scattering = 0.15
	rAbs := (1-scattering)*par + scattering*nir + 2*(emissivity*stefanBoltz*math.Pow(tk, 4))

	if jw == 0 {
		vpd := w.VPD()
		slope := atmosphere.VaporPressureSlope(w.TAir, w.PAir)
		return w.TAir + psc1/(slope+psc1)*((rAbs-thermalAir)/(ghr*heatCapacity)-vpd/(psc1*w.PAir))
	}
	return w.TAir + (rAbs-thermalAir-latentHeat*jw)/(heatCapacity*ghr)
}

// Transpiration from a leaf at tLeaf through total conductance gv,
// mol m-2 s-1, floored at zero.
func Transpiration(w atmosphere.Weather, gv, tLeaf float64) float64 {
	ea := atmosphere.AmbientVaporPressure(w.TAir, w.RH)
	es := atmosphere.SaturationVaporPressure(tLeaf)
	et := gv * ((es - ea) / w.PAir) / (1 - (es+ea)/w.PAir)
	return math.Max(0, et)
}
