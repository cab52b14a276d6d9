package gasexchange

import (
	"math"
)

// Stomata holds the Ball-Berry-Leuning parameters for a C4 leaf
// (Sellers et al. 1997).
type Stomata struct {
	G0 float64 // residual conductance, mol m-2 s-1
	G1 float64 // slope
}

// DefaultStomata returns the C4 values g0=0.04, g1=4.
func DefaultStomata() Stomata {
	return Stomata{G0: 0.04, G1: 4.0}
}

const (
	// co2Compensation floors the leaf-surface CO2 concentration.
	co2Compensation = 10.0

	minSurfaceHumidity = 0.3
	maxSurfaceHumidity = 1.0
)

// BoundaryLayerConductance for water vapour in mol m-2 s-1 for a leaf of
// the given width (m), both sides, outdoors (Campbell and Norman 1998 p 109).
// Wind is floored at 0.1 m s-1.
func BoundaryLayerConductance(wind, leafWidth float64) float64 {
	// amphistomatous, 1:1 adaxial:abaxial
	const sr = 1.0
	ratio := (sr + 1) * (sr + 1) / (sr*sr + 1)
	d := leafWidth * 0.72
	return 1.4 * 0.147 * math.Sqrt(math.Max(0.1, wind)/d) * ratio
}

// LeafWaterPotentialEffect is the stomatal sensitivity multiplier m for leaf
// water potential lwp (MPa), Tuzet et al. (2003). m(-1.2) = 0.5.
func LeafWaterPotentialEffect(lwp float64) float64 {
	const sf, phyf = 2.3, -1.2
	return (1 + math.Exp(sf*phyf)) / (1 + math.Exp(sf*(phyf-lwp)))
}

// StomatalState is the stomatal solution for one assumed assimilation rate.
type StomatalState struct {
	Gs float64 // stomatal conductance to water vapour, mol m-2 s-1
	Gb float64 // boundary layer conductance, mol m-2 s-1
	Hs float64 // relative humidity at the leaf surface
	Cs float64 // CO2 at the leaf surface, umol mol-1
}

// Conductance solves the Ball-Berry-Leuning system for net assimilation
// aNet, given boundary layer conductance gb, ambient CO2 and humidity rh.
func (s Stomata) Conductance(gb, co2, aNet, rh, lwp float64) StomatalState {
	cs := co2 - 1.37*aNet/gb
	if cs <= co2Compensation {
		cs = co2Compensation + 1
	}

	m := LeafWaterPotentialEffect(lwp)
	a := m * s.G1 * aNet / cs
	b := s.G0 + gb - m*s.G1*aNet/cs
	c := -rh*gb - s.G0
	hs := clip(largerRoot(a, b, c), minSurfaceHumidity, maxSurfaceHumidity)

	gs := math.Max(s.G0, s.G0+s.G1*m*aNet*hs/cs)
	return StomatalState{Gs: gs, Gb: gb, Hs: hs, Cs: cs}
}

// TotalConductanceH2O combines stomatal and boundary layer conductances in
// series.
func (st StomatalState) TotalConductanceH2O() float64 {
	return st.Gs * st.Gb / (st.Gs + st.Gb)
}

// TotalResistanceCO2 in m2 s mol-1, scaling vapour conductances to CO2.
func (st StomatalState) TotalResistanceCO2() float64 {
	return 1.37/st.Gb + 1.6/st.Gs
}

// largerRoot returns the larger real root of a*x² + b*x + c, the real part
// when the roots are complex, and the single root when a is zero.
func largerRoot(a, b, c float64) float64 {
	if a == 0 {
		if b == 0 {
			return math.NaN()
		}
		return -c / b
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return -b / (2 * a)
	}
	sq := math.Sqrt(disc)
	return math.Max((-b+sq)/(2*a), (-b-sq)/(2*a))
}

// smallerRoot is the counterpart of largerRoot.
func smallerRoot(a, b, c float64) float64 {
	if a == 0 {
		if b == 0 {
			return math.NaN()
		}
		return -c / b
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return -b / (2 * a)
	}
	sq := math.Sqrt(disc)
	return math.Min((-b+sq)/(2*a), (-b-sq)/(2*a))
}

func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
