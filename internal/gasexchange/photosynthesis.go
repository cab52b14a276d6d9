package gasexchange

import (
	"math"
)

// PhotosynthesisParams are the C4 biochemical constants of von Caemmerer
// (2000) calibrated for PI3733 (Kim et al. 2006, 2007), normalised to 25C.
type PhotosynthesisParams struct {
	// activation energies, J mol-1
	EaVp float64
	EaVc float64
	Eaj  float64
	Ear  float64

	Hj float64
	Sj float64

	Kp25 float64 // ubar

	Vpm25 float64
	Vcm25 float64
	Jm25  float64
	Rd25  float64
}

// DefaultPhotosynthesisParams returns the maize calibration.
func DefaultPhotosynthesisParams() PhotosynthesisParams {
	return PhotosynthesisParams{
		EaVp:  75100,
		EaVc:  55900,
		Eaj:   32800,
		Ear:   39800,
		Hj:    220000,
		Sj:    702.6,
		Kp25:  80,
		Vpm25: 70,
		Vcm25: 50,
		Jm25:  300,
		Rd25:  2,
	}
}

const (
	gasConstant = 8.314 // J K-1 mol-1
	kelvin      = 273.0
	tRef        = 25.0

	pepRegeneration  = 80.0  // umol m-2 s-1
	bundleSheathG    = 0.003 // mol m-2 s-1
	electronFraction = 0.4
	curvature        = 0.5
	colimitation     = 0.99
)

// Arrhenius scales a rate at 25C to leaf temperature T.
func Arrhenius(ea, T float64) float64 {
	return math.Exp(ea * (T - tRef) / ((tRef + kelvin) * gasConstant * (T + kelvin)))
}

// NitrogenEffect limits capacity by leaf nitrogen content n (g m-2),
// Vos et al. (2005); zero at or below 0.25.
func NitrogenEffect(n float64) float64 {
	const s, n0 = 2.9, 0.25
	return 2/(1+math.Exp(-s*(math.Max(n0, n)-n0))) - 1
}

// DarkRespiration at leaf temperature T, umol m-2 s-1.
func (p PhotosynthesisParams) DarkRespiration(T float64) float64 {
	return p.Rd25 * Arrhenius(p.Ear, T)
}

// MaxElectronTransport is Jmax with a high-temperature deactivation term.
func (p PhotosynthesisParams) MaxElectronTransport(T, n float64) float64 {
	tk := T + kelvin
	tbk := tRef + kelvin
	return p.Jm25 * NitrogenEffect(n) * Arrhenius(p.Eaj, T) *
		(1 + math.Exp((p.Sj*tbk-p.Hj)/(gasConstant*tbk))) /
		(1 + math.Exp((p.Sj*tk-p.Hj)/(gasConstant*tk)))
}

// Assimilation is the C4 net CO2 assimilation for light absorbed by PSII
// i2, mesophyll CO2 cm (ubar), leaf temperature T and nitrogen n.
type Assimilation struct {
	ANet float64
	Ac   float64 // enzyme limited
	Aj   float64 // electron transport limited
	Rd   float64
}

// C4 computes net assimilation, smoothing the enzyme- and light-limited
// rates.
func (p PhotosynthesisParams) C4(i2, cm, T, n float64) Assimilation {
	rd := p.DarkRespiration(T)
	rm := 0.5 * rd

	nEffect := NitrogenEffect(n)
	vpmax := p.Vpm25 * nEffect * Arrhenius(p.EaVp, T)
	vcmax := p.Vcm25 * nEffect * Arrhenius(p.EaVc, T)
	jmax := p.MaxElectronTransport(T, n)

	vp := math.Max(math.Min(cm*vpmax/(cm+p.Kp25), pepRegeneration), 0)
	ac := math.Min(vp+bundleSheathG*cm-rm, vcmax-rd)

	j := smallerRoot(curvature, -(i2 + jmax), i2*jmax)
	aj := math.Min(electronFraction*j/2-rm+bundleSheathG*cm, (1-electronFraction)*j/3-rd)

	sum := ac + aj
	aNet := (sum - math.Sqrt(sum*sum-4*colimitation*ac*aj)) / (2 * colimitation)
	return Assimilation{ANet: aNet, Ac: ac, Aj: aj, Rd: rd}
}

// AbsorbedPSII converts incident PFD to light useful for PSII, allowing for
// leaf scattering and a spectral correction of 0.15 each.
func AbsorbedPSII(pfd float64) float64 {
	const scattering, spectral = 0.15, 0.15
	return pfd * (1 - scattering) * (1 - spectral) / 2
}
