package tracker

import "math"

// Default cardinal temperatures for maize development, Kim et al. (2007).
const (
	DefaultTOpt = 32.1
	DefaultTMax = 43.7
	DefaultTMin = 0.0
)

// BetaParams configures the three-parameter asymmetric beta response
// of Yin et al. (1995) and Yan and Hunt (1999).
type BetaParams struct {
	RMax float64
	TOpt float64
	TMax float64
	TMin float64
}

// DefaultBeta returns cardinal temperatures with the given peak rate.
func DefaultBeta(rMax float64) BetaParams {
	return BetaParams{RMax: rMax, TOpt: DefaultTOpt, TMax: DefaultTMax, TMin: DefaultTMin}
}

// Beta evaluates the beta response at T. Zero outside (TMin, TMax), RMax at TOpt.
func (p BetaParams) Beta(T float64) float64 {
	if !(p.TMin < T && T < p.TMax) {
		return 0
	}
	if !(p.TMin < p.TOpt && p.TOpt < p.TMax) {
		return 0
	}
	const beta = 1.0
	alpha := beta * (p.TOpt - p.TMin) / (p.TMax - p.TOpt)
	f := (T - p.TMin) / (p.TOpt - p.TMin)
	g := (p.TMax - T) / (p.TMax - p.TOpt)
	return p.RMax * math.Pow(f, alpha) * math.Pow(g, beta)
}

// NewBetaFunc is an accumulator of beta-function growth units.
func NewBetaFunc(p BetaParams, timestep float64) *Series {
	return New(p.Beta, Sum, timestep)
}

// GDDParams configures heat-unit accumulation (Birch et al. 2003).
// Use math.Inf(1) for Opt or Max to disable the cap or the ceiling.
type GDDParams struct {
	Base float64
	Opt  float64
	Max  float64
}

// DefaultGDD is base 8, capped at 34, no ceiling.
var DefaultGDD = GDDParams{Base: 8.0, Opt: 34.0, Max: math.Inf(1)}

// GDD returns min(T, Opt) - Base, with temperatures at or above Max
// contributing nothing.
func (p GDDParams) GDD(T float64) float64 {
	T = math.Min(T, p.Opt)
	if T >= p.Max {
		T = p.Base
	}
	return T - p.Base
}

// NewGrowingDegreeDays is an accumulator of degree days.
func NewGrowingDegreeDays(p GDDParams, timestep float64) *Series {
	return New(p.GDD, Sum, timestep)
}

// Q10Params configures an exponential temperature multiplier normalised to
// 1 at TOpt.
type Q10Params struct {
	Q10  float64
	TOpt float64
}

func (p Q10Params) Q10Rate(T float64) float64 {
	return math.Pow(p.Q10, (T-p.TOpt)/10)
}

// NewQ10Func accumulates Q10-scaled time, used for leaf aging and senescence.
func NewQ10Func(p Q10Params, timestep float64) *Series {
	return New(p.Q10Rate, Sum, timestep)
}

// NewVegetativeGTI accumulates the vegetative general thermal index b*T² + c*T³.
func NewVegetativeGTI(timestep float64) *Series {
	const b, c = 0.043177, -0.000894
	return New(func(T float64) float64 {
		return b*T*T + c*T*T*T
	}, Sum, timestep)
}

// NewReproductiveGTI accumulates the general thermal index of
// Stewart et al. (1998), a + b*T².
func NewReproductiveGTI(timestep float64) *Series {
	const a, b = 5.3581, 0.011178
	return New(func(T float64) float64 {
		return a + b*T*T
	}, Sum, timestep)
}

// NewWaterStress accumulates stress duration from a 0..1 water effect,
// scale*(1-effect) per day.
func NewWaterStress(scale float64, timestep float64) *Series {
	return New(func(effect float64) float64 {
		return scale * (1 - effect)
	}, Sum, timestep)
}
