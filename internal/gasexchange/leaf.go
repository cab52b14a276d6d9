// Package gasexchange couples C4 photosynthesis, stomatal conductance and
// the leaf energy balance for a single leaf (von Caemmerer 2000; Ball et al.
// 1987; Campbell and Norman 1998).
package gasexchange

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/atmosphere"
	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/internal/solver"
)

// Leaf is the leaf side of a gas-exchange call.
type Leaf struct {
	Width          float64 // cm
	WaterPotential float64 // MPa
	Nitrogen       float64 // g m-2
	ETSupply       float64 // mol m-2 s-1, zero when unknown
}

// DefaultLeafWidth is a typical maize leaf width in cm.
const DefaultLeafWidth = 5.0

// Result is the converged state of one leaf. Nothing is kept between calls.
type Result struct {
	ANet   float64 // umol CO2 m-2 s-1
	AGross float64 // umol CO2 m-2 s-1
	Rd     float64 // umol CO2 m-2 s-1
	TLeaf  float64 // C
	Gs     float64 // mol H2O m-2 s-1
	Gb     float64 // mol H2O m-2 s-1
	ET     float64 // mol H2O m-2 s-1
	Ci     float64 // ubar, mesophyll CO2
	VPD    float64 // kPa

	Iterations int
	Converged  bool
}

// Observer is told about every solve, e.g. to count non-convergence.
type Observer interface {
	ObserveExchange(r Result)
}

// Model solves leaf gas exchange. The zero value is not usable; call New.
type Model struct {
	Stomata        Stomata
	Photosynthesis PhotosynthesisParams

	// AssimilationTolerance is the bracket width at which the assimilation
	// fixed point is accepted, umol m-2 s-1.
	AssimilationTolerance float64

	// TemperatureTolerance is the largest accepted energy balance residual, C.
	TemperatureTolerance float64

	MaxIterations int

	logger   *zap.SugaredLogger
	observer Observer
}

// New returns a model with the maize calibration. Either argument may be nil.
func New(logger *zap.SugaredLogger, observer Observer) *Model {
	return &Model{
		Stomata:               DefaultStomata(),
		Photosynthesis:        DefaultPhotosynthesisParams(),
		AssimilationTolerance: 1e-6,
		TemperatureTolerance:  1e-3,
		MaxIterations:         solver.DefaultMaxIterations,
		logger:                log.OrNop(logger),
		observer:              observer,
	}
}

// assimilation is the inner fixed point at a given leaf temperature.
type assimilation struct {
	aNet       float64
	rd         float64
	cm         float64
	stomata    StomatalState
	iterations int
	converged  bool
}

// Exchange solves the coupled system for one leaf. It fails only on
// unusable input; a solve that does not converge returns its best estimate
// with Converged set to false.
func (m *Model) Exchange(w atmosphere.Weather, leaf Leaf) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid leaf weather: %w", err)
	}
	if math.IsNaN(leaf.WaterPotential) || math.IsNaN(leaf.Nitrogen) || math.IsNaN(leaf.ETSupply) {
		return Result{}, fmt.Errorf("invalid leaf state: %+v", leaf)
	}
	width := leaf.Width
	if width <= 0 {
		width = DefaultLeafWidth
	}
	gb := BoundaryLayerConductance(w.Wind, width/100)

	residual := func(tLeaf float64) float64 {
		a := m.assimilate(w, leaf, gb, tLeaf)
		return tLeaf - LeafTemperature(w, gb, a.stomata.TotalConductanceH2O(), leaf.ETSupply)
	}

	tLeaf, iterations := m.solveTemperature(w, residual)

	// final state at the accepted temperature
	a := m.assimilate(w, leaf, gb, tLeaf)
	tResidual := residual(tLeaf)
	gv := a.stomata.TotalConductanceH2O()

	r := Result{
		ANet:       a.aNet,
		AGross:     math.Max(0, a.aNet+a.rd),
		Rd:         a.rd,
		TLeaf:      tLeaf,
		Gs:         a.stomata.Gs,
		Gb:         gb,
		ET:         Transpiration(w, gv, tLeaf),
		Ci:         a.cm,
		VPD:        w.VPD(),
		Iterations: iterations + a.iterations,
		Converged:  a.converged && math.Abs(tResidual) <= m.TemperatureTolerance,
	}

	m.logger.Debugw("leaf gas exchange",
		"pfd", w.PFD,
		"t_air", w.TAir,
		"t_leaf", r.TLeaf,
		"a_net", r.ANet,
		"gs", r.Gs,
		"hs", a.stomata.Hs,
		"cs", a.stomata.Cs,
		"lwp", leaf.WaterPotential,
		"iterations", r.Iterations,
	)
	if !r.Converged {
		m.logger.Warnw("leaf gas exchange did not converge",
			"pfd", w.PFD,
			"t_air", w.TAir,
			"t_leaf", r.TLeaf,
			"temperature_residual", tResidual,
			"a_net", r.ANet,
		)
	}
	if m.observer != nil {
		m.observer.ObserveExchange(r)
	}
	return r, nil
}

// solveTemperature finds the leaf temperature reproduced by the energy
// balance. Nelder-Mead on the squared residual comes first; a bracketed
// root search is the fallback when it stalls.
func (m *Model) solveTemperature(w atmosphere.Weather, residual func(float64) float64) (float64, int) {
	cost := func(t float64) float64 {
		r := residual(t)
		return r * r
	}
	tol := m.TemperatureTolerance
	best, err := solver.Minimize1D(cost, w.TAir, tol*tol*1e-4, m.MaxIterations)
	if err == nil && math.Sqrt(best.F) <= tol {
		return best.X, best.Iterations
	}

	lo, hi, err := solver.Bracket(residual, w.TAir-10, w.TAir+10, 20)
	if err != nil {
		return best.X, best.Iterations
	}
	root, err := solver.Brent(residual, lo, hi, tol*1e-2, m.MaxIterations)
	if err != nil && !errors.Is(err, solver.ErrMaxIterations) {
		return best.X, best.Iterations
	}
	if math.Abs(root.F) < math.Sqrt(best.F) {
		return root.X, best.Iterations + root.Iterations
	}
	return best.X, best.Iterations + root.Iterations
}

// assimilate finds the net assimilation rate that, fed through stomatal
// conductance and the mesophyll CO2 balance, reproduces itself.
func (m *Model) assimilate(w atmosphere.Weather, leaf Leaf, gb, tLeaf float64) assimilation {
	i2 := AbsorbedPSII(w.PFD)
	p := w.PAir / 100
	ca := w.CO2 * p

	mesophyll := func(aNet float64) (float64, StomatalState) {
		st := m.Stomata.Conductance(gb, w.CO2, aNet, w.RH, leaf.WaterPotential)
		cm := ca - aNet*st.TotalResistanceCO2()*p
		return clip(cm, 0, 2*ca), st
	}
	next := func(aNet float64) float64 {
		cm, _ := mesophyll(aNet)
		return m.Photosynthesis.C4(i2, cm, tLeaf, leaf.Nitrogen).ANet
	}
	residual := func(aNet float64) float64 {
		return aNet - next(aNet)
	}

	root, err := solver.Brent(residual, -50, 150, m.AssimilationTolerance, m.MaxIterations)
	if errors.Is(err, solver.ErrNotBracketed) {
		var lo, hi float64
		lo, hi, err = solver.Bracket(residual, -50, 150, 20)
		if err == nil {
			root, err = solver.Brent(residual, lo, hi, m.AssimilationTolerance, m.MaxIterations)
		} else {
			root, err = solver.FixedPoint(next, 0, m.AssimilationTolerance, m.MaxIterations)
		}
	}

	cm, st := mesophyll(root.X)
	return assimilation{
		aNet:       root.X,
		rd:         m.Photosynthesis.DarkRespiration(tLeaf),
		cm:         cm,
		stomata:    st,
		iterations: root.Iterations,
		converged:  err == nil,
	}
}
