// Package plant ties phenology, gas exchange, carbon and nitrogen
// allocation and the organs into one maize plant advanced a step at a time.
package plant

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/atmosphere"
	"github.com/chrissnell/maizsim/internal/canopy"
	"github.com/chrissnell/maizsim/internal/carbon"
	"github.com/chrissnell/maizsim/internal/gasexchange"
	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/internal/morphology"
	"github.com/chrissnell/maizsim/internal/nitrogen"
	"github.com/chrissnell/maizsim/internal/phenology"
	"github.com/chrissnell/maizsim/internal/types"
	"github.com/chrissnell/maizsim/pkg/solar"
)

// ErrInvalidWeather is returned when the driver hands the plant weather or
// soil data no sub-model can use. The run cannot continue.
var ErrInvalidWeather = errors.New("invalid weather or soil data")

// Seed carbon split used to size the primordia.
const (
	initialShootRatio = 0.7
	initialLeafRatio  = 0.9
)

// soilTemperatureLeaves is the leaf count below which the growing point is
// still underground and development follows soil temperature.
const soilTemperatureLeaves = 9

// Canopy cover and root supply coefficients of the soil coupling.
const (
	coverExtinction      = 0.79
	grainFillingShootMax = 0.75
)

// Observer receives per-step diagnostics, e.g. for metrics.
type Observer interface {
	gasexchange.Observer
	ObserveSupply(b carbon.Branch)
}

// Plant is one simulated maize plant. It is not safe for concurrent use.
type Plant struct {
	config   Config
	logger   *zap.SugaredLogger
	observer Observer
	step     time.Duration

	Pheno    *phenology.Phenology
	Carbon   *carbon.Carbon
	Nitrogen *nitrogen.Nitrogen

	canopy *canopy.Integrator

	nodalUnits []*morphology.NodalUnit
	ear        *morphology.Ear
	root       *morphology.Root // nil until germination
	seed       float64          // g left in the seed

	weather types.WeatherState
	soil    types.SoilState

	exchange    canopy.Exchange
	allocation  carbon.Allocation
	branch      carbon.Branch
	maintenance float64

	nitrogenDemand float64
	oldShootPerM2  float64
	feedback       types.PlantFeedback
}

// New sows a plant. The seed's carbon is in the pool and its first leaf
// primordia are in place. Logger and observer may be nil.
func New(cfg Config, logger *zap.SugaredLogger, observer Observer) (*Plant, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid plant configuration: %w", err)
	}
	logger = log.OrNop(logger)

	p := &Plant{
		config:   cfg,
		logger:   logger,
		observer: observer,
		step:     time.Duration(cfg.TimestepMinutes() * float64(time.Minute)),
		Pheno:    phenology.New(cfg.Phenology, logger.Named("phenology")),
		Carbon:   carbon.New(cfg.SeedMass, cfg.Carbon, logger.Named("carbon")),
		Nitrogen: nitrogen.New(cfg.SeedMass),
		canopy: &canopy.Integrator{
			Model:           gasexchange.New(logger.Named("gasexchange"), observer),
			PlantDensity:    cfg.PlantDensity,
			TimestepMinutes: cfg.TimestepMinutes(),
		},
		seed: cfg.SeedMass,
	}
	p.ear = morphology.NewEar(p.Pheno)
	p.initiatePrimordia()
	return p, nil
}

func (p *Plant) initiatePrimordia() {
	mass := p.seed * initialShootRatio * initialLeafRatio / float64(p.config.Primordia)
	for rank := 1; rank <= p.config.Primordia; rank++ {
		nu := morphology.NewNodalUnit(p.Pheno, rank)
		nu.Leaf.SetMass(mass)
		p.nodalUnits = append(p.nodalUnits, nu)
	}
}

// initiateLeaves adds a nodal unit for every newly initiated leaf.
func (p *Plant) initiateLeaves() {
	for rank := len(p.nodalUnits) + 1; rank <= p.Pheno.LeavesInitiated(); rank++ {
		p.nodalUnits = append(p.nodalUnits, morphology.NewNodalUnit(p.Pheno, rank))
	}
}

// initiateRoot starts the root system from the roots the soil model
// already holds, so root mass does not jump when plant carbon arrives.
func (p *Plant) initiateRoot() {
	p.root = morphology.NewRoot(p.Pheno)
	p.root.ImportCarbohydrate(p.soil.TotalRootWeight)
	p.logger.Debugw("root initiated", "mass", p.soil.TotalRootWeight)
}

// developmentTemperature is soil temperature while the growing point is
// below ground and air temperature after, never below zero.
func (p *Plant) developmentTemperature() float64 {
	T := p.weather.TAir
	if p.Pheno.LeavesAppeared() < soilTemperatureLeaves {
		T = p.soil.TSoil
	}
	return math.Max(0, T)
}

// Update advances the plant one step: phenology, gas exchange, carbon
// allocation, then the organs. It returns what the soil model needs for
// its own step.
func (p *Plant) Update(w types.WeatherState, s types.SoilState) (types.PlantFeedback, error) {
	if err := w.Validate(); err != nil {
		return types.PlantFeedback{}, fmt.Errorf("%w: %v", ErrInvalidWeather, err)
	}
	if err := s.Validate(); err != nil {
		return types.PlantFeedback{}, fmt.Errorf("%w: %v", ErrInvalidWeather, err)
	}
	p.weather, p.soil = w, s

	p.Pheno.Update(phenology.Conditions{
		Time:          w.Time,
		Temperature:   p.developmentTemperature(),
		DayLength:     w.DayLength,
		DroppedLeaves: p.droppedLeaves(),
	})

	p.exchange = canopy.Exchange{}
	p.allocation = carbon.Allocation{}
	p.nitrogenDemand = 0

	switch {
	case !p.Pheno.Germinated():
		p.feedback = types.PlantFeedback{}
		return p.feedback, nil
	case p.Pheno.Dead():
		p.feedback = types.PlantFeedback{DroppedLeaves: p.State().Mass.DroppedLeaf}
		return p.feedback, nil
	}

	if p.root == nil {
		p.initiateRoot()
	}

	if p.Pheno.LeavesAppeared() > 0 {
		if err := p.exchangeGas(); err != nil {
			return types.PlantFeedback{}, err
		}
		p.Carbon.AssimilateToPool(p.exchange.Gross())
	}

	p.allocateCarbon()
	p.updateOrgans()
	p.initiateLeaves()

	if !p.Pheno.Emerged() {
		p.seed -= math.Min(p.seed, p.Carbon.Supply)
	}
	if p.midnight(w.Time) {
		p.Carbon.ResetPool()
	}

	p.updateNitrogen()
	p.feedback = p.makeFeedback()
	return p.feedback, nil
}

// midnight reports whether t is the first step of a day.
func (p *Plant) midnight(t time.Time) bool {
	sinceMidnight := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	return sinceMidnight < p.step
}

func (p *Plant) exchangeGas() error {
	w, s := p.weather, p.soil

	sun := solar.NewSun(w.Time, p.config.Latitude, p.config.Longitude, p.config.Altitude)
	sun.GlobalRadiation = w.SolarRadiation
	sun.PAR = w.PFD

	state := p.State()
	rad := canopy.NewRadiation(sun, state.LAI)
	rad.LeafAngleFactor = p.config.LeafAngleFactor

	pAir := w.PAir
	if pAir <= 0 {
		pAir = sun.AtmosphericPressure()
	}
	air := atmosphere.NewWeather(w.PFD, w.TAir, w.CO2, w.RH, w.Wind, pAir)
	leaf := gasexchange.Leaf{
		Width:          p.config.LeafWidth,
		WaterPotential: s.LeafWaterPotential,
		Nitrogen:       p.Nitrogen.LeafContent(p.Pheno.GDDAfterEmergence(), state.Area.Green),
		ETSupply:       p.canopy.ETSupply(s.ETSupply, state.LAI),
	}

	e, err := p.canopy.Integrate(air, leaf, rad)
	if err != nil {
		return fmt.Errorf("canopy gas exchange at %v: %w", w.Time, err)
	}
	p.exchange = e
	return nil
}

func (p *Plant) carbonState() carbon.State {
	return carbon.State{
		TAir:             p.weather.TAir,
		TimestepMinutes:  p.config.TimestepMinutes(),
		TotalMass:        p.State().Mass.Total(),
		Scale:            p.Pheno.ReproductiveScale(),
		TasselInitiated:  p.Pheno.TasselInitiated(),
		GrainFilling:     p.Pheno.GrainFilling(),
		MinRootSupply:    p.soil.MinRootCarbonSupply,
		ActualRootSupply: p.soil.ActualRootCarbonSupply,
	}
}

// allocateCarbon mobilizes this step's supply and hands it to the organs.
// Leaf carbon goes to live leaves by potential area, stem carbon to the
// basal stem, and root carbon only once the plant has emerged.
func (p *Plant) allocateCarbon() {
	st := p.carbonState()
	p.maintenance = p.Carbon.MaintenanceRespiration(st)
	p.branch = p.Carbon.MakeSupply(st)
	if p.observer != nil {
		p.observer.ObserveSupply(p.branch)
	}

	a := p.Carbon.Partition(st)
	p.allocation = a

	sinks := make([]carbon.Sink, len(p.nodalUnits))
	for i, nu := range p.nodalUnits {
		sinks[i] = carbon.Sink{
			PotentialArea: nu.Leaf.PotentialArea(),
			Growing:       nu.Leaf.Growing(),
			Dead:          nu.Leaf.Dead(),
		}
	}
	for i, share := range p.Carbon.DistributeLeaf(a.Leaf, sinks, p.config.LeafWeighting) {
		p.nodalUnits[i].Leaf.ImportCarbohydrate(share)
	}

	p.nodalUnits[0].Stem.ImportCarbohydrate(a.Stem())
	p.ear.ImportCarbohydrate(a.Ear())
	if p.Pheno.Emerged() {
		p.root.ImportCarbohydrate(a.Root)
	}
}

func (p *Plant) updateOrgans() {
	predawn := p.soil.PredawnLeafWaterPotential
	for _, nu := range p.nodalUnits {
		nu.Update(predawn)
	}
	p.ear.Update()
	p.root.Update()
}

// updateNitrogen books the soil uptake and, after emergence, the demand
// from shoot growth (Lindquist et al. 2007).
func (p *Plant) updateNitrogen() {
	density := p.config.PlantDensity
	shoot := p.State().Mass.Shoot()
	p.Nitrogen.UptakeFromSoil(p.soil.NitrogenUptake, shoot, density)

	shootPerM2 := shoot * density
	if p.Pheno.Emerged() {
		p.nitrogenDemand = p.Nitrogen.Demand(shootPerM2, shootPerM2-p.oldShootPerM2, density, p.config.TimestepMinutes())
	}
	p.oldShootPerM2 = shootPerM2
}

// makeFeedback converts this step's root carbon to daily rates and reports
// the canopy to the soil. Root carbon is zero before emergence.
func (p *Plant) makeFeedback() types.PlantFeedback {
	state := p.State()
	f := types.PlantFeedback{
		LAI:           state.LAI,
		DroppedLeaves: state.Mass.DroppedLeaf,
	}
	if !p.Pheno.Emerged() {
		return f
	}

	stepsPerDay := 24 * 60 / p.config.TimestepMinutes()
	root, shoot := p.allocation.Root, p.allocation.Shoot

	f.RootCarbonRequest = p.Carbon.RootRequest(root) * stepsPerDay
	if p.Pheno.GrainFilling() {
		f.RootCarbonMax = (root + grainFillingShootMax*shoot) * stepsPerDay
	} else {
		f.RootCarbonMax = (root + shoot) * stepsPerDay
	}
	f.NitrogenDemand = p.nitrogenDemand
	f.GroundCover = 1 - math.Exp(-coverExtinction*state.LAI)
	f.CanopyHeight = math.Min(f.GroundCover*p.config.RowSpacing, p.config.RowSpacing)
	f.ETDemand = p.soil.ETSupply * stepsPerDay
	return f
}

func (p *Plant) droppedLeaves() int {
	n := 0
	for _, nu := range p.nodalUnits {
		if nu.Leaf.Dropped() {
			n++
		}
	}
	return n
}

// NodalUnits returns the units from the base up.
func (p *Plant) NodalUnits() []*morphology.NodalUnit { return p.nodalUnits }

func (p *Plant) Ear() *morphology.Ear { return p.ear }

// Root is nil before germination.
func (p *Plant) Root() *morphology.Root { return p.root }

// Exchange is the canopy gas exchange of the last step, zero when no leaf
// had appeared.
func (p *Plant) Exchange() canopy.Exchange { return p.exchange }

// Allocation is the growth carbon partitioned in the last step.
func (p *Plant) Allocation() carbon.Allocation { return p.allocation }

// SupplyBranch is the rule that produced the last carbon supply.
func (p *Plant) SupplyBranch() carbon.Branch { return p.branch }

// MaintenanceRespiration of the last step, g CH2O plant-1.
func (p *Plant) MaintenanceRespiration() float64 { return p.maintenance }

// NitrogenDemand of the last step, g N plant-1.
func (p *Plant) NitrogenDemand() float64 { return p.nitrogenDemand }

// Feedback is the value returned by the last Update.
func (p *Plant) Feedback() types.PlantFeedback { return p.feedback }

func (p *Plant) Weather() types.WeatherState { return p.weather }

func (p *Plant) Soil() types.SoilState { return p.soil }

func (p *Plant) Config() Config { return p.config }
