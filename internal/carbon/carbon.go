// Package carbon keeps the plant's carbohydrate accounts and decides how
// much of them is mobilized for growth each step (Grant 1989; McCree 1988).
//
// All amounts are g CH2O plant-1 unless noted.
package carbon

import (
	"math"

	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/log"
)

// Params holds the allocation calibration.
type Params struct {
	CarbonContent          float64 // g C g-1 dry matter
	TranslocationHours     float64 // time for the pool to move to sinks
	Q10                    float64 // maintenance respiration
	MaintenanceCoefficient float64 // g CH2O g-1 DM day-1 at 20 C
	GrowthEfficiency       float64 // Yg
	MaxShootFraction       float64
	MaxKernels             float64 // kernels ear-1
	KernelFillRate         float64 // g kernel-1 day-1
}

// DefaultParams returns the maize calibration.
func DefaultParams() Params {
	return Params{
		CarbonContent:          0.40,
		TranslocationHours:     5,
		Q10:                    2.0,
		MaintenanceCoefficient: 0.018,
		GrowthEfficiency:       0.75,
		MaxShootFraction:       0.925,
		MaxKernels:             800,
		KernelFillRate:         0.012,
	}
}

// State is the read-only view of the plant that allocation works from.
type State struct {
	TAir            float64 // C
	TimestepMinutes float64
	TotalMass       float64 // g plant-1
	Scale           float64 // reproductive scale, see phenology
	TasselInitiated bool
	GrainFilling    bool

	// Root carbon rates reported by the soil model, g plant-1.
	MinRootSupply    float64
	ActualRootSupply float64
}

func (s State) timestepDays() float64 {
	return s.TimestepMinutes / (24 * 60)
}

// Branch identifies which rule of MakeSupply produced the supply.
type Branch int

const (
	FromPool Branch = iota + 1
	FromReserve
	Exhausted
	GrainFromReserve
	MaintenanceFromPool
	MaintenanceFromReserve
	Starvation
)

var branchNames = map[Branch]string{
	FromPool:               "pool",
	FromReserve:            "reserve",
	Exhausted:              "exhausted",
	GrainFromReserve:       "grain_from_reserve",
	MaintenanceFromPool:    "maintenance_from_pool",
	MaintenanceFromReserve: "maintenance_from_reserve",
	Starvation:             "starvation",
}

func (b Branch) String() string {
	if n, ok := branchNames[b]; ok {
		return n
	}
	return "unknown"
}

// Carbon is one plant's carbohydrate accounts.
type Carbon struct {
	Params Params

	Pool     float64 // short term, emptied into the reserve at midnight
	Reserve  float64 // long term, seed derived then replenished
	RootPool float64 // root carbon left unused by the soil model
	Supply   float64 // mobilized this step

	logger *zap.SugaredLogger
}

// New seeds the accounts from the seed mass in g and moves the whole seed
// reserve into the pool.
func New(seedMass float64, p Params, logger *zap.SugaredLogger) *Carbon {
	c := &Carbon{
		Params:  p,
		Reserve: seedMass * p.CarbonContent,
		logger:  log.OrNop(logger),
	}
	c.TranslocateToPool(c.Reserve)
	return c
}

// TranslocateToPool moves up to amount from the reserve to the pool.
func (c *Carbon) TranslocateToPool(amount float64) {
	amount = math.Min(c.Reserve, amount)
	c.Reserve -= amount
	c.Pool += amount
}

// AssimilateToPool adds gross assimilate to the pool.
func (c *Carbon) AssimilateToPool(amount float64) {
	c.Pool += amount
}

func (c *Carbon) consumePool(amount float64) {
	c.Pool -= amount
}

func (c *Carbon) consumeReserve(amount float64) {
	c.Reserve -= amount
}

// ResetPool folds the pool, negative or not, into the reserve.
func (c *Carbon) ResetPool() {
	c.Reserve += c.Pool
	c.Pool = 0
}

func (c *Carbon) ResetRootPool() {
	c.RootPool = 0
}

// updateRootPool keeps the root carbon the soil model asked for but did
// not use.
func (c *Carbon) updateRootPool(s State) {
	c.RootPool += s.MinRootSupply - s.ActualRootSupply
}

// TemperatureEffect is the normalized translocation response to air
// temperature, Pasian and Lieth (1990).
func TemperatureEffect(tAir float64) float64 {
	const (
		b1 = 2.325152587
		b2 = 0.185418876
		b3 = 0.203535650
		td = 48.6 // high temperature compensation point
	)
	g1 := 1 + math.Exp(b1-b2*tAir)
	g2 := 1 - math.Exp(-b3*math.Max(0, td-tAir))
	return g2 / g1
}

// GrowthFactor is the share of the pool that can move in one step. Steps
// longer than the translocation time move the whole pool.
func (c *Carbon) GrowthFactor(timestepMinutes float64) float64 {
	return math.Min(1, timestepMinutes/(c.Params.TranslocationHours*60))
}

// TranslocationRate is the fraction of the pool or reserve mobilized per step.
func (c *Carbon) TranslocationRate(s State) float64 {
	return TemperatureEffect(s.TAir) * c.GrowthFactor(s.TimestepMinutes)
}

// MaintenanceRespiration in g CH2O plant-1 per step, Goudriaan and van
// Laar (1994).
func (c *Carbon) MaintenanceRespiration(s State) float64 {
	q10 := math.Pow(c.Params.Q10, (s.TAir-20)/10)
	return q10 * c.Params.MaintenanceCoefficient * s.TotalMass * s.timestepDays()
}

// Demand is the grain sink, zero outside grain filling.
func (c *Carbon) Demand(s State) float64 {
	if !s.GrainFilling {
		return 0
	}
	fill := c.Params.KernelFillRate * s.timestepDays()
	return c.Params.MaxKernels * fill * TemperatureEffect(s.TAir) * c.Params.CarbonContent
}

// MakeSupply decides this step's supply. The rules are tried in order and
// the first match applies. The shoot reserve share of the resulting
// partition is returned to the reserve.
func (c *Carbon) MakeSupply(s State) Branch {
	rate := c.TranslocationRate(s)
	maintenance := c.MaintenanceRespiration(s)
	demand := c.Demand(s)

	c.updateRootPool(s)

	var b Branch
	switch {
	case c.Pool > demand:
		b = FromPool
		c.Supply = c.Pool * rate
		c.consumePool(c.Supply)
	case c.Pool == 0:
		if c.Reserve > 0 {
			b = FromReserve
			c.Supply = c.Reserve * rate
			c.consumeReserve(c.Supply)
		} else {
			b = Exhausted
			c.Supply = 0
		}
	case c.Reserve > demand && demand > 0:
		b = GrainFromReserve
		if c.Pool < 0 {
			c.ResetPool()
		}
		c.Supply = demand * rate
		c.consumeReserve(c.Supply)
		c.ResetPool()
	case c.Pool > maintenance:
		b = MaintenanceFromPool
		c.Supply = maintenance
		c.consumePool(c.Supply)
	case c.Reserve > maintenance:
		b = MaintenanceFromReserve
		c.Supply = maintenance
		c.consumeReserve(c.Supply)
		c.ResetPool()
	default:
		b = Starvation
		c.ResetPool()
		c.Supply = math.Min(c.Reserve, maintenance)
		c.logger.Debugw("carbon starvation",
			"reserve", c.Reserve,
			"maintenance", maintenance,
		)
	}

	c.Reserve += c.Partition(s).Reserve
	return b
}

// RootRequest is the carbon offered to the soil model's roots this step.
// Leftover root carbon rides along only when the roots get nothing else,
// which in practice is at night; the root pool is emptied when it does.
func (c *Carbon) RootRequest(root float64) float64 {
	if c.RootPool > 0 && root < 1e-5 {
		request := root + c.RootPool
		c.ResetRootPool()
		return request
	}
	return root
}
