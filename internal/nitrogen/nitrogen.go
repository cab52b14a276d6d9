// Package nitrogen tracks the plant nitrogen pool and its share in leaves
// (Lindquist et al. 2007).
package nitrogen

import "math"

const (
	// SeedConcentration is the nitrogen fraction of the seed mass.
	SeedConcentration = 0.034

	// MaxYoungConcentration caps shoot nitrogen while biomass is small.
	MaxYoungConcentration = 0.063

	// closedCanopyShoot in g m-2 ground; above it the dilution curve applies.
	closedCanopyShoot = 100.0

	maxConcentration = 0.041 // C4 species
	dilutionShape    = 0.5
)

// Nitrogen is one plant's nitrogen account, g N plant-1.
type Nitrogen struct {
	Pool float64

	CumulativeDemand float64
	CumulativeUptake float64
}

// New starts the pool from the seed, g.
func New(seedMass float64) *Nitrogen {
	return &Nitrogen{Pool: SeedConcentration * seedMass}
}

// SetPool stores pool, capped at 6.3 % of the shoot mass once shoot biomass
// passes 100 g m-2.
func (n *Nitrogen) SetPool(pool, shootMass, plantDensity float64) {
	if shootMass*plantDensity > closedCanopyShoot {
		pool = math.Min(pool, MaxYoungConcentration*shootMass)
	}
	n.Pool = pool
}

// UptakeFromSoil adds the soil's nitrogen uptake for the step.
func (n *Nitrogen) UptakeFromSoil(amount, shootMass, plantDensity float64) {
	n.CumulativeUptake += amount
	n.SetPool(n.Pool+amount, shootMass, plantDensity)
}

// LeafFraction of plant nitrogen held in leaves, from thermal time since
// emergence. Never negative.
func LeafFraction(gddAfterEmergence float64) float64 {
	tt := gddAfterEmergence
	return math.Max(0, 0.79688-0.00023747*tt-0.000000086145*tt*tt)
}

// Leaf is the nitrogen in all leaves, g.
func (n *Nitrogen) Leaf(gddAfterEmergence float64) float64 {
	return LeafFraction(gddAfterEmergence) * n.Pool
}

// LeafContent is leaf nitrogen per unit green leaf area, g m-2. Sunlit and
// shaded leaves share it. Zero without green area.
func (n *Nitrogen) LeafContent(gddAfterEmergence, greenLeafArea float64) float64 {
	if greenLeafArea <= 0 {
		return 0
	}
	return n.Leaf(gddAfterEmergence) / (greenLeafArea / 1e4)
}

// Demand is the potential nitrogen accumulation for the step in g N
// plant-1, driven by the shoot growth of the step. Shoot masses are g m-2.
func (n *Nitrogen) Demand(shootPerM2, shootIncreasePerM2, plantDensity, timestepMinutes float64) float64 {
	stepsPerDay := 24 * 60 / timestepMinutes
	potential := maxConcentration * shootIncreasePerM2 * stepsPerDay
	if shootPerM2 >= closedCanopyShoot {
		potential *= 10 * (1 - dilutionShape) * math.Pow(shootPerM2, -dilutionShape)
	}
	d := math.Max(potential, 0) / plantDensity / stepsPerDay
	n.CumulativeDemand += d
	return d
}
