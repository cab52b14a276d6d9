package plant

import (
	"fmt"

	"github.com/chrissnell/maizsim/internal/canopy"
	"github.com/chrissnell/maizsim/internal/carbon"
	"github.com/chrissnell/maizsim/internal/gasexchange"
	"github.com/chrissnell/maizsim/internal/phenology"
)

// Config is everything a plant needs to know about its cultivar and site.
type Config struct {
	Phenology phenology.Params
	Carbon    carbon.Params

	Latitude  float64 // degrees north
	Longitude float64 // degrees east
	Altitude  float64 // m

	PlantDensity float64 // plants m-2
	RowSpacing   float64 // cm

	SeedMass  float64 // g
	Primordia int

	LeafAngleFactor float64
	LeafWidth       float64 // cm

	// LeafWeighting sets how leaf carbon is shared among leaves. Nil means
	// in proportion to potential area.
	LeafWeighting carbon.Weighting
}

// DefaultConfig is a generic hybrid at Beltsville, MD.
func DefaultConfig() Config {
	return Config{
		Phenology:       phenology.DefaultParams(),
		Carbon:          carbon.DefaultParams(),
		Latitude:        39.0,
		Longitude:       -76.9,
		Altitude:        50,
		PlantDensity:    8,
		RowSpacing:      75,
		SeedMass:        0.275,
		Primordia:       5,
		LeafAngleFactor: canopy.DefaultLeafAngleFactor,
		LeafWidth:       gasexchange.DefaultLeafWidth,
	}
}

// TimestepMinutes is the phenology step in minutes.
func (c Config) TimestepMinutes() float64 {
	return c.Phenology.Timestep * 24 * 60
}

func (c Config) validate() error {
	switch {
	case c.Phenology.Timestep <= 0:
		return fmt.Errorf("timestep must be positive, got %v days", c.Phenology.Timestep)
	case c.PlantDensity <= 0:
		return fmt.Errorf("plant density must be positive, got %v", c.PlantDensity)
	case c.SeedMass <= 0:
		return fmt.Errorf("seed mass must be positive, got %v", c.SeedMass)
	case c.Primordia < 1:
		return fmt.Errorf("need at least one primordium, got %d", c.Primordia)
	}
	return nil
}
