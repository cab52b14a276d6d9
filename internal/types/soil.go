package types

import "reflect"

// SoilState is the soil model's side of one step. The soil owns it; the
// plant reads a copy.
type SoilState struct {
	TSoil float64 `json:"t_soil"` // C, mean of the top 5 cm

	LeafWaterPotential        float64 `json:"leaf_wp"`         // MPa
	PredawnLeafWaterPotential float64 `json:"predawn_leaf_wp"` // MPa

	// ETSupply is the water the roots delivered, g plant-1 step-1.
	ETSupply float64 `json:"et_supply"`

	TotalRootWeight float64 `json:"total_root_weight"` // g plant-1
	MaxRootDepth    float64 `json:"max_root_depth"`    // cm
	AvailableWater  float64 `json:"available_water"`   // cm plant-1

	// Root carbon rates, g plant-1.
	MinRootCarbonSupply    float64 `json:"min_root_carbon_supply"`
	MaxRootCarbonSupply    float64 `json:"max_root_carbon_supply"`
	ActualRootCarbonSupply float64 `json:"actual_root_carbon_supply"`

	// NitrogenUptake this step, g plant-1.
	NitrogenUptake float64 `json:"nitrogen_uptake"`
}

// Validate reports the first numeric field that is NaN or infinite.
func (s *SoilState) Validate() error {
	return checkFinite("soil", reflect.ValueOf(*s))
}

// PlantFeedback is what the plant hands back to the soil model after a step.
type PlantFeedback struct {
	// Root carbon, g plant-1 day-1: the minimum the roots get and the most
	// they may take.
	RootCarbonRequest float64 `json:"root_carbon_request"`
	RootCarbonMax     float64 `json:"root_carbon_max"`

	// NitrogenDemand is g plant-1 step-1.
	NitrogenDemand float64 `json:"nitrogen_demand"`

	LAI         float64 `json:"lai"`
	GroundCover float64 `json:"ground_cover"` // 0-1

	// CanopyHeight is in cm, ETDemand in g plant-1 day-1 and DroppedLeaves
	// in g plant-1.
	CanopyHeight  float64 `json:"canopy_height"`
	ETDemand      float64 `json:"et_demand"`
	DroppedLeaves float64 `json:"dropped_leaf_mass"`
}
