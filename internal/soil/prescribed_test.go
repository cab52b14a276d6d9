package soil

import (
	"math"
	"testing"

	"github.com/chrissnell/maizsim/internal/types"
)

func TestPrescribedTemperature(t *testing.T) {
	s := NewPrescribed(Params{TimestepMinutes: 360})

	tests := []struct {
		tair, want float64
	}{
		{10, 10},
		{20, 15},
		{30, 20},
		{20, 20},
		// The first step has left the window.
		{30, 25},
		{10, 22.5},
	}
	for i, tt := range tests {
		got := s.Prepare(types.WeatherState{TAir: tt.tair}).TSoil
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("step %d: TSoil = %v, want %v", i, got, tt.want)
		}
	}
}

func TestPrescribedUpdate(t *testing.T) {
	s := NewPrescribed(Params{
		LeafWaterPotential:        -0.5,
		PredawnLeafWaterPotential: -0.1,
		InitialRootWeight:         0.01,
		MaxRootDepth:              30,
		AvailableWater:            2,
		TimestepMinutes:           60,
	})

	st := s.Prepare(types.WeatherState{TAir: 20})
	if st.LeafWaterPotential != -0.5 || st.PredawnLeafWaterPotential != -0.1 {
		t.Errorf("water potentials = %v, %v", st.LeafWaterPotential, st.PredawnLeafWaterPotential)
	}
	if st.MaxRootDepth != 30 || st.AvailableWater != 2 || st.TotalRootWeight != 0.01 {
		t.Errorf("rooting = %+v", st)
	}

	s.Update(types.PlantFeedback{RootCarbonRequest: 0.24, RootCarbonMax: 0.48, NitrogenDemand: 0.002}, 15)
	st = s.State()

	checks := []struct {
		name      string
		got, want float64
	}{
		{"MinRootCarbonSupply", st.MinRootCarbonSupply, 0.01},
		{"ActualRootCarbonSupply", st.ActualRootCarbonSupply, 0.01},
		{"MaxRootCarbonSupply", st.MaxRootCarbonSupply, 0.02},
		{"TotalRootWeight", st.TotalRootWeight, 0.02},
		{"ETSupply", st.ETSupply, 15},
		{"NitrogenUptake", st.NitrogenUptake, 0.002},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}
