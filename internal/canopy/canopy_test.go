package canopy

import (
	"math"
	"testing"
	"time"

	"github.com/chrissnell/maizsim/internal/atmosphere"
	"github.com/chrissnell/maizsim/internal/gasexchange"
	"github.com/chrissnell/maizsim/pkg/solar"
)

func TestProjection(t *testing.T) {
	r := NewRadiation(nil, 3)
	tests := []struct {
		elevation float64
		expected  float64
	}{
		{elevation: 90, expected: 0.60547},
		{elevation: 45, expected: 0.74961},
		{elevation: 30, expected: 0.97599},
	}
	for _, tt := range tests {
		if got := r.projection(tt.elevation); math.Abs(got-tt.expected) > 1e-4 {
			t.Errorf("projection(%v) = %v, want %v", tt.elevation, got, tt.expected)
		}
	}
}

func TestKd(t *testing.T) {
	tests := []struct {
		lai      float64
		expected float64
	}{
		{lai: 0, expected: 0},
		{lai: 0.5, expected: 0.91203},
		{lai: 1, expected: 0.85816},
		{lai: 3, expected: 0.77438},
		{lai: 6, expected: 0.74204},
	}
	for _, tt := range tests {
		r := NewRadiation(nil, tt.lai)
		if got := r.Kd(); math.Abs(got-tt.expected) > 1e-4 {
			t.Errorf("Kd(LAI=%v) = %v, want %v", tt.lai, got, tt.expected)
		}
	}
}

func juneSun(hour float64) *solar.Sun {
	day := time.Date(2002, 6, 21, 0, 0, 0, 0, time.UTC)
	return solar.NewSun(day.Add(time.Duration(hour*float64(time.Hour))), 40, 0, 0)
}

func TestLeafAreaSplit(t *testing.T) {
	for hour := 0.0; hour < 24; hour += 0.5 {
		sun := juneSun(hour)
		r := NewRadiation(sun, 3)
		sunlit, shaded := r.SunlitLAI(), r.ShadedLAI()
		if math.Abs(sunlit+shaded-3) > 1e-12 {
			t.Errorf("hour %v: sunlit %v + shaded %v != 3", hour, sunlit, shaded)
		}
		if sun.Elevation() <= 5 {
			if sunlit != 0 {
				t.Errorf("hour %v: sunlit LAI %v with sun at %v degrees", hour, sunlit, sun.Elevation())
			}
			continue
		}
		if sunlit <= 0 || sunlit > 1/r.Kb() {
			t.Errorf("hour %v: sunlit LAI %v outside (0, 1/Kb]", hour, sunlit)
		}
		if r.SunlitPFD() <= r.ShadedPFD() {
			t.Errorf("hour %v: sunlit PFD %v not above shaded %v", hour, r.SunlitPFD(), r.ShadedPFD())
		}
		if r.ShadedPFD() > sun.PhotosyntheticRadiation() {
			t.Errorf("hour %v: shaded PFD %v above incident %v", hour, r.ShadedPFD(), sun.PhotosyntheticRadiation())
		}
	}
}

func TestRadiationWithoutLeaves(t *testing.T) {
	r := NewRadiation(juneSun(12), 0)
	if r.SunlitLAI() != 0 || r.ShadedLAI() != 0 || r.ShadedPFD() != 0 {
		t.Errorf("bare canopy: sunlit %v shaded %v shaded PFD %v", r.SunlitLAI(), r.ShadedLAI(), r.ShadedPFD())
	}
}

func TestExchangeUnits(t *testing.T) {
	e := Exchange{
		Sunlit:       gasexchange.Result{AGross: 30, ANet: 28, Gs: 0.3, TLeaf: 30, ET: 0.005, VPD: 1.2},
		Shaded:       gasexchange.Result{AGross: 10, ANet: 8, Gs: 0.1, TLeaf: 24, ET: 0.002, VPD: 1.2},
		SunlitLAI:    1,
		ShadedLAI:    2,
		plantDensity: 8,
		stepSeconds:  3600,
	}

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"gross CO2", e.GrossCO2(), 50},
		{"net CO2", e.NetCO2(), 44},
		{"gross CH2O", e.Gross(), 50.0 / 8 * 3600 * 1e-6 * 30},
		{"net CH2O", e.Net(), 44.0 / 8 * 3600 * 1e-6 * 30},
		{"assimilation CO2", e.Assimilation(), 50.0 / 8 * 3600 * 1e-6 * 44},
		{"transpiration", e.Transpiration(), 0.009 / 8 * 3600 * 18},
		{"leaf temperature", e.LeafTemperature(), 26},
		{"conductance", e.Conductance(), 0.5 / 3},
		{"vpd", e.VPD(), 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > 1e-9 {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}

	c := &Integrator{PlantDensity: 8, TimestepMinutes: 60}
	if got := c.ETSupply(e.Transpiration(), 3); math.Abs(got-0.003) > 1e-12 {
		t.Errorf("ETSupply() = %v, want 0.003", got)
	}
	if got := c.ETSupply(10, 0); got != 0 {
		t.Errorf("ETSupply() without leaves = %v", got)
	}

	e.SunlitLAI = 0
	if got := e.Conductance(); got != 0 {
		t.Errorf("conductance with no sunlit leaves = %v, want 0", got)
	}
}

func TestIntegrateRejectsBadSetup(t *testing.T) {
	c := &Integrator{Model: gasexchange.New(nil, nil), PlantDensity: 0, TimestepMinutes: 60}
	w := atmosphere.NewWeather(0, 25, 400, 0.6, 2, 100)
	if _, err := c.Integrate(w, gasexchange.Leaf{WaterPotential: -0.3, Nitrogen: 2}, NewRadiation(juneSun(12), 3)); err == nil {
		t.Error("expected error for zero plant density")
	}

	c.PlantDensity = 8
	w.TAir = math.NaN()
	if _, err := c.Integrate(w, gasexchange.Leaf{WaterPotential: -0.3, Nitrogen: 2}, NewRadiation(juneSun(12), 3)); err == nil {
		t.Error("expected error for NaN air temperature")
	}
}

// A clear summer day: PFD peaking at 1500 at noon, air between 20 and 30 C.
func TestDiurnalCanopy(t *testing.T) {
	c := &Integrator{Model: gasexchange.New(nil, nil), PlantDensity: 8, TimestepMinutes: 60}
	leaf := gasexchange.Leaf{Width: 5, WaterPotential: -0.3, Nitrogen: 2}
	noon := math.Sin(juneSun(12).Elevation() * math.Pi / 180)

	var daily float64
	for hour := 0; hour < 24; hour++ {
		sun := juneSun(float64(hour))
		sun.PAR = 1500 * math.Max(0, math.Sin(sun.Elevation()*math.Pi/180)) / noon
		tAir := 25 - 5*math.Cos(2*math.Pi*float64(hour-3)/24)
		w := atmosphere.NewWeather(0, tAir, 400, 0.6, 2, 100)

		e, err := c.Integrate(w, leaf, NewRadiation(sun, 3))
		if err != nil {
			t.Fatalf("hour %d: %v", hour, err)
		}
		for _, r := range []gasexchange.Result{e.Sunlit, e.Shaded} {
			if r.AGross < 0 || r.AGross < r.ANet {
				t.Errorf("hour %d: AGross %v, ANet %v", hour, r.AGross, r.ANet)
			}
		}
		if e.GrossCO2() < 0 || e.Gross() < e.Net() {
			t.Errorf("hour %d: canopy gross %v net %v", hour, e.Gross(), e.Net())
		}

		if sun.PAR == 0 {
			if e.SunlitLAI != 0 || e.Conductance() != 0 {
				t.Errorf("hour %d: night with sunlit LAI %v, gs %v", hour, e.SunlitLAI, e.Conductance())
			}
			if math.Abs(e.Shaded.ANet+e.Shaded.Rd) > 0.02 || e.Shaded.ANet >= 0 {
				t.Errorf("hour %d: night ANet %v, want ~ -Rd %v", hour, e.Shaded.ANet, -e.Shaded.Rd)
			}
			if math.Abs(e.NetCO2()-3*e.Shaded.ANet) > 1e-9 {
				t.Errorf("hour %d: canopy net %v, want %v", hour, e.NetCO2(), 3*e.Shaded.ANet)
			}
		}
		daily += e.Net()
	}
	if daily <= 0 {
		t.Errorf("daily net assimilation %v g CH2O plant-1, want positive", daily)
	}
}
