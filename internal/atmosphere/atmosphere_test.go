package atmosphere

import (
	"math"
	"testing"
)

func TestSaturationVaporPressure(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		expected float64
		epsilon  float64
	}{
		{name: "freezing", temp: 0, expected: 0.611, epsilon: 1e-9},
		{name: "20C", temp: 20, expected: 2.338, epsilon: 0.005},
		{name: "30C", temp: 30, expected: 4.243, epsilon: 0.005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SaturationVaporPressure(tt.temp); math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("SaturationVaporPressure(%v) = %v, want %v", tt.temp, got, tt.expected)
			}
		})
	}
}

func TestDeficitAndHumidityRoundTrip(t *testing.T) {
	vpd := VaporPressureDeficit(25, 0.6)
	if got := RelativeHumidity(25, vpd); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("RelativeHumidity = %v, want 0.6", got)
	}
	if got := AmbientVaporPressure(25, 0.6) + vpd; math.Abs(got-SaturationVaporPressure(25)) > 1e-12 {
		t.Errorf("ea + vpd = %v, want es", got)
	}
}

func TestVaporPressureSlope(t *testing.T) {
	// Central difference of es, normalised by pressure.
	const h, P = 1e-4, 100.0
	numeric := (SaturationVaporPressure(25+h) - SaturationVaporPressure(25-h)) / (2 * h) / P
	if got := VaporPressureSlope(25, P); math.Abs(got-numeric) > 1e-8 {
		t.Errorf("VaporPressureSlope = %v, want %v", got, numeric)
	}
}

func TestWeatherClipsHumidity(t *testing.T) {
	if w := NewWeather(0, 20, 400, 0.01, 1, 100); w.RH != MinRelativeHumidity {
		t.Errorf("RH = %v, want %v", w.RH, MinRelativeHumidity)
	}
	if w := NewWeather(0, 20, 400, 1.2, 1, 100); w.RH != MaxRelativeHumidity {
		t.Errorf("RH = %v, want %v", w.RH, MaxRelativeHumidity)
	}
}

func TestWeatherValidate(t *testing.T) {
	if err := NewWeather(1000, 25, 400, 0.6, 2, 100).Validate(); err != nil {
		t.Errorf("valid weather rejected: %v", err)
	}
	if err := NewWeather(1000, math.NaN(), 400, 0.6, 2, 100).Validate(); err == nil {
		t.Error("NaN temperature accepted")
	}
	if err := NewWeather(1000, 25, 400, 0.6, 2, 0).Validate(); err == nil {
		t.Error("zero pressure accepted")
	}
}
