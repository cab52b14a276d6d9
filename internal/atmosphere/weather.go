package atmosphere

import (
	"fmt"
	"math"
)

// Relative humidity bounds applied to every leaf-level weather snapshot.
const (
	MinRelativeHumidity = 0.1
	MaxRelativeHumidity = 1.0
)

// Weather is the air around a leaf for one gas-exchange call.
type Weather struct {
	PFD  float64 // umol m-2 s-1
	TAir float64 // C
	CO2  float64 // ppm
	RH   float64 // 0-1, clipped to [0.1, 1]
	Wind float64 // m s-1
	PAir float64 // kPa
}

// NewWeather builds a snapshot, clipping relative humidity.
func NewWeather(pfd, tAir, co2, rh, wind, pAir float64) Weather {
	return Weather{
		PFD:  pfd,
		TAir: tAir,
		CO2:  co2,
		RH:   math.Max(MinRelativeHumidity, math.Min(MaxRelativeHumidity, rh)),
		Wind: wind,
		PAir: pAir,
	}
}

// VPD is the vapor pressure deficit of the air in kPa.
func (w Weather) VPD() float64 {
	return VaporPressureDeficit(w.TAir, w.RH)
}

// Validate rejects snapshots a leaf model cannot use.
func (w Weather) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"PFD", w.PFD}, {"air temperature", w.TAir}, {"CO2", w.CO2},
		{"relative humidity", w.RH}, {"wind", w.Wind}, {"air pressure", w.PAir},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is %v", f.name, f.value)
		}
	}
	if w.PAir <= 0 {
		return fmt.Errorf("air pressure must be positive, got %v", w.PAir)
	}
	return nil
}
