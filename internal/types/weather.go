package types

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// WeatherState is the weather for one simulation step, as handed from the
// driver to the plant. Units follow the crop model, not the input file.
type WeatherState struct {
	Time           time.Time `json:"time"`
	TAir           float64   `json:"t_air"`           // C
	CO2            float64   `json:"co2"`             // ppm
	RH             float64   `json:"rh"`              // 0-1
	Wind           float64   `json:"wind"`            // m s-1
	PAir           float64   `json:"p_air"`           // kPa
	PFD            float64   `json:"pfd"`             // umol m-2 s-1
	SolarRadiation float64   `json:"solar_radiation"` // W m-2
	DayLength      float64   `json:"day_length"`      // h
	Rain           float64   `json:"rain"`            // mm
}

// ToMap converts the numeric fields of a WeatherState into a map keyed by
// field name.
func (w *WeatherState) ToMap() map[string]float64 {
	return floatFields(reflect.ValueOf(*w))
}

// Validate reports the first numeric field that is NaN or infinite.
func (w *WeatherState) Validate() error {
	return checkFinite("weather", reflect.ValueOf(*w))
}

func floatFields(v reflect.Value) map[string]float64 {
	m := make(map[string]float64)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Kind() == reflect.Float64 {
			m[v.Type().Field(i).Name] = v.Field(i).Float()
		}
	}
	return m
}

func checkFinite(kind string, v reflect.Value) error {
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Kind() != reflect.Float64 {
			continue
		}
		f := v.Field(i).Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%s field %s is %v", kind, v.Type().Field(i).Name, f)
		}
	}
	return nil
}
