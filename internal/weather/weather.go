// Package weather supplies hourly weather to the simulation, either read
// from a file or generated for a site.
package weather

import (
	"time"

	"github.com/chrissnell/maizsim/internal/types"
	"github.com/chrissnell/maizsim/pkg/solar"
)

// DefaultCO2 is used when a source carries no CO2 of its own, ppm.
const DefaultCO2 = 400.0

// Source yields weather one step at a time. Next returns io.EOF after the
// last step.
type Source interface {
	Next() (types.WeatherState, error)
	Close() error
}

// Site is where the weather happens.
type Site struct {
	Latitude  float64 // degrees north
	Longitude float64 // degrees east
	Altitude  float64 // m

	// Location is the clock the records are kept in. Nil means UTC.
	Location *time.Location

	// CO2 fills in records without a CO2 column, ppm. Zero means DefaultCO2.
	CO2 float64
}

func (s Site) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s Site) co2() float64 {
	if s.CO2 <= 0 {
		return DefaultCO2
	}
	return s.CO2
}

func (s Site) sun(t time.Time) *solar.Sun {
	return solar.NewSun(t, s.Latitude, s.Longitude, s.Altitude)
}

// complete fills in what a record leaves out: air pressure from altitude,
// day length, and PFD from global radiation.
func (s Site) complete(w *types.WeatherState) {
	sun := s.sun(w.Time)
	sun.GlobalRadiation = w.SolarRadiation
	if w.PAir <= 0 {
		w.PAir = sun.AtmosphericPressure()
	}
	if w.DayLength <= 0 {
		w.DayLength = sun.DayLength()
	}
	if w.PFD <= 0 && w.SolarRadiation > 0 {
		w.PFD = w.SolarRadiation * sun.PARFraction() * solar.PhotonsPerJoule
	}
	if w.CO2 <= 0 {
		w.CO2 = s.co2()
	}
}
