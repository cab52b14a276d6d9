// Package solar computes sun position, day length and the photosynthetically
// active radiation reaching the top of a canopy.
package solar

import (
	"math"
	"time"
)

// PhotonsPerJoule converts PAR-band W m-2 to umol m-2 s-1 (Goudriaan and van
// Laar 1994).
const PhotonsPerJoule = 4.6

// SolarConstant in W m-2, Iqbal (1983).
const SolarConstant = 1370.0

// DefaultTransmissivity of a clear atmosphere, Goudriaan and van Laar (1994) p 30.
const DefaultTransmissivity = 0.5

// Sun is the sun as seen from one place at one instant. Clock times are read
// in t's own location; the standard meridian is taken from its UTC offset.
type Sun struct {
	Time           time.Time
	Latitude       float64 // degrees north
	Longitude      float64 // degrees east
	Altitude       float64 // m
	Transmissivity float64

	// Observed radiation, used instead of the clear-sky estimates when positive.
	GlobalRadiation float64 // W m-2
	PAR             float64 // umol m-2 s-1
}

// NewSun builds a sun with the default transmissivity.
func NewSun(t time.Time, latitude, longitude, altitude float64) *Sun {
	return &Sun{
		Time:           t,
		Latitude:       latitude,
		Longitude:      longitude,
		Altitude:       altitude,
		Transmissivity: DefaultTransmissivity,
	}
}

func (s *Sun) DayOfYear() int {
	return s.Time.YearDay()
}

// Declination in degrees.
func (s *Sun) Declination() float64 {
	return Declination(s.DayOfYear())
}

func (s *Sun) standardMeridian() float64 {
	_, offset := s.Time.Zone()
	return float64(offset) / 3600 * 15
}

// SolarNoon is the local clock hour of solar noon.
func (s *Sun) SolarNoon() float64 {
	longitudeCorrection := (s.Longitude - s.standardMeridian()) / 15
	noonUTC := time.Date(s.Time.Year(), s.Time.Month(), s.Time.Day(), 12, 0, 0, 0, time.UTC)
	return 12 - longitudeCorrection - EquationOfTime(noonUTC)/60
}

func (s *Sun) cosHourAngle(zenith float64) float64 {
	p := degToRad(s.Latitude)
	d := degToRad(s.Declination())
	return (math.Cos(degToRad(zenith)) - math.Sin(p)*math.Sin(d)) / (math.Cos(p) * math.Cos(d))
}

// HalfDayLength in hours, Iqbal (1983) p 16. Zero in polar night, 12 in
// polar day.
func (s *Sun) HalfDayLength() float64 {
	c := s.cosHourAngle(90)
	var h float64
	switch {
	case c > 1:
		h = 0
	case c < -1:
		h = 180
	default:
		h = radToDeg(math.Acos(c))
	}
	return h / 15
}

// DayLength in hours.
func (s *Sun) DayLength() float64 {
	return s.HalfDayLength() * 2
}

// Sunrise as a local clock hour.
func (s *Sun) Sunrise() float64 {
	return s.SolarNoon() - s.HalfDayLength()
}

// Sunset as a local clock hour.
func (s *Sun) Sunset() float64 {
	return s.SolarNoon() + s.HalfDayLength()
}

func (s *Sun) hour() float64 {
	return float64(s.Time.Hour()) + float64(s.Time.Minute())/60 + float64(s.Time.Second())/3600
}

// HourAngle in degrees, negative before solar noon.
func (s *Sun) HourAngle() float64 {
	return (s.hour() - s.SolarNoon()) * 15
}

// Elevation is the solar elevation angle in degrees; negative below the
// horizon.
func (s *Sun) Elevation() float64 {
	h := degToRad(s.HourAngle())
	p := degToRad(s.Latitude)
	d := degToRad(s.Declination())
	return radToDeg(math.Asin(math.Cos(h)*math.Cos(d)*math.Cos(p) + math.Sin(d)*math.Sin(p)))
}

// Zenith angle in degrees.
func (s *Sun) Zenith() float64 {
	return math.Abs(90 - s.Elevation())
}

// AtmosphericPressure in kPa at the site altitude, Campbell and Norman (1998) p 41.
func (s *Sun) AtmosphericPressure() float64 {
	return 101.3 * math.Exp(-s.Altitude/8200)
}

func (s *Sun) elevationRad() float64 {
	return math.Max(0, degToRad(s.Elevation()))
}

// OpticalAirMass is +Inf with the sun at or below the horizon.
func (s *Sun) OpticalAirMass() float64 {
	return s.AtmosphericPressure() / (101.3 * math.Sin(s.elevationRad()))
}

// Insolation is the extraterrestrial irradiance on a horizontal surface.
func (s *Sun) Insolation() float64 {
	g := 2 * math.Pi * float64(s.DayOfYear()-10) / 365
	return SolarConstant * math.Sin(s.elevationRad()) * (1 + 0.033*math.Cos(g))
}

// directCoeff and diffuseCoeff follow Campbell and Norman (1998) p 173.
func (s *Sun) directCoeff() float64 {
	return math.Pow(s.Transmissivity, s.OpticalAirMass())
}

func (s *Sun) diffuseCoeff() float64 {
	return (1 - math.Pow(s.Transmissivity, s.OpticalAirMass())) * 0.3
}

// SolarRadiation is the global radiation on a horizontal surface, W m-2.
func (s *Sun) SolarRadiation() float64 {
	if s.GlobalRadiation > 0 {
		return s.GlobalRadiation
	}
	return (s.directCoeff() + s.diffuseCoeff()) * s.Insolation()
}

// DirectFraction of radiation arriving as beam.
func (s *Sun) DirectFraction() float64 {
	return 1 / (1 + s.diffuseCoeff()/s.directCoeff())
}

// DiffuseFraction of radiation arriving as sky diffuse.
func (s *Sun) DiffuseFraction() float64 {
	return 1 / (1 + s.directCoeff()/s.diffuseCoeff())
}

// PARFraction is the share of global radiation in the PAR band,
// Goudriaan and van Laar (1994).
func (s *Sun) PARFraction() float64 {
	tau := s.Transmissivity
	switch {
	case tau >= 0.7:
		return 0.45
	case tau <= 0.3:
		return 0.55
	default:
		return 0.625 - 0.25*tau
	}
}

// PhotosyntheticRadiation is total PAR on a horizontal surface, umol m-2 s-1.
func (s *Sun) PhotosyntheticRadiation() float64 {
	if s.PAR > 0 {
		return s.PAR
	}
	return s.SolarRadiation() * s.PARFraction() * PhotonsPerJoule
}

// DirectPAR is the beam component of PAR.
func (s *Sun) DirectPAR() float64 {
	if s.Elevation() <= 0 {
		return 0
	}
	return s.DirectFraction() * s.PhotosyntheticRadiation()
}

// DiffusePAR is the sky diffuse component of PAR.
func (s *Sun) DiffusePAR() float64 {
	if s.Elevation() <= 0 {
		return s.PhotosyntheticRadiation()
	}
	return s.DiffuseFraction() * s.PhotosyntheticRadiation()
}
