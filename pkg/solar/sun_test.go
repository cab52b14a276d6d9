package solar

import (
	"math"
	"testing"
	"time"
)

func dayOf(year, dayOfYear int) time.Time {
	return time.Date(year, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
}

func TestDayLength(t *testing.T) {
	tests := []struct {
		name      string
		dayOfYear int
		latitude  float64
		longitude float64
		expected  float64 // hours
		epsilon   float64
	}{
		{
			name:      "Equator at equinox (March 20, day 79)",
			dayOfYear: 79,
			latitude:  0.0,
			longitude: 0.0,
			expected:  12.0,
			epsilon:   0.01,
		},
		{
			name:      "Seattle WA summer solstice (June 21, day 172)",
			dayOfYear: 172,
			latitude:  47.6,
			longitude: -122.3,
			expected:  15.78,
			epsilon:   0.05,
		},
		{
			name:      "Seattle WA winter solstice (Dec 21, day 355)",
			dayOfYear: 355,
			latitude:  47.6,
			longitude: -122.3,
			expected:  8.22,
			epsilon:   0.05,
		},
		{
			name:      "London UK summer",
			dayOfYear: 172,
			latitude:  51.5,
			longitude: -0.1,
			expected:  16.40,
			epsilon:   0.05,
		},
		{
			name:      "Arctic circle summer (polar day)",
			dayOfYear: 172,
			latitude:  70.0,
			longitude: 25.0,
			expected:  24,
			epsilon:   0,
		},
		{
			name:      "Arctic circle winter (polar night)",
			dayOfYear: 355,
			latitude:  70.0,
			longitude: 25.0,
			expected:  0,
			epsilon:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSun(dayOf(2002, tt.dayOfYear), tt.latitude, tt.longitude, 0)
			if got := s.DayLength(); math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("DayLength() = %v hours, want %v (±%v)", got, tt.expected, tt.epsilon)
			}
		})
	}
}

func TestSunriseSunsetConsistency(t *testing.T) {
	// Test that sunrise is always before sunset for mid-latitudes
	for doy := 1; doy <= 365; doy++ {
		s := NewSun(dayOf(2002, doy), 45.0, 0.0, 0)
		if s.Sunrise() >= s.Sunset() {
			t.Errorf("day %d: sunrise %v not before sunset %v", doy, s.Sunrise(), s.Sunset())
		}
		// Day length should be reasonable (4-20 hours at 45° latitude)
		if dl := s.DayLength(); dl < 4 || dl > 20 {
			t.Errorf("day %d: unreasonable day length: %v hours", doy, dl)
		}
		// The equation of time never exceeds about 17 minutes.
		if noon := s.SolarNoon(); math.Abs(noon-12) > 0.3 {
			t.Errorf("day %d: solar noon at %v", doy, noon)
		}
	}
}

func TestSolarNoonFollowsTimeZone(t *testing.T) {
	central := time.FixedZone("CST", -6*3600)
	s := NewSun(time.Date(2002, 5, 10, 12, 0, 0, 0, central), 39.0, -76.9, 0)
	// 76.9W is 13.1 degrees east of the 90W meridian, about 52 minutes early
	if noon := s.SolarNoon(); noon < 10.8 || noon > 11.4 {
		t.Errorf("SolarNoon() = %v, want about 11.1", noon)
	}
}

func TestElevation(t *testing.T) {
	day := time.Date(2002, 5, 10, 0, 0, 0, 0, time.UTC)
	s := NewSun(day, 40, 0, 0)
	noon := s.SolarNoon()
	s.Time = day.Add(time.Duration(noon * float64(time.Hour)))

	want := 90 - (40 - Declination(130))
	if got := s.Elevation(); math.Abs(got-want) > 0.1 {
		t.Errorf("noon elevation = %v, want %v", got, want)
	}

	s.Time = day
	if got := s.Elevation(); got >= 0 {
		t.Errorf("midnight elevation = %v, want negative", got)
	}
	if got := s.Insolation(); got != 0 {
		t.Errorf("midnight insolation = %v, want 0", got)
	}
	if got := s.DirectPAR(); got != 0 {
		t.Errorf("midnight direct PAR = %v, want 0", got)
	}
	if got := s.ClearSkyRadiation(2); got != 0 {
		t.Errorf("midnight clear-sky radiation = %v, want 0", got)
	}
}

func TestPARSplit(t *testing.T) {
	s := NewSun(time.Date(2002, 6, 21, 12, 0, 0, 0, time.UTC), 40, 0, 0)

	total := s.PhotosyntheticRadiation()
	if total <= 0 {
		t.Fatalf("PAR at noon = %v", total)
	}
	if sum := s.DirectPAR() + s.DiffusePAR(); math.Abs(sum-total) > 1e-9*total {
		t.Errorf("direct + diffuse = %v, want %v", sum, total)
	}
	if s.DirectFraction() <= 0 || s.DirectFraction() >= 1 {
		t.Errorf("DirectFraction() = %v", s.DirectFraction())
	}

	s.PAR = 1800
	if got := s.PhotosyntheticRadiation(); got != 1800 {
		t.Errorf("observed PAR ignored: %v", got)
	}

	if clear := s.ClearSkyRadiation(2); clear < 800 || clear > 1200 {
		t.Errorf("clear-sky noon radiation = %v W m-2", clear)
	}
}

func TestPARFraction(t *testing.T) {
	tests := []struct {
		tau      float64
		expected float64
	}{
		{tau: 0.8, expected: 0.45},
		{tau: 0.2, expected: 0.55},
		{tau: 0.5, expected: 0.5},
	}
	for _, tt := range tests {
		s := &Sun{Transmissivity: tt.tau}
		if got := s.PARFraction(); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("PARFraction(%v) = %v, want %v", tt.tau, got, tt.expected)
		}
	}
}

func TestAtmosphericPressure(t *testing.T) {
	if got := NewSun(time.Now(), 0, 0, 0).AtmosphericPressure(); got != 101.3 {
		t.Errorf("sea level pressure = %v", got)
	}
	if got := NewSun(time.Now(), 0, 0, 8200).AtmosphericPressure(); math.Abs(got-101.3/math.E) > 1e-9 {
		t.Errorf("pressure at 8200 m = %v", got)
	}
}
