package weather

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/chrissnell/maizsim/internal/types"
)

// SyntheticParams shape a generated climate.
type SyntheticParams struct {
	MeanTemperature   float64 // C, annual mean
	SeasonalAmplitude float64 // C
	DailyAmplitude    float64 // C
	Noise             float64 // C, uniform half width
	RelativeHumidity  float64 // 0-1 at the mean temperature
	Wind              float64 // m s-1
	Turbidity         float64 // Linke turbidity of the clear sky
	Cloudiness        float64 // 0-1 share of clear-sky radiation removed
	Seed              int64
}

// DefaultSyntheticParams is a humid continental summer.
func DefaultSyntheticParams() SyntheticParams {
	return SyntheticParams{
		MeanTemperature:   13,
		SeasonalAmplitude: 12,
		DailyAmplitude:    6,
		Noise:             1,
		RelativeHumidity:  0.65,
		Wind:              2,
		Turbidity:         3,
		Cloudiness:        0.2,
		Seed:              1,
	}
}

// Synthetic generates weather between start and end with a seasonal and a
// diurnal temperature wave, clear-sky radiation dimmed by cloudiness, and
// humidity that falls as the air warms.
type Synthetic struct {
	site   Site
	params SyntheticParams
	rand   *rand.Rand
	now    time.Time
	end    time.Time
	step   time.Duration
}

// NewSynthetic generates steps from start up to but not including end.
func NewSynthetic(site Site, params SyntheticParams, start, end time.Time, step time.Duration) *Synthetic {
	return &Synthetic{
		site:   site,
		params: params,
		rand:   rand.New(rand.NewSource(params.Seed)),
		now:    start.In(site.location()),
		end:    end,
		step:   step,
	}
}

func (s *Synthetic) temperature(t time.Time) float64 {
	p := s.params
	hour := float64(t.Hour()) + float64(t.Minute())/60
	day := float64(t.YearDay())
	seasonal := p.SeasonalAmplitude * math.Sin(2*math.Pi*(day-105)/365)
	if s.site.Latitude < 0 {
		seasonal = -seasonal
	}
	daily := p.DailyAmplitude * math.Sin(2*math.Pi*(hour-9)/24)
	return p.MeanTemperature + seasonal + daily + (s.rand.Float64()-0.5)*2*p.Noise
}

// Next returns the next generated step, or io.EOF once end is reached.
func (s *Synthetic) Next() (types.WeatherState, error) {
	if !s.now.Before(s.end) {
		return types.WeatherState{}, io.EOF
	}
	t := s.now
	s.now = s.now.Add(s.step)

	p := s.params
	tAir := s.temperature(t)
	mean := p.MeanTemperature
	// Vapor pressure stays near that of the mean temperature, so humidity
	// drops in the afternoon.
	rh := p.RelativeHumidity * math.Exp(0.06*(mean-tAir))

	sun := s.site.sun(t)
	w := types.WeatherState{
		Time:           t,
		TAir:           tAir,
		RH:             math.Max(0.1, math.Min(1, rh)),
		Wind:           p.Wind,
		SolarRadiation: sun.ClearSkyRadiation(p.Turbidity) * (1 - p.Cloudiness),
	}
	s.site.complete(&w)
	return w, nil
}

func (s *Synthetic) Close() error { return nil }
