package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/carbon"
	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/internal/metrics"
	"github.com/chrissnell/maizsim/internal/output"
	"github.com/chrissnell/maizsim/internal/plant"
	"github.com/chrissnell/maizsim/internal/soil"
	"github.com/chrissnell/maizsim/internal/types"
	"github.com/chrissnell/maizsim/internal/weather"
	"github.com/chrissnell/maizsim/pkg/config"
)

// Simulation is one configured run: a weather source driving a plant and
// its soil, with every step recorded.
type Simulation struct {
	logger *zap.SugaredLogger

	begin, sowing, end time.Time
	step               time.Duration

	weather  weather.Source
	soil     soil.Model
	plant    *plant.Plant
	recorder *output.Recorder
	metrics  *metrics.Metrics

	steps int
}

// NewSimulation builds every part of a run from validated configuration.
// logger may be nil.
func NewSimulation(cfg *config.ConfigData, logger *zap.SugaredLogger) (*Simulation, error) {
	logger = log.OrNop(logger)
	loc, err := time.LoadLocation(cfg.Initials.Timezone)
	if err != nil {
		return nil, err
	}
	in := cfg.Initials
	s := &Simulation{
		logger:  logger,
		begin:   atMidnight(in.BeginDate, loc),
		sowing:  atMidnight(in.SowingDate, loc),
		end:     atMidnight(in.EndDate, loc),
		step:    time.Duration(in.TimestepMinutes) * time.Minute,
		metrics: metrics.New(),
	}

	s.plant, err = plant.New(PlantConfig(cfg), logger.Named("plant"), s.metrics)
	if err != nil {
		return nil, err
	}

	s.soil = soil.NewPrescribed(soil.Params{
		LeafWaterPotential:        cfg.Run.Soil.LeafWaterPotential,
		PredawnLeafWaterPotential: cfg.Run.Soil.PredawnLeafWaterPotential,
		InitialRootWeight:         cfg.Run.Soil.InitialRootWeight,
		MaxRootDepth:              cfg.Run.Soil.MaxRootDepth,
		AvailableWater:            cfg.Run.Soil.AvailableWater,
		TimestepMinutes:           float64(in.TimestepMinutes),
	})

	sinks, err := openSinks(cfg.Run.Output)
	if err != nil {
		return nil, err
	}
	schedule := output.Schedule{Daily: cfg.Run.Output.Daily, Hourly: cfg.Run.Output.Hourly}
	s.recorder = output.NewRecorder(schedule, logger.Named("output"), sinks...)

	s.weather, err = openWeather(cfg, loc, s.begin, s.end, s.step)
	if err != nil {
		s.recorder.Close()
		return nil, err
	}
	return s, nil
}

func atMidnight(d config.Date, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// PlantConfig maps run configuration onto the plant model, starting from
// the plant's defaults.
func PlantConfig(cfg *config.ConfigData) plant.Config {
	pc := plant.DefaultConfig()
	v, in, params := cfg.Variety, cfg.Initials, cfg.Parameters

	ph := &pc.Phenology
	ph.Timestep = float64(in.TimestepMinutes) / (24 * 60)
	ph.GDDRating = v.GDDRating
	ph.JuvenileLeaves = v.GenericLeafNumber
	ph.DayLengthSensitive = v.DayLengthSensitive
	ph.RMaxLTAR = v.RMaxLTAR
	ph.RMaxLIR = v.RMaxLIR
	if v.PhyllochronsToSilk > 0 {
		ph.PhyllochronsToSilk = v.PhyllochronsToSilk
	}
	if params.GrainFillingGDD > 0 {
		ph.GrainFillingGDD = params.GrainFillingGDD
	}
	if params.Primordia > 0 {
		pc.Primordia = params.Primordia
		ph.InitialLeaves = params.Primordia
	}

	pc.Latitude, pc.Longitude, pc.Altitude = in.Latitude, in.Longitude, in.Altitude
	pc.PlantDensity = in.PlantDensity
	pc.RowSpacing = in.RowSpacing

	if params.SeedMass > 0 {
		pc.SeedMass = params.SeedMass
	}
	if params.LeafAngleFactor > 0 {
		pc.LeafAngleFactor = params.LeafAngleFactor
	}
	if params.LeafWidth > 0 {
		pc.LeafWidth = params.LeafWidth
	}
	switch params.LeafWeighting {
	case "uniform":
		pc.LeafWeighting = carbon.Uniform
	case "growing-point":
		pc.LeafWeighting = carbon.GrowingPoint
	}
	return pc
}

func openSinks(out config.OutputData) ([]output.Sink, error) {
	switch out.Format {
	case config.OutputCSV:
		sink, err := output.NewCSVSink(out.CropFile, out.LeafFile)
		if err != nil {
			return nil, err
		}
		return []output.Sink{sink}, nil
	case config.OutputSQLite:
		sink, err := output.NewSQLiteSink(out.Database)
		if err != nil {
			return nil, err
		}
		return []output.Sink{sink}, nil
	case config.OutputMsgpack:
		sink, err := output.NewMsgpackSink(out.CropFile)
		if err != nil {
			return nil, err
		}
		return []output.Sink{sink}, nil
	case config.OutputNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown output format %q", out.Format)
}

func openWeather(cfg *config.ConfigData, loc *time.Location, begin, end time.Time, step time.Duration) (weather.Source, error) {
	in, w := cfg.Initials, cfg.Run.Weather
	site := weather.Site{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Altitude:  in.Altitude,
		Location:  loc,
		CO2:       w.CO2,
	}

	switch w.Source {
	case config.WeatherCSV:
		return weather.OpenCSV(w.File, site)
	case config.WeatherSynthetic:
		params := weather.DefaultSyntheticParams()
		syn := w.Synthetic
		for _, o := range []struct {
			dst *float64
			v   float64
		}{
			{&params.MeanTemperature, syn.MeanTemperature},
			{&params.SeasonalAmplitude, syn.SeasonalAmplitude},
			{&params.DailyAmplitude, syn.DailyAmplitude},
			{&params.RelativeHumidity, syn.RelativeHumidity},
			{&params.Cloudiness, syn.Cloudiness},
		} {
			if o.v != 0 {
				*o.dst = o.v
			}
		}
		if syn.Seed != 0 {
			params.Seed = syn.Seed
		}
		return weather.NewSynthetic(site, params, begin, end, step), nil
	}
	return nil, fmt.Errorf("unknown weather source %q", w.Source)
}

// TotalSteps is the number of steps from the begin date to the end date.
func (s *Simulation) TotalSteps() int {
	return int(s.end.Sub(s.begin) / s.step)
}

// Steps is the number of steps run so far.
func (s *Simulation) Steps() int { return s.steps }

// Step runs one step of weather. The soil follows the weather from the
// begin date; the plant joins on the sowing date.
func (s *Simulation) Step(w types.WeatherState) error {
	s.steps++
	soilState := s.soil.Prepare(w)
	if w.Time.Before(s.sowing) {
		return nil
	}

	feedback, err := s.plant.Update(w, soilState)
	if err != nil {
		return err
	}
	s.soil.Update(feedback, s.plant.Exchange().Transpiration())
	s.metrics.ObservePlant(s.plant)

	if err := s.recorder.Record(s.plant); err != nil {
		return fmt.Errorf("recording %v: %w", w.Time, err)
	}
	return nil
}

// Run reads weather until the end date, the end of the weather or the
// death of the plant. onStep, if not nil, is called after every step.
// A cancelled done channel stops the run early without error.
func (s *Simulation) Run(done <-chan struct{}, onStep func(step int)) error {
	for {
		select {
		case <-done:
			s.logger.Infow("simulation interrupted", "steps", s.steps)
			return nil
		default:
		}

		w, err := s.weather.Next()
		if errors.Is(err, io.EOF) {
			s.logger.Infow("weather exhausted", "steps", s.steps)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading weather: %w", err)
		}
		if w.Time.Before(s.begin) {
			continue
		}
		if !w.Time.Before(s.end) {
			s.logger.Infow("reached end date", "steps", s.steps)
			return nil
		}

		if err := s.Step(w); err != nil {
			return err
		}
		if onStep != nil {
			onStep(s.steps)
		}
		if s.plant.Pheno.Dead() {
			s.logger.Infow("plant died", "time", w.Time, "steps", s.steps)
			return nil
		}
	}
}

// Close releases the weather source and flushes the reports.
func (s *Simulation) Close() error {
	return errors.Join(s.weather.Close(), s.recorder.Close())
}

// Plant is the simulated plant.
func (s *Simulation) Plant() *plant.Plant { return s.plant }

// Recorder holds the run's reports.
func (s *Simulation) Recorder() *output.Recorder { return s.recorder }

// Metrics are the run's collectors.
func (s *Simulation) Metrics() *metrics.Metrics { return s.metrics }
