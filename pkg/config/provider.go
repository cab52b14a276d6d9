package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/maizsim/internal/timer"
)

// ErrMissingField is returned when a legacy input file ends before a
// required field.
var ErrMissingField = errors.New("missing field")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData is everything one simulation run needs.
type ConfigData struct {
	Variety    VarietyData    `json:"variety" yaml:"variety"`
	Initials   InitialsData   `json:"initials" yaml:"initials"`
	Run        RunData        `json:"run" yaml:"run"`
	Parameters ParametersData `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// VarietyData holds the cultivar parameters.
type VarietyData struct {
	Name               string  `json:"name" yaml:"name"`
	Description        string  `json:"description,omitempty" yaml:"description,omitempty"`
	Cultivar           string  `json:"cultivar,omitempty" yaml:"cultivar,omitempty"`
	GDDRating          float64 `json:"gdd_rating" yaml:"gdd-rating"`
	GenericLeafNumber  int     `json:"generic_leaf_number" yaml:"generic-leaf-number"`
	DayLengthSensitive bool    `json:"day_length_sensitive" yaml:"day-length-sensitive"`
	RMaxLTAR           float64 `json:"rmax_ltar" yaml:"rmax-ltar"` // leaves day-1
	RMaxLIR            float64 `json:"rmax_lir" yaml:"rmax-lir"`   // leaves day-1
	PhyllochronsToSilk float64 `json:"phyllochrons_to_silk,omitempty" yaml:"phyllochrons-to-silk,omitempty"`
}

// InitialsData holds the site, stand and calendar of a run.
type InitialsData struct {
	Name             string  `json:"name" yaml:"name"`
	PopulationPerRow float64 `json:"population_per_row,omitempty" yaml:"population-per-row,omitempty"` // plants m-1
	RowSpacing       float64 `json:"row_spacing" yaml:"row-spacing"`                                   // cm
	PlantDensity     float64 `json:"plant_density" yaml:"plant-density"`                               // plants m-2
	RowAngle         float64 `json:"row_angle,omitempty" yaml:"row-angle,omitempty"`                   // degrees from north
	CanopyExtinction float64 `json:"canopy_extinction,omitempty" yaml:"canopy-extinction,omitempty"`

	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Altitude  float64 `json:"altitude" yaml:"altitude"` // m
	Timezone  string  `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	AutoIrrigate bool `json:"auto_irrigate,omitempty" yaml:"auto-irrigate,omitempty"`

	BeginDate       Date `json:"begin_date" yaml:"begin-date"`
	SowingDate      Date `json:"sowing_date" yaml:"sowing-date"`
	EndDate         Date `json:"end_date" yaml:"end-date"`
	TimestepMinutes int  `json:"timestep_minutes" yaml:"timestep-minutes"`
}

// RunData holds the driver settings.
type RunData struct {
	Name    string      `json:"name" yaml:"name"`
	Weather WeatherData `json:"weather" yaml:"weather"`
	Soil    SoilData    `json:"soil,omitempty" yaml:"soil,omitempty"`
	Output  OutputData  `json:"output" yaml:"output"`
	Server  ServerData  `json:"server,omitempty" yaml:"server,omitempty"`
}

// Weather sources.
const (
	WeatherCSV       = "csv"
	WeatherSynthetic = "synthetic"
)

// WeatherData selects and configures the weather source.
type WeatherData struct {
	Source    string        `json:"source" yaml:"source"`
	File      string        `json:"file,omitempty" yaml:"file,omitempty"`
	CO2       float64       `json:"co2,omitempty" yaml:"co2,omitempty"` // ppm
	Synthetic SyntheticData `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// SyntheticData overrides the generated climate. Zero fields keep the
// generator's defaults.
type SyntheticData struct {
	MeanTemperature   float64 `json:"mean_temperature,omitempty" yaml:"mean-temperature,omitempty"`
	SeasonalAmplitude float64 `json:"seasonal_amplitude,omitempty" yaml:"seasonal-amplitude,omitempty"`
	DailyAmplitude    float64 `json:"daily_amplitude,omitempty" yaml:"daily-amplitude,omitempty"`
	RelativeHumidity  float64 `json:"relative_humidity,omitempty" yaml:"relative-humidity,omitempty"`
	Cloudiness        float64 `json:"cloudiness,omitempty" yaml:"cloudiness,omitempty"`
	Seed              int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// SoilData is the prescribed soil the plant sees when no soil model is
// coupled.
type SoilData struct {
	LeafWaterPotential        float64 `json:"leaf_water_potential,omitempty" yaml:"leaf-water-potential,omitempty"`                 // MPa
	PredawnLeafWaterPotential float64 `json:"predawn_leaf_water_potential,omitempty" yaml:"predawn-leaf-water-potential,omitempty"` // MPa
	InitialRootWeight         float64 `json:"initial_root_weight,omitempty" yaml:"initial-root-weight,omitempty"`                   // g plant-1
	MaxRootDepth              float64 `json:"max_root_depth,omitempty" yaml:"max-root-depth,omitempty"`                             // cm
	AvailableWater            float64 `json:"available_water,omitempty" yaml:"available-water,omitempty"`                           // cm
}

// Output formats.
const (
	OutputCSV     = "csv"
	OutputSQLite  = "sqlite"
	OutputMsgpack = "msgpack"
	OutputNone    = "none"
)

// OutputData selects the report sink and schedule.
type OutputData struct {
	Format   string `json:"format" yaml:"format"`
	CropFile string `json:"crop_file,omitempty" yaml:"crop-file,omitempty"`
	LeafFile string `json:"leaf_file,omitempty" yaml:"leaf-file,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Daily    bool   `json:"daily" yaml:"daily"`
	Hourly   bool   `json:"hourly" yaml:"hourly"`
}

// ServerData configures the optional status server.
type ServerData struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen-addr,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// ParametersData are optional model overrides.
type ParametersData struct {
	SeedMass        float64 `json:"seed_mass,omitempty" yaml:"seed-mass,omitempty"` // g
	Primordia       int     `json:"primordia,omitempty" yaml:"primordia,omitempty"`
	LeafAngleFactor float64 `json:"leaf_angle_factor,omitempty" yaml:"leaf-angle-factor,omitempty"`
	LeafWidth       float64 `json:"leaf_width,omitempty" yaml:"leaf-width,omitempty"` // cm
	GrainFillingGDD float64 `json:"grain_filling_gdd,omitempty" yaml:"grain-filling-gdd,omitempty"`
	LeafWeighting   string  `json:"leaf_weighting,omitempty" yaml:"leaf-weighting,omitempty"` // uniform or growing-point
}

const dateLayout = "2006-01-02"

// Date is a calendar day. It reads and writes as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns midnight UTC of the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

// JulianDay is the day number counted from 1900-03-01.
func (d Date) JulianDay() int { return timer.JulianDay(d.Time) }

func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// ApplyDefaults fills unset fields with the generic hybrid, the Beltsville
// site and an hourly CSV run.
func (c *ConfigData) ApplyDefaults() {
	v := &c.Variety
	if v.GDDRating == 0 {
		v.GDDRating = 1331
	}
	if v.GenericLeafNumber == 0 {
		v.GenericLeafNumber = 15
	}
	if v.RMaxLTAR == 0 {
		v.RMaxLTAR = 0.53
	}
	if v.RMaxLIR == 0 {
		v.RMaxLIR = 0.978
	}
	if v.PhyllochronsToSilk == 0 {
		v.PhyllochronsToSilk = 8
	}

	in := &c.Initials
	if in.RowSpacing == 0 {
		in.RowSpacing = 75
	}
	if in.PlantDensity == 0 {
		in.PlantDensity = 8
	}
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
	if in.TimestepMinutes == 0 {
		in.TimestepMinutes = 60
	}
	if in.BeginDate.IsZero() {
		in.BeginDate = in.SowingDate
	}

	r := &c.Run
	if r.Weather.Source == "" {
		if r.Weather.File != "" {
			r.Weather.Source = WeatherCSV
		} else {
			r.Weather.Source = WeatherSynthetic
		}
	}
	if r.Weather.CO2 == 0 {
		r.Weather.CO2 = 400
	}
	if r.Soil.LeafWaterPotential == 0 {
		r.Soil.LeafWaterPotential = -0.5
	}
	if r.Soil.PredawnLeafWaterPotential == 0 {
		r.Soil.PredawnLeafWaterPotential = -0.1
	}
	if r.Soil.InitialRootWeight == 0 {
		r.Soil.InitialRootWeight = 0.01
	}
	if r.Output.Format == "" {
		r.Output.Format = OutputCSV
	}
	if r.Output.Format == OutputCSV && r.Output.CropFile == "" {
		r.Output.CropFile = "crop.csv"
	}
	if r.Output.Format == OutputSQLite && r.Output.Database == "" {
		r.Output.Database = "maizsim.db"
	}
	if r.Output.Format == OutputMsgpack && r.Output.CropFile == "" {
		r.Output.CropFile = "crop.msgpack"
	}
	if !r.Output.Daily && !r.Output.Hourly {
		r.Output.Hourly = true
	}
}

// Validate checks the configuration after defaults are applied.
func (c *ConfigData) Validate() error {
	v := c.Variety
	if v.GDDRating <= 0 || v.GenericLeafNumber <= 0 || v.RMaxLTAR <= 0 || v.RMaxLIR <= 0 {
		return fmt.Errorf("variety %q: GDD rating, leaf number and maximum rates must be positive", v.Name)
	}

	in := c.Initials
	if in.PlantDensity <= 0 || in.RowSpacing <= 0 {
		return fmt.Errorf("initials: plant density and row spacing must be positive")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return fmt.Errorf("initials: latitude %v out of range", in.Latitude)
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return fmt.Errorf("initials: timezone: %w", err)
	}
	if in.TimestepMinutes <= 0 || 24*60%in.TimestepMinutes != 0 {
		return fmt.Errorf("initials: timestep %d min must divide a day", in.TimestepMinutes)
	}
	if in.SowingDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("initials: sowing and end dates are required")
	}
	if in.SowingDate.Before(in.BeginDate.Time) || !in.EndDate.After(in.SowingDate.Time) {
		return fmt.Errorf("initials: need begin <= sowing < end, got %v, %v, %v", in.BeginDate, in.SowingDate, in.EndDate)
	}

	r := c.Run
	switch r.Weather.Source {
	case WeatherCSV:
		if r.Weather.File == "" {
			return fmt.Errorf("run: csv weather needs a file")
		}
	case WeatherSynthetic:
	default:
		return fmt.Errorf("run: unknown weather source %q", r.Weather.Source)
	}
	switch r.Output.Format {
	case OutputCSV, OutputMsgpack:
		if r.Output.CropFile == "" {
			return fmt.Errorf("run: %s output needs a crop file", r.Output.Format)
		}
	case OutputSQLite:
		if r.Output.Database == "" {
			return fmt.Errorf("run: sqlite output needs a database")
		}
	case OutputNone:
	default:
		return fmt.Errorf("run: unknown output format %q", r.Output.Format)
	}

	switch c.Parameters.LeafWeighting {
	case "", "uniform", "growing-point":
	default:
		return fmt.Errorf("parameters: unknown leaf weighting %q", c.Parameters.LeafWeighting)
	}
	return nil
}
