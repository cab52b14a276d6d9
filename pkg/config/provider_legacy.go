package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Lines of a legacy run file, one path each.
const (
	runWeather = iota
	runTime
	runBiology
	runClimate
	runNitrogen
	runSolute
	runSoil
	runManagement
	runWater
	runWaterBoundary
	runInitials
	runVariety
	runGeometry
	runNodeGeometry
	runElementGeometry
	runMassBalance
	runPlantGraphics
	runLeafGraphics
	runNodeGraphics
	runElementGraphics
	runSurfaceGraphics
	runFluxGraphics
	runMassBalanceOut
	runFileLines
)

// LegacyProvider implements ConfigProvider for the line-based run, variety,
// initials and time files of the original model. Paths in the run file are
// taken relative to it. The weather file must be in the hourly CSV layout
// weather.CSVSource reads; plant and leaf graphics become the crop and leaf
// CSV reports.
type LegacyProvider struct {
	runFile string
}

// NewLegacyProvider reads the run file at runFile.
func NewLegacyProvider(runFile string) *LegacyProvider {
	return &LegacyProvider{runFile: runFile}
}

// LoadConfig reads the run file and the files it names.
func (l *LegacyProvider) LoadConfig() (*ConfigData, error) {
	f, err := os.Open(l.runFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	paths, err := readRunFile(f)
	if err != nil {
		return nil, fmt.Errorf("run file %s: %w", l.runFile, err)
	}
	dir := filepath.Dir(l.runFile)
	for i := range paths {
		paths[i] = resolve(dir, paths[i])
	}

	name := strings.TrimSuffix(filepath.Base(l.runFile), filepath.Ext(l.runFile))
	config := &ConfigData{
		Run: RunData{
			Name: name,
			Weather: WeatherData{
				Source: WeatherCSV,
				File:   paths[runWeather],
			},
			Output: OutputData{
				Format:   OutputCSV,
				CropFile: paths[runPlantGraphics],
				LeafFile: paths[runLeafGraphics],
			},
		},
	}

	steps := []struct {
		path  string
		parse func(io.Reader, *ConfigData) error
	}{
		{paths[runVariety], parseVariety},
		{paths[runInitials], parseInitials},
		{paths[runTime], parseTime},
	}
	for _, s := range steps {
		if err := parseFile(s.path, config, s.parse); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// IsReadOnly returns true; legacy files are never written.
func (l *LegacyProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for the legacy provider
func (l *LegacyProvider) Close() error {
	return nil
}

func parseFile(path string, config *ConfigData, parse func(io.Reader, *ConfigData) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := parse(f, config); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func readRunFile(r io.Reader) ([]string, error) {
	paths := make([]string, 0, runFileLines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() && len(paths) < runFileLines {
		paths = append(paths, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(paths) < runFileLines {
		return nil, fmt.Errorf("line %d: %w", len(paths)+1, ErrMissingField)
	}
	return paths, nil
}

// lineFile walks a legacy file line by line. Each call to fields or whole
// consumes one line.
type lineFile struct {
	scanner *bufio.Scanner
	line    int
}

func newLineFile(r io.Reader) *lineFile {
	return &lineFile{scanner: bufio.NewScanner(r)}
}

func (lf *lineFile) next() (string, error) {
	if !lf.scanner.Scan() {
		if err := lf.scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("line %d: %w", lf.line+1, ErrMissingField)
	}
	lf.line++
	return lf.scanner.Text(), nil
}

// skip consumes n heading lines.
func (lf *lineFile) skip(n int) error {
	for range n {
		if _, err := lf.next(); err != nil {
			return err
		}
	}
	return nil
}

// whole returns the trimmed line as one field.
func (lf *lineFile) whole() (string, error) {
	s, err := lf.next()
	return strings.TrimSpace(s), err
}

// fields splits the next line on whitespace and requires at least n
// fields.
func (lf *lineFile) fields(n int) ([]string, error) {
	s, err := lf.next()
	if err != nil {
		return nil, err
	}
	f := strings.Fields(s)
	if len(f) < n {
		return nil, fmt.Errorf("line %d: want %d fields, got %d: %w", lf.line, n, len(f), ErrMissingField)
	}
	return f, nil
}

func (lf *lineFile) float(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", lf.line, name, err)
	}
	return v, nil
}

func (lf *lineFile) integer(s, name string) (int, error) {
	v, err := lf.float(s, name)
	return int(v), err
}

func (lf *lineFile) flag(s, name string) (bool, error) {
	v, err := lf.float(s, name)
	return v != 0, err
}

func (lf *lineFile) date(s, name string) (Date, error) {
	t, err := time.Parse("01/02/2006", strings.Trim(s, `'"`))
	if err != nil {
		return Date{}, fmt.Errorf("line %d: %s: %w", lf.line, name, err)
	}
	return Date{t}, nil
}

// parseVariety reads description, cultivar, two headings and the
// parameter line. phyllochrons_to_silk is optional.
func parseVariety(r io.Reader, config *ConfigData) error {
	lf := newLineFile(r)
	v := &config.Variety

	var err error
	if v.Description, err = lf.whole(); err != nil {
		return err
	}
	if v.Cultivar, err = lf.whole(); err != nil {
		return err
	}
	v.Name = v.Cultivar
	if err := lf.skip(2); err != nil {
		return err
	}

	f, err := lf.fields(5)
	if err != nil {
		return err
	}
	if v.GDDRating, err = lf.float(f[0], "gdd_rating"); err != nil {
		return err
	}
	if v.GenericLeafNumber, err = lf.integer(f[1], "generic_leaf_number"); err != nil {
		return err
	}
	if v.DayLengthSensitive, err = lf.flag(f[2], "day_length_sensitivity"); err != nil {
		return err
	}
	if v.RMaxLTAR, err = lf.float(f[3], "Rmax_LTAR"); err != nil {
		return err
	}
	if v.RMaxLIR, err = lf.float(f[4], "Rmax_LIR"); err != nil {
		return err
	}
	if len(f) > 5 {
		if v.PhyllochronsToSilk, err = lf.float(f[5], "phyllochrons_to_silk"); err != nil {
			return err
		}
	}
	return nil
}

// parseInitials reads stand, site, irrigation and calendar blocks, each
// below a heading line. Stem-base coordinates and soil output flags are
// read past but unused.
func parseInitials(r io.Reader, config *ConfigData) error {
	lf := newLineFile(r)
	in := &config.Initials
	in.Name = config.Run.Name

	if err := lf.skip(2); err != nil {
		return err
	}
	f, err := lf.fields(6)
	if err != nil {
		return err
	}
	stand := []struct {
		dst  *float64
		name string
	}{
		{&in.PopulationPerRow, "poprow"},
		{&in.RowSpacing, "rowsp"},
		{&in.PlantDensity, "plant_density"},
		{&in.RowAngle, "row_angle"},
	}
	for i, s := range stand {
		if *s.dst, err = lf.float(f[i], s.name); err != nil {
			return err
		}
	}
	if len(f) > 6 {
		if in.CanopyExtinction, err = lf.float(f[6], "CEC"); err != nil {
			return err
		}
	}

	if err := lf.skip(1); err != nil {
		return err
	}
	if f, err = lf.fields(3); err != nil {
		return err
	}
	site := []struct {
		dst  *float64
		name string
	}{
		{&in.Latitude, "latitude"},
		{&in.Longitude, "longitude"},
		{&in.Altitude, "altitude"},
	}
	for i, s := range site {
		if *s.dst, err = lf.float(f[i], s.name); err != nil {
			return err
		}
	}

	if err := lf.skip(1); err != nil {
		return err
	}
	if f, err = lf.fields(1); err != nil {
		return err
	}
	if in.AutoIrrigate, err = lf.flag(f[0], "autoirrigate"); err != nil {
		return err
	}

	if err := lf.skip(1); err != nil {
		return err
	}
	if f, err = lf.fields(4); err != nil {
		return err
	}
	if in.BeginDate, err = lf.date(f[0], "begin"); err != nil {
		return err
	}
	if in.SowingDate, err = lf.date(f[1], "sowing"); err != nil {
		return err
	}
	if in.EndDate, err = lf.date(f[2], "end"); err != nil {
		return err
	}
	if in.TimestepMinutes, err = lf.integer(f[3], "timestep"); err != nil {
		return err
	}
	return nil
}

// parseTime reads the output and weather flags. Only hourly weather can
// drive the plant.
func parseTime(r io.Reader, config *ConfigData) error {
	lf := newLineFile(r)
	if err := lf.skip(4); err != nil {
		return err
	}

	f, err := lf.fields(2)
	if err != nil {
		return err
	}
	out := &config.Run.Output
	if out.Daily, err = lf.flag(f[0], "daily_output"); err != nil {
		return err
	}
	if out.Hourly, err = lf.flag(f[1], "hourly_output"); err != nil {
		return err
	}

	if err := lf.skip(1); err != nil {
		return err
	}
	if f, err = lf.fields(2); err != nil {
		return err
	}
	daily, err := lf.flag(f[0], "daily_weather")
	if err != nil {
		return err
	}
	hourly, err := lf.flag(f[1], "hourly_weather")
	if err != nil {
		return err
	}
	if daily || !hourly {
		return fmt.Errorf("line %d: only hourly weather is supported", lf.line)
	}
	return nil
}
