package weather

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/maizsim/internal/timer"
	"github.com/chrissnell/maizsim/internal/types"
	"github.com/chrissnell/maizsim/pkg/solar"
)

// Columns of an hourly weather file. The first row names them, in any
// order. par, rain and co2 may be left out.
//
//	jday  day number, see timer.JulianDay
//	hour  0-23
//	srad  global radiation, W m-2
//	par   PAR, W m-2
//	tair  C
//	rh    %
//	wind  km h-1
//	rain  mm
//	co2   ppm
var requiredColumns = []string{"jday", "hour", "srad", "tair", "rh", "wind"}

// CSVSource reads an hourly weather file.
type CSVSource struct {
	site    Site
	reader  *csv.Reader
	closer  io.Closer
	columns map[string]int
	line    int
}

// OpenCSV opens an hourly weather file.
func OpenCSV(path string, site Site) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weather file: %w", err)
	}
	src, err := NewCSVSource(f, site)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("weather file %s: %w", path, err)
	}
	src.closer = f
	return src, nil
}

// NewCSVSource reads weather from r, starting with the header row.
func NewCSVSource(r io.Reader, site Site) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return &CSVSource{site: site, reader: cr, columns: columns, line: 1}, nil
}

// Next returns the next record, or io.EOF.
func (c *CSVSource) Next() (types.WeatherState, error) {
	record, err := c.reader.Read()
	if errors.Is(err, io.EOF) {
		return types.WeatherState{}, io.EOF
	}
	c.line++
	if err != nil {
		return types.WeatherState{}, fmt.Errorf("line %d: %w", c.line, err)
	}
	w, err := c.parse(record)
	if err != nil {
		return types.WeatherState{}, fmt.Errorf("line %d: %w", c.line, err)
	}
	return w, nil
}

func (c *CSVSource) field(record []string, name string) (float64, bool, error) {
	i, ok := c.columns[name]
	if !ok || i >= len(record) || strings.TrimSpace(record[i]) == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
	if err != nil {
		return 0, false, fmt.Errorf("column %s: %w", name, err)
	}
	return v, true, nil
}

func (c *CSVSource) parse(record []string) (types.WeatherState, error) {
	values := make(map[string]float64, len(c.columns))
	for name := range c.columns {
		v, ok, err := c.field(record, name)
		if err != nil {
			return types.WeatherState{}, err
		}
		if ok {
			values[name] = v
		}
	}
	for _, name := range requiredColumns {
		if _, ok := values[name]; !ok {
			return types.WeatherState{}, fmt.Errorf("empty column %s", name)
		}
	}

	day := timer.FromJulianDay(values["jday"])
	t := time.Date(day.Year(), day.Month(), day.Day(), int(values["hour"]), 0, 0, 0, c.site.location())

	w := types.WeatherState{
		Time:           t,
		TAir:           values["tair"],
		RH:             values["rh"] / 100,
		Wind:           values["wind"] * 1000 / 3600,
		SolarRadiation: values["srad"],
		PFD:            values["par"] * solar.PhotonsPerJoule,
		Rain:           values["rain"],
		CO2:            values["co2"],
	}
	c.site.complete(&w)
	return w, nil
}

func (c *CSVSource) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
