package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

type column[T any] struct {
	name  string
	value func(T) string
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Column headings follow the legacy g01/leaf report files.
var cropColumns = []column[CropRecord]{
	{"run_id", func(r CropRecord) string { return r.RunID }},
	{"date", func(r CropRecord) string { return r.Time.Format("2006-01-02") }},
	{"jday", func(r CropRecord) string { return strconv.Itoa(r.JulianDay) }},
	{"time", func(r CropRecord) string { return strconv.Itoa(r.Hour) }},
	{"Leaves", func(r CropRecord) string { return strconv.Itoa(r.Leaves) }},
	{"Dropped", func(r CropRecord) string { return strconv.Itoa(r.DroppedLeaves) }},
	{"LA/pl", func(r CropRecord) string { return num(r.GreenArea) }},
	{"LA_dead", func(r CropRecord) string { return num(r.SenescentArea) }},
	{"LAI", func(r CropRecord) string { return num(r.LAI) }},
	{"RH", func(r CropRecord) string { return num(r.RH) }},
	{"LeafWP", func(r CropRecord) string { return num(r.LeafWP) }},
	{"PFD", func(r CropRecord) string { return num(r.PFD) }},
	{"SolRad", func(r CropRecord) string { return num(r.SolarRadiation) }},
	{"SoilT", func(r CropRecord) string { return num(r.TSoil) }},
	{"Tair", func(r CropRecord) string { return num(r.TAir) }},
	{"Tcan", func(r CropRecord) string { return num(r.TCanopy) }},
	{"ETdmd", func(r CropRecord) string { return num(r.ETDemand) }},
	{"ETsply", func(r CropRecord) string { return num(r.ETSupply) }},
	{"Pn", func(r CropRecord) string { return num(r.NetPhotosynth) }},
	{"Pg", func(r CropRecord) string { return num(r.GrossPhotosynth) }},
	{"Respir", func(r CropRecord) string { return num(r.Respiration) }},
	{"av_gs", func(r CropRecord) string { return num(r.Conductance) }},
	{"VPD", func(r CropRecord) string { return num(r.VPD) }},
	{"Nitr", func(r CropRecord) string { return num(r.Nitrogen) }},
	{"N_Dem", func(r CropRecord) string { return num(r.NitrogenDemand) }},
	{"NUpt", func(r CropRecord) string { return num(r.NitrogenUptake) }},
	{"LeafN", func(r CropRecord) string { return num(r.LeafNitrogen) }},
	{"PCRL", func(r CropRecord) string { return num(r.RootCarbon) }},
	{"totalDM", func(r CropRecord) string { return num(r.TotalMass) }},
	{"shootDM", func(r CropRecord) string { return num(r.ShootMass) }},
	{"earDM", func(r CropRecord) string { return num(r.EarMass) }},
	{"GrleafDM", func(r CropRecord) string { return num(r.LeafMass) }},
	{"DrpLfDM", func(r CropRecord) string { return num(r.DroppedLeafMass) }},
	{"stemDM", func(r CropRecord) string { return num(r.StemMass) }},
	{"rootDM", func(r CropRecord) string { return num(r.RootMass) }},
	{"SoilRt", func(r CropRecord) string { return num(r.SoilRoot) }},
	{"MxRtDep", func(r CropRecord) string { return num(r.MaxRootDepth) }},
	{"AvailW", func(r CropRecord) string { return num(r.AvailableWater) }},
	{"solubleC", func(r CropRecord) string { return num(r.SolubleCarbon) }},
	{"Note", func(r CropRecord) string { return r.Stage }},
}

var leafColumns = []column[LeafRecord]{
	{"run_id", func(r LeafRecord) string { return r.RunID }},
	{"date", func(r LeafRecord) string { return r.Time.Format("2006-01-02") }},
	{"jday", func(r LeafRecord) string { return strconv.Itoa(r.JulianDay) }},
	{"time", func(r LeafRecord) string { return strconv.Itoa(r.Hour) }},
	{"Lvs_Init", func(r LeafRecord) string { return strconv.Itoa(r.LeavesInitiated) }},
	{"Lvs_Apr", func(r LeafRecord) string { return strconv.Itoa(r.LeavesAppeared) }},
	{"Leaf_#", func(r LeafRecord) string { return strconv.Itoa(r.Rank) }},
	{"area", func(r LeafRecord) string { return num(r.GreenArea) }},
	{"mass", func(r LeafRecord) string { return num(r.Mass) }},
	{"Sen_Area", func(r LeafRecord) string { return num(r.SenescentArea) }},
	{"Pntl_Area", func(r LeafRecord) string { return num(r.PotentialArea) }},
	{"Longev", func(r LeafRecord) string { return num(r.Longevity) }},
	{"CarbRat", func(r LeafRecord) string { return num(r.Nitrogen) }},
	{"SLA", func(r LeafRecord) string { return num(r.SLA) }},
	{"dropped", func(r LeafRecord) string { return flag(r.Dropped) }},
	{"state", func(r LeafRecord) string { return flag(r.Growing) }},
	{"GDD Sum", func(r LeafRecord) string { return num(r.GDDSum) }},
}

func header[T any](cols []column[T]) []string {
	h := make([]string, len(cols))
	for i, c := range cols {
		h[i] = c.name
	}
	return h
}

func row[T any](cols []column[T], r T) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.value(r)
	}
	return out
}

// CSVSink writes the crop report and, optionally, the leaf report as
// comma-separated files with a header row.
type CSVSink struct {
	crop  *csv.Writer
	leaf  *csv.Writer
	files []io.Closer
}

// NewCSVSink creates cropPath and leafPath. An empty leafPath skips the
// leaf report.
func NewCSVSink(cropPath, leafPath string) (*CSVSink, error) {
	s := &CSVSink{}

	f, err := os.Create(cropPath)
	if err != nil {
		return nil, fmt.Errorf("creating crop report: %w", err)
	}
	s.files = append(s.files, f)
	s.crop = csv.NewWriter(f)
	if err := s.crop.Write(header(cropColumns)); err != nil {
		s.Close()
		return nil, err
	}

	if leafPath != "" {
		f, err := os.Create(leafPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating leaf report: %w", err)
		}
		s.files = append(s.files, f)
		s.leaf = csv.NewWriter(f)
		if err := s.leaf.Write(header(leafColumns)); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVSink) WriteCrop(r CropRecord) error {
	return s.crop.Write(row(cropColumns, r))
}

func (s *CSVSink) WriteLeaves(rs []LeafRecord) error {
	if s.leaf == nil {
		return nil
	}
	for _, r := range rs {
		if err := s.leaf.Write(row(leafColumns, r)); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes both writers and closes the files.
func (s *CSVSink) Close() error {
	var firstErr error
	for _, w := range []*csv.Writer{s.crop, s.leaf} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.files = nil
	return firstErr
}
