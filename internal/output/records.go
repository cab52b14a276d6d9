// Package output turns plant state into crop and leaf report records and
// writes them to CSV, SQLite or MessagePack sinks.
package output

import (
	"time"

	"github.com/chrissnell/maizsim/internal/plant"
	"github.com/chrissnell/maizsim/internal/timer"
)

// CropRecord is one row of the crop report. Masses are g plant-1, areas
// cm2 plant-1 and fluxes per plant per step.
type CropRecord struct {
	RunID     string    `json:"run_id"`
	Time      time.Time `json:"time"`
	JulianDay int       `json:"jday"`
	Hour      int       `json:"hour"`

	Leaves        int     `json:"leaves"`
	DroppedLeaves int     `json:"dropped_leaves"`
	GreenArea     float64 `json:"green_area"`
	SenescentArea float64 `json:"senescent_area"`
	LAI           float64 `json:"lai"`

	RH             float64 `json:"rh"`
	LeafWP         float64 `json:"leaf_wp"`
	PFD            float64 `json:"pfd"`
	SolarRadiation float64 `json:"solar_radiation"`
	TSoil          float64 `json:"t_soil"`
	TAir           float64 `json:"t_air"`
	TCanopy        float64 `json:"t_canopy"`

	ETDemand        float64 `json:"et_demand"`
	ETSupply        float64 `json:"et_supply"`
	NetPhotosynth   float64 `json:"pn"`
	GrossPhotosynth float64 `json:"pg"`
	Respiration     float64 `json:"respiration"`
	Conductance     float64 `json:"av_gs"`
	VPD             float64 `json:"vpd"`

	Nitrogen       float64 `json:"nitrogen"`
	NitrogenDemand float64 `json:"n_demand"`
	NitrogenUptake float64 `json:"n_uptake"`
	LeafNitrogen   float64 `json:"leaf_n"`
	RootCarbon     float64 `json:"pcrl"`

	TotalMass       float64 `json:"total_dm"`
	ShootMass       float64 `json:"shoot_dm"`
	EarMass         float64 `json:"ear_dm"`
	LeafMass        float64 `json:"leaf_dm"`
	DroppedLeafMass float64 `json:"dropped_leaf_dm"`
	StemMass        float64 `json:"stem_dm"`
	RootMass        float64 `json:"root_dm"`

	SoilRoot       float64 `json:"soil_root"`
	MaxRootDepth   float64 `json:"max_root_depth"`
	AvailableWater float64 `json:"available_water"`
	SolubleCarbon  float64 `json:"soluble_c"`
	Stage          string  `json:"stage"`
}

// LeafRecord is one leaf's row in the leaf report.
type LeafRecord struct {
	RunID     string    `json:"run_id"`
	Time      time.Time `json:"time"`
	JulianDay int       `json:"jday"`
	Hour      int       `json:"hour"`

	LeavesInitiated int `json:"leaves_initiated"`
	LeavesAppeared  int `json:"leaves_appeared"`
	Rank            int `json:"rank"`

	GreenArea     float64 `json:"area"`
	Mass          float64 `json:"mass"`
	SenescentArea float64 `json:"senescent_area"`
	PotentialArea float64 `json:"potential_area"`
	Longevity     float64 `json:"longevity"`
	Nitrogen      float64 `json:"nitrogen"`
	SLA           float64 `json:"sla"`
	Dropped       bool    `json:"dropped"`
	Growing       bool    `json:"growing"`
	GDDSum        float64 `json:"gdd_sum"`
}

// NewCropRecord reads the plant after its latest Update.
func NewCropRecord(runID string, p *plant.Plant) CropRecord {
	w, s := p.Weather(), p.Soil()
	st := p.State()
	e := p.Exchange()
	gddAE := p.Pheno.GDDAfterEmergence()

	r := CropRecord{
		RunID:     runID,
		Time:      w.Time,
		JulianDay: timer.JulianDay(w.Time),
		Hour:      w.Time.Hour(),

		Leaves:        p.Pheno.LeavesAppeared(),
		DroppedLeaves: st.DroppedLeaves,
		GreenArea:     st.Area.Green,
		SenescentArea: st.Area.Senescent,
		LAI:           st.LAI,

		RH:             w.RH,
		LeafWP:         s.LeafWaterPotential,
		PFD:            w.PFD,
		SolarRadiation: w.SolarRadiation,
		TSoil:          s.TSoil,
		TAir:           w.TAir,
		TCanopy:        p.Pheno.Temperature(),

		ETDemand:        p.Feedback().ETDemand,
		ETSupply:        s.ETSupply,
		NetPhotosynth:   e.Net(),
		GrossPhotosynth: e.Gross(),
		Respiration:     p.MaintenanceRespiration(),
		VPD:             e.VPD(),

		Nitrogen:       p.Nitrogen.Pool,
		NitrogenDemand: p.Nitrogen.CumulativeDemand,
		NitrogenUptake: p.Nitrogen.CumulativeUptake,
		LeafNitrogen:   p.Nitrogen.Leaf(gddAE),
		RootCarbon:     s.ActualRootCarbonSupply,

		TotalMass:       st.Mass.Total(),
		ShootMass:       st.Mass.Shoot(),
		EarMass:         st.Mass.Ear,
		LeafMass:        st.Mass.Leaf,
		DroppedLeafMass: st.Mass.DroppedLeaf,
		StemMass:        st.Mass.Stem,
		RootMass:        st.Mass.Root,

		SoilRoot:       s.TotalRootWeight,
		MaxRootDepth:   s.MaxRootDepth,
		AvailableWater: s.AvailableWater,
		SolubleCarbon:  p.Carbon.Reserve,
		Stage:          p.Pheno.CurrentStage(),
	}
	if p.Pheno.Emerged() {
		r.Conductance = e.Conductance()
	}
	return r
}

// NewLeafRecords returns one record per nodal unit, lowest rank first.
func NewLeafRecords(runID string, p *plant.Plant) []LeafRecord {
	t := p.Weather().Time
	jday := timer.JulianDay(t)
	gddAE := p.Pheno.GDDAfterEmergence()

	units := p.NodalUnits()
	records := make([]LeafRecord, 0, len(units))
	for _, nu := range units {
		l := nu.Leaf
		records = append(records, LeafRecord{
			RunID:           runID,
			Time:            t,
			JulianDay:       jday,
			Hour:            t.Hour(),
			LeavesInitiated: p.Pheno.LeavesInitiated(),
			LeavesAppeared:  p.Pheno.LeavesAppeared(),
			Rank:            l.Rank,
			GreenArea:       l.GreenArea(),
			Mass:            l.Mass(),
			SenescentArea:   l.SenescentArea(),
			PotentialArea:   l.PotentialArea(),
			Longevity:       l.StayGreenDuration(),
			Nitrogen:        l.Nitrogen(),
			SLA:             l.SpecificLeafArea(),
			Dropped:         l.Dropped(),
			Growing:         l.Growing(),
			GDDSum:          gddAE,
		})
	}
	return records
}

// Schedule decides which steps are reported.
type Schedule struct {
	Hourly bool
	Daily  bool
}

// dailyHour is the clock hour of the once-a-day report.
const dailyHour = 6

// Due reports whether a step at t is written.
func (s Schedule) Due(t time.Time) bool {
	if s.Daily && t.Hour() == dailyHour {
		return true
	}
	return s.Hourly
}
