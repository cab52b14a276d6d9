package plant

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/chrissnell/maizsim/internal/carbon"
	"github.com/chrissnell/maizsim/internal/gasexchange"
	"github.com/chrissnell/maizsim/internal/types"
)

var sowing = time.Date(2002, 5, 1, 0, 0, 0, 0, time.UTC)

// warmDay is a clear 25 C day with light between 06:00 and 18:00.
func warmDay(step int) types.WeatherState {
	t := sowing.Add(time.Duration(step) * time.Hour)
	h := float64(t.Hour())
	pfd := math.Max(0, 1800*math.Sin(math.Pi*(h-6)/12))
	return types.WeatherState{
		Time:           t,
		TAir:           25,
		CO2:            400,
		RH:             0.6,
		Wind:           2,
		PAir:           100,
		PFD:            pfd,
		SolarRadiation: pfd / 4.6 / 0.5,
		DayLength:      12,
	}
}

func moistSoil(tSoil float64) types.SoilState {
	return types.SoilState{
		TSoil:                     tSoil,
		LeafWaterPotential:        -0.3,
		PredawnLeafWaterPotential: -0.1,
		TotalRootWeight:           0.01,
	}
}

func newPlant(t *testing.T) *Plant {
	t.Helper()
	p, err := New(DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNewPlant(t *testing.T) {
	p := newPlant(t)

	if n := len(p.NodalUnits()); n != 5 {
		t.Fatalf("got %d primordia, want 5", n)
	}
	for _, nu := range p.NodalUnits() {
		if math.Abs(nu.Leaf.Mass()-0.03465) > 1e-12 {
			t.Errorf("leaf %d mass = %v, want 0.03465", nu.Rank, nu.Leaf.Mass())
		}
	}
	if math.Abs(p.Carbon.Pool-0.11) > 1e-12 {
		t.Errorf("carbon pool = %v, want the seed's 0.11", p.Carbon.Pool)
	}
	if p.Root() != nil {
		t.Error("root exists before germination")
	}
	if got := p.State().Mass.Total(); math.Abs(got-0.44825) > 1e-12 {
		t.Errorf("total mass = %v, want 0.44825", got)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero density", func(c *Config) { c.PlantDensity = 0 }},
		{"zero timestep", func(c *Config) { c.Phenology.Timestep = 0 }},
		{"no seed", func(c *Config) { c.SeedMass = 0 }},
		{"no primordia", func(c *Config) { c.Primordia = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, nil, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestInvalidWeather(t *testing.T) {
	tests := []struct {
		name    string
		weather func(*types.WeatherState)
		soil    func(*types.SoilState)
	}{
		{"NaN air temperature", func(w *types.WeatherState) { w.TAir = math.NaN() }, nil},
		{"infinite PFD", func(w *types.WeatherState) { w.PFD = math.Inf(1) }, nil},
		{"NaN leaf water potential", nil, func(s *types.SoilState) { s.LeafWaterPotential = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlant(t)
			w, s := warmDay(12), moistSoil(25)
			if tt.weather != nil {
				tt.weather(&w)
			}
			if tt.soil != nil {
				tt.soil(&s)
			}
			_, err := p.Update(w, s)
			if !errors.Is(err, ErrInvalidWeather) {
				t.Errorf("Update error = %v, want ErrInvalidWeather", err)
			}
		})
	}
}

func TestColdSoilHoldsGermination(t *testing.T) {
	p := newPlant(t)
	before := p.State().Mass.Total()

	// Air is warm but the seed sits in frozen soil.
	for step := 0; step < 10*24; step++ {
		f, err := p.Update(warmDay(step), moistSoil(0))
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if f != (types.PlantFeedback{}) {
			t.Fatalf("step %d: feedback %+v before germination", step, f)
		}
	}
	if p.Pheno.Germinated() {
		t.Error("germinated at 0 C")
	}
	if p.Root() != nil {
		t.Error("root initiated before germination")
	}
	if got := p.State().Mass.Total(); got != before {
		t.Errorf("mass changed from %v to %v", before, got)
	}
}

func TestMidnight(t *testing.T) {
	p := newPlant(t)
	tests := []struct {
		clock string
		want  bool
	}{
		{"00:00", true},
		{"00:59", true},
		{"01:00", false},
		{"12:00", false},
		{"23:00", false},
	}
	for _, tt := range tests {
		c, _ := time.Parse("15:04", tt.clock)
		at := time.Date(2002, 5, 1, c.Hour(), c.Minute(), 0, 0, time.UTC)
		if got := p.midnight(at); got != tt.want {
			t.Errorf("midnight(%s) = %v, want %v", tt.clock, got, tt.want)
		}
	}
}

type branchCounter struct {
	exchanges int
	branches  map[carbon.Branch]int
}

func (b *branchCounter) ObserveExchange(gasexchange.Result) { b.exchanges++ }

func (b *branchCounter) ObserveSupply(branch carbon.Branch) { b.branches[branch]++ }

func TestSeason(t *testing.T) {
	cfg := DefaultConfig()
	// Clock time is UTC, so put the field on the prime meridian.
	cfg.Longitude = 0
	obs := &branchCounter{branches: map[carbon.Branch]int{}}
	p, err := New(cfg, nil, obs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var (
		sawNoonExchange bool
		lastRoot        float64
	)
	for step := 0; step < 120*24; step++ {
		w := warmDay(step)
		f, err := p.Update(w, moistSoil(25))
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if !p.Pheno.Germinated() {
			continue
		}
		if p.Pheno.Dead() {
			break
		}

		s := p.State()
		if math.IsNaN(s.Mass.Total()) || s.Mass.Total() <= 0 {
			t.Fatalf("step %d: total mass %v", step, s.Mass.Total())
		}
		if s.Mass.Seed < 0 {
			t.Fatalf("step %d: seed mass %v", step, s.Mass.Seed)
		}
		for _, nu := range p.NodalUnits() {
			if nu.Leaf.Mass() < 0 {
				t.Fatalf("step %d: leaf %d mass %v", step, nu.Rank, nu.Leaf.Mass())
			}
		}
		if want := max(cfg.Primordia, p.Pheno.LeavesInitiated()); len(p.NodalUnits()) != want {
			t.Fatalf("step %d: %d nodal units, want %d", step, len(p.NodalUnits()), want)
		}
		if p.Root().Mass() < lastRoot {
			t.Fatalf("step %d: root mass fell from %v to %v", step, lastRoot, p.Root().Mass())
		}
		lastRoot = p.Root().Mass()

		if w.Time.Hour() == 0 && p.Carbon.Pool != 0 {
			t.Fatalf("step %d: pool %v not reset at midnight", step, p.Carbon.Pool)
		}

		if p.Pheno.Emerged() {
			if f.GroundCover < 0 || f.GroundCover >= 1 {
				t.Fatalf("step %d: ground cover %v", step, f.GroundCover)
			}
			if f.CanopyHeight > cfg.RowSpacing {
				t.Fatalf("step %d: canopy height %v above row spacing", step, f.CanopyHeight)
			}
			if f.RootCarbonMax < 0 || f.NitrogenDemand < 0 {
				t.Fatalf("step %d: negative soil feedback %+v", step, f)
			}
		}

		e := p.Exchange()
		if e.LAI() > 0 && w.Time.Hour() == 12 && e.Gross() > 0 {
			sawNoonExchange = true
		}
		if e.LAI() > 0 && w.Time.Hour() == 0 && e.Net() >= 0 {
			t.Fatalf("step %d: net assimilation %v in the dark", step, e.Net())
		}
	}

	if !p.Pheno.Emerged() || !p.Pheno.TasselInitiated() {
		t.Fatalf("stage %q after 120 warm days", p.Pheno.CurrentStage())
	}
	if !sawNoonExchange {
		t.Error("no positive noon assimilation during the season")
	}
	if s := p.State(); s.Mass.Seed >= cfg.SeedMass {
		t.Errorf("seed mass %v never drawn down", s.Mass.Seed)
	}
	if p.Root().Mass() <= 0.01 {
		t.Errorf("root mass %v did not grow past the initial roots", p.Root().Mass())
	}
	if obs.exchanges == 0 {
		t.Error("observer saw no gas exchange")
	}
	if obs.branches[carbon.FromPool] == 0 {
		t.Errorf("observer branch counts %v, want supply from the pool", obs.branches)
	}
}
