package plant

// Mass is the plant's dry matter in g plant-1.
type Mass struct {
	Seed        float64
	Leaf        float64 // green and dropped
	DroppedLeaf float64
	Stem        float64 // includes the soluble reserve
	Ear         float64
	Root        float64
}

// ActiveLeaf is leaf mass still on the plant.
func (m Mass) ActiveLeaf() float64 { return m.Leaf - m.DroppedLeaf }

func (m Mass) Shoot() float64 { return m.Seed + m.Stem + m.Leaf + m.Ear }

func (m Mass) Total() float64 { return m.Shoot() + m.Root }

// Area is leaf area in cm2 plant-1.
type Area struct {
	Leaf      float64
	Green     float64
	Senescent float64
	Potential float64
}

// State is a read-only snapshot of the plant taken between steps.
type State struct {
	Mass Mass
	Area Area

	LAI           float64 // m2 leaf m-2 ground
	GrowingLeaves int
	DroppedLeaves int
}

// State sums the organs.
func (p *Plant) State() State {
	var s State
	for _, nu := range p.nodalUnits {
		l := nu.Leaf
		s.Mass.Leaf += l.Mass()
		s.Mass.Stem += nu.Stem.Mass()
		s.Area.Leaf += l.Area()
		s.Area.Green += l.GreenArea()
		s.Area.Senescent += l.SenescentArea()
		s.Area.Potential += l.PotentialArea()
		if l.Dropped() {
			s.Mass.DroppedLeaf += l.Mass()
			s.DroppedLeaves++
		}
		if l.Growing() {
			s.GrowingLeaves++
		}
	}
	s.Mass.Seed = p.seed
	s.Mass.Stem += p.Carbon.Reserve
	s.Mass.Ear = p.ear.Mass()
	if p.root != nil {
		s.Mass.Root = p.root.Mass()
	}
	s.LAI = p.leafAreaIndex(s.Area.Green)
	return s
}

func (p *Plant) leafAreaIndex(greenArea float64) float64 {
	return greenArea * p.config.PlantDensity / 1e4
}
