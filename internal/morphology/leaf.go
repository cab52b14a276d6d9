package morphology

import (
	"math"

	"github.com/chrissnell/maizsim/internal/tracker"
)

// Leaf expansion and longevity calibration (Fournier and Andrieu 1998;
// Birch et al. 1998; Kim et al. 2012).
const (
	minMaximumLength     = 115.0 // cm, longest leaf with the generic leaf number
	extraLeafLength      = 24.0  // cm2 per extra leaf
	maxElongationRate    = 12.0  // cm day-1 at the optimum
	widthToLength        = 0.106
	areaRatio            = 0.75
	stayGreen            = 3.5
	growthPeakTemp       = 18.7
	growthBaseTemp       = 8.0
	expansionThreshold   = -0.8657 // MPa predawn
	longevityThreshold   = -4.0    // MPa predawn
	waterSensitivity     = 0.4258
	waterHalfPotential   = -1.4251
	senescenceStressRate = 0.5
)

// Leaf is one leaf blade. It appears when phenology says so, expands along a
// determinate sigmoid (Yin et al. 2003), stays green for a while, then
// senesces and drops.
type Leaf struct {
	Organ
	Rank int

	elongation       *tracker.Series
	area             *tracker.Series
	aging            *tracker.Series
	senescence       *tracker.Series
	stayGreenStress  *tracker.Series
	senescenceStress *tracker.Series
}

func NewLeaf(dev Development, rank int) *Leaf {
	dt := dev.Timestep()
	q10 := tracker.Q10Params{Q10: 2.0, TOpt: dev.OptimalTemperature()}
	return &Leaf{
		Organ:      newOrgan(dev),
		Rank:       rank,
		elongation: tracker.NewBetaFunc(tracker.DefaultBeta(1.0), dt),
		// increments already cover one step
		area:             tracker.NewAccumulator(1),
		aging:            tracker.NewQ10Func(q10, dt),
		senescence:       tracker.NewQ10Func(q10, dt),
		stayGreenStress:  tracker.NewWaterStress(1.0, dt),
		senescenceStress: tracker.NewWaterStress(senescenceStressRate, dt),
	}
}

func (l *Leaf) leaves() float64 {
	return float64(l.dev.LeavesPotential())
}

// MaximumLength of the largest leaf on the plant, cm.
func (l *Leaf) MaximumLength() float64 {
	extra := float64(l.dev.LeavesPotential() - l.dev.LeavesGeneric())
	return math.Sqrt(minMaximumLength*minMaximumLength + extraLeafLength*extra)
}

func (l *Leaf) MaximumWidth() float64 {
	return l.MaximumLength() * widthToLength
}

// RankEffect scales leaf size by position relative to the largest leaf,
// Fournier and Andrieu (1998) eq 6 and 7.
func RankEffect(rank int, leaves, weight float64) float64 {
	largest := 5.93 + 0.33*leaves
	a := (-10.61 + 0.25*leaves) * weight
	b := (-5.99 + 0.27*leaves) * weight
	s := float64(rank)/largest - 1
	return math.Exp(a*s*s + b*s*s*s)
}

// LeafNumberEffect on the largest leaf area, Birch et al. (1998) fig 4.
func LeafNumberEffect(leaves float64) float64 {
	return math.Max(0.5, math.Min(1.0, math.Exp(-1.17+0.047*leaves)))
}

// PotentialLength in cm.
func (l *Leaf) PotentialLength() float64 {
	return l.MaximumLength() * RankEffect(l.Rank, l.leaves(), 0.5)
}

// GrowthDuration is the shortest elongation time in physiological days.
func (l *Leaf) GrowthDuration() float64 {
	return l.PotentialLength() / maxElongationRate
}

// PotentialArea is the final area without stress, cm2.
func (l *Leaf) PotentialArea() float64 {
	largest := l.MaximumLength() * l.MaximumWidth() * areaRatio
	return largest * LeafNumberEffect(l.leaves()) * RankEffect(l.Rank, l.leaves(), 1)
}

// GrowthTemperatureEffect adjusts final size to the mean growing season
// temperature; 1 at 18.7 C.
func GrowthTemperatureEffect(tGrow float64) float64 {
	r := (tGrow - growthBaseTemp) / (growthPeakTemp - growthBaseTemp)
	return math.Max(0, r*math.Exp(1-r))
}

// ElongationAge in physiological days.
func (l *Leaf) ElongationAge() float64 {
	return l.elongation.Rate()
}

// ElongationRate is the relative expansion rate per physiological day. It
// integrates to one over the growth duration.
func (l *Leaf) ElongationRate() float64 {
	te := l.GrowthDuration()
	t := math.Min(l.ElongationAge(), te)
	tm := te / 2
	a := (2*te - tm) / (te * (te - tm)) * math.Pow(tm/te, tm/(te-tm))
	b := math.Max(0, (te-t)/(te-tm)*math.Pow(t/tm, tm/(te-tm)))
	return math.Max(0, a*b)
}

// PotentialAreaIncrease for this step without water limitation, cm2.
func (l *Leaf) PotentialAreaIncrease() float64 {
	return GrowthTemperatureEffect(l.dev.GrowingTemperature()) * l.ElongationRate() * l.dev.Timestep() * l.PotentialArea()
}

// WaterPotentialEffect is the 0..1 reduction of leaf processes by predawn
// leaf water potential below threshold, both in MPa.
func WaterPotentialEffect(predawn, threshold float64) float64 {
	sf, psi := waterSensitivity, waterHalfPotential
	return math.Min(1.0, (1+math.Exp(sf*psi))/(1+math.Exp(sf*(psi-(predawn-threshold)))))
}

// ActualAreaIncrease is limited by water and never carries the leaf past
// its potential area.
func (l *Leaf) ActualAreaIncrease(predawnLWP float64) float64 {
	inc := WaterPotentialEffect(predawnLWP, expansionThreshold) * l.PotentialAreaIncrease()
	return math.Max(0, math.Min(inc, l.PotentialArea()-l.Area()))
}

// Area is the expanded area, green or not, cm2.
func (l *Leaf) Area() float64 { return l.area.Rate() }

func (l *Leaf) StayGreenDuration() float64 {
	return math.Max(0, stayGreen*l.GrowthDuration()-l.stayGreenStress.Rate())
}

func (l *Leaf) ActiveAge() float64 { return l.aging.Rate() }

func (l *Leaf) SenescenceDuration() float64 {
	return math.Max(0, l.GrowthDuration()-l.senescenceStress.Rate())
}

func (l *Leaf) SenescenceAge() float64 { return l.senescence.Rate() }

// SenescenceRatio is the senesced share of the area, 0..1.
func (l *Leaf) SenescenceRatio() float64 {
	t, te := l.SenescenceAge(), l.SenescenceDuration()
	if t >= te {
		return 1
	}
	tm := te / 2
	r := (1 + (te-t)/(te-tm)) * math.Pow(t/te, te/(te-tm))
	return math.Max(0, math.Min(1, r))
}

func (l *Leaf) GreenRatio() float64 { return 1 - l.SenescenceRatio() }

func (l *Leaf) GreenArea() float64 { return l.GreenRatio() * l.Area() }

func (l *Leaf) SenescentArea() float64 { return l.SenescenceRatio() * l.Area() }

// SpecificLeafArea in cm2 g-1, zero before the leaf has mass.
func (l *Leaf) SpecificLeafArea() float64 {
	if l.Mass() <= 0 {
		return 0
	}
	return l.Area() / l.Mass()
}

func (l *Leaf) Appeared() bool { return l.Rank <= l.dev.LeavesAppeared() }

func (l *Leaf) Mature() bool {
	return l.ElongationAge() >= l.GrowthDuration() || l.Area() >= l.PotentialArea()
}

func (l *Leaf) Growing() bool { return l.Appeared() && !l.Mature() }

func (l *Leaf) Aging() bool { return l.ActiveAge() >= l.StayGreenDuration() }

func (l *Leaf) Dead() bool { return l.SenescenceRatio() >= 1 }

func (l *Leaf) Dropped() bool { return l.Mature() && l.Dead() }

// Update advances the leaf one step: expansion, then aging or senescence,
// then water stress on longevity.
func (l *Leaf) Update(predawnLWP float64) {
	l.update()
	T := l.dev.Temperature()

	if l.Growing() {
		l.elongation.Update(T)
		l.area.Update(l.ActualAreaIncrease(predawnLWP))
	}

	if !l.Aging() {
		l.aging.Update(T)
	} else if !l.Dead() {
		l.senescence.Update(T)
	}

	effect := WaterPotentialEffect(predawnLWP, longevityThreshold)
	if l.Mature() {
		l.stayGreenStress.Update(effect)
	}
	if l.Aging() {
		l.senescenceStress.Update(effect)
	}
}
