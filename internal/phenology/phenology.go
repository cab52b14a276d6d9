// Package phenology tracks maize developmental timing as a set of
// temperature-driven stages polled once per simulation step.
package phenology

import (
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/internal/tracker"
)

// Stage labels reported by CurrentStage.
const (
	StageMatured          = "Matured"
	StageGrainFilling     = "grainFill"
	StageSilked           = "Silked"
	StageTasselInitiation = "Tasselinit"
	StageEmerged          = "Emerged"
	StageInactive         = "Inactive"
	StageNone             = "none"
)

// Params are the cultivar and timing parameters of the stage machine.
type Params struct {
	// Timestep is the simulation step in days.
	Timestep float64

	GDDRating          float64
	JuvenileLeaves     int
	DayLengthSensitive bool
	RMaxLTAR           float64
	RMaxLIR            float64
	PhyllochronsToSilk float64
	InitialLeaves      int
	GrainFillingGDD    float64
}

// DefaultParams returns the generic hybrid parameters with an hourly step.
func DefaultParams() Params {
	return Params{
		Timestep:           1.0 / 24,
		GDDRating:          1331,
		JuvenileLeaves:     15,
		DayLengthSensitive: true,
		RMaxLTAR:           0.53,
		RMaxLIR:            0.978,
		PhyllochronsToSilk: 8,
		InitialLeaves:      5,
		GrainFillingGDD:    170,
	}
}

// Conditions is the environment for one step.
type Conditions struct {
	Time          time.Time
	Temperature   float64
	DayLength     float64
	DroppedLeaves int
}

// Event is a recorded phenological transition.
type Event struct {
	Stage              string
	Time               time.Time
	GDDSum             float64
	GrowingTemperature float64
}

// Phenology owns the ordered stage list and the cross-stage accessors.
type Phenology struct {
	params     Params
	logger     *zap.SugaredLogger
	conditions Conditions
	events     []Event

	gst *recorder
	gdd *recorder
	gti *recorder

	germination            *Germination
	emergence              *Emergence
	leafInitiation         *LeafInitiation
	leafAppearance         *LeafAppearance
	tasselInitiation       *TasselInitiation
	silking                *Silking
	grainFillingInitiation *GrainFillingInitiation
	maturity               *Maturity
	death                  *Death
	pti                    *phyllochronRecorder

	stages []Stage
}

// New builds the stage machine. A nil logger discards transition records.
func New(params Params, logger *zap.SugaredLogger) *Phenology {
	p := &Phenology{
		params: params,
		logger: log.OrNop(logger),
	}
	dt := params.Timestep

	p.gst = &recorder{newStage(p, "growing season temperature", tracker.NewTemperatureTracker())}
	p.gdd = &recorder{newStage(p, "growing degree days", tracker.NewGrowingDegreeDays(tracker.DefaultGDD, dt))}
	p.gti = &recorder{newStage(p, "general thermal index", tracker.NewReproductiveGTI(dt))}

	p.germination = &Germination{newStage(p, "germination", tracker.NewBetaFunc(tracker.DefaultBeta(0.45), dt))}
	p.emergence = &Emergence{stage: newStage(p, "emergence", tracker.NewBetaFunc(tracker.DefaultBeta(0.2388), dt))}
	p.leafInitiation = &LeafInitiation{
		stage:         newStage(p, "leaf initiation", tracker.NewBetaFunc(tracker.DefaultBeta(params.RMaxLIR), dt)),
		initialLeaves: params.InitialLeaves,
	}
	p.leafAppearance = &LeafAppearance{newStage(p, "leaf appearance", tracker.NewBetaFunc(tracker.DefaultBeta(params.RMaxLTAR), dt))}
	induction := tracker.NewLeafInductionRate(p.gst.tracker, float64(params.JuvenileLeaves),
		params.DayLengthSensitive, func() float64 { return p.conditions.DayLength })
	p.tasselInitiation = &TasselInitiation{
		stage:          newStage(p, "tassel initiation", induction),
		juvenileLeaves: params.JuvenileLeaves,
	}
	p.silking = &Silking{
		stage:        newStage(p, "silking", tracker.NewBetaFunc(tracker.DefaultBeta(params.RMaxLTAR), dt)),
		phyllochrons: params.PhyllochronsToSilk,
	}
	p.grainFillingInitiation = &GrainFillingInitiation{
		stage: newStage(p, "grain filling", tracker.NewGrowingDegreeDays(tracker.DefaultGDD, dt)),
		gdd:   params.GrainFillingGDD,
	}
	p.maturity = &Maturity{
		stage:     newStage(p, "maturity", tracker.NewGrowingDegreeDays(tracker.DefaultGDD, dt)),
		gddRating: params.GDDRating,
	}
	p.death = &Death{newStage(p, "death", tracker.NewTracker(dt))}
	p.pti = &phyllochronRecorder{recorder{newStage(p, "phyllochrons since tassel initiation",
		tracker.NewBetaFunc(tracker.DefaultBeta(params.RMaxLTAR), dt))}}

	p.stages = []Stage{
		p.gst, p.gdd, p.gti,
		p.germination, p.emergence, p.leafInitiation, p.leafAppearance,
		p.tasselInitiation, p.silking, p.grainFillingInitiation, p.maturity, p.death,
		p.pti,
	}
	return p
}

// Update advances every active stage by one step. Stages are selected before
// any of them is updated, so a stage that becomes ready this step starts
// on the next. Any stage found over afterwards is finished, including one
// whose predicate turned true without an update of its own.
func (p *Phenology) Update(c Conditions) {
	p.conditions = c

	queue := make([]Stage, 0, len(p.stages))
	for _, s := range p.stages {
		if s.Ready() && !s.Over() {
			queue = append(queue, s)
		}
	}
	for _, s := range queue {
		s.Update(c.Temperature)
	}
	for _, s := range p.stages {
		if !s.finished() && s.Over() {
			s.markFinished()
			s.Finish()
		}
	}
}

func (p *Phenology) transition(stage string) {
	e := Event{
		Stage:              stage,
		Time:               p.conditions.Time,
		GDDSum:             p.gdd.Rate(),
		GrowingTemperature: p.gst.Rate(),
	}
	p.events = append(p.events, e)
	p.logger.Infow("phenological transition",
		"stage", e.Stage,
		"gdd_sum", e.GDDSum,
		"growing_temperature", e.GrowingTemperature,
		"time", e.Time,
	)
}

// Stages returns the stages in evaluation order.
func (p *Phenology) Stages() []Stage { return p.stages }

// Events returns the transitions recorded so far.
func (p *Phenology) Events() []Event { return p.events }

func (p *Phenology) Params() Params { return p.params }

func (p *Phenology) Timestep() float64 { return p.params.Timestep }

// Temperature is the temperature of the most recent update.
func (p *Phenology) Temperature() float64 { return p.conditions.Temperature }

func (p *Phenology) OptimalTemperature() float64 { return tracker.DefaultTOpt }

// GrowingTemperature is the mean temperature since sowing.
func (p *Phenology) GrowingTemperature() float64 { return p.gst.Rate() }

// GDDSum is the degree-day total since emergence, or since sowing before it.
func (p *Phenology) GDDSum() float64 { return p.gdd.Rate() }

// GTI is the reproductive general thermal index since emergence.
func (p *Phenology) GTI() float64 { return p.gti.Rate() }

func (p *Phenology) EmergeGDD() float64 { return p.emergence.emergeGDD }

func (p *Phenology) LeavesInitiated() int { return p.leafInitiation.Leaves() }

func (p *Phenology) LeavesAppeared() int { return p.leafAppearance.Leaves() }

func (p *Phenology) LeavesGeneric() int { return p.params.JuvenileLeaves }

// LeavesPotential is the final leaf number as far as it is known: the
// generic number until more leaves than that have been initiated.
func (p *Phenology) LeavesPotential() int { return max(p.LeavesGeneric(), p.LeavesInitiated()) }

func (p *Phenology) Germinating() bool { return ing(p.germination) }

func (p *Phenology) Germinated() bool { return p.germination.Over() }

func (p *Phenology) Emerging() bool { return ing(p.emergence) }

func (p *Phenology) Emerged() bool { return p.emergence.Over() }

func (p *Phenology) VegetativeGrowing() bool {
	return p.germination.Over() && !p.tasselInitiation.Over()
}

func (p *Phenology) TasselInitiated() bool { return p.tasselInitiation.Over() }

func (p *Phenology) Silking() bool { return ing(p.silking) }

func (p *Phenology) Silked() bool { return p.silking.Over() }

func (p *Phenology) GrainFilling() bool { return p.grainFillingInitiation.Over() }

func (p *Phenology) Matured() bool { return p.maturity.Over() }

func (p *Phenology) Dead() bool { return p.death.Over() }

// GDDAfterEmergence is zero until emergence.
func (p *Phenology) GDDAfterEmergence() float64 {
	if !p.emergence.Over() {
		return 0
	}
	return p.gdd.Rate()
}

func (p *Phenology) LeavesAppearedSinceTasselInitiation() int {
	return p.leafAppearance.Leaves() - p.tasselInitiation.AppearedLeaves()
}

func (p *Phenology) LeavesToAppearSinceTasselInitiation() int {
	return p.tasselInitiation.LeavesToAppear()
}

// PhyllochronsSinceTasselInitiation is zero before tassel initiation.
func (p *Phenology) PhyllochronsSinceTasselInitiation() float64 {
	return p.pti.Rate()
}

// ReproductiveScale is the fraction of phyllochrons elapsed since tassel
// initiation out of those between tassel initiation and silking: one per
// leaf still to appear plus the silking phyllochrons. It drives the
// shoot/root and shoot-organ partitioning and keeps growing after silking.
func (p *Phenology) ReproductiveScale() float64 {
	if !p.tasselInitiation.Over() {
		return 0
	}
	total := float64(p.tasselInitiation.LeavesToAppear()) + p.params.PhyllochronsToSilk
	if total <= 0 {
		return 0
	}
	return p.pti.Rate() / total
}

// CurrentStage returns the most advanced terminal condition reached.
func (p *Phenology) CurrentStage() string {
	switch {
	case p.maturity.Over():
		return StageMatured
	case p.grainFillingInitiation.Over():
		return StageGrainFilling
	case p.silking.Over():
		return StageSilked
	case p.tasselInitiation.Over():
		return StageTasselInitiation
	case p.emergence.Over():
		return StageEmerged
	case p.death.Over():
		return StageInactive
	default:
		return StageNone
	}
}

func ing(s Stage) bool { return s.Ready() && !s.Over() }
