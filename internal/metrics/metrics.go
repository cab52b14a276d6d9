// Package metrics exposes simulation progress and solver health as
// Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chrissnell/maizsim/internal/carbon"
	"github.com/chrissnell/maizsim/internal/gasexchange"
	"github.com/chrissnell/maizsim/internal/plant"
)

const namespace = "maizsim"

// Metrics implements plant.Observer. Each instance owns its registry so
// several runs in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	steps          prometheus.Counter
	solves         *prometheus.CounterVec
	iterations     prometheus.Histogram
	supplyBranches *prometheus.CounterVec

	stage  *prometheus.GaugeVec
	mass   *prometheus.GaugeVec
	leaves *prometheus.GaugeVec
	lai    prometheus.Gauge
	gdd    prometheus.Gauge
}

var _ plant.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Simulation steps completed.",
		}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gasexchange",
			Name:      "solves_total",
			Help:      "Leaf gas-exchange solves by convergence.",
		}, []string{"converged"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gasexchange",
			Name:      "iterations",
			Help:      "Outer fixed-point iterations per leaf solve.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89},
		}),
		supplyBranches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "carbon",
			Name:      "supply_total",
			Help:      "Carbon supply decisions by rule.",
		}, []string{"branch"}),
		stage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage",
			Help:      "1 for the current developmental stage.",
		}, []string{"stage"}),
		mass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mass_grams",
			Help:      "Dry mass per plant by organ.",
		}, []string{"organ"}),
		leaves: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leaves",
			Help:      "Leaf counts.",
		}, []string{"state"}),
		lai: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leaf_area_index",
			Help:      "Green leaf area per ground area.",
		}),
		gdd: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gdd_sum",
			Help:      "Growing degree days since emergence.",
		}),
	}
	m.registry.MustRegister(
		m.steps, m.solves, m.iterations, m.supplyBranches,
		m.stage, m.mass, m.leaves, m.lai, m.gdd,
	)
	return m
}

func (m *Metrics) ObserveExchange(r gasexchange.Result) {
	if r.Converged {
		m.solves.WithLabelValues("true").Inc()
	} else {
		m.solves.WithLabelValues("false").Inc()
	}
	m.iterations.Observe(float64(r.Iterations))
}

func (m *Metrics) ObserveSupply(b carbon.Branch) {
	m.supplyBranches.WithLabelValues(b.String()).Inc()
}

// ObservePlant records the plant's state after a step.
func (m *Metrics) ObservePlant(p *plant.Plant) {
	m.steps.Inc()

	m.stage.Reset()
	m.stage.WithLabelValues(p.Pheno.CurrentStage()).Set(1)

	s := p.State()
	m.mass.WithLabelValues("total").Set(s.Mass.Total())
	m.mass.WithLabelValues("seed").Set(s.Mass.Seed)
	m.mass.WithLabelValues("leaf").Set(s.Mass.Leaf)
	m.mass.WithLabelValues("stem").Set(s.Mass.Stem)
	m.mass.WithLabelValues("ear").Set(s.Mass.Ear)
	m.mass.WithLabelValues("root").Set(s.Mass.Root)

	m.leaves.WithLabelValues("initiated").Set(float64(p.Pheno.LeavesInitiated()))
	m.leaves.WithLabelValues("appeared").Set(float64(p.Pheno.LeavesAppeared()))
	m.leaves.WithLabelValues("growing").Set(float64(s.GrowingLeaves))
	m.leaves.WithLabelValues("dropped").Set(float64(s.DroppedLeaves))

	m.lai.Set(s.LAI)
	m.gdd.Set(p.Pheno.GDDAfterEmergence())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
