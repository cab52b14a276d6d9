package metrics

import (
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/chrissnell/maizsim/internal/carbon"
	"github.com/chrissnell/maizsim/internal/gasexchange"
	"github.com/chrissnell/maizsim/internal/plant"
)

func TestObserveExchange(t *testing.T) {
	m := New()
	m.ObserveExchange(gasexchange.Result{Converged: true, Iterations: 4})
	m.ObserveExchange(gasexchange.Result{Converged: true, Iterations: 6})
	m.ObserveExchange(gasexchange.Result{Converged: false, Iterations: 100})

	if got := testutil.ToFloat64(m.solves.WithLabelValues("true")); got != 2 {
		t.Errorf("converged solves = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.solves.WithLabelValues("false")); got != 1 {
		t.Errorf("failed solves = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.iterations); n != 1 {
		t.Errorf("iterations histogram collected %d series", n)
	}
}

func TestObserveSupply(t *testing.T) {
	m := New()
	for _, b := range []carbon.Branch{carbon.FromPool, carbon.FromPool, carbon.Starvation} {
		m.ObserveSupply(b)
	}
	tests := []struct {
		branch carbon.Branch
		want   float64
	}{
		{carbon.FromPool, 2},
		{carbon.Starvation, 1},
		{carbon.FromReserve, 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.supplyBranches.WithLabelValues(tt.branch.String())); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.branch, got, tt.want)
		}
	}
}

func TestObservePlant(t *testing.T) {
	m := New()
	p, err := plant.New(plant.DefaultConfig(), nil, m)
	if err != nil {
		t.Fatal(err)
	}
	m.ObservePlant(p)
	m.ObservePlant(p)

	if got := testutil.ToFloat64(m.steps); got != 2 {
		t.Errorf("steps = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.mass.WithLabelValues("total")); math.Abs(got-p.State().Mass.Total()) > 1e-12 {
		t.Errorf("total mass gauge %v, plant has %v", got, p.State().Mass.Total())
	}
	if got := testutil.ToFloat64(m.stage.WithLabelValues(p.Pheno.CurrentStage())); got != 1 {
		t.Errorf("stage gauge = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.stage); n != 1 {
		t.Errorf("%d stage series, want only the current one", n)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSupply(carbon.FromReserve)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `maizsim_carbon_supply_total{branch="reserve"} 1`) {
		t.Errorf("metrics output missing the supply counter:\n%s", body)
	}
}
