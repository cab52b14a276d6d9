package nitrogen

import (
	"math"
	"testing"
)

func TestLeafFraction(t *testing.T) {
	tests := []struct {
		gdd      float64
		expected float64
	}{
		{gdd: 0, expected: 0.79688},
		{gdd: 1000, expected: 0.79688 - 0.23747 - 0.086145},
		{gdd: 3000, expected: 0},
	}
	for _, tt := range tests {
		if got := LeafFraction(tt.gdd); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("LeafFraction(%v) = %v, want %v", tt.gdd, got, tt.expected)
		}
	}
	for gdd := 0.0; gdd < 5000; gdd += 10 {
		if LeafFraction(gdd) < 0 {
			t.Fatalf("negative leaf fraction at %v", gdd)
		}
	}
}

func TestPoolCap(t *testing.T) {
	n := New(0.275)
	if math.Abs(n.Pool-0.00935) > 1e-12 {
		t.Fatalf("seed pool = %v, want 0.00935", n.Pool)
	}

	// 5 g plant-1 at 8 plants m-2 is 40 g m-2: no cap
	n.UptakeFromSoil(1, 5, 8)
	if math.Abs(n.Pool-1.00935) > 1e-12 {
		t.Errorf("pool = %v, want uncapped 1.00935", n.Pool)
	}

	// 20 g plant-1 is 160 g m-2: capped at 1.26 g
	n.UptakeFromSoil(1, 20, 8)
	if math.Abs(n.Pool-0.063*20) > 1e-12 {
		t.Errorf("pool = %v, want capped %v", n.Pool, 0.063*20)
	}
	if math.Abs(n.CumulativeUptake-2) > 1e-12 {
		t.Errorf("cumulative uptake = %v", n.CumulativeUptake)
	}
}

func TestLeafContent(t *testing.T) {
	n := &Nitrogen{Pool: 0.1}
	// 0.079688 g over 0.05 m2
	if got := n.LeafContent(0, 500); math.Abs(got-1.59376) > 1e-9 {
		t.Errorf("LeafContent = %v, want 1.59376", got)
	}
	if got := n.LeafContent(0, 0); got != 0 {
		t.Errorf("LeafContent without leaves = %v", got)
	}
}

func TestDemand(t *testing.T) {
	n := &Nitrogen{}
	// small canopy: 4.1 % of the increase
	if got := n.Demand(50, 2, 8, 60); math.Abs(got-0.041*2/8) > 1e-12 {
		t.Errorf("young demand = %v, want %v", got, 0.041*2/8)
	}
	// diluted above 100 g m-2: factor 5/sqrt(400) = 0.25
	if got := n.Demand(400, 2, 8, 60); math.Abs(got-0.041*2/8*0.25) > 1e-12 {
		t.Errorf("closed canopy demand = %v", got)
	}
	if got := n.Demand(400, -3, 8, 60); got != 0 {
		t.Errorf("demand with shrinking shoot = %v", got)
	}
	if math.Abs(n.CumulativeDemand-0.041*2/8*1.25) > 1e-12 {
		t.Errorf("cumulative demand = %v", n.CumulativeDemand)
	}
}
