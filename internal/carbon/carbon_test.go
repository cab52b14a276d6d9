package carbon

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const epsilon = 1e-9

func TestTemperatureEffect(t *testing.T) {
	tests := []struct {
		tAir     float64
		expected float64
	}{
		{tAir: 0, expected: 0.0890566},
		{tAir: 10, expected: 0.3842393},
		{tAir: 20, expected: 0.7971385},
		{tAir: 25, expected: 0.9022670},
		{tAir: 35, expected: 0.9228788},
		{tAir: 48.6, expected: 0},
		{tAir: 50, expected: 0},
	}
	for _, tt := range tests {
		if got := TemperatureEffect(tt.tAir); math.Abs(got-tt.expected) > 1e-6 {
			t.Errorf("TemperatureEffect(%v) = %v, want %v", tt.tAir, got, tt.expected)
		}
	}
}

func TestMaintenanceAndDemand(t *testing.T) {
	c := New(0.275, DefaultParams(), nil)
	s := State{TAir: 20, TimestepMinutes: 60, TotalMass: 10}

	if got := c.MaintenanceRespiration(s); math.Abs(got-0.0075) > epsilon {
		t.Errorf("maintenance at 20 C = %v, want 0.0075", got)
	}
	s.TAir = 30
	if got := c.MaintenanceRespiration(s); math.Abs(got-0.015) > epsilon {
		t.Errorf("maintenance at 30 C = %v, want 0.015", got)
	}

	s.TAir = 25
	if got := c.Demand(s); got != 0 {
		t.Errorf("demand outside grain filling = %v", got)
	}
	s.GrainFilling = true
	if got := c.Demand(s); math.Abs(got-0.1443627) > 1e-6 {
		t.Errorf("grain demand at 25 C = %v, want 0.1443627", got)
	}
}

func TestNewFromSeed(t *testing.T) {
	c := New(0.275, DefaultParams(), nil)
	if math.Abs(c.Pool-0.11) > epsilon || c.Reserve != 0 {
		t.Errorf("pool %v reserve %v, want 0.11 and 0", c.Pool, c.Reserve)
	}
	if got := c.GrowthFactor(60); math.Abs(got-0.2) > epsilon {
		t.Errorf("GrowthFactor(60) = %v, want 0.2", got)
	}
}

func TestMakeSupplyBranches(t *testing.T) {
	vegetative := State{TAir: 20, TimestepMinutes: 60, TotalMass: 10}
	grain := State{TAir: 20, TimestepMinutes: 60, TotalMass: 10, TasselInitiated: true, GrainFilling: true, Scale: 1.2}

	rate := TemperatureEffect(20) * 0.2
	const maintenance = 0.0075
	demand := New(0, DefaultParams(), nil).Demand(grain) // ~0.1275

	tests := []struct {
		name    string
		state   State
		pool    float64
		reserve float64
		branch  Branch
		supply  float64
		after   [2]float64 // pool, reserve
	}{
		{
			name: "vegetative pool", state: vegetative, pool: 1, reserve: 0.3,
			branch: FromPool, supply: rate, after: [2]float64{1 - rate, 0.3},
		},
		{
			name: "empty pool draws on reserve", state: vegetative, pool: 0, reserve: 2,
			branch: FromReserve, supply: 2 * rate, after: [2]float64{0, 2 - 2*rate},
		},
		{
			name: "nothing left", state: vegetative, pool: 0, reserve: 0,
			branch: Exhausted, supply: 0, after: [2]float64{0, 0},
		},
		{
			name: "grain filling from reserve", state: grain, pool: 0.1, reserve: 1,
			branch: GrainFromReserve, supply: demand * rate, after: [2]float64{0, 1 - demand*rate + 0.1},
		},
		{
			name: "grain filling folds negative pool", state: grain, pool: -0.05, reserve: 1,
			branch: GrainFromReserve, supply: demand * rate, after: [2]float64{0, 1 - 0.05 - demand*rate},
		},
		{
			name: "maintenance from pool", state: grain, pool: 0.05, reserve: 0.1,
			branch: MaintenanceFromPool, supply: maintenance, after: [2]float64{0.05 - maintenance, 0.1},
		},
		{
			name: "maintenance from reserve", state: grain, pool: 0.005, reserve: 0.1,
			branch: MaintenanceFromReserve, supply: maintenance, after: [2]float64{0, 0.1 - maintenance + 0.005},
		},
		{
			name: "negative pool without demand", state: vegetative, pool: -0.01, reserve: 0.5,
			branch: MaintenanceFromReserve, supply: maintenance, after: [2]float64{0, 0.5 - maintenance - 0.01},
		},
		{
			name: "starvation", state: grain, pool: 0.005, reserve: 0.001,
			branch: Starvation, supply: 0.006, after: [2]float64{0, 0.006},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(0, DefaultParams(), nil)
			c.Pool, c.Reserve, c.Supply = tt.pool, tt.reserve, 5

			if b := c.MakeSupply(tt.state); b != tt.branch {
				t.Fatalf("branch = %v, want %v", b, tt.branch)
			}
			if math.Abs(c.Supply-tt.supply) > epsilon {
				t.Errorf("supply = %v, want %v", c.Supply, tt.supply)
			}
			if math.Abs(c.Pool-tt.after[0]) > epsilon || math.Abs(c.Reserve-tt.after[1]) > epsilon {
				t.Errorf("pool, reserve = %v, %v, want %v, %v", c.Pool, c.Reserve, tt.after[0], tt.after[1])
			}
		})
	}
}

func TestLongTimestepConservation(t *testing.T) {
	tests := []struct {
		minutes float64
		supply  float64
	}{
		{minutes: 60, supply: 0.9022670 * 0.2},
		{minutes: 300, supply: 0.9022670},
		{minutes: 360, supply: 0.9022670},
		{minutes: 720, supply: 0.9022670},
		{minutes: 1440, supply: 0.9022670},
	}
	for _, tt := range tests {
		c := New(0, DefaultParams(), nil)
		c.Pool = 1
		b := c.MakeSupply(State{TAir: 25, TimestepMinutes: tt.minutes})
		if b != FromPool {
			t.Errorf("%v min: branch = %v, want %v", tt.minutes, b, FromPool)
		}
		if math.Abs(c.Supply-tt.supply) > 1e-6 {
			t.Errorf("%v min: supply = %v, want %v", tt.minutes, c.Supply, tt.supply)
		}
		if c.Supply > 1 || c.Pool < 0 || c.Reserve < 0 {
			t.Errorf("%v min: supply %v, pool %v, reserve %v from a pool of 1", tt.minutes, c.Supply, c.Pool, c.Reserve)
		}
		if got := c.GrowthFactor(tt.minutes); got > 1 {
			t.Errorf("GrowthFactor(%v) = %v", tt.minutes, got)
		}
	}
}

func TestMakeSupplyReturnsShootReserve(t *testing.T) {
	c := New(0, DefaultParams(), nil)
	c.Pool = 10
	s := State{TAir: 25, TimestepMinutes: 60, TasselInitiated: true, Scale: 1.0}

	c.MakeSupply(s)
	a := c.Partition(s)
	if a.Reserve <= 0 {
		t.Fatalf("shoot reserve = %v, want positive at scale 1", a.Reserve)
	}
	if math.Abs(c.Reserve-a.Reserve) > epsilon {
		t.Errorf("reserve = %v, want shoot reserve %v", c.Reserve, a.Reserve)
	}
}

// Supply never exceeds what the pool and reserve held before the call.
func TestSupplyConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := map[Branch]int{}

	randomState := func() State {
		s := State{
			TAir:            rng.Float64() * 45,
			TimestepMinutes: 60,
			TotalMass:       rng.Float64() * 50,
			Scale:           rng.Float64() * 1.3,
			TasselInitiated: rng.Intn(2) == 0,
		}
		s.GrainFilling = s.TasselInitiated && rng.Intn(2) == 0
		return s
	}

	for i := 0; i < 20000; i++ {
		c := New(0, DefaultParams(), nil)
		s := randomState()
		demand := c.Demand(s)
		small := demand + c.MaintenanceRespiration(s)

		switch r := rng.Float64(); {
		case r < 0.1:
			c.Reserve = 0
		case r < 0.55:
			c.Reserve = rng.Float64() * small
		default:
			c.Reserve = rng.Float64()
		}
		switch r := rng.Float64(); {
		case r < 0.2:
			c.Pool = 0
		case r < 0.5:
			c.Pool = rng.Float64()
		case r < 0.8 || !(c.Reserve > demand && demand > 0):
			c.Pool = rng.Float64() * small
		default:
			c.Pool = -rng.Float64() * (c.Reserve - demand)
		}

		before := c.Pool + c.Reserve
		b := c.MakeSupply(s)
		seen[b]++
		if c.Supply < 0 || c.Supply > before+epsilon {
			t.Fatalf("case %d (%v): supply %v from pool+reserve %v", i, b, c.Supply, before)
		}
	}

	for _, b := range []Branch{FromPool, FromReserve, Exhausted, GrainFromReserve, MaintenanceFromPool, MaintenanceFromReserve, Starvation} {
		if seen[b] == 0 {
			t.Errorf("branch %v never exercised", b)
		}
	}

	// a running plant: assimilate by day, fold the pool at midnight
	c := New(0.275, DefaultParams(), nil)
	for step := 0; step < 24*60; step++ {
		s := randomState()
		if hour := step % 24; hour >= 6 && hour <= 18 {
			c.AssimilateToPool(rng.Float64() * 0.5)
		}
		if step%24 == 0 {
			c.ResetPool()
		}
		before := c.Pool + c.Reserve
		c.MakeSupply(s)
		if c.Supply < 0 || c.Supply > before+epsilon {
			t.Fatalf("step %d: supply %v from pool+reserve %v", step, c.Supply, before)
		}
		if c.Reserve < -epsilon {
			t.Fatalf("step %d: reserve went negative: %v", step, c.Reserve)
		}
	}
}

func TestPartition(t *testing.T) {
	c := New(0, DefaultParams(), nil)
	c.Supply = 1

	t.Run("before tassel initiation", func(t *testing.T) {
		a := c.Partition(State{TimestepMinutes: 60})
		if math.Abs(a.Shoot-0.375) > epsilon || math.Abs(a.Root-0.375) > epsilon {
			t.Errorf("shoot, root = %v, %v, want 0.375 each", a.Shoot, a.Root)
		}
		if math.Abs(a.Leaf-0.725*0.375) > epsilon || math.Abs(a.Sheath-0.275*0.375) > epsilon {
			t.Errorf("leaf, sheath = %v, %v", a.Leaf, a.Sheath)
		}
		if math.Abs(a.ShootParts()-a.Shoot) > epsilon {
			t.Errorf("parts %v != shoot %v", a.ShootParts(), a.Shoot)
		}
	})

	t.Run("early reproductive", func(t *testing.T) {
		a := c.Partition(State{TimestepMinutes: 60, TasselInitiated: true, Scale: 0.5})
		shoot := 0.75 * 0.75
		if math.Abs(a.Shoot-shoot) > epsilon || math.Abs(a.Root-0.25*0.75) > epsilon {
			t.Errorf("shoot, root = %v, %v", a.Shoot, a.Root)
		}
		want := Allocation{
			Shoot:  shoot,
			Root:   0.25 * 0.75,
			Leaf:   shoot * 0.725 * 0.3375,
			Sheath: shoot * 0.275 * 0.1625,
			Stalk:  shoot * 0.55,
			Husk:   shoot * math.Exp(-4.45),
		}
		if !allocationEqual(a, want) {
			t.Errorf("got %+v, want %+v", a, want)
		}
	})

	t.Run("reserve takes the residual", func(t *testing.T) {
		a := c.Partition(State{TimestepMinutes: 60, TasselInitiated: true, Scale: 1.0})
		if math.Abs(a.Shoot-0.69375) > epsilon {
			t.Errorf("shoot = %v, want 0.69375", a.Shoot)
		}
		if a.Leaf != 0 || a.Stalk != 0 || a.Cob != 0 {
			t.Errorf("leaf %v stalk %v cob %v, want 0", a.Leaf, a.Stalk, a.Cob)
		}
		if math.Abs(a.ShootParts()-a.Shoot) > epsilon {
			t.Errorf("parts %v != shoot %v", a.ShootParts(), a.Shoot)
		}
	})

	t.Run("grain filling", func(t *testing.T) {
		a := c.Partition(State{TimestepMinutes: 60, TasselInitiated: true, GrainFilling: true, Scale: 1.2})
		if a.Root != 0 || math.Abs(a.Grain-0.75) > epsilon || a.Grain != a.Shoot || a.Ear() != a.Grain {
			t.Errorf("got %+v", a)
		}
	})

	t.Run("maintenance eats supply first", func(t *testing.T) {
		a := c.Partition(State{TAir: 20, TimestepMinutes: 60, TotalMass: 10000})
		if a.Shoot != 0 || a.Root != 0 {
			t.Errorf("shoot, root = %v, %v with maintenance above supply", a.Shoot, a.Root)
		}
	})
}

func allocationEqual(a, b Allocation) bool {
	x := []float64{a.Shoot, a.Root, a.Leaf, a.Sheath, a.Stalk, a.Reserve, a.Husk, a.Cob, a.Grain}
	y := []float64{b.Shoot, b.Root, b.Leaf, b.Sheath, b.Stalk, b.Reserve, b.Husk, b.Cob, b.Grain}
	return floats.EqualApprox(x, y, epsilon)
}

func TestDistributeLeaf(t *testing.T) {
	c := New(0, DefaultParams(), nil)

	tests := []struct {
		name     string
		sinks    []Sink
		weight   Weighting
		expected []float64
	}{
		{
			name: "uniform by potential area",
			sinks: []Sink{
				{PotentialArea: 100},
				{PotentialArea: 300, Dead: true},
				{PotentialArea: 200},
				{PotentialArea: 0},
			},
			weight:   Uniform,
			expected: []float64{1.0 / 3, 0, 2.0 / 3, 0},
		},
		{
			name:     "growing leaves favoured",
			sinks:    []Sink{{PotentialArea: 100, Growing: true}, {PotentialArea: 100}},
			weight:   GrowingPoint,
			expected: []float64{2.0 / 3, 1.0 / 3},
		},
		{
			name:     "all dead",
			sinks:    []Sink{{PotentialArea: 100, Dead: true}},
			expected: []float64{0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.DistributeLeaf(1, tt.sinks, tt.weight)
			if !floats.EqualApprox(got, tt.expected, epsilon) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		sinks := make([]Sink, 1+rng.Intn(25))
		for j := range sinks {
			sinks[j] = Sink{PotentialArea: 1 + rng.Float64()*800, Growing: rng.Intn(2) == 0}
		}
		leaf := rng.Float64()
		got := c.DistributeLeaf(leaf, sinks, GrowingPoint)
		if sum := floats.Sum(got); !scalar.EqualWithinRel(sum, leaf, conservationTolerance) {
			t.Fatalf("distributed %v of %v", sum, leaf)
		}
	}
}

func TestRootPool(t *testing.T) {
	c := New(0, DefaultParams(), nil)
	c.MakeSupply(State{TAir: 20, TimestepMinutes: 60, MinRootSupply: 0.3, ActualRootSupply: 0.1})
	if math.Abs(c.RootPool-0.2) > epsilon {
		t.Fatalf("root pool = %v, want 0.2", c.RootPool)
	}
	if got := c.RootRequest(0.1); got != 0.1 || c.RootPool == 0 {
		t.Errorf("daytime request %v, pool %v", got, c.RootPool)
	}
	if got := c.RootRequest(0); math.Abs(got-0.2) > epsilon || c.RootPool != 0 {
		t.Errorf("night request %v, pool %v", got, c.RootPool)
	}
}
