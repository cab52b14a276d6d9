package carbon

import "math"

// Allocation is the growth carbon of one step split among organs.
type Allocation struct {
	Shoot float64
	Root  float64

	Leaf    float64
	Sheath  float64
	Stalk   float64
	Reserve float64 // soluble shoot reserve, returned to the long term reserve
	Husk    float64
	Cob     float64
	Grain   float64
}

// Stem is sheath plus stalk; the two are not yet separate organs.
func (a Allocation) Stem() float64 {
	return a.Sheath + a.Stalk
}

func (a Allocation) Ear() float64 {
	return a.Grain + a.Cob + a.Husk
}

// ShootParts sums the shoot components.
func (a Allocation) ShootParts() float64 {
	return a.Leaf + a.Sheath + a.Stalk + a.Reserve + a.Husk + a.Cob + a.Grain
}

// ShootFraction of growth carbon sent to the shoot before grain filling,
// Grant (1989) eq 3.
func (c *Carbon) ShootFraction(scale float64) float64 {
	return math.Min(c.Params.MaxShootFraction, 0.50+0.50*scale)
}

// Partition splits the current supply, net of maintenance respiration and
// growth respiration, between shoot and root and then among shoot organs.
func (c *Carbon) Partition(s State) Allocation {
	yg := c.Params.GrowthEfficiency
	growth := math.Max(c.Supply-c.MaintenanceRespiration(s), 0)

	var a Allocation
	if s.GrainFilling {
		a.Shoot = yg * growth
	} else {
		f := c.ShootFraction(s.Scale)
		a.Shoot = f * yg * growth
		a.Root = (1 - f) * yg * growth
	}
	partitionShoot(&a, s)
	return a
}

// partitionShoot follows the allometry of Lindquist et al. (2007) and
// Grant (1989) between tassel initiation and grain filling.
func partitionShoot(a *Allocation, s State) {
	shoot := a.Shoot
	switch {
	case !s.TasselInitiated:
		a.Leaf = shoot * 0.725
		a.Sheath = shoot * 0.275
	case !s.GrainFilling:
		x := s.Scale
		part := func(below, above, threshold float64) float64 {
			r := below
			if x > threshold {
				r = above
			}
			return shoot * math.Max(r, 0)
		}
		a.Leaf = shoot * 0.725 * math.Max(0.725-0.775*x, 0)
		a.Sheath = shoot * 0.275 * math.Max(0.275-0.225*x, 0)
		a.Stalk = part(1.1*x, 0, 0.85)
		a.Reserve = part(0, 2.33-0.6*math.Exp(x), 0.85)
		a.Husk = part(math.Exp(-7.75+6.6*x), 1-0.675*x, 1.0)
		a.Cob = part(-8.4+7.0*x, 0.625, 1.125)
		// the reserve takes whatever the other parts leave
		if a.Reserve > 0 {
			a.Reserve = math.Max(shoot-(a.Leaf+a.Sheath+a.Stalk+a.Husk+a.Cob), 0)
		}
	default:
		a.Grain = shoot
	}
}
