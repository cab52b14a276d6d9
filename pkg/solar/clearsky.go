package solar

import "math"

// ClearSkyRadiation is the Ineichen-Perez clear-sky global horizontal
// irradiance in W m-2 for the sun's time and place, with Linke turbidity tl.
func (s *Sun) ClearSkyRadiation(tl float64) float64 {
	thetaZ := 90 - s.Elevation()
	if thetaZ >= 90.0 {
		return 0.0
	}
	n := float64(s.DayOfYear())

	// extraterrestrial, adjusted for Earth-Sun distance
	g0 := SolarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(n-3)/365.0)))

	// Kasten-Young air mass
	am := 1.0 / (math.Cos(degToRad(thetaZ)) + 0.50572*math.Pow(96.07995-thetaZ, -1.6364))
	const c, a = 0.7, 0.027
	dni := g0 * c * math.Exp(-a*am*tl*math.Exp(-s.Altitude/8000.0))

	fh := 0.1 + 0.05*math.Sin(math.Pi*(n-100)/365.0)
	dhi := fh * g0 * math.Sin(degToRad(thetaZ))
	return dni*math.Cos(degToRad(thetaZ)) + dhi
}
