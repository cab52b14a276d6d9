// Package atmosphere holds the air-side quantities the leaf models need:
// vapor pressure relations and the weather snapshot seen by a leaf.
package atmosphere

import "math"

// Saturation vapor pressure coefficients, Campbell and Norman (1998) p 41.
const (
	vpA = 0.611  // kPa
	vpB = 17.502 // unitless
	vpC = 240.97 // C
)

// SaturationVaporPressure returns es in kPa at T (C).
func SaturationVaporPressure(T float64) float64 {
	return vpA * math.Exp(vpB*T/(vpC+T))
}

// AmbientVaporPressure returns ea in kPa for relative humidity rh (0-1).
func AmbientVaporPressure(T, rh float64) float64 {
	return SaturationVaporPressure(T) * rh
}

// VaporPressureDeficit returns es - ea in kPa.
func VaporPressureDeficit(T, rh float64) float64 {
	return SaturationVaporPressure(T) * (1 - rh)
}

// RelativeHumidity inverts VaporPressureDeficit.
func RelativeHumidity(T, vpd float64) float64 {
	return 1 - vpd/SaturationVaporPressure(T)
}

// VaporPressureSlope is the slope of the saturation curve at T normalised
// by air pressure P (kPa), in C-1.
func VaporPressureSlope(T, P float64) float64 {
	es := SaturationVaporPressure(T)
	return es * (vpB * vpC) / math.Pow(vpC+T, 2) / P
}
