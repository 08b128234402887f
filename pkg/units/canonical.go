// Package units provides the pure conversion and rounding helpers shared by
// the physics and scoring packages.
package units

import "math"

// RoundPlaces is the externally visible rounding policy: intermediate
// arithmetic stays at full float64 precision, only boundary-facing HP
// fields and scores are rounded to two decimals.
const RoundPlaces = 2

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// SlopePercentToDegrees converts a slope expressed as a percentage (rise/run
// * 100) into the equivalent angle in degrees.
func SlopePercentToDegrees(pct float64) float64 {
	return RadToDeg(math.Atan(pct / 100))
}

// SlopePercentToRadians converts a slope percentage directly to radians,
// the form the power-loss trigonometry consumes.
func SlopePercentToRadians(pct float64) float64 {
	return math.Atan(pct / 100)
}

// KmhToMs converts a speed in kilometers per hour to meters per second.
func KmhToMs(kmh float64) float64 {
	return kmh / 3.6
}

// Round2 rounds a value to two decimal places, the policy applied at every
// externally visible HP field and score boundary.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp restricts v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
