// SPDX-License-Identifier: MIT
package geom

import "math"

// VectorToAngle returns the heading of (x, y) measured from the +Y axis
// towards +X, i.e. atan2(x, y).
func VectorToAngle(x, y float64) float64 {
	return math.Atan2(x, y)
}

// AngleToVector is the inverse of VectorToAngle and returns a unit vector.
func AngleToVector(angle float64) (x, y float64) {
	return math.Sin(angle), math.Cos(angle)
}

// AngleBetween returns the heading from point (x2, y2) to point (x1, y1) in
// the same convention as VectorToAngle.
func AngleBetween(x1, x2, y1, y2 float64) float64 {
	return math.Atan2(x1-x2, y1-y2)
}

// DirectionBetween returns the unit heading vector for AngleBetween.
func DirectionBetween(x1, x2, y1, y2 float64) (x, y float64) {
	return AngleToVector(AngleBetween(x1, x2, y1, y2))
}
