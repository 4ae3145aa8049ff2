// SPDX-License-Identifier: MIT
package geom

// QuadraticBezier is a quadratic Bezier curve through P0 and P2 with control
// point P1.
type QuadraticBezier struct {
	P0, P1, P2 Vec3
}

// At evaluates the curve at parameter t in [0, 1].
func (c QuadraticBezier) At(t float64) Vec3 {
	u := 1 - t
	return Vec3{
		X: u*u*c.P0.X + 2*u*t*c.P1.X + t*t*c.P2.X,
		Y: u*u*c.P0.Y + 2*u*t*c.P1.Y + t*t*c.P2.Y,
		Z: u*u*c.P0.Z + 2*u*t*c.P1.Z + t*t*c.P2.Z,
	}
}

// SampleInto fills dst with len(dst) evenly spaced samples, the first at
// t=0 and the last at t=1.
func (c QuadraticBezier) SampleInto(dst []Vec3) {
	n := len(dst)
	switch n {
	case 0:
		return
	case 1:
		dst[0] = c.P0
		return
	}
	last := float64(n - 1)
	for i := range dst {
		dst[i] = c.At(float64(i) / last)
	}
}
