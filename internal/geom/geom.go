// SPDX-License-Identifier: MIT
/*
Package geom holds the small vector and transform types shared by the shape
generators and the renderers that consume them.

Points are plain value types so a shape's point set can live in one flat,
pre-allocated slice that generators overwrite in place every frame.
*/
package geom

import "math"

// Vec2 is a point in the XY plane.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a point or direction in 3D space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled component-wise by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Lerp interpolates between a and b, t=0 gives a and t=1 gives b.
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// Facing asks the renderer to orient a shape so its local +Z axis points at
// Target. When Enabled is false the Euler rotation of the transform applies.
type Facing struct {
	Enabled bool
	Target  Vec3
}

// Transform is the mutable placement of one shape instance.
type Transform struct {
	Position Vec3
	Rotation Vec3 // Euler angles in radians, XYZ order.
	Scale    Vec3
	Facing   Facing
}

// Identity returns a transform at the origin with unit scale.
func Identity() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}
