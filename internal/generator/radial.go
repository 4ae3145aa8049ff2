// SPDX-License-Identifier: MIT
package generator

import (
	"math"

	"talkulizer/internal/band"
	"talkulizer/internal/geom"
)

const (
	RingPoints   = 1024
	CirclePoints = 500
)

// Radial is a rose-curve ring. For sample i of N with step 2π/N the angle is
// θ = i*step, or θ = i + step in index-offset mode, and the point is
//
//	r = RingWidth + Gain*intensity*cos(n*θ)
//	(r*cos(θ + Spin*t), r*sin(θ + Spin*t))
//
// where n is Harmonics raised to at least MinHarmonics. The shape's XY scale
// starts at Radius and pulses by ScaleRate every frame. Thickness is the
// stroke width handed to renderers.
type Radial struct {
	Points       int
	Harmonics    float64
	MinHarmonics float64
	RingWidth    float64
	Gain         float64
	Spin         float64 // Radians per millisecond.
	IndexOffset  bool
	Radius       float64
	ScaleRate    float64
	Primitive    Primitive
	Thickness    float64
	Range        band.Range
}

// Ring returns the ring variant used by the rings and fractal layouts.
func Ring(r band.Range, n, ringWidth, radius, scaleRate float64, indexOffset bool) Radial {
	return Radial{
		Points:       RingPoints,
		Harmonics:    n,
		MinHarmonics: 2,
		RingWidth:    ringWidth,
		Gain:         1,
		Spin:         0.001,
		IndexOffset:  indexOffset,
		Radius:       radius,
		ScaleRate:    scaleRate,
		Primitive:    PrimitiveLineLoop,
		Range:        r,
	}
}

// Circle returns the filled circle variant used by the circular layout.
func Circle(r band.Range, n, ringWidth, radius, scaleRate float64) Radial {
	return Radial{
		Points:       CirclePoints,
		Harmonics:    n,
		MinHarmonics: math.Inf(-1), // Circles never clamp n.
		RingWidth:    ringWidth,
		Gain:         0.1,
		Spin:         0.0001,
		IndexOffset:  true,
		Radius:       radius,
		ScaleRate:    scaleRate,
		Primitive:    PrimitiveMesh,
		Range:        r,
	}
}

func (Radial) Family() Family { return FamilyRadial }

func (r Radial) Band() (band.Range, bool) { return r.Range, true }

func (r Radial) build() *Instance {
	s := newShape(r.Primitive, r.Points)
	s.Transform.Scale = geom.Vec3{X: r.Radius, Y: r.Radius, Z: 1}
	s.Thickness = r.Thickness
	g := &radialGen{
		kind:  r,
		n:     max(r.Harmonics, r.MinHarmonics),
		pulse: Pulse{Rate: r.ScaleRate, Scale: r.Radius},
	}
	if len(s.Points) > 0 {
		g.step = 2 * math.Pi / float64(len(s.Points))
	}
	g.trace(s, 0, 0)
	return &Instance{Shape: s, Gen: g}
}

type radialGen struct {
	kind  Radial
	n     float64
	step  float64
	pulse Pulse
}

func (g *radialGen) Step(s *Shape, in Input) {
	if !in.HasSignal() {
		return
	}
	if g.pulse.Step() {
		s.Transform.Position.Z += PulseDepthStep
	}
	s.Transform.Scale.X = g.pulse.Scale
	s.Transform.Scale.Y = g.pulse.Scale

	offset := g.kind.Gain * band.Intensity(in.Magnitudes, g.kind.Range)
	g.trace(s, offset, g.kind.Spin*in.ElapsedMs)
}

// trace writes the rose curve with radial perturbation offset rotated by
// rot radians.
func (g *radialGen) trace(s *Shape, offset, rot float64) {
	for i := range s.Points {
		theta := float64(i) * g.step
		if g.kind.IndexOffset {
			theta = float64(i) + g.step
		}
		r := g.kind.RingWidth + offset*math.Cos(g.n*theta)
		sin, cos := math.Sincos(theta + rot)
		s.Points[i].X = r * cos
		s.Points[i].Y = r * sin
	}
}
