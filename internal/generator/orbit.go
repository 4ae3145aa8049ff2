// SPDX-License-Identifier: MIT
package generator

import (
	"math"
	"math/rand/v2"

	"talkulizer/internal/band"
	"talkulizer/internal/geom"
)

const (
	OrbitPoints = 500
	orbitScale  = 10.0

	// SlideLimit is where a sliding orbit wraps back to -SlideLimit.
	SlideLimit = 8.0
)

// OrbitMode selects how an Orbit advances.
type OrbitMode int

const (
	// OrbitLoopSeparate keeps its own phase on the lemniscate and advances
	// it by (intensity + 0.15) * Speed/1000 every frame, wrapping past π.
	OrbitLoopSeparate OrbitMode = iota
	// OrbitLoop derives the phase from the clock, nudged by intensity.
	OrbitLoop
	// OrbitSlide moves along X and wraps at SlideLimit.
	OrbitSlide
)

// Loops reports whether m travels along the lemniscate.
func (m OrbitMode) Loops() bool {
	return m != OrbitSlide
}

// Orbit is a rose-shaped body, size*cos(nθ) in polar form, that travels
// along a lemniscate of half-width LineWidth or slides along X. Unless
// OffAxis is set it is turned to face its direction of travel; off-axis
// bodies look along their step when looping and at +Y when sliding.
//
// Noise bodies redraw their outline every frame with the radius jittered by
// up to intensity, drawn from a source seeded with Seed.
type Orbit struct {
	Mode      OrbitMode
	OffAxis   bool
	Noise     bool
	Harmonics float64
	Size      float64
	Speed     float64
	LineWidth float64
	Range     band.Range
	Seed      uint64
}

func (Orbit) Family() Family { return FamilyOrbit }

func (o Orbit) Band() (band.Range, bool) { return o.Range, true }

func (o Orbit) build() *Instance {
	s := newShape(PrimitiveMesh, OrbitPoints)
	s.Transform.Scale = geom.Vec3{X: orbitScale, Y: orbitScale, Z: orbitScale}
	g := &orbitGen{kind: o, step: 2 * math.Pi / OrbitPoints}
	if o.Noise {
		g.rng = rand.New(rand.NewPCG(o.Seed, seedStream))
	}
	g.outline(s, 0)
	return &Instance{Shape: s, Gen: g}
}

type orbitGen struct {
	kind  Orbit
	step  float64
	phase float64
	rng   *rand.Rand
}

func (g *orbitGen) Step(s *Shape, in Input) {
	if !in.HasSignal() {
		return
	}
	intensity := band.Intensity(in.Magnitudes, g.kind.Range)
	cur := s.Transform.Position

	var next geom.Vec3
	switch g.kind.Mode {
	case OrbitLoopSeparate:
		g.phase = AdvancePhase(g.phase, intensity, g.kind.Speed)
		next = Lemniscate(g.phase, g.kind.LineWidth)
	case OrbitLoop:
		next = Lemniscate(LoopPhase(in.ElapsedMs, intensity, g.kind.Speed), g.kind.LineWidth)
	default:
		next = geom.Vec3{X: SlideX(cur.X, intensity, g.kind.Speed)}
	}

	switch {
	case g.kind.OffAxis && g.kind.Mode.Loops():
		s.Transform.Facing = geom.Facing{Enabled: true, Target: geom.Vec3{X: next.X - cur.X, Y: next.Y - cur.Y}}
	case g.kind.OffAxis:
		s.Transform.Facing = geom.Facing{Enabled: true, Target: geom.Vec3{Y: 1}}
	default:
		dx, dy := geom.DirectionBetween(cur.X, next.X, next.Y, cur.Y)
		s.Transform.Rotation.Z = geom.VectorToAngle(dx, dy) + math.Pi/2
	}
	s.Transform.Position = next

	if g.rng != nil {
		g.outline(s, intensity)
	}
}

// outline draws the rose with each radius pushed out by up to jitter.
func (g *orbitGen) outline(s *Shape, jitter float64) {
	for i := range s.Points {
		theta := float64(i) + g.step
		r := g.kind.Size * math.Cos(g.kind.Harmonics*theta)
		if g.rng != nil && jitter > 0 {
			r += g.rng.Float64() * jitter
		}
		sin, cos := math.Sincos(theta)
		s.Points[i].X = r * cos
		s.Points[i].Y = r * sin
	}
}

// AdvancePhase moves a separate orbit's phase forward one frame. A phase
// that would pass π becomes exactly -π.
func AdvancePhase(phase, intensity, speed float64) float64 {
	next := phase + (intensity+0.15)*(speed/1000)
	if next > math.Pi {
		return -math.Pi
	}
	return next
}

// LoopPhase is the clock-driven phase of a looping orbit: a ramp over a
// period of 10*speed milliseconds starting at -π/4, offset by
// 0.5*intensity. A zero speed has no period and yields the offset alone.
func LoopPhase(elapsedMs, intensity, speed float64) float64 {
	base := -math.Pi/4 + 0.5*intensity
	if speed == 0 {
		return base
	}
	return math.Pi/(2*speed*2.5)*math.Mod(elapsedMs, speed*10) + base
}

// Lemniscate maps phase t onto the figure-eight of half-width w.
func Lemniscate(t, w float64) geom.Vec3 {
	sin, cos := math.Sincos(t)
	d := 1 + sin*sin
	return geom.Vec3{X: w * cos / d, Y: w * sin * cos / d}
}

// SlideX advances a sliding orbit along X, wrapping past SlideLimit.
func SlideX(x, intensity, speed float64) float64 {
	if x > SlideLimit {
		return -SlideLimit
	}
	return x + (intensity+0.4)*(speed/1000)
}
