// SPDX-License-Identifier: MIT
package generator

import (
	"math"
	"math/rand/v2"

	"talkulizer/internal/band"
	"talkulizer/internal/geom"
)

// WirePoints is the sample count of the wire curve.
const WirePoints = 1024

// WireMode selects which coordinate a Wire displaces.
type WireMode int

const (
	WireDefault WireMode = iota // X follows the envelope.
	WireFlat                    // Y follows the envelope.
	WireFuzz                    // X is uniform noise scaled by intensity.
)

// WireCurve is the fixed curve every wire is sampled from.
var WireCurve = geom.QuadraticBezier{
	P0: geom.Vec3{X: 0, Y: 1, Z: 0},
	P1: geom.Vec3{X: 0, Y: 0.25, Z: 0.2},
	P2: geom.Vec3{X: 0, Y: 0, Z: 1},
}

// Wire displaces the points of WireCurve by
//
//	intensity/10 * e^(-0.65|z|) * cos(2πz)
//
// where z is the point's depth along the curve. The wire is turned 30°
// about Y. Seed drives the fuzz noise.
type Wire struct {
	Mode  WireMode
	Range band.Range
	Seed  uint64
}

func (Wire) Family() Family { return FamilyWire }

func (w Wire) Band() (band.Range, bool) { return w.Range, true }

func (w Wire) build() *Instance {
	s := newShape(PrimitiveLine, WirePoints)
	WireCurve.SampleInto(s.Points)
	s.Transform.Rotation.Y = 30 * math.Pi / 180
	g := &wireGen{kind: w}
	if w.Mode == WireFuzz {
		g.rng = rand.New(rand.NewPCG(w.Seed, seedStream))
	}
	return &Instance{Shape: s, Gen: g}
}

type wireGen struct {
	kind Wire
	rng  *rand.Rand
}

func (g *wireGen) Step(s *Shape, in Input) {
	if !in.HasSignal() {
		return
	}
	intensity := band.Intensity(in.Magnitudes, g.kind.Range)
	switch g.kind.Mode {
	case WireFlat:
		for i := range s.Points {
			s.Points[i].Y = envelope(intensity/10, s.Points[i].Z, 0)
		}
	case WireFuzz:
		for i := range s.Points {
			s.Points[i].X = g.rng.Float64() * intensity
		}
	default:
		for i := range s.Points {
			s.Points[i].X = envelope(intensity/10, s.Points[i].Z, 0)
		}
	}
}

// seedStream is the second PCG word for every per-instance source.
const seedStream = 0x9e3779b97f4a7c15
