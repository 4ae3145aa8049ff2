// SPDX-License-Identifier: MIT
package generator

import (
	"math"

	"talkulizer/internal/band"
	"talkulizer/internal/geom"
)

// Axis is the direction a Line runs along.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

const (
	// LinePoints is the sample count of every line.
	LinePoints = 500

	horizontalHalfSpan = 5.0
	verticalHalfSpan   = 3.0
)

// Line is an oscillating line. Each sample at coordinate c along the axis
// is displaced across it by
//
//	(2^intensity - 1) * e^(-0.65|c|) * cos(2πc + t/400)
//
// with intensity in [0, 1] and t the elapsed time in milliseconds. Filled
// lines are drawn as a mesh; the bolt layout uses them.
type Line struct {
	Axis   Axis
	Filled bool
	Range  band.Range
}

func (Line) Family() Family { return FamilyLine }

func (l Line) Band() (band.Range, bool) { return l.Range, true }

func (l Line) build() *Instance {
	primitive := PrimitiveLine
	if l.Filled {
		primitive = PrimitiveMesh
	}
	s := newShape(primitive, LinePoints)
	for i := range s.Points {
		f := float64(i) / LinePoints
		if l.Axis == Vertical {
			s.Points[i] = geom.Vec3{Y: verticalHalfSpan - 2*verticalHalfSpan*f}
		} else {
			s.Points[i] = geom.Vec3{X: horizontalHalfSpan - 2*horizontalHalfSpan*f}
		}
	}
	return &Instance{Shape: s, Gen: &lineGen{kind: l}}
}

type lineGen struct {
	kind Line
}

func (g *lineGen) Step(s *Shape, in Input) {
	if !in.HasSignal() {
		return
	}
	amp := math.Exp2(band.Intensity(in.Magnitudes, g.kind.Range)) - 1
	phase := in.ElapsedMs / 400
	if g.kind.Axis == Vertical {
		for i := range s.Points {
			s.Points[i].X = envelope(amp, s.Points[i].Y, phase)
		}
		return
	}
	for i := range s.Points {
		s.Points[i].Y = envelope(amp, s.Points[i].X, phase)
	}
}
