// SPDX-License-Identifier: MIT
package generator

import (
	"talkulizer/internal/band"
	"talkulizer/internal/geom"
)

// boxVertices is a unit box in the order renderers index it. topVertices
// marks the four that form the top face.
var (
	boxVertices = [8]geom.Vec3{
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: -0.5},
		{X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: -0.5, Z: -0.5},
		{X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: 0.5, Z: 0.5},
		{X: -0.5, Y: -0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5},
	}
	topVertices = [8]bool{true, true, false, false, true, true, false, false}
)

// Box is a bar. Every frame its top face is raised to Height*intensity and
// its bottom face rests at 0. The box is scaled (Width, 1, 0) and turned
// Rotation radians about Z.
type Box struct {
	Width    float64
	Height   float64
	Rotation float64
	Range    band.Range
}

func (Box) Family() Family { return FamilyBox }

func (b Box) Band() (band.Range, bool) { return b.Range, true }

func (b Box) build() *Instance {
	s := newShape(PrimitiveBox, len(boxVertices))
	copy(s.Points, boxVertices[:])
	for i, top := range topVertices {
		if !top {
			s.Points[i].Y = 0
		}
	}
	s.Transform.Scale = geom.Vec3{X: b.Width, Y: 1, Z: 0}
	s.Transform.Rotation.Z = b.Rotation
	return &Instance{Shape: s, Gen: &boxGen{kind: b}}
}

type boxGen struct {
	kind Box
}

func (g *boxGen) Step(s *Shape, in Input) {
	if !in.HasSignal() {
		return
	}
	h := g.kind.Height * band.Intensity(in.Magnitudes, g.kind.Range)
	for i, top := range topVertices {
		if top {
			s.Points[i].Y = h
		} else {
			s.Points[i].Y = 0
		}
	}
}
