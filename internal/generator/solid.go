// SPDX-License-Identifier: MIT
package generator

import (
	"talkulizer/internal/band"
	"talkulizer/internal/geom"

	"github.com/lucasb-eyer/go-colorful"
)

// SolidForm is the geometry of a Solid.
type SolidForm int

const (
	SolidCube SolidForm = iota
	SolidPlane
)

const (
	cubeSize  = 3.0
	planeSize = 40.0

	// CubeSpin is the per-frame rotation of the cube about X and Y.
	CubeSpin = 0.005
)

// Solid is a static shape that takes the color of the loudest of six bands
// every frame. Ties keep the lower band, and a frame where every band is
// silent selects band 0. The cube also turns by Spin about X and Y.
type Solid struct {
	Form   SolidForm
	Bands  [6]band.Range
	Colors [6]colorful.Color
	Spin   float64
}

func (Solid) Family() Family { return FamilySolid }

func (Solid) Band() (band.Range, bool) { return band.Range{}, false }

func (sd Solid) build() *Instance {
	var s *Shape
	switch sd.Form {
	case SolidPlane:
		h := planeSize / 2
		s = newShape(PrimitiveSolid, 4)
		s.Points[0] = geom.Vec3{X: -h, Y: h}
		s.Points[1] = geom.Vec3{X: h, Y: h}
		s.Points[2] = geom.Vec3{X: h, Y: -h}
		s.Points[3] = geom.Vec3{X: -h, Y: -h}
	default:
		s = newShape(PrimitiveSolid, len(boxVertices))
		for i, v := range boxVertices {
			s.Points[i] = v.Scale(cubeSize)
		}
	}
	return &Instance{Shape: s, Gen: &solidGen{kind: sd}}
}

type solidGen struct {
	kind Solid
}

func (g *solidGen) Step(s *Shape, in Input) {
	if !in.HasSignal() {
		return
	}
	s.Color = g.kind.Colors[LoudestBand(in.Magnitudes, g.kind.Bands[:])]
	s.Transform.Rotation.X += g.kind.Spin
	s.Transform.Rotation.Y += g.kind.Spin
}

// LoudestBand returns the index of the band with the highest average. Only
// a strictly louder band replaces the current pick, starting from band 0.
func LoudestBand(buf []byte, bands []band.Range) int {
	loudest, level := 0, 0.0
	for i, r := range bands {
		if avg := band.Average(buf, r); avg > level {
			loudest, level = i, avg
		}
	}
	return loudest
}
