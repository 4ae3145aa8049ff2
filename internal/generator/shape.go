// SPDX-License-Identifier: MIT
/*
Package generator animates shape instances from audio.

A shape instance is a fixed-length point set plus a transform and a color.
It is built once from a Descriptor and then stepped once per frame by the
generator that owns it. Generators overwrite points and transform fields in
place and never resize the point slice, so a frame allocates nothing.

Every generator family is a Kind variant:

	Line      oscillating horizontal or vertical line (also the bolt)
	Radial    rose-curve ring or circle with an optional pulsing scale
	Wire      quadratic Bezier wire with flat, default and fuzz modes
	Box       bar whose top face follows a band
	Waveform  oscilloscope trace of the time-domain buffer
	Solid     static cube or plane colored by the loudest band
	Orbit     rose-shaped body travelling along a lemniscate or a track

When a frame carries no audio (an empty buffer) Step returns without
touching the shape, so the last geometry persists.
*/
package generator

import (
	"math"

	"talkulizer/internal/band"
	"talkulizer/internal/geom"

	"github.com/lucasb-eyer/go-colorful"
)

// Primitive tells a renderer how to draw a shape's points.
type Primitive int

const (
	PrimitiveLine     Primitive = iota // Open polyline.
	PrimitiveLineLoop                  // Closed polyline.
	PrimitiveMesh                      // Filled polygon fanned from the points.
	PrimitiveBox                       // Eight box vertices.
	PrimitiveSolid                     // Static solid; only color and transform change.
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveLine:
		return "line"
	case PrimitiveLineLoop:
		return "loop"
	case PrimitiveMesh:
		return "mesh"
	case PrimitiveBox:
		return "box"
	case PrimitiveSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// Shape is the render-facing state of one instance.
type Shape struct {
	Family    Family
	Primitive Primitive
	Points    []geom.Vec3
	Transform geom.Transform
	Color     colorful.Color
	Thickness float64 // Stroke width; 0 leaves it to the renderer.
}

// Input is the audio snapshot and clock for one frame. The buffers are
// shared by every generator in the frame and must not be written.
type Input struct {
	Magnitudes []byte
	TimeDomain []byte
	ElapsedMs  float64
}

// HasSignal reports whether the frame carries a magnitude spectrum.
func (in Input) HasSignal() bool {
	return len(in.Magnitudes) > 0
}

// Generator advances one shape by one frame.
type Generator interface {
	Step(s *Shape, in Input)
}

// Instance is a shape bound to the generator that owns its state.
type Instance struct {
	Shape *Shape
	Gen   Generator
}

// Step advances the instance by one frame.
func (i *Instance) Step(in Input) {
	i.Gen.Step(i.Shape, in)
}

// Family names a generator variant.
type Family string

const (
	FamilyLine     Family = "line"
	FamilyRadial   Family = "radial"
	FamilyWire     Family = "wire"
	FamilyBox      Family = "box"
	FamilyWaveform Family = "waveform"
	FamilySolid    Family = "solid"
	FamilyOrbit    Family = "orbit"
)

// Kind is the static description of a shape instance. The set of
// implementations is closed; each lives next to its generator.
type Kind interface {
	Family() Family
	// Band returns the frequency range the instance follows, if any.
	Band() (band.Range, bool)
	build() *Instance
}

// Descriptor places a Kind in the scene.
type Descriptor struct {
	Kind     Kind
	Position geom.Vec3
	Color    colorful.Color
}

// Build allocates the instance described by d.
func (d Descriptor) Build() *Instance {
	inst := d.Kind.build()
	inst.Shape.Family = d.Kind.Family()
	inst.Shape.Transform.Position = d.Position
	inst.Shape.Color = d.Color
	return inst
}

// envelope is the decaying standing wave shared by the line and wire
// families: amp * e^(-0.65|c|) * cos(2πc + phase).
func envelope(amp, c, phase float64) float64 {
	return amp * math.Exp(-0.65*math.Abs(c)) * math.Cos(2*math.Pi*c+phase)
}

func newShape(primitive Primitive, points int) *Shape {
	return &Shape{
		Primitive: primitive,
		Points:    make([]geom.Vec3, max(points, 0)),
		Transform: geom.Identity(),
	}
}
