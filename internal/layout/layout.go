// SPDX-License-Identifier: MIT
/*
Package layout turns a visualizer type and its four tunable parameters into
the set of shape instances to draw. Each type has one pure layout function;
given the same Params it always returns the same descriptors.

Parameters are never rejected. Bin counts are truncated to integers and
clamped to [0, Params.Bins], so a zero count yields no shapes.
*/
package layout

import (
	"math"

	"talkulizer/internal/band"
	"talkulizer/internal/generator"
	"talkulizer/internal/geom"
	"talkulizer/internal/palette"
)

// Params are the tunable values a layout reads.
type Params struct {
	Spread  float64 `json:"spread" yaml:"spread"`
	Offset  float64 `json:"offset" yaml:"offset"`
	Param1  float64 `json:"param1" yaml:"param1"`
	Param2  float64 `json:"param2" yaml:"param2"`
	Palette int     `json:"colorIndex" yaml:"palette"`

	// Bins is the size of the magnitude buffer the bars divide. Zero means
	// band.TotalBins.
	Bins int `json:"-" yaml:"-"`
}

// totalBins returns the magnitude buffer size the bar layouts split.
func (p Params) totalBins() int {
	if p.Bins > 0 {
		return p.Bins
	}
	return band.TotalBins
}

// Func is a layout function.
type Func func(p Params) []generator.Descriptor

const (
	barSpan    = 18.0 // Half the width of the bar row.
	barDepth   = -10.0
	lineDepth  = -1.0
	waveSpan   = 2.0 // Half the height of the waveform stack.
	stackCount = 6
	maxRadius  = 10.0

	// DefaultScaleRate is the pulse rate of the fallback layout.
	DefaultScaleRate = 0.01
	ringThickness    = 0.02
)

var funcs = map[Type]Func{
	Standard:        standard,
	Waveform:        waveform,
	StandardRing:    func(p Params) []generator.Descriptor { return barRing(p, 1) },
	FoldingRing:     func(p Params) []generator.Descriptor { return barRing(p, 0) },
	HorizontalLines: func(p Params) []generator.Descriptor { return lines(p, generator.Horizontal) },
	VerticalLines:   func(p Params) []generator.Descriptor { return lines(p, generator.Vertical) },
	Circular:        func(p Params) []generator.Descriptor { return circles(p, 0) },
	Bolt:            bolt,
	Rings:           func(p Params) []generator.Descriptor { return rings(p, true) },
	Fractal:         func(p Params) []generator.Descriptor { return rings(p, false) },
	Solid:           func(Params) []generator.Descriptor { return solid(generator.SolidPlane, 0) },
	Cube:            func(Params) []generator.Descriptor { return solid(generator.SolidCube, generator.CubeSpin) },
	Wires:           func(p Params) []generator.Descriptor { return wires(p, generator.WireDefault) },
	Flat:            func(p Params) []generator.Descriptor { return wires(p, generator.WireFlat) },
	Racecar:         orbits(generator.OrbitLoopSeparate, false, false),
	Trails:          orbits(generator.OrbitLoop, false, false),
	Slide:           orbits(generator.OrbitSlide, false, false),
	RacecarOff:      orbits(generator.OrbitLoopSeparate, true, false),
	TrailsOff:       orbits(generator.OrbitLoop, true, false),
	SlideOff:        orbits(generator.OrbitSlide, true, false),
	Noise:           orbits(generator.OrbitLoopSeparate, false, true),
	NoiseOff:        orbits(generator.OrbitLoopSeparate, true, true),
}

// Describe returns the shapes of layout t. Unknown types get the circular
// layout with a pulse rate of DefaultScaleRate; callers that want to report
// this check t.Known first.
func Describe(t Type, p Params) []generator.Descriptor {
	if fn, ok := funcs[t]; ok {
		return fn(p)
	}
	return circles(p, DefaultScaleRate)
}

// Build describes layout t and allocates its instances.
func Build(t Type, p Params) []*generator.Instance {
	descs := Describe(t, p)
	out := make([]*generator.Instance, len(descs))
	for i, d := range descs {
		out[i] = d.Build()
	}
	return out
}

// binCount truncates a bin parameter to a usable count of at most total.
func binCount(v float64, total int) int {
	if math.IsNaN(v) || v < 1 {
		return 0
	}
	return int(min(v, float64(total)))
}

// standard lays bars in a row. Spread is the bar height, Offset the gap,
// Param1 the bar count and Param2 the vertical position.
func standard(p Params) []generator.Descriptor {
	total := p.totalBins()
	bins := binCount(p.Param1, total)
	ranges := band.Linear(bins, total)
	pal := palette.Get(p.Palette)
	n := float64(bins)

	out := make([]generator.Descriptor, bins)
	for i, r := range ranges {
		out[i] = generator.Descriptor{
			Kind: generator.Box{
				Width:  2*barSpan/n - p.Offset,
				Height: p.Spread,
				Range:  r,
			},
			Position: geom.Vec3{
				X: -(barSpan + barSpan/n) + (2*barSpan/n)*float64(i+1),
				Y: -2 * p.Param2,
				Z: barDepth,
			},
			Color: pal.Gradient(i, bins),
		}
	}
	return out
}

// barRing lays bars around a circle of radius Param2. Standing bars point
// outward; folded bars (extraTurns 0) lie along the circle.
func barRing(p Params, extraTurns float64) []generator.Descriptor {
	total := p.totalBins()
	bins := binCount(p.Param1, total)
	ranges := band.Linear(bins, total)
	pal := palette.Get(p.Palette)

	out := make([]generator.Descriptor, bins)
	for i, r := range ranges {
		theta := float64(i) * 2 * math.Pi / float64(bins)
		sin, cos := math.Sincos(theta)
		out[i] = generator.Descriptor{
			Kind: generator.Box{
				Width:    p.Offset,
				Height:   p.Spread,
				Rotation: math.Pi + theta + math.Pi/2*extraTurns,
				Range:    r,
			},
			Position: geom.Vec3{X: p.Param2 * cos, Y: p.Param2 * sin, Z: barDepth},
			Color:    pal.Gradient(i, bins),
		}
	}
	return out
}

// waveform stacks Param1 traces of the time-domain buffer. Offset is the
// trace height and Param2 the depth.
func waveform(p Params) []generator.Descriptor {
	lines := binCount(p.Param1, p.totalBins())
	pal := palette.Get(p.Palette)
	h := 0.1
	if p.Offset > 0 {
		h = 2 * p.Offset
	}
	n := float64(lines)

	out := make([]generator.Descriptor, lines)
	for i := range out {
		out[i] = generator.Descriptor{
			Kind: generator.Waveform{Height: h},
			Position: geom.Vec3{
				Y: -(waveSpan + waveSpan/n) + (2*waveSpan/n)*float64(i+1),
				Z: -p.Param2,
			},
			Color: pal.Gradient(i, lines),
		}
	}
	return out
}

// lines places one line per canonical band, Offset apart and shifted back
// by Spread.
func lines(p Params, axis generator.Axis) []generator.Descriptor {
	pal := palette.Get(p.Palette)
	out := make([]generator.Descriptor, len(band.Six))
	for k, r := range band.Six {
		at := p.Offset*float64(k-2) - p.Spread
		pos := geom.Vec3{Y: at, Z: lineDepth}
		if axis == generator.Vertical {
			pos = geom.Vec3{X: at, Z: lineDepth}
		}
		out[k] = generator.Descriptor{
			Kind:     generator.Line{Axis: axis, Range: r},
			Position: pos,
			Color:    pal.Color6(k),
		}
	}
	return out
}

// stackRadius is the starting radius of stacked shape j of six, largest
// first.
func stackRadius(j int, scaleRate float64) float64 {
	return float64(stackCount-1-j)*(maxRadius/stackCount) + scaleRate
}

func circles(p Params, scaleRate float64) []generator.Descriptor {
	pal := palette.Get(p.Palette)
	out := make([]generator.Descriptor, len(band.Six))
	for j, r := range band.Six {
		out[j] = generator.Descriptor{
			Kind:     generator.Circle(r, p.Param1, p.Param2, stackRadius(j, scaleRate), scaleRate),
			Position: geom.Vec3{Z: float64(j)},
			Color:    pal.Color6(j),
		}
	}
	return out
}

func rings(p Params, indexOffset bool) []generator.Descriptor {
	pal := palette.Get(p.Palette)
	out := make([]generator.Descriptor, len(band.Six))
	for j, r := range band.Six {
		kind := generator.Ring(r, p.Param1, p.Param2, stackRadius(j, 0), 0, indexOffset)
		kind.Thickness = ringThickness
		out[j] = generator.Descriptor{
			Kind:     kind,
			Position: geom.Vec3{Z: float64(j)},
			Color:    pal.Color6(j),
		}
	}
	return out
}

func bolt(p Params) []generator.Descriptor {
	pal := palette.Get(p.Palette)
	out := make([]generator.Descriptor, len(band.Six))
	for j, r := range band.Six {
		out[j] = generator.Descriptor{
			Kind:     generator.Line{Axis: generator.Horizontal, Filled: true, Range: r},
			Position: geom.Vec3{Z: float64(j)},
			Color:    pal.Color6(j),
		}
	}
	return out
}

func solid(form generator.SolidForm, spin float64) []generator.Descriptor {
	colors := palette.Solid()
	return []generator.Descriptor{{
		Kind: generator.Solid{
			Form:   form,
			Bands:  band.SixWide,
			Colors: colors,
			Spin:   spin,
		},
		Color: colors[0],
	}}
}

// wires places eleven wires Spread apart along X.
func wires(p Params, mode generator.WireMode) []generator.Descriptor {
	pal := palette.Get(p.Palette)
	out := make([]generator.Descriptor, len(band.Eleven))
	for i, r := range band.Eleven {
		out[i] = generator.Descriptor{
			Kind:     generator.Wire{Mode: mode, Range: r, Seed: uint64(i)},
			Position: geom.Vec3{X: p.Spread * float64(i)},
			Color:    pal.Color11(i),
		}
	}
	return out
}

// orbitOrder is the band, and palette entry, of each of the six bodies.
var orbitOrder = [6]int{5, 4, 3, 2, 0, 1}

// orbits returns the layout of six bodies. Param1 is the rose harmonic,
// Param2 the body size, Spread the speed and Offset the path width.
func orbits(mode generator.OrbitMode, offAxis, noise bool) Func {
	return func(p Params) []generator.Descriptor {
		pal := palette.Get(p.Palette)
		out := make([]generator.Descriptor, len(orbitOrder))
		for i, b := range orbitOrder {
			out[i] = generator.Descriptor{
				Kind: generator.Orbit{
					Mode:      mode,
					OffAxis:   offAxis,
					Noise:     noise,
					Harmonics: p.Param1,
					Size:      p.Param2,
					Speed:     p.Spread,
					LineWidth: p.Offset,
					Range:     band.Six[b],
					Seed:      uint64(i),
				},
				Color: pal.Color6(b),
			}
		}
		return out
	}
}
