// SPDX-License-Identifier: MIT
package generator

import (
	"math"
	"testing"

	"talkulizer/internal/band"
	"talkulizer/internal/geom"

	"github.com/lucasb-eyer/go-colorful"
)

const eps = 1e-9

func filled(n int, level byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = level
	}
	return buf
}

func build(kind Kind) *Instance {
	return Descriptor{Kind: kind}.Build()
}

func TestLineFlatWhenSilent(t *testing.T) {
	silent := Input{Magnitudes: filled(1024, 0)}
	for _, axis := range []Axis{Horizontal, Vertical} {
		inst := build(Line{Axis: axis, Range: band.Range{Start: 4, End: 10}})
		for _, ms := range []float64{0, 123.4, 1e6} {
			silent.ElapsedMs = ms
			inst.Step(silent)
			for i, p := range inst.Shape.Points {
				across := p.Y
				if axis == Vertical {
					across = p.X
				}
				if across != 0 {
					t.Fatalf("axis %d t=%v point %d displaced %v, want 0", axis, ms, i, across)
				}
			}
		}
	}
}

func TestLineEnvelope(t *testing.T) {
	inst := build(Line{Range: band.Range{Start: 0, End: 4}})
	if n := len(inst.Shape.Points); n != LinePoints {
		t.Fatalf("points = %d, want %d", n, LinePoints)
	}
	if x := inst.Shape.Points[0].X; x != 5 {
		t.Errorf("first x = %v, want 5", x)
	}

	inst.Step(Input{Magnitudes: filled(16, 255), ElapsedMs: 0})
	// Full intensity gives amplitude 2^1 - 1 = 1.
	for _, p := range inst.Shape.Points {
		want := math.Exp(-0.65*math.Abs(p.X)) * math.Cos(2*math.Pi*p.X)
		if math.Abs(p.Y-want) > eps {
			t.Fatalf("y(%v) = %v, want %v", p.X, p.Y, want)
		}
	}

	vertical := build(Line{Axis: Vertical, Filled: true})
	if vertical.Shape.Primitive != PrimitiveMesh {
		t.Errorf("filled line primitive = %v, want mesh", vertical.Shape.Primitive)
	}
	if y := vertical.Shape.Points[0].Y; y != 3 {
		t.Errorf("vertical first y = %v, want 3", y)
	}
}

func TestPulseThreshold(t *testing.T) {
	tests := []struct {
		name      string
		start     float64
		rate      float64
		frames    int
		wantScale float64
		wantDepth float64
	}{
		{"Accumulates", 1, 0.5, 4, 3, 0},
		{"ExactCeilingHolds", 9.5, 0.5, 1, 10, 0},
		{"PastCeilingResets", 9.5, 0.5, 2, PulseFloor, PulseDepthStep},
		{"ZeroRateNeverResets", 10, 0, 100, 10, 0},
		{"SingleResetPerFrame", 9.75, 100, 1, PulseFloor, PulseDepthStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pulse{Rate: tt.rate, Scale: tt.start}
			resets := 0
			for range tt.frames {
				if p.Step() {
					resets++
				}
			}
			if p.Scale != tt.wantScale || p.Depth != tt.wantDepth {
				t.Errorf("after %d frames = (%v, %v), want (%v, %v)",
					tt.frames, p.Scale, p.Depth, tt.wantScale, tt.wantDepth)
			}
			if resets > tt.frames {
				t.Errorf("resets = %d over %d frames", resets, tt.frames)
			}
		})
	}
}

func TestPulseLinearGrowth(t *testing.T) {
	const s0, r = 0.25, 0.125
	p := Pulse{Rate: r, Scale: s0}
	for k := 1; s0+float64(k)*r <= PulseCeiling; k++ {
		if p.Step() {
			t.Fatalf("unexpected reset at frame %d", k)
		}
		if want := s0 + float64(k)*r; math.Abs(p.Scale-want) > eps {
			t.Fatalf("frame %d scale = %v, want %v", k, p.Scale, want)
		}
	}
	if !p.Step() || p.Scale != PulseFloor {
		t.Errorf("expected reset to %v, got %v", PulseFloor, p.Scale)
	}
}

func TestRadialPulseMovesDepth(t *testing.T) {
	inst := Descriptor{
		Kind:     Ring(band.Range{Start: 0, End: 2}, 3, 1, 9.995, 0.01, false),
		Position: geom.Vec3{Z: 2},
	}.Build()
	in := Input{Magnitudes: filled(8, 0)}

	inst.Step(in) // 10.005 > 10 resets.
	tr := inst.Shape.Transform
	if tr.Scale.X != PulseFloor || tr.Scale.Y != PulseFloor || tr.Scale.Z != 1 {
		t.Errorf("scale after reset = %+v", tr.Scale)
	}
	if math.Abs(tr.Position.Z-(2+PulseDepthStep)) > eps {
		t.Errorf("depth after reset = %v, want %v", tr.Position.Z, 2+PulseDepthStep)
	}
}

func TestRadialSilentIsCircle(t *testing.T) {
	tests := []struct {
		name string
		kind Radial
	}{
		{"Fractal", Ring(band.Range{Start: 0, End: 2}, 7, 1.5, 1, 0, false)},
		{"Rings", Ring(band.Range{Start: 0, End: 2}, 1, 0.8, 1, 0, true)},
		{"Circle", Circle(band.Range{Start: 0, End: 2}, 12, 2.25, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := build(tt.kind)
			inst.Step(Input{Magnitudes: filled(64, 0), ElapsedMs: 5000})
			for i, p := range inst.Shape.Points {
				if r := math.Hypot(p.X, p.Y); math.Abs(r-tt.kind.RingWidth) > eps {
					t.Fatalf("point %d radius = %v, want %v", i, r, tt.kind.RingWidth)
				}
			}
		})
	}
}

func TestRadialPerturbation(t *testing.T) {
	kind := Ring(band.Range{Start: 0, End: 4}, 1, 2, 1, 0, false)
	inst := build(kind)
	inst.Step(Input{Magnitudes: filled(8, 255)})

	// n is raised to 2; at θ=0 the radius is ringWidth + 1.
	p := inst.Shape.Points[0]
	if r := math.Hypot(p.X, p.Y); math.Abs(r-3) > eps {
		t.Errorf("radius at θ=0 = %v, want 3", r)
	}
	q := inst.Shape.Points[RingPoints/4] // θ = π/2, cos(2θ) = -1.
	if r := math.Hypot(q.X, q.Y); math.Abs(r-1) > 1e-6 {
		t.Errorf("radius at θ=π/2 = %v, want 1", r)
	}

	circle := build(Circle(band.Range{Start: 0, End: 4}, 0, 2, 1, 0))
	circle.Step(Input{Magnitudes: filled(8, 255)})
	c := circle.Shape.Points[10]
	if r := math.Hypot(c.X, c.Y); math.Abs(r-2.1) > eps {
		t.Errorf("circle radius with n=0 = %v, want 2.1", r)
	}
}

func TestWireModes(t *testing.T) {
	loud := Input{Magnitudes: filled(16, 255)}

	def := build(Wire{Mode: WireDefault, Range: band.Range{Start: 0, End: 2}})
	if n := len(def.Shape.Points); n != WirePoints {
		t.Fatalf("points = %d, want %d", n, WirePoints)
	}
	if got := def.Shape.Transform.Rotation.Y; math.Abs(got-math.Pi/6) > eps {
		t.Errorf("rotation = %v, want π/6", got)
	}
	before := def.Shape.Points[100]
	def.Step(loud)
	p := def.Shape.Points[100]
	want := 0.1 * math.Exp(-0.65*p.Z) * math.Cos(2*math.Pi*p.Z)
	if math.Abs(p.X-want) > eps || p.Y != before.Y || p.Z != before.Z {
		t.Errorf("default wire point = %+v, want x %v with y,z unchanged", p, want)
	}

	flat := build(Wire{Mode: WireFlat, Range: band.Range{Start: 0, End: 2}})
	flat.Step(loud)
	f := flat.Shape.Points[0]
	if f.X != 0 || math.Abs(f.Y-0.1) > eps {
		t.Errorf("flat wire first point = %+v, want y 0.1", f)
	}

	fuzz := build(Wire{Mode: WireFuzz, Range: band.Range{Start: 0, End: 2}, Seed: 3})
	fuzz.Step(Input{Magnitudes: filled(16, 51)}) // Intensity 0.2.
	for i, q := range fuzz.Shape.Points {
		if q.X < 0 || q.X >= 0.2 {
			t.Fatalf("fuzz point %d x = %v outside [0, 0.2)", i, q.X)
		}
	}
}

func TestBoxHeight(t *testing.T) {
	inst := build(Box{Width: 2, Height: 4, Rotation: 1, Range: band.Range{Start: 0, End: 8}})
	if tr := inst.Shape.Transform; tr.Scale != (geom.Vec3{X: 2, Y: 1, Z: 0}) || tr.Rotation.Z != 1 {
		t.Errorf("transform = %+v", tr)
	}

	buf := filled(16, 0)
	for i := range 8 {
		buf[i] = 255
	}
	inst.Step(Input{Magnitudes: buf})
	for i, p := range inst.Shape.Points {
		want := 0.0
		if topVertices[i] {
			want = 4
		}
		if p.Y != want {
			t.Errorf("vertex %d y = %v, want %v", i, p.Y, want)
		}
	}

	// A range past the buffer reads as silence.
	far := build(Box{Width: 1, Height: 4, Range: band.Range{Start: 2000, End: 2100}})
	far.Step(Input{Magnitudes: buf})
	for i, p := range far.Shape.Points {
		if p.Y != 0 {
			t.Errorf("out-of-range vertex %d y = %v, want 0", i, p.Y)
		}
	}
}

func TestWaveformTrace(t *testing.T) {
	inst := build(Waveform{Height: 2})
	pts := inst.Shape.Points
	if len(pts) != WaveformPoints || pts[0].X != 6 {
		t.Fatalf("waveform points = %d, first x %v", len(pts), pts[0].X)
	}

	wave := []byte{128, 255, 0, 192}
	pts[10].Y = 7
	inst.Step(Input{TimeDomain: wave})

	want := []float64{0, 127.0 / 64, -2, 1}
	for i, w := range want {
		if math.Abs(pts[i].Y-w) > eps {
			t.Errorf("point %d y = %v, want %v", i, pts[i].Y, w)
		}
	}
	if pts[10].Y != 0 {
		t.Errorf("point past buffer y = %v, want 0", pts[10].Y)
	}
}

func TestSolidColorFollowsLoudestBand(t *testing.T) {
	var colors [6]colorful.Color
	for i := range colors {
		colors[i] = colorful.Color{R: float64(i) / 5}
	}
	kind := Solid{Form: SolidCube, Bands: band.SixWide, Colors: colors, Spin: CubeSpin}
	inst := build(kind)

	buf := filled(band.TotalBins, 0)
	inst.Step(Input{Magnitudes: buf})
	if inst.Shape.Color != colors[0] {
		t.Errorf("silent frame color = %v, want band 0", inst.Shape.Color)
	}

	for i := 40; i < 88; i++ {
		buf[i] = 200
	}
	inst.Step(Input{Magnitudes: buf})
	if inst.Shape.Color != colors[3] {
		t.Errorf("color = %v, want band 3", inst.Shape.Color)
	}
	if r := inst.Shape.Transform.Rotation; math.Abs(r.X-2*CubeSpin) > eps || math.Abs(r.Y-2*CubeSpin) > eps {
		t.Errorf("rotation after two frames = %+v", r)
	}

	// Equal levels keep the first band.
	tie := filled(band.TotalBins, 90)
	if got := LoudestBand(tie, band.SixWide[:]); got != 0 {
		t.Errorf("tie picked band %d, want 0", got)
	}

	plane := build(Solid{Form: SolidPlane, Bands: band.SixWide, Colors: colors})
	plane.Step(Input{Magnitudes: buf})
	if len(plane.Shape.Points) != 4 || plane.Shape.Transform.Rotation != (geom.Vec3{}) {
		t.Errorf("plane = %d points, rotation %+v", len(plane.Shape.Points), plane.Shape.Transform.Rotation)
	}
}

func TestAdvancePhaseWrapsOnce(t *testing.T) {
	phase := 0.0
	wraps := 0
	for frame := 0; frame < 10000 && wraps == 0; frame++ {
		next := AdvancePhase(phase, 0.5, 300)
		if next == -math.Pi {
			wraps++
		} else if next < phase {
			t.Fatalf("phase decreased at frame %d: %v -> %v", frame, phase, next)
		}
		if next > math.Pi {
			t.Fatalf("phase %v retained past π", next)
		}
		phase = next
	}
	if wraps != 1 || phase != -math.Pi {
		t.Fatalf("wraps = %d phase = %v, want one snap to -π", wraps, phase)
	}
	if next := AdvancePhase(phase, 0.5, 300); next <= -math.Pi {
		t.Errorf("phase did not advance after wrap: %v", next)
	}
}

func TestLoopPhase(t *testing.T) {
	if got := LoopPhase(1234, 0.5, 0); math.Abs(got-(-math.Pi/4+0.25)) > eps {
		t.Errorf("zero speed phase = %v", got)
	}
	// Half of the 1000ms period sweeps π.
	if got := LoopPhase(500, 0, 100); math.Abs(got-(3*math.Pi/4)) > eps {
		t.Errorf("phase = %v, want 3π/4", got)
	}
	if a, b := LoopPhase(250, 0.2, 100), LoopPhase(1250, 0.2, 100); math.Abs(a-b) > eps {
		t.Errorf("phase not periodic: %v vs %v", a, b)
	}
}

func TestSlideX(t *testing.T) {
	if got := SlideX(8.01, 1, 100); got != -SlideLimit {
		t.Errorf("wrap = %v, want %v", got, -SlideLimit)
	}
	if got := SlideX(0, 0.6, 1000); math.Abs(got-1) > eps {
		t.Errorf("advance = %v, want 1", got)
	}
}

func TestOrbitOrientation(t *testing.T) {
	in := Input{Magnitudes: filled(1024, 128), ElapsedMs: 42}

	race := build(Orbit{Mode: OrbitLoopSeparate, Harmonics: 3, Size: 0.2, Speed: 50, LineWidth: 4})
	race.Step(in)
	tr := race.Shape.Transform
	if tr.Facing.Enabled {
		t.Error("on-axis orbit should not use facing")
	}
	// From (0,0) to the first point on the curve.
	next := tr.Position
	want := math.Atan2(-next.X, next.Y) + math.Pi/2
	if math.Abs(tr.Rotation.Z-want) > 1e-9 {
		t.Errorf("rotation = %v, want %v", tr.Rotation.Z, want)
	}
	if tr.Scale != (geom.Vec3{X: 10, Y: 10, Z: 10}) {
		t.Errorf("scale = %+v", tr.Scale)
	}

	helix := build(Orbit{Mode: OrbitLoopSeparate, OffAxis: true, Speed: 50, LineWidth: 4})
	helix.Step(in)
	h := helix.Shape.Transform
	if !h.Facing.Enabled || h.Facing.Target.X != h.Position.X || h.Facing.Target.Y != h.Position.Y {
		t.Errorf("off-axis loop facing = %+v at %+v", h.Facing, h.Position)
	}

	carousel := build(Orbit{Mode: OrbitSlide, OffAxis: true, Speed: 50})
	carousel.Step(in)
	if f := carousel.Shape.Transform.Facing; !f.Enabled || f.Target != (geom.Vec3{Y: 1}) {
		t.Errorf("off-axis slide facing = %+v", f)
	}
	if p := carousel.Shape.Transform.Position; p.Y != 0 || p.X <= 0 {
		t.Errorf("slide position = %+v", p)
	}
}

func TestOrbitNoiseJitter(t *testing.T) {
	kind := Orbit{Mode: OrbitLoopSeparate, Noise: true, Harmonics: 2, Size: 0.3, Speed: 10, LineWidth: 2, Seed: 9}
	a, b := build(kind), build(kind)
	in := Input{Magnitudes: filled(1024, 255)}
	a.Step(in)
	b.Step(in)

	quiet := build(Orbit{Harmonics: 2, Size: 0.3})
	moved := false
	for i := range a.Shape.Points {
		if a.Shape.Points[i] != b.Shape.Points[i] {
			t.Fatalf("same seed diverged at point %d", i)
		}
		if a.Shape.Points[i] != quiet.Shape.Points[i] {
			moved = true
		}
	}
	if !moved {
		t.Error("noise orbit outline did not change at full intensity")
	}
}

func TestNoSignalKeepsGeometry(t *testing.T) {
	kinds := []Kind{
		Line{},
		Ring(band.Range{Start: 0, End: 2}, 2, 1, 1, 0.5, false),
		Wire{Mode: WireFuzz},
		Box{Width: 1, Height: 1},
		Waveform{Height: 1},
		Solid{Spin: CubeSpin},
		Orbit{Mode: OrbitSlide, Speed: 100},
	}

	for _, kind := range kinds {
		t.Run(string(kind.Family()), func(t *testing.T) {
			inst := build(kind)
			before := append([]geom.Vec3(nil), inst.Shape.Points...)
			tr := inst.Shape.Transform
			inst.Step(Input{ElapsedMs: 999})
			for i := range before {
				if before[i] != inst.Shape.Points[i] {
					t.Fatalf("point %d changed without signal", i)
				}
			}
			if inst.Shape.Transform != tr {
				t.Errorf("transform changed without signal")
			}
		})
	}
}

func TestStepNoAllocs(t *testing.T) {
	in := Input{Magnitudes: filled(1024, 100), TimeDomain: filled(1024, 140), ElapsedMs: 16}
	kinds := []Kind{
		Line{Range: band.Six[2]},
		Ring(band.Six[1], 4, 1, 2, 0.01, true),
		Circle(band.Six[0], 4, 1, 2, 0.01),
		Wire{Mode: WireFuzz, Range: band.Eleven[3]},
		Box{Width: 1, Height: 3, Range: band.Range{Start: 0, End: 16}},
		Waveform{Height: 1},
		Solid{Bands: band.SixWide, Spin: CubeSpin},
		Orbit{Mode: OrbitLoop, Noise: true, Harmonics: 3, Size: 0.2, Speed: 80, LineWidth: 3},
	}

	for _, kind := range kinds {
		inst := build(kind)
		allocs := testing.AllocsPerRun(100, func() {
			inst.Step(in)
		})
		if allocs > 0 {
			t.Errorf("%s Step allocated memory: got %.1f allocs, want 0", kind.Family(), allocs)
		}
	}
}

func BenchmarkRingStep(b *testing.B) {
	inst := build(Ring(band.Six[0], 5, 1, 2, 0.01, false))
	in := Input{Magnitudes: filled(1024, 180), ElapsedMs: 16}
	b.ReportAllocs()
	for b.Loop() {
		inst.Step(in)
	}
}

func BenchmarkWaveformStep(b *testing.B) {
	inst := build(Waveform{Height: 1})
	in := Input{TimeDomain: filled(1024, 140)}
	b.ReportAllocs()
	for b.Loop() {
		inst.Step(in)
	}
}
