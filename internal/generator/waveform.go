// SPDX-License-Identifier: MIT
package generator

import "talkulizer/internal/band"

const (
	WaveformPoints = 2048
	waveformSize   = 12.0
)

// Waveform draws the time-domain buffer as an oscilloscope trace. Point i
// sits at x = 6 - 24i/2048 with y = (sample[i] - 128) * Height / 128.
// Points past the end of the buffer stay at y = 0.
type Waveform struct {
	Height float64
}

func (Waveform) Family() Family { return FamilyWaveform }

func (Waveform) Band() (band.Range, bool) { return band.Range{}, false }

func (w Waveform) build() *Instance {
	s := newShape(PrimitiveLine, WaveformPoints)
	for i := range s.Points {
		s.Points[i].X = waveformSize/2 - 2*waveformSize*float64(i)/WaveformPoints
	}
	return &Instance{Shape: s, Gen: &waveformGen{kind: w}}
}

type waveformGen struct {
	kind Waveform
}

func (g *waveformGen) Step(s *Shape, in Input) {
	if len(in.TimeDomain) == 0 {
		return
	}
	scale := g.kind.Height / 128
	n := min(len(s.Points), len(in.TimeDomain))
	for i := range n {
		s.Points[i].Y = (float64(in.TimeDomain[i]) - 128) * scale
	}
	for i := n; i < len(s.Points); i++ {
		s.Points[i].Y = 0
	}
}
