// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"sync/atomic"

	"talkulizer/internal/band"
	"talkulizer/internal/layout"
	"talkulizer/internal/palette"
	"talkulizer/internal/scene"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPreviewFPS is how often the preview redraws.
const DefaultPreviewFPS = 20

// frameMsg carries one rasterized frame to the model.
type frameMsg struct {
	seq        uint64
	typ        layout.Type
	palette    int
	background string
	canvas     *Canvas
	levels     [6]float64
	colors     [6]string
}

// Preview is a scene renderer that rasterizes frames for a bubbletea
// program. Frames closer together than the preview period are skipped.
type Preview struct {
	send    atomic.Pointer[func(tea.Msg)]
	gapMs   float64
	lastMs  float64
	started bool

	cols, rows atomic.Int32
	halfWidth  atomic.Uint64 // float64 bits
}

// NewPreview returns a preview redrawing at most fps times a second.
func NewPreview(fps int) *Preview {
	if fps <= 0 {
		fps = DefaultPreviewFPS
	}
	p := &Preview{gapMs: 1000 / float64(fps)}
	p.Resize(80, 20)
	p.SetHalfWidth(DefaultCamera.HalfWidth)
	return p
}

// Attach sets where frames are delivered, usually tea.Program.Send. Frames
// rendered before Attach are dropped.
func (p *Preview) Attach(send func(tea.Msg)) {
	p.send.Store(&send)
}

// Resize sets the canvas size in terminal cells.
func (p *Preview) Resize(cols, rows int) {
	p.cols.Store(int32(max(cols, 1)))
	p.rows.Store(int32(max(rows, 1)))
}

// SetHalfWidth sets the horizontal extent of the view in scene units.
func (p *Preview) SetHalfWidth(hw float64) {
	p.halfWidth.Store(math.Float64bits(hw))
}

// HalfWidth returns the horizontal extent of the view.
func (p *Preview) HalfWidth() float64 {
	return math.Float64frombits(p.halfWidth.Load())
}

// Render rasterizes f and hands it to the program.
func (p *Preview) Render(f *scene.Frame) error {
	send := p.send.Load()
	if send == nil {
		return nil
	}
	if p.started && f.ElapsedMs-p.lastMs < p.gapMs && f.ElapsedMs >= p.lastMs {
		return nil
	}
	p.started = true
	p.lastMs = f.ElapsedMs

	(*send)(p.rasterize(f))
	return nil
}

func (p *Preview) rasterize(f *scene.Frame) frameMsg {
	canvas := NewCanvas(int(p.cols.Load()), int(p.rows.Load()))
	Camera{HalfWidth: p.HalfWidth()}.Draw(canvas, f.Shapes)

	msg := frameMsg{
		seq:        f.Seq,
		typ:        f.Type,
		palette:    f.Palette,
		background: f.Background,
		canvas:     canvas,
	}
	pal := palette.Get(f.Palette)
	for i, r := range band.Six {
		msg.levels[i] = band.Intensity(f.Magnitudes, r)
		msg.colors[i] = pal.Six[i].Hex()
	}
	return msg
}

var _ scene.Renderer = (*Preview)(nil)
