// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"talkulizer/internal/audio"
	"talkulizer/internal/generator"
	"talkulizer/internal/geom"
	"talkulizer/internal/layout"
	"talkulizer/internal/palette"
	"talkulizer/internal/preset"
	"talkulizer/internal/scene"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"
)

type fakeController struct {
	settings scene.Settings
	applied  int
}

func (f *fakeController) Settings() scene.Settings { return f.settings }
func (f *fakeController) Apply(s scene.Settings)   { f.settings = s; f.applied++ }
func (f *fakeController) SetBackground(bg string)  { f.settings.Background = bg }

type fakeCycler struct {
	running  bool
	interval time.Duration
	next     int
}

func (f *fakeCycler) Next() preset.Preset {
	f.next++
	return preset.Preset{Name: "Bars"}
}
func (f *fakeCycler) Toggle() bool  { f.running = !f.running; return f.running }
func (f *fakeCycler) Running() bool { return f.running }
func (f *fakeCycler) Longer() time.Duration {
	f.interval = preset.Longer(f.interval)
	return f.interval
}
func (f *fakeCycler) Shorter() time.Duration {
	f.interval = preset.Shorter(f.interval)
	return f.interval
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasSetAndCell(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0, "#ff0000")
	c.Set(1, 3, "#00ff00")
	c.Set(-1, 0, "#0000ff") // ignored
	c.Set(4, 0, "#0000ff")  // ignored

	r, color := c.Cell(0, 0)
	if want := rune(0x2800 | 1 | 1<<7); r != want {
		t.Errorf("cell rune = %U, want %U", r, want)
	}
	if color != "#00ff00" {
		t.Errorf("cell color = %q, want last set", color)
	}
	if r, color := c.Cell(1, 0); r != ' ' || color != "" {
		t.Errorf("empty cell = %q %q", r, color)
	}
}

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.Line(0, 0, 7, 0, "#fff")
	for col := range 4 {
		r, _ := c.Cell(col, 0)
		if want := rune(0x2800 | 1 | 1<<3); r != want {
			t.Errorf("col %d = %U, want %U", col, r, want)
		}
	}

	// Far off-canvas segments are skipped entirely.
	c = NewCanvas(4, 1)
	c.Line(0, 0, 1<<20, 0, "#fff")
	if r, _ := c.Cell(0, 0); r != ' ' {
		t.Errorf("far segment drew %U", r)
	}
}

func TestCanvasFill(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Fill(-5, -5, 100, 100, "#abcdef")
	for row := range 2 {
		for col := range 3 {
			if r, _ := c.Cell(col, row); r != 0x28FF {
				t.Errorf("cell %d,%d = %U, want full", col, row, r)
			}
		}
	}
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Set(0, 0, "#ff0000")
	c.Set(5, 7, "#00ff00")

	out := c.Render("")
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.ContainsRune(lines[0], 0x2801) || !strings.ContainsRune(lines[1], 0x2880) {
		t.Errorf("render = %q", out)
	}
}

func TestApplyTransform(t *testing.T) {
	tests := []struct {
		desc string
		tr   geom.Transform
		in   geom.Vec3
		want geom.Vec3
	}{
		{"Identity", geom.Identity(), geom.Vec3{X: 1, Y: 2, Z: 3}, geom.Vec3{X: 1, Y: 2, Z: 3}},
		{"Scale and move", geom.Transform{Scale: geom.Vec3{X: 2, Y: 3, Z: 1}, Position: geom.Vec3{X: 1}},
			geom.Vec3{X: 1, Y: 1}, geom.Vec3{X: 3, Y: 3}},
		{"Rotate Z", geom.Transform{Scale: geom.Vec3{X: 1, Y: 1, Z: 1}, Rotation: geom.Vec3{Z: math.Pi / 2}},
			geom.Vec3{X: 1}, geom.Vec3{Y: 1}},
		{"Rotate X", geom.Transform{Scale: geom.Vec3{X: 1, Y: 1, Z: 1}, Rotation: geom.Vec3{X: math.Pi / 2}},
			geom.Vec3{Y: 1}, geom.Vec3{Z: 1}},
		{"Facing ignores rotation", geom.Transform{Scale: geom.Vec3{X: 1, Y: 1, Z: 1}, Rotation: geom.Vec3{Z: 1},
			Facing: geom.Facing{Enabled: true}}, geom.Vec3{X: 1}, geom.Vec3{X: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := Apply(tt.tr, tt.in)
			if got.Sub(tt.want).Len() > 1e-9 {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCameraDraw(t *testing.T) {
	line := &generator.Shape{
		Primitive: generator.PrimitiveLine,
		Points:    []geom.Vec3{{X: -100}, {X: 100}, {X: math.NaN()}},
		Transform: geom.Identity(),
		Color:     colorful.Color{R: 1},
	}
	box := &generator.Shape{
		Primitive: generator.PrimitiveBox,
		Points:    []geom.Vec3{{X: -14, Y: 1}, {X: -13, Y: 2}},
		Transform: geom.Identity(),
		Color:     colorful.Color{G: 1},
	}

	c := NewCanvas(28, 8)
	DefaultCamera.Draw(c, []*generator.Shape{line, box})

	// The far line is skipped; the box fills the top-left of the middle.
	if r, _ := c.Cell(14, 4); r != ' ' {
		t.Errorf("off-canvas line drew %U", r)
	}
	if r, color := c.Cell(0, 3); r == ' ' || color != "#00ff00" {
		t.Errorf("box cell = %U %q", r, color)
	}

	line.Points = []geom.Vec3{{X: -10}, {X: 10}}
	c = NewCanvas(28, 8)
	DefaultCamera.Draw(c, []*generator.Shape{line})
	if r, color := c.Cell(14, 4); r == ' ' || color != "#ff0000" {
		t.Errorf("center cell = %U %q", r, color)
	}
}

func TestPreviewThrottles(t *testing.T) {
	var got []frameMsg
	p := NewPreview(10) // one frame per 100ms
	f := &scene.Frame{Seq: 1, Type: layout.Standard}

	p.Render(f) // dropped before Attach
	p.Attach(func(msg tea.Msg) { got = append(got, msg.(frameMsg)) })

	for i, ms := range []float64{0, 50, 99, 100, 150, 210, 10} {
		f.Seq = uint64(i)
		f.ElapsedMs = ms
		p.Render(f)
	}

	var seqs []uint64
	for _, m := range got {
		seqs = append(seqs, m.seq)
	}
	// 0, 100 and 210 pass; time going backwards (a new clock) passes too.
	want := []uint64{0, 3, 5, 6}
	if len(seqs) != len(want) {
		t.Fatalf("rendered %v, want %v", seqs, want)
	}
	for i := range want {
		if seqs[i] != want[i] {
			t.Fatalf("rendered %v, want %v", seqs, want)
		}
	}
}

func TestPreviewLevels(t *testing.T) {
	var got frameMsg
	p := NewPreview(0)
	p.Resize(10, 4)
	p.Attach(func(msg tea.Msg) { got = msg.(frameMsg) })

	mags := make([]byte, 1024)
	for i := range mags[:2] {
		mags[i] = 255
	}
	p.Render(&scene.Frame{Type: layout.Standard, Palette: 1, Magnitudes: mags})

	if got.levels[0] != 1 || got.levels[5] != 0 {
		t.Errorf("levels = %v", got.levels)
	}
	if got.colors[0] != palette.Get(1).Six[0].Hex() {
		t.Errorf("colors = %v", got.colors)
	}
	if w, h := got.canvas.DotSize(); w != 20 || h != 16 {
		t.Errorf("canvas dots = %dx%d", w, h)
	}
}

func newTestModel() (*Model, *fakeController, *fakeCycler) {
	ctrl := &fakeController{settings: scene.Settings{Type: layout.Standard, Background: "#040d1b"}}
	cyc := &fakeCycler{interval: 2 * time.Second}
	return NewModel(ctrl, cyc, NewPreview(0)), ctrl, cyc
}

func TestModelTypeAndPaletteKeys(t *testing.T) {
	m, ctrl, _ := newTestModel()
	types := layout.Types()

	m.Update(runes("t"))
	if ctrl.settings.Type != types[1] {
		t.Errorf("after t: %s, want %s", ctrl.settings.Type, types[1])
	}
	m.Update(runes("T"))
	m.Update(runes("T"))
	if ctrl.settings.Type != types[len(types)-1] {
		t.Errorf("after T T: %s, want %s", ctrl.settings.Type, types[len(types)-1])
	}

	for range palette.Count() {
		m.Update(runes("p"))
	}
	if ctrl.settings.Params.Palette != 0 {
		t.Errorf("palette wrapped to %d, want 0", ctrl.settings.Params.Palette)
	}

	ctrl.settings.Type = "mystery"
	m.Update(runes("t"))
	if want := types[(slices.Index(types, layout.Fallback)+1)%len(types)]; ctrl.settings.Type != want {
		t.Errorf("from unknown: %s, want %s", ctrl.settings.Type, want)
	}
}

func TestModelBackgroundToggle(t *testing.T) {
	m, ctrl, _ := newTestModel()

	m.Update(runes("g"))
	if ctrl.settings.Background != palette.GreenScreen {
		t.Errorf("after g: %q", ctrl.settings.Background)
	}
	m.Update(runes("b"))
	if ctrl.settings.Background != palette.BlueScreen {
		t.Errorf("after b: %q", ctrl.settings.Background)
	}
	m.Update(runes("b"))
	if ctrl.settings.Background != "#040d1b" {
		t.Errorf("after b b: %q, want the original background", ctrl.settings.Background)
	}
}

func TestModelCyclerKeys(t *testing.T) {
	m, _, cyc := newTestModel()

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(runes("n"))
	if cyc.next != 2 {
		t.Errorf("Next called %d times, want 2", cyc.next)
	}
	m.Update(runes("c"))
	if !cyc.running {
		t.Error("c should start cycling")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if cyc.interval != 3*time.Second {
		t.Errorf("after up: %s", cyc.interval)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if cyc.interval != time.Second {
		t.Errorf("after down down: %s", cyc.interval)
	}

	noCycler := NewModel(&fakeController{}, nil, NewPreview(0))
	noCycler.Update(runes("n"))
	if noCycler.status != "no presets loaded" {
		t.Errorf("status = %q", noCycler.status)
	}
}

func TestModelQuitAndZoom(t *testing.T) {
	m, _, _ := newTestModel()

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}

	before := m.preview.HalfWidth()
	m.Update(runes("+"))
	if m.preview.HalfWidth() >= before {
		t.Error("+ should zoom in")
	}
	m.Update(runes("-"))
	if math.Abs(m.preview.HalfWidth()-before) > 1e-9 {
		t.Errorf("zoom round trip = %v, want %v", m.preview.HalfWidth(), before)
	}
}

func TestModelFramesAndView(t *testing.T) {
	m, _, _ := newTestModel()
	if !strings.Contains(m.View(), "Waiting") {
		t.Error("view before first frame")
	}

	m.Update(tea.WindowSizeMsg{Width: 60, Height: 24})
	if m.preview.cols.Load() != 60 || m.preview.rows.Load() != 24-chromeRows {
		t.Errorf("preview size = %dx%d", m.preview.cols.Load(), m.preview.rows.Load())
	}

	msg := frameMsg{seq: 42, typ: layout.Rings, canvas: NewCanvas(60, 20)}
	msg.levels[0] = 1
	for range 30 {
		m.Update(msg)
	}
	if m.pos[0] < 0.9 || m.pos[1] != 0 {
		t.Errorf("spring levels = %v", m.pos)
	}

	view := m.View()
	for _, want := range []string{layout.Rings.DisplayName(), "frame 42", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

var errFetch = errors.New("no host api")

func testDeviceModel(devices []audio.Device, err error) DeviceListModel {
	m := NewDeviceListModel()
	m.fetch = func() ([]audio.Device, error) { return devices, err }
	return m
}

func update(m DeviceListModel, msg tea.Msg) (DeviceListModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(DeviceListModel), cmd
}

func TestDevicePicker(t *testing.T) {
	devices := []audio.Device{
		{ID: 0, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
		{ID: 1, Name: "Mic", MaxInputChannels: 1, DefaultSampleRate: 22050},
	}
	m := testDeviceModel(devices, nil)

	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m, _ = update(m, m.Init()())
	if m.selectedIndex != 1 {
		t.Errorf("selected %d, want the first input", m.selectedIndex)
	}
	if !strings.Contains(m.View(), "Mic (Input)") {
		t.Errorf("view = %q", m.View())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeScreen != ConfigScreen {
		t.Fatal("enter should open the config screen")
	}
	// The device default joins the common rates, sorted first.
	if m.availableSampleRates[0] != 22050 || m.sampleRateIndex != 0 {
		t.Errorf("rates = %v, index %d", m.availableSampleRates, m.sampleRateIndex)
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	sel, ok := m.Selection()
	if !ok || sel.DeviceID != 1 || sel.SampleRate != 44100 {
		t.Errorf("selection = %+v, %v", sel, ok)
	}
	if cmd == nil {
		t.Error("confirming should quit")
	}
}

func TestDevicePickerOutputOnly(t *testing.T) {
	m := testDeviceModel([]audio.Device{{ID: 0, Name: "Speakers", MaxOutputChannels: 2}}, nil)
	m, _ = update(m, m.Init()())
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeScreen != ListScreen {
		t.Error("output-only devices cannot be configured")
	}
	if _, ok := m.Selection(); ok {
		t.Error("no selection expected")
	}
}

func TestDevicePickerError(t *testing.T) {
	m := testDeviceModel(nil, errFetch)
	m, _ = update(m, m.Init()())
	if !strings.Contains(m.View(), "no host api") {
		t.Errorf("view = %q", m.View())
	}
}
