// SPDX-License-Identifier: MIT
/*
Package tui draws a live preview of the scene in the terminal and lets the
user steer it from the keyboard. It also holds the interactive device
picker used by the list command.
*/
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"talkulizer/internal/layout"
	"talkulizer/internal/palette"
	"talkulizer/internal/preset"
	"talkulizer/internal/scene"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// Controller is the part of the scene the preview steers.
type Controller interface {
	Settings() scene.Settings
	Apply(scene.Settings)
	SetBackground(bg string)
}

// Cycler is the preset cycler the preview steers.
type Cycler interface {
	Next() preset.Preset
	Toggle() bool
	Running() bool
	Longer() time.Duration
	Shorter() time.Duration
}

// chromeRows is the number of rows around the canvas: title, meter, status
// and help.
const chromeRows = 4

var meterLevels = []rune(" ▁▂▃▄▅▆▇█")

// Model is the bubbletea model of the preview.
type Model struct {
	ctrl    Controller
	cycler  Cycler
	preview *Preview
	keys    keyMap
	help    help.Model

	width, height int
	frame         frameMsg
	hasFrame      bool

	spring harmonica.Spring
	pos    [6]float64
	vel    [6]float64

	savedBackground string
	status          string
}

// NewModel returns a preview model. cycler may be nil when no presets are
// loaded.
func NewModel(ctrl Controller, cycler Cycler, preview *Preview) *Model {
	return &Model{
		ctrl:    ctrl,
		cycler:  cycler,
		preview: preview,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spring:  harmonica.NewSpring(harmonica.FPS(DefaultPreviewFPS), 8.0, 0.6),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.preview.Resize(msg.Width, msg.Height-chromeRows)

	case frameMsg:
		m.frame = msg
		m.hasFrame = true
		for i, target := range msg.levels {
			m.pos[i], m.vel[i] = m.spring.Update(m.pos[i], m.vel[i], target)
		}

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Next):
		if m.cycler == nil {
			m.status = "no presets loaded"
			break
		}
		p := m.cycler.Next()
		m.status = fmt.Sprintf("preset %q", p.Name)

	case key.Matches(msg, m.keys.Cycle):
		if m.cycler == nil {
			m.status = "no presets loaded"
			break
		}
		if m.cycler.Toggle() {
			m.status = "cycling on"
		} else {
			m.status = "cycling off"
		}

	case key.Matches(msg, m.keys.Longer):
		if m.cycler != nil {
			m.status = fmt.Sprintf("cycle every %s", m.cycler.Longer())
		}

	case key.Matches(msg, m.keys.Shorter):
		if m.cycler != nil {
			m.status = fmt.Sprintf("cycle every %s", m.cycler.Shorter())
		}

	case key.Matches(msg, m.keys.NextType):
		m.stepType(1)

	case key.Matches(msg, m.keys.PrevType):
		m.stepType(-1)

	case key.Matches(msg, m.keys.Palette):
		s := m.ctrl.Settings()
		s.Params.Palette = (s.Params.Palette + 1) % palette.Count()
		if s.Params.Palette < 0 {
			s.Params.Palette = 0
		}
		m.ctrl.Apply(s)
		m.status = "palette " + palette.Get(s.Params.Palette).Name

	case key.Matches(msg, m.keys.Green):
		m.toggleBackground(palette.GreenScreen)

	case key.Matches(msg, m.keys.Blue):
		m.toggleBackground(palette.BlueScreen)

	case key.Matches(msg, m.keys.ZoomIn):
		m.preview.SetHalfWidth(max(m.preview.HalfWidth()/1.25, 1))

	case key.Matches(msg, m.keys.ZoomOut):
		m.preview.SetHalfWidth(min(m.preview.HalfWidth()*1.25, 200))
	}
	return nil
}

// stepType switches to the neighbouring visualizer type.
func (m *Model) stepType(delta int) {
	types := layout.Types()
	s := m.ctrl.Settings()
	i := slices.Index(types, s.Type)
	if i < 0 {
		i = slices.Index(types, layout.Fallback)
	}
	n := len(types)
	s.Type = types[((i+delta)%n+n)%n]
	m.ctrl.Apply(s)
	m.status = "type " + s.Type.DisplayName()
}

// toggleBackground switches to screen, or back to the previous background
// when screen is already showing.
func (m *Model) toggleBackground(screen string) {
	current := m.ctrl.Settings().Background
	if strings.EqualFold(current, screen) {
		bg := m.savedBackground
		if bg == "" {
			bg = preset.DefaultBackground
		}
		m.ctrl.SetBackground(bg)
		m.status = "background " + bg
		return
	}
	if !palette.KeepsBackground(current) {
		m.savedBackground = current
	}
	m.ctrl.SetBackground(screen)
	m.status = "background " + screen
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.hasFrame {
		return "Waiting for the first frame..."
	}

	f := m.frame
	title := titleStyle.Render("talkulizer") + " " +
		infoStyle.Render(fmt.Sprintf("%s (%s) · %s · frame %d",
			f.typ.DisplayName(), f.typ, palette.Get(f.palette).Name, f.seq))

	status := m.status
	if m.cycler != nil && m.cycler.Running() {
		status = strings.TrimSpace(status + "  " + highlightStyle.Render("⟳ cycling"))
	}

	return strings.Join([]string{
		title,
		f.canvas.Render(f.background),
		m.meter(),
		status,
		m.help.View(m.keys),
	}, "\n")
}

// meter renders the smoothed six-band levels across the full width.
func (m *Model) meter() string {
	width := max(m.width, len(m.pos))
	seg := width / len(m.pos)
	var sb strings.Builder
	for i, level := range m.pos {
		level = min(max(level, 0), 1)
		r := meterLevels[int(level*float64(len(meterLevels)-1)+0.5)]
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.frame.colors[i]))
		sb.WriteString(style.Render(strings.Repeat(string(r), seg)))
	}
	return sb.String()
}

// Run starts the preview program and blocks until the user quits.
func Run(ctrl Controller, cycler Cycler, preview *Preview) error {
	p := tea.NewProgram(NewModel(ctrl, cycler, preview), tea.WithAltScreen())
	preview.Attach(p.Send)
	_, err := p.Run()
	return err
}
