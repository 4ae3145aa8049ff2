// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"strings"

	"talkulizer/internal/generator"
	"talkulizer/internal/geom"

	"github.com/charmbracelet/lipgloss"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint8{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

const brailleBase = 0x2800

// Canvas is a grid of braille cells, each a 2x4 dot matrix with one color.
type Canvas struct {
	cols, rows int
	dots       []uint8
	colors     []string
}

// NewCanvas returns a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	return &Canvas{
		cols:   cols,
		rows:   rows,
		dots:   make([]uint8, cols*rows),
		colors: make([]string, cols*rows),
	}
}

// DotSize returns the canvas resolution in dots.
func (c *Canvas) DotSize() (w, h int) {
	return c.cols * 2, c.rows * 4
}

// Set lights the dot at (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int, color string) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	i := (y/4)*c.cols + x/2
	c.dots[i] |= 1 << brailleBits[x%2][y%4]
	c.colors[i] = color
}

// Line draws a segment between two dots. Segments reaching far outside
// the canvas are skipped.
func (c *Canvas) Line(x0, y0, x1, y1 int, color string) {
	w, h := c.DotSize()
	lim := 4 * max(w, h)
	if abs(x0) > lim || abs(y0) > lim || abs(x1) > lim || abs(y1) > lim {
		return
	}
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		c.Set(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Fill lights every dot in the rectangle spanned by two corners.
func (c *Canvas) Fill(x0, y0, x1, y1 int, color string) {
	w, h := c.DotSize()
	x0, x1 = max(min(x0, x1), 0), min(max(x0, x1), w-1)
	y0, y1 = max(min(y0, y1), 0), min(max(y0, y1), h-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.Set(x, y, color)
		}
	}
}

// Cell returns the rune and color of a terminal cell.
func (c *Canvas) Cell(col, row int) (rune, string) {
	i := row*c.cols + col
	if c.dots[i] == 0 {
		return ' ', ""
	}
	return rune(brailleBase + int(c.dots[i])), c.colors[i]
}

// Render draws the canvas over background. Runs of cells with the same
// color share one style.
func (c *Canvas) Render(background string) string {
	base := lipgloss.NewStyle()
	if background != "" {
		base = base.Background(lipgloss.Color(background))
	}

	var sb strings.Builder
	var run strings.Builder
	for row := range c.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := base
			if runColor != "" {
				style = style.Foreground(lipgloss.Color(runColor))
			}
			sb.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for col := range c.cols {
			r, color := c.Cell(col, row)
			if color != runColor && r != ' ' {
				flush()
				runColor = color
			}
			run.WriteRune(r)
		}
		flush()
	}
	return sb.String()
}

// Camera projects scene coordinates onto a canvas orthographically,
// looking down -Z.
type Camera struct {
	HalfWidth float64 // Scene units from the center to the left edge.
}

// DefaultCamera frames the layouts' usual extent.
var DefaultCamera = Camera{HalfWidth: 14}

// Draw plots shapes onto c.
func (cam Camera) Draw(c *Canvas, shapes []*generator.Shape) {
	w, h := c.DotSize()
	hw := cam.HalfWidth
	if hw <= 0 {
		hw = DefaultCamera.HalfWidth
	}
	hh := hw * float64(h) / float64(w)
	const offscreen = -1 << 30
	project := func(p geom.Vec3) (int, int) {
		x := (p.X + hw) / (2 * hw) * float64(w)
		y := (hh - p.Y) / (2 * hh) * float64(h)
		if !finite(x) || !finite(y) {
			return offscreen, offscreen
		}
		x = math.Max(math.Min(x, -offscreen), offscreen)
		y = math.Max(math.Min(y, -offscreen), offscreen)
		return int(math.Floor(x)), int(math.Floor(y))
	}

	for _, s := range shapes {
		if len(s.Points) == 0 {
			continue
		}
		color := s.Color.Clamped().Hex()
		switch s.Primitive {
		case generator.PrimitiveBox, generator.PrimitiveSolid:
			x0, y0 := project(Apply(s.Transform, s.Points[0]))
			x1, y1 := x0, y0
			for _, p := range s.Points[1:] {
				x, y := project(Apply(s.Transform, p))
				x0, y0 = min(x0, x), min(y0, y)
				x1, y1 = max(x1, x), max(y1, y)
			}
			c.Fill(x0, y0, x1, y1, color)
		default:
			px, py := project(Apply(s.Transform, s.Points[0]))
			c.Set(px, py, color)
			for _, p := range s.Points[1:] {
				x, y := project(Apply(s.Transform, p))
				c.Line(px, py, x, y, color)
				px, py = x, y
			}
			if s.Primitive == generator.PrimitiveLineLoop {
				x, y := project(Apply(s.Transform, s.Points[0]))
				c.Line(px, py, x, y, color)
			}
		}
	}
}

// Apply maps a local point to scene coordinates: scale, then rotation
// (Euler XYZ), then translation. Facing transforms are drawn unrotated.
func Apply(t geom.Transform, p geom.Vec3) geom.Vec3 {
	p = geom.Vec3{X: p.X * t.Scale.X, Y: p.Y * t.Scale.Y, Z: p.Z * t.Scale.Z}
	if !t.Facing.Enabled {
		p = rotateZ(p, t.Rotation.Z)
		p = rotateY(p, t.Rotation.Y)
		p = rotateX(p, t.Rotation.X)
	}
	return p.Add(t.Position)
}

func rotateX(p geom.Vec3, a float64) geom.Vec3 {
	if a == 0 {
		return p
	}
	s, c := math.Sincos(a)
	return geom.Vec3{X: p.X, Y: p.Y*c - p.Z*s, Z: p.Y*s + p.Z*c}
}

func rotateY(p geom.Vec3, a float64) geom.Vec3 {
	if a == 0 {
		return p
	}
	s, c := math.Sincos(a)
	return geom.Vec3{X: p.X*c + p.Z*s, Y: p.Y, Z: -p.X*s + p.Z*c}
}

func rotateZ(p geom.Vec3, a float64) geom.Vec3 {
	if a == 0 {
		return p
	}
	s, c := math.Sincos(a)
	return geom.Vec3{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c, Z: p.Z}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
