// SPDX-License-Identifier: MIT
/*
Package palette is the registry of color palettes. Each palette has a
six-entry table, indexed by the canonical six bands, and an eleven-entry
table for the wire layouts. Lookups never fail: an unknown palette index
resolves to the first palette and band indices wrap.
*/
package palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is one named pair of color tables.
type Palette struct {
	Name   string
	Six    [6]colorful.Color
	Eleven [11]colorful.Color
}

type table struct {
	name   string
	six    [6]string
	eleven [11]string
}

var tables = []table{
	{
		name:   "Rainbow",
		six:    [6]string{"#A800FF", "#0079FF", "#00F11D", "#FFEF00", "#FF7F00", "#FF0900"},
		eleven: [11]string{"#8D5BFF", "#6D5BFF", "#5B8FFF", "#5BFFE7", "#5BFF76", "#CAFF5B", "#FFE05B", "#FFA75B", "#FF6B5B", "#FF5B89", "#FF2E37"},
	},
	{
		name:   "SL2T_1",
		six:    [6]string{"#46237A", "#FFB400", "#CFFFB3", "#337CA0", "#EE5622", "#3A5311"},
		eleven: [11]string{"#46237A", "#D1B1CB", "#DDCAD9", "#FFB400", "#EE5622", "#337CA0", "3891A6", "#2EC4B6", "#9FC490", "#CFFFB3", "#3A5311"},
	},
	{
		name:   "Cyberpunk",
		six:    [6]string{"#2d00f7", "#8900f2", "#b100e8", "#db00b6", "#f20089", "#faff00"},
		eleven: [11]string{"#2d00f7", "#6a00f4", "#8900f2", "#a100f2", "#b100e8", "#bc00dd", "#db00b6", "#e500a4", "#f20089", "#faff00", "#faff09"},
	},
	{
		name:   "Ocean",
		six:    [6]string{"#014f86", "#2c7da0", "#468faf", "#90e0ef", "#ade8f4", "#caf0f8"},
		eleven: [11]string{"#013a63", "#01497c", "#014f86", "#2a6f97", "#2c7da0", "#2c7da0", "#468faf", "#61a5c2", "#89c2d9", "#a9d6e5", "#caf0f8"},
	},
	{
		name:   "Sunset",
		six:    [6]string{"#d00000", "#dc2f02", "#e85d04", "#f48c06", "#faa307", "#ffba08"},
		eleven: [11]string{"#6a040f", "#d00000", "#dc2f02", "#dc2f02", "#e85d04", "#f48c06", "#EE5622", "#faa307", "#ffba12", "#ffba08", "#faff00"},
	},
	{
		name:   "Earth",
		six:    [6]string{"#606c38", "#283618", "#fefae0", "#dda15e", "#bc6c25", "#6a040f"},
		eleven: [11]string{"#606c38", "#ccd5ae", "#e9edc9", "#d4a373", "#edf2f4", "#283618", "#faedcd", "#fefae0", "#dda15e", "#bc6c25", "#6a040f"},
	},
}

// solidColors is the fixed table the cube and plane pick from.
var solidColors = [6]string{"#CFFFB3", "#337CA0", "#46237A", "#FFB400", "#EE5622", "#3A5311"}

// Background colors that presets may not override.
const (
	GreenScreen = "#00ff00"
	BlueScreen  = "#0000ff"
)

var (
	registry []Palette
	solid    [6]colorful.Color
)

func init() {
	registry = make([]Palette, len(tables))
	for i, t := range tables {
		p := Palette{Name: t.name}
		for j, h := range t.six {
			p.Six[j] = mustParse(h)
		}
		for j, h := range t.eleven {
			p.Eleven[j] = mustParse(h)
		}
		registry[i] = p
	}
	for i, h := range solidColors {
		solid[i] = mustParse(h)
	}
}

// ParseHex parses "#rrggbb", "rrggbb" or the three-digit short forms.
func ParseHex(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("palette: invalid color %q: %w", s, err)
	}
	return c, nil
}

func mustParse(s string) colorful.Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Count returns the number of registered palettes.
func Count() int {
	return len(registry)
}

// All returns every palette in index order.
func All() []Palette {
	out := make([]Palette, len(registry))
	copy(out, registry)
	return out
}

// Get returns the palette at index, or the first palette when index is out
// of range.
func Get(index int) Palette {
	if index < 0 || index >= len(registry) {
		return registry[0]
	}
	return registry[index]
}

// Lookup finds a palette index by case-insensitive name.
func Lookup(name string) (int, bool) {
	for i, p := range registry {
		if strings.EqualFold(p.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// Color6 returns entry band of the six-color table, wrapping band.
func (p Palette) Color6(band int) colorful.Color {
	return p.Six[wrap(band, len(p.Six))]
}

// Color11 returns entry band of the eleven-color table, wrapping band.
func (p Palette) Color11(band int) colorful.Color {
	return p.Eleven[wrap(band, len(p.Eleven))]
}

// Gradient returns color i of n evenly spaced stops blended through the
// six-color table in Lab space. It is deterministic for a given (i, n).
func (p Palette) Gradient(i, n int) colorful.Color {
	if n <= 1 {
		return p.Six[0]
	}
	t := float64(min(max(i, 0), n-1)) / float64(n-1) * float64(len(p.Six)-1)
	lo := int(t)
	if lo >= len(p.Six)-1 {
		return p.Six[len(p.Six)-1]
	}
	return p.Six[lo].BlendLab(p.Six[lo+1], t-float64(lo)).Clamped()
}

// Solid returns the fixed colors of the solid shapes, one per band of the
// wide six-band table.
func Solid() [6]colorful.Color {
	return solid
}

// KeepsBackground reports whether a forced background must survive a preset
// change.
func KeepsBackground(current string) bool {
	c := strings.ToLower(strings.TrimSpace(current))
	return c == GreenScreen || c == BlueScreen
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
