// SPDX-License-Identifier: MIT
/*
Package preset reads saved visualizer settings and cycles through them.

A presets file holds a list under the "presets" key. Each entry uses the
field names below; JSON files are read as YAML, so the same loader accepts
both:

	presets:
	  - presetName: Bars
	    visualizerType: standard
	    colorIndex: 2
	    spread: 3
	    offset: 0.1
	    param1: 64
	    param2: 1
	    bgColor: "#040d1b"

Values are never rejected. Unknown types fall back to the default layout
when rendered, and out-of-range numbers degrade the way the layouts do.
*/
package preset

import (
	"fmt"
	"os"
	"strings"

	"talkulizer/internal/layout"
	"talkulizer/internal/palette"

	"gopkg.in/yaml.v3"
)

// DefaultBackground is the scene background when nothing sets one.
const DefaultBackground = "#040d1b"

// Preset is one saved set of visualizer settings.
type Preset struct {
	Name       string      `json:"presetName" yaml:"presetName"`
	Type       layout.Type `json:"visualizerType" yaml:"visualizerType"`
	ColorIndex int         `json:"colorIndex" yaml:"colorIndex"`
	Spread     float64     `json:"spread" yaml:"spread"`
	Offset     float64     `json:"offset" yaml:"offset"`
	Param1     float64     `json:"param1" yaml:"param1"`
	Param2     float64     `json:"param2" yaml:"param2"`
	Background string      `json:"bgColor" yaml:"bgColor"`
}

type file struct {
	Presets []Preset `yaml:"presets"`
}

// Params returns the layout parameters the preset selects.
func (p Preset) Params() layout.Params {
	return layout.Params{
		Spread:  p.Spread,
		Offset:  p.Offset,
		Param1:  p.Param1,
		Param2:  p.Param2,
		Palette: p.ColorIndex,
	}
}

// Load reads a presets file.
func Load(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	presets, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return presets, nil
}

// Parse decodes presets from YAML or JSON.
func Parse(data []byte) ([]Preset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	return f.Presets, nil
}

// Background returns the background to show after switching to p. A green
// or blue screen set by the user stays; otherwise the preset's color wins
// when it has one.
func Background(current string, p Preset) string {
	if palette.KeepsBackground(current) {
		return current
	}
	if bg := strings.TrimSpace(p.Background); bg != "" {
		return bg
	}
	return current
}
