// SPDX-License-Identifier: MIT
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned by ParseType for identifiers outside the
// registered set.
var ErrUnknownType = errors.New("unknown visualizer type")

// Type identifies a visualizer layout.
type Type string

const (
	Standard        Type = "standard"
	Waveform        Type = "waveform"
	StandardRing    Type = "standardRing"
	FoldingRing     Type = "foldingRing"
	HorizontalLines Type = "horizontalLines"
	VerticalLines   Type = "verticalLines"
	Circular        Type = "circular"
	Bolt            Type = "bolt"
	Rings           Type = "rings"
	Fractal         Type = "fractal"
	Solid           Type = "solid"
	Cube            Type = "cube"
	Wires           Type = "wires"
	Flat            Type = "flat"
	Racecar         Type = "racecar"
	Trails          Type = "trails"
	Slide           Type = "slide"
	RacecarOff      Type = "racecar_off"
	TrailsOff       Type = "trails_off"
	SlideOff        Type = "slide_off"
	Noise           Type = "noise"
	NoiseOff        Type = "noise_off"
)

// Fallback is the layout rendered for an unknown type.
const Fallback = Circular

// Labels names what each tunable parameter means for a type. An empty label
// marks a parameter the type ignores.
type Labels struct {
	Param1 string `json:"param1" yaml:"param1"`
	Param2 string `json:"param2" yaml:"param2"`
	Offset string `json:"offset" yaml:"offset"`
	Spread string `json:"spread" yaml:"spread"`
}

// Domain is the range and step a control offers for a parameter. Values
// outside it are accepted; it only describes the intended scale.
type Domain struct {
	Min, Max, Step float64
}

var (
	Param1Domain = Domain{Min: 1, Max: 100, Step: 1}
	Param2Domain = Domain{Min: 0, Max: 3, Step: 0.1}
	SpreadDomain = Domain{Min: 0, Max: 1000, Step: 0.5}
	OffsetDomain = Domain{Min: 0, Max: 20, Step: 0.1}
)

// Info is the static description of a type.
type Info struct {
	Type   Type
	Name   string
	Labels Labels
}

var (
	barLabels   = Labels{Param1: "Bars", Param2: "Radius", Offset: "Spread", Spread: "Height"}
	lineLabels  = Labels{Offset: "Spread", Spread: "Offset"}
	roseLabels  = Labels{Param1: "n", Param2: "Radius"}
	wireLabels  = Labels{Spread: "Spread"}
	orbitLabels = Labels{Param1: "n", Param2: "Scale", Offset: "Path", Spread: "Speed"}
)

var infos = []Info{
	{Standard, "Standard", Labels{Param1: "Bars", Param2: "Y Position", Offset: "Spread", Spread: "Height"}},
	{Waveform, "Waveform", Labels{Param1: "Lines", Param2: "Z Position", Offset: "Height"}},
	{StandardRing, "Circular", barLabels},
	{FoldingRing, "Folding", barLabels},
	{HorizontalLines, "Horizontal Lines", lineLabels},
	{VerticalLines, "Vertical Lines", lineLabels},
	{Circular, "Circles", roseLabels},
	{Bolt, "Lightning", Labels{}},
	{Rings, "Rings", roseLabels},
	{Fractal, "Fractal", roseLabels},
	{Solid, "Solid", Labels{}},
	{Cube, "Cube", Labels{}},
	{Wires, "Wires", wireLabels},
	{Flat, "Flat", wireLabels},
	{Racecar, "Race", orbitLabels},
	{Trails, "Trails", orbitLabels},
	{Slide, "Slide", orbitLabels},
	{RacecarOff, "Helix", orbitLabels},
	{TrailsOff, "Layers", orbitLabels},
	{SlideOff, "Carousel", orbitLabels},
	{Noise, "Noise", orbitLabels},
	{NoiseOff, "Static", orbitLabels},
}

var infoByType = func() map[Type]Info {
	m := make(map[Type]Info, len(infos))
	for _, in := range infos {
		m[in.Type] = in
	}
	return m
}()

// Types returns every registered type in menu order.
func Types() []Type {
	out := make([]Type, len(infos))
	for i, in := range infos {
		out[i] = in.Type
	}
	return out
}

// All returns the description of every registered type in menu order.
func All() []Info {
	out := make([]Info, len(infos))
	copy(out, infos)
	return out
}

// ParseType resolves an identifier, ignoring case.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, in := range infos {
		if strings.EqualFold(string(in.Type), s) {
			return in.Type, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Known reports whether t is registered.
func (t Type) Known() bool {
	_, ok := infoByType[t]
	return ok
}

// Info returns the description of t, or of Fallback when t is unknown.
func (t Type) Info() Info {
	if in, ok := infoByType[t]; ok {
		return in
	}
	return infoByType[Fallback]
}

// Labels returns the parameter labels of t.
func (t Type) Labels() Labels { return t.Info().Labels }

// DisplayName returns the menu name of t.
func (t Type) DisplayName() string { return t.Info().Name }

func (t Type) String() string { return string(t) }
