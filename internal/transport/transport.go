// SPDX-License-Identifier: MIT
/*
Package transport publishes scene frames to renderers outside the process.

Every publisher is a scene.Renderer. Frames are only valid during Render, so
publishers encode what they need before returning and never block the frame
loop: when a consumer falls behind, frames are dropped.
*/
package transport

import (
	"talkulizer/internal/generator"
	"talkulizer/internal/scene"
)

// Publisher is a scene renderer that owns network resources.
// Implementations must be safe for concurrent use.
type Publisher interface {
	scene.Renderer
	Close() error
}

// FrameMessage is the JSON form of a scene frame.
type FrameMessage struct {
	Kind       string         `json:"kind"`
	Seq        uint64         `json:"seq"`
	ElapsedMs  float64        `json:"elapsedMs"`
	Type       string         `json:"visualizerType"`
	Palette    int            `json:"colorIndex"`
	Background string         `json:"bgColor"`
	Shapes     []ShapeMessage `json:"shapes"`
}

// ShapeMessage is the JSON form of one shape instance. Points are flattened
// x, y, z triples.
type ShapeMessage struct {
	Family    string      `json:"family"`
	Primitive string      `json:"primitive"`
	Color     string      `json:"color"`
	Thickness float64     `json:"thickness,omitempty"`
	Position  [3]float64  `json:"position"`
	Rotation  [3]float64  `json:"rotation"`
	Scale     [3]float64  `json:"scale"`
	LookAt    *[3]float64 `json:"lookAt,omitempty"`
	Points    []float32   `json:"points"`
}

const frameKind = "frame"

// Encoder converts frames to messages, reusing its buffers between calls.
// It is not safe for concurrent use.
type Encoder struct {
	msg FrameMessage
}

// Encode returns the message for f. The result is overwritten by the next
// call.
func (e *Encoder) Encode(f *scene.Frame) *FrameMessage {
	m := &e.msg
	m.Kind = frameKind
	m.Seq = f.Seq
	m.ElapsedMs = f.ElapsedMs
	m.Type = string(f.Type)
	m.Palette = f.Palette
	m.Background = f.Background

	if cap(m.Shapes) < len(f.Shapes) {
		m.Shapes = make([]ShapeMessage, len(f.Shapes))
	}
	m.Shapes = m.Shapes[:len(f.Shapes)]
	for i, s := range f.Shapes {
		encodeShape(&m.Shapes[i], s)
	}
	return m
}

func encodeShape(dst *ShapeMessage, s *generator.Shape) {
	t := s.Transform
	dst.Family = string(s.Family)
	dst.Primitive = s.Primitive.String()
	dst.Color = s.Color.Clamped().Hex()
	dst.Thickness = s.Thickness
	dst.Position = [3]float64{t.Position.X, t.Position.Y, t.Position.Z}
	dst.Rotation = [3]float64{t.Rotation.X, t.Rotation.Y, t.Rotation.Z}
	dst.Scale = [3]float64{t.Scale.X, t.Scale.Y, t.Scale.Z}
	if t.Facing.Enabled {
		dst.LookAt = &[3]float64{t.Facing.Target.X, t.Facing.Target.Y, t.Facing.Target.Z}
	} else {
		dst.LookAt = nil
	}

	n := len(s.Points) * 3
	if cap(dst.Points) < n {
		dst.Points = make([]float32, n)
	}
	dst.Points = dst.Points[:n]
	for i, p := range s.Points {
		dst.Points[3*i] = float32(p.X)
		dst.Points[3*i+1] = float32(p.Y)
		dst.Points[3*i+2] = float32(p.Z)
	}
}
