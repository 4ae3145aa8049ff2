// SPDX-License-Identifier: MIT
/*
Package scene runs the frame loop. Each frame it snapshots the spectrum once,
steps every shape instance of the active layout with that snapshot and the
elapsed time, and hands the result to the registered renderers.

Settings changes are queued and take effect at the start of the next frame,
so a layout is never rebuilt while its shapes are being stepped or drawn.
*/
package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talkulizer/internal/generator"
	"talkulizer/internal/layout"
	"talkulizer/internal/log"
	"talkulizer/internal/preset"
	"talkulizer/internal/spectrum"
)

var logger = log.For("scene")

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

// Settings select the active layout.
type Settings struct {
	Type       layout.Type
	Params     layout.Params
	Background string
}

// FromPreset returns the settings a preset selects, keeping a forced
// background from current.
func FromPreset(current Settings, p preset.Preset) Settings {
	return Settings{
		Type:       p.Type,
		Params:     p.Params(),
		Background: preset.Background(current.Background, p),
	}
}

// Frame is what renderers receive. It and everything it points to are owned
// by the scene and valid only for the duration of the Render call.
type Frame struct {
	Seq        uint64
	ElapsedMs  float64
	Type       layout.Type
	Palette    int
	Background string
	Shapes     []*generator.Shape
	Magnitudes []byte
}

// Renderer draws frames. Render is called from the frame loop goroutine and
// must not retain the frame.
type Renderer interface {
	Render(f *Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f *Frame) error

func (fn RendererFunc) Render(f *Frame) error { return fn(f) }

// Scene owns the shape instances of the active layout.
type Scene struct {
	sampler *spectrum.Sampler

	mu        sync.Mutex
	settings  Settings
	pending   *Settings
	renderers []Renderer

	// Touched only by the frame loop.
	instances []*generator.Instance
	needsWave bool
	frame     Frame
	active    []Renderer
}

// New returns a scene reading from sampler with settings applied on the
// first frame.
func New(sampler *spectrum.Sampler, settings Settings) (*Scene, error) {
	if sampler == nil {
		return nil, fmt.Errorf("scene: sampler cannot be nil")
	}
	s := &Scene{sampler: sampler, settings: settings}
	s.pending = &settings
	return s, nil
}

// AddRenderer registers r for every following frame.
func (s *Scene) AddRenderer(r Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderers = append(s.renderers, r)
}

// Settings returns the most recently requested settings.
func (s *Scene) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return *s.pending
	}
	return s.settings
}

// Apply queues new settings for the next frame.
func (s *Scene) Apply(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &settings
}

// ApplyPreset queues the settings of p.
func (s *Scene) ApplyPreset(p preset.Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.settings
	if s.pending != nil {
		cur = *s.pending
	}
	next := FromPreset(cur, p)
	s.pending = &next
}

// SetBackground changes the background without rebuilding the layout.
func (s *Scene) SetBackground(bg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Background = bg
		return
	}
	s.settings.Background = bg
}

// Tick runs one frame at elapsedMs and returns it. The returned frame is
// overwritten by the next Tick.
func (s *Scene) Tick(elapsedMs float64) *Frame {
	s.mu.Lock()
	if s.pending != nil {
		s.rebuild(*s.pending)
		s.pending = nil
	}
	s.frame.Background = s.settings.Background
	s.active = append(s.active[:0], s.renderers...)
	s.mu.Unlock()

	s.sampler.Begin()
	in := generator.Input{
		Magnitudes: s.sampler.Sample(),
		ElapsedMs:  elapsedMs,
	}
	if s.needsWave {
		in.TimeDomain = s.sampler.SampleTimeDomain()
	}
	for _, inst := range s.instances {
		inst.Step(in)
	}

	s.frame.Seq++
	s.frame.ElapsedMs = elapsedMs
	s.frame.Magnitudes = in.Magnitudes
	for _, r := range s.active {
		if err := r.Render(&s.frame); err != nil {
			logger.Warnf("renderer %T: %v", r, err)
		}
	}
	return &s.frame
}

// rebuild replaces the instances. Caller holds mu.
func (s *Scene) rebuild(settings Settings) {
	if !settings.Type.Known() {
		logger.Warnf("unknown visualizer type %q, using %s", settings.Type, layout.Fallback)
	}
	params := settings.Params
	if params.Bins == 0 {
		params.Bins = s.sampler.FrequencyBinCount()
	}
	descs := layout.Describe(settings.Type, params)
	s.instances = s.instances[:0]
	s.frame.Shapes = s.frame.Shapes[:0]
	s.needsWave = false
	for _, d := range descs {
		inst := d.Build()
		s.instances = append(s.instances, inst)
		s.frame.Shapes = append(s.frame.Shapes, inst.Shape)
		if d.Kind.Family() == generator.FamilyWaveform {
			s.needsWave = true
		}
	}
	s.settings = settings
	s.frame.Type = settings.Type
	s.frame.Palette = settings.Params.Palette
	logger.Infof("layout %s (%s): %d shapes", settings.Type.DisplayName(), settings.Type, len(descs))
}

// Run ticks at fps until ctx is cancelled. Elapsed time is measured from
// the call to Run.
func (s *Scene) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	logger.Infof("frame loop started at %d fps", fps)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("frame loop stopped")
			return nil
		case now := <-ticker.C:
			s.Tick(float64(now.Sub(start)) / float64(time.Millisecond))
		}
	}
}
