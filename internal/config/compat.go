// SPDX-License-Identifier: MIT
package config

import (
	"talkulizer/internal/layout"
	"talkulizer/internal/log"
	"talkulizer/internal/scene"
	"talkulizer/internal/spectrum"
)

// Level returns the configured log level.
func (c *Config) Level() log.LogLevel {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// AnalyserOptions returns the analysis settings for audio at sampleRate.
// An unknown window name falls back to Blackman with a warning.
func (c *Config) AnalyserOptions(sampleRate float64) spectrum.AnalyserOptions {
	window, err := spectrum.ParseWindowFunc(c.Analyser.Window)
	if err != nil {
		log.Warnf("configuration: %v, using %s", err, window)
	}
	return spectrum.AnalyserOptions{
		FFTSize:     c.Analyser.FFTSize,
		SampleRate:  sampleRate,
		Smoothing:   c.Analyser.Smoothing,
		MinDecibels: c.Analyser.MinDecibels,
		MaxDecibels: c.Analyser.MaxDecibels,
		Window:      window,
	}
}

// Settings returns the startup scene settings. The type is taken as given;
// unknown identifiers render the fallback layout.
func (v VisualizerConfig) Settings() scene.Settings {
	typ := layout.Type(v.Type)
	if parsed, err := layout.ParseType(v.Type); err == nil {
		typ = parsed
	}
	return scene.Settings{
		Type: typ,
		Params: layout.Params{
			Spread:  v.Spread,
			Offset:  v.Offset,
			Param1:  v.Param1,
			Param2:  v.Param2,
			Palette: v.Palette,
		},
		Background: v.Background,
	}
}
