// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the visualizer.
const (
	// Audio capture defaults.
	DefaultSource          = SourcePortAudio
	DefaultDeviceID        = MinDeviceID // System default device.
	DefaultSampleRate      = 44100       // CD-quality audio.
	DefaultFramesPerBuffer = 512         // Balanced latency/performance.
	DefaultChannels        = 1           // Mono input.
	DefaultLowLatency      = false

	// Analysis defaults. 2048 samples give 1024 magnitude bins.
	DefaultFFTSize     = 2048
	DefaultSmoothing   = 0.5
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
	DefaultWindow      = "Blackman"

	// Visualizer defaults.
	DefaultVisualizer = "standard"
	DefaultSpread     = 10.0
	DefaultOffset     = 0.2
	DefaultParam1     = 10.0
	DefaultParam2     = 0.2
	DefaultBackground = "#040d1b"
	DefaultFPS        = 60

	// Preset cycling defaults.
	DefaultCycleInterval = 2 * time.Second

	// Transport defaults.
	DefaultWebSocketAddress = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"

	// Hardware and processing limits.
	MinDeviceID     = -1     // -1 represents the system default device.
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz).
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz).
	MaxBufferFrames = 8192   // Maximum frames per buffer.
	MinFFTSize      = 32
	MaxFFTSize      = 32768
	MaxFPS          = 240
)

// Audio sources.
const (
	SourcePortAudio = "portaudio"
	SourceWAV       = "wav"
)
