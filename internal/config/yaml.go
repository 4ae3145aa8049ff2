// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"talkulizer/internal/log"
	"talkulizer/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel   string           `yaml:"log_level"`  // Logging level ("debug", "info", "warn", "error").
	Audio      AudioConfig      `yaml:"audio"`      // Audio capture settings.
	Analyser   AnalyserConfig   `yaml:"analyser"`   // Spectrum analysis settings.
	Visualizer VisualizerConfig `yaml:"visualizer"` // Initial visualizer selection.
	Presets    PresetsConfig    `yaml:"presets"`    // Preset file and cycling.
	Transport  TransportConfig  `yaml:"transport"`  // Frame publishing to external renderers.
}

// AudioConfig holds settings related to audio input.
type AudioConfig struct {
	Source          string  `yaml:"source"`            // "portaudio" for live capture or "wav" for file playback.
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Capture sample rate in Hz. WAV playback uses the file's rate.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames delivered per capture callback.
	InputChannels   int     `yaml:"input_channels"`    // Channels to capture; downmixed to mono for analysis.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	GateThreshold   float64 `yaml:"gate_threshold"`    // Noise gate threshold in [0, 1]; 0 disables the gate.
	WAVFile         string  `yaml:"wav_file"`          // File played when source is "wav".
	LoopWAV         bool    `yaml:"loop_wav"`          // Restart the file when it ends.
}

// AnalyserConfig holds the spectrum analysis settings.
type AnalyserConfig struct {
	FFTSize     int     `yaml:"fft_size"`     // Samples per analysis window (power of 2).
	Smoothing   float64 `yaml:"smoothing"`    // Averaging constant in [0, 1].
	MinDecibels float64 `yaml:"min_decibels"` // Level mapped to magnitude 0.
	MaxDecibels float64 `yaml:"max_decibels"` // Level mapped to magnitude 255.
	Window      string  `yaml:"window"`       // Window function name.
}

// VisualizerConfig selects the layout shown at startup. Numeric values are
// never rejected; layouts degrade gracefully out of range.
type VisualizerConfig struct {
	Type       string  `yaml:"type"`
	Palette    int     `yaml:"palette"`
	Spread     float64 `yaml:"spread"`
	Offset     float64 `yaml:"offset"`
	Param1     float64 `yaml:"param1"`
	Param2     float64 `yaml:"param2"`
	Background string  `yaml:"background"`
	FPS        int     `yaml:"fps"`
}

// PresetsConfig holds the preset file and cycling settings.
type PresetsConfig struct {
	File          string        `yaml:"file"`           // YAML or JSON presets file; empty disables presets.
	Cycle         bool          `yaml:"cycle"`          // Switch to a random preset every cycle_interval.
	CycleInterval time.Duration `yaml:"cycle_interval"` // Period between preset switches.
}

// TransportConfig holds settings related to sending frames over the network.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve frames as JSON over WebSocket.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the WebSocket server.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send magnitude packets over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			Source:          DefaultSource,
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			InputChannels:   DefaultChannels,
			LowLatency:      DefaultLowLatency,
			GateThreshold:   0.001,
		},
		Analyser: AnalyserConfig{
			FFTSize:     DefaultFFTSize,
			Smoothing:   DefaultSmoothing,
			MinDecibels: DefaultMinDecibels,
			MaxDecibels: DefaultMaxDecibels,
			Window:      DefaultWindow,
		},
		Visualizer: VisualizerConfig{
			Type:       DefaultVisualizer,
			Spread:     DefaultSpread,
			Offset:     DefaultOffset,
			Param1:     DefaultParam1,
			Param2:     DefaultParam2,
			Background: DefaultBackground,
			FPS:        DefaultFPS,
		},
		Presets: PresetsConfig{
			CycleInterval: DefaultCycleInterval,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  16 * time.Millisecond, // ~60Hz.
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{"config.yaml", "talkulizer.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()
	cfg.Audio.Source = strings.ToLower(strings.TrimSpace(cfg.Audio.Source))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings that would make capture or analysis fail.
// Visualizer numbers are not checked.
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	// Audio Validation
	switch c.Audio.Source {
	case SourcePortAudio:
		if c.Audio.InputDevice < MinDeviceID {
			return fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, c.Audio.InputDevice)
		}
		if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
			return fmt.Errorf("audio.sample_rate must be in [%d, %d], got %v", MinSampleRate, MaxSampleRate, c.Audio.SampleRate)
		}
		if c.Audio.InputChannels < 1 {
			return fmt.Errorf("audio.input_channels must be positive, got %d", c.Audio.InputChannels)
		}
	case SourceWAV:
		if c.Audio.WAVFile == "" {
			return fmt.Errorf("audio.wav_file must be set when audio.source is %q", SourceWAV)
		}
	default:
		return fmt.Errorf("audio.source %q is not one of %q, %q", c.Audio.Source, SourcePortAudio, SourceWAV)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer must be in [1, %d], got %d", MaxBufferFrames, c.Audio.FramesPerBuffer)
	}
	if c.Audio.GateThreshold < 0 || c.Audio.GateThreshold > 1 {
		return fmt.Errorf("audio.gate_threshold must be in [0, 1], got %v", c.Audio.GateThreshold)
	}

	// Analyser Validation
	if !bitint.IsPowerOfTwo(c.Analyser.FFTSize) || c.Analyser.FFTSize < MinFFTSize || c.Analyser.FFTSize > MaxFFTSize {
		return fmt.Errorf("analyser.fft_size must be a power of 2 in [%d, %d], got %d (next power of 2 is %d)",
			MinFFTSize, MaxFFTSize, c.Analyser.FFTSize, bitint.NextPowerOfTwo(c.Analyser.FFTSize))
	}
	if c.Analyser.Smoothing < 0 || c.Analyser.Smoothing > 1 {
		return fmt.Errorf("analyser.smoothing must be in [0, 1], got %v", c.Analyser.Smoothing)
	}
	if c.Analyser.MinDecibels >= c.Analyser.MaxDecibels {
		return fmt.Errorf("analyser.min_decibels (%v) must be below analyser.max_decibels (%v)", c.Analyser.MinDecibels, c.Analyser.MaxDecibels)
	}

	// Visualizer Validation
	if c.Visualizer.FPS <= 0 || c.Visualizer.FPS > MaxFPS {
		return fmt.Errorf("visualizer.fps must be in [1, %d], got %d", MaxFPS, c.Visualizer.FPS)
	}

	// Presets Validation
	if c.Presets.Cycle && c.Presets.File == "" {
		return fmt.Errorf("presets.file must be set when presets.cycle is enabled")
	}

	// Transport Validation
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		return fmt.Errorf("transport.websocket_address must be set when WebSocket is enabled")
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}

	return nil
}

// applyEnvOverrides replaces settings named by ENV_* variables. Values that
// fail to parse are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		log.Debugf("configuration: Overriding log_level from env: %s", val)
	}

	// ENV_AUDIO_{...}

	// ENV_AUDIO_SOURCE
	if val, ok := os.LookupEnv("ENV_AUDIO_SOURCE"); ok {
		c.Audio.Source = val
		log.Debugf("configuration: Overriding audio.source from env: %s", val)
	}
	// ENV_AUDIO_DEVICE
	if val, ok := os.LookupEnv("ENV_AUDIO_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Audio.InputDevice = iVal
			log.Debugf("configuration: Overriding audio.input_device from env: %d", iVal)
		}
	}
	// ENV_AUDIO_WAV_FILE
	if val, ok := os.LookupEnv("ENV_AUDIO_WAV_FILE"); ok {
		c.Audio.WAVFile = val
		log.Debugf("configuration: Overriding audio.wav_file from env: %s", val)
	}

	// ENV_VISUALIZER_{...}

	// ENV_VISUALIZER_TYPE
	if val, ok := os.LookupEnv("ENV_VISUALIZER_TYPE"); ok {
		c.Visualizer.Type = val
		log.Debugf("configuration: Overriding visualizer.type from env: %s", val)
	}
	// ENV_VISUALIZER_PALETTE
	if val, ok := os.LookupEnv("ENV_VISUALIZER_PALETTE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Visualizer.Palette = iVal
			log.Debugf("configuration: Overriding visualizer.palette from env: %d", iVal)
		}
	}

	// ENV_PRESETS_{...}

	// ENV_PRESETS_FILE
	if val, ok := os.LookupEnv("ENV_PRESETS_FILE"); ok {
		c.Presets.File = val
		log.Debugf("configuration: Overriding presets.file from env: %s", val)
	}
	// ENV_PRESETS_CYCLE
	if val, ok := os.LookupEnv("ENV_PRESETS_CYCLE"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Presets.Cycle = bVal
			log.Debugf("configuration: Overriding presets.cycle from env: %v", bVal)
		}
	}

	// ENV_WS_{...} and ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
			log.Debugf("configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		log.Debugf("configuration: Overriding transport.websocket_address from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			log.Debugf("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		log.Debugf("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			log.Debugf("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
