// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"talkulizer/internal/config"
	"talkulizer/internal/layout"
	"talkulizer/internal/palette"
	"talkulizer/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// One-off commands that do not start the frame loop.
const (
	CommandList     = "list"
	CommandTypes    = "types"
	CommandPalettes = "palettes"
)

// Options are the parsed command line. Flags only override the loaded
// configuration when they were given explicitly.
type Options struct {
	Run         bool // Set only when the root command ran; false after --help or --version.
	Command     string
	Interactive bool
	ConfigPath  string
	Preview     bool
	Verbose     bool

	typ        string
	palette    string
	spread     float64
	offset     float64
	param1     float64
	param2     float64
	background string
	wav        string
	loop       bool
	device     int
	sampleRate float64
	fps        int
	presets    string
	cycle      bool
	websocket  string
	udp        string

	changed map[string]bool
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{changed: map[string]bool{}}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.Flags().Visit(func(f *pflag.Flag) {
				options.changed[f.Name] = true
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Run = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	listCmd := &cobra.Command{
		Use:   CommandList,
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandList
		},
	}
	listCmd.Flags().BoolVarP(&options.Interactive, "interactive", "i", false,
		"Pick a device and sample rate and print the matching configuration")
	rootCmd.AddCommand(listCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   CommandTypes,
		Short: "List visualizer types and their parameter labels",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandTypes
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   CommandPalettes,
		Short: "List color palettes",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandPalettes
		},
	})

	flags := rootCmd.PersistentFlags()

	// General
	flags.StringVar(&options.ConfigPath, "config", "",
		"Configuration file. Defaults to config.yaml or talkulizer.yaml when present")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show debug output")
	flags.BoolVarP(&options.Preview, "preview", "p", false,
		"Show a live preview in the terminal")

	// Visualizer
	flags.StringVarP(&options.typ, "type", "t", config.DefaultVisualizer,
		"Visualizer type. Use the 'types' command to see them all")
	flags.StringVar(&options.palette, "palette", "0",
		"Palette index or name. Use the 'palettes' command to see them all")
	flags.Float64Var(&options.spread, "spread", config.DefaultSpread, "Layout spread")
	flags.Float64Var(&options.offset, "offset", config.DefaultOffset, "Layout offset")
	flags.Float64Var(&options.param1, "param1", config.DefaultParam1, "First layout parameter")
	flags.Float64Var(&options.param2, "param2", config.DefaultParam2, "Second layout parameter")
	flags.StringVar(&options.background, "background", config.DefaultBackground, "Background color")
	flags.IntVar(&options.fps, "fps", config.DefaultFPS, "Frames per second")

	// Audio
	flags.StringVarP(&options.wav, "wav", "w", "",
		"Play a WAV file instead of capturing from a device")
	flags.BoolVar(&options.loop, "loop", false, "Restart the WAV file when it ends")
	flags.IntVarP(&options.device, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use the 'list' command to see available devices")
	flags.Float64VarP(&options.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Capture sample rate, measured in Hertz (Hz)")

	// Presets
	flags.StringVar(&options.presets, "presets", "", "Presets file (YAML or JSON)")
	flags.BoolVar(&options.cycle, "cycle", false, "Switch to a random preset periodically")

	// Transport
	flags.StringVar(&options.websocket, "websocket", "",
		"Serve frames over WebSocket on this address")
	flags.StringVar(&options.udp, "udp", "",
		"Send frame packets over UDP to this address")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// Apply copies the explicitly given flags into cfg.
func (o *Options) Apply(cfg *config.Config) error {
	if o.changed["verbose"] {
		cfg.LogLevel = "debug"
	}

	v := &cfg.Visualizer
	if o.changed["type"] {
		t, err := layout.ParseType(o.typ)
		if err != nil {
			return err
		}
		v.Type = string(t)
	}
	if o.changed["palette"] {
		i, err := parsePalette(o.palette)
		if err != nil {
			return err
		}
		v.Palette = i
	}
	if o.changed["spread"] {
		v.Spread = o.spread
	}
	if o.changed["offset"] {
		v.Offset = o.offset
	}
	if o.changed["param1"] {
		v.Param1 = o.param1
	}
	if o.changed["param2"] {
		v.Param2 = o.param2
	}
	if o.changed["background"] {
		v.Background = o.background
	}
	if o.changed["fps"] {
		v.FPS = o.fps
	}

	a := &cfg.Audio
	if o.changed["wav"] {
		a.Source = config.SourceWAV
		a.WAVFile = o.wav
	}
	if o.changed["loop"] {
		a.LoopWAV = o.loop
	}
	if o.changed["device"] {
		a.Source = config.SourcePortAudio
		a.InputDevice = o.device
	}
	if o.changed["sample-rate"] {
		a.SampleRate = o.sampleRate
	}

	if o.changed["presets"] {
		cfg.Presets.File = o.presets
	}
	if o.changed["cycle"] {
		cfg.Presets.Cycle = o.cycle
	}

	if o.changed["websocket"] {
		cfg.Transport.WebSocketEnabled = o.websocket != ""
		cfg.Transport.WebSocketAddress = o.websocket
	}
	if o.changed["udp"] {
		cfg.Transport.UDPEnabled = o.udp != ""
		cfg.Transport.UDPTargetAddress = o.udp
	}

	return cfg.Validate()
}

// parsePalette accepts an index or a case-insensitive palette name.
func parsePalette(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	if i, ok := palette.Lookup(strings.TrimSpace(s)); ok {
		return i, nil
	}
	return 0, fmt.Errorf("unknown palette %q", s)
}
