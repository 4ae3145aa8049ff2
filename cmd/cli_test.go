// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"strings"
	"testing"

	"talkulizer/internal/config"
	"talkulizer/internal/layout"
	"talkulizer/internal/palette"
	"talkulizer/internal/preset"
	"talkulizer/internal/transport"
	"talkulizer/internal/tui"
)

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		command     string
		interactive bool
		preview     bool
		run         bool
	}{
		{"Run", []string{}, "", false, false, true},
		{"Preview", []string{"--preview"}, "", false, true, true},
		{"List", []string{"list"}, CommandList, false, false, false},
		{"Interactive List", []string{"list", "-i"}, CommandList, true, false, false},
		{"Types", []string{"types"}, CommandTypes, false, false, false},
		{"Palettes", []string{"palettes"}, CommandPalettes, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("ParseArgs(%v) error: %v", tt.args, err)
			}
			if opts.Command != tt.command {
				t.Errorf("Command = %q, want %q", opts.Command, tt.command)
			}
			if opts.Interactive != tt.interactive {
				t.Errorf("Interactive = %v, want %v", opts.Interactive, tt.interactive)
			}
			if opts.Preview != tt.preview {
				t.Errorf("Preview = %v, want %v", opts.Preview, tt.preview)
			}
			if opts.Run != tt.run {
				t.Errorf("Run = %v, want %v", opts.Run, tt.run)
			}
		})
	}
}

func TestParseArgsHelpAndVersionDoNotRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Help", []string{"--help"}},
		{"Short Help", []string{"-h"}},
		{"Version", []string{"--version"}},
		{"Subcommand Help", []string{"list", "--help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("ParseArgs(%v) error: %v", tt.args, err)
			}
			if opts.Run {
				t.Errorf("ParseArgs(%v).Run = true, want false", tt.args)
			}
			if opts.Command != "" {
				t.Errorf("ParseArgs(%v).Command = %q, want none", tt.args, opts.Command)
			}
		})
	}
}

func TestParseArgsUnknownFlag(t *testing.T) {
	if _, err := ParseArgs([]string{"--no-such-flag"}); err == nil {
		t.Error("ParseArgs() expected error for unknown flag")
	}
}

func TestApplyOnlyChangedFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Visualizer.Spread = 42
	cfg.Visualizer.Type = string(layout.Rings)

	opts, err := ParseArgs([]string{"--param1", "7"})
	if err != nil {
		t.Fatal(err)
	}
	if err := opts.Apply(cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Visualizer.Param1 != 7 {
		t.Errorf("Param1 = %v, want 7", cfg.Visualizer.Param1)
	}
	if cfg.Visualizer.Spread != 42 {
		t.Errorf("Spread = %v, want the configured 42", cfg.Visualizer.Spread)
	}
	if cfg.Visualizer.Type != string(layout.Rings) {
		t.Errorf("Type = %q, want the configured %q", cfg.Visualizer.Type, layout.Rings)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	opts, err := ParseArgs([]string{
		"--type", "racecar",
		"--palette", "3",
		"--spread", "25",
		"--offset", "1.5",
		"--param2", "0.7",
		"--background", "#00ff00",
		"--fps", "30",
		"--wav", "song.wav",
		"--loop",
		"--websocket", "127.0.0.1:9000",
		"--udp", "127.0.0.1:9999",
		"-v",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := opts.Apply(cfg); err != nil {
		t.Fatal(err)
	}

	v := cfg.Visualizer
	if v.Type != string(layout.Racecar) || v.Palette != 3 || v.Spread != 25 ||
		v.Offset != 1.5 || v.Param2 != 0.7 || v.Background != "#00ff00" || v.FPS != 30 {
		t.Errorf("visualizer = %+v", v)
	}
	if cfg.Audio.Source != config.SourceWAV || cfg.Audio.WAVFile != "song.wav" || !cfg.Audio.LoopWAV {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddress != "127.0.0.1:9000" {
		t.Errorf("websocket = %v %q", cfg.Transport.WebSocketEnabled, cfg.Transport.WebSocketAddress)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "127.0.0.1:9999" {
		t.Errorf("udp = %v %q", cfg.Transport.UDPEnabled, cfg.Transport.UDPTargetAddress)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Unknown Type", []string{"--type", "spiral"}},
		{"Unknown Palette", []string{"--palette", "no-such-palette"}},
		{"Cycle Without Presets", []string{"--cycle"}},
		{"Zero FPS", []string{"--fps", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if err := opts.Apply(config.Default()); err == nil {
				t.Errorf("Apply(%v) expected error", tt.args)
			}
		})
	}
}

func TestParsePalette(t *testing.T) {
	name := palette.Get(2).Name
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"5", 5, false},
		{strings.ToUpper(name), 2, false},
		{"3x", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePalette(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePalette(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePalette(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPrintTypes(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintTypes(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, in := range layout.All() {
		if !strings.Contains(out, string(in.Type)) {
			t.Errorf("output missing type %q", in.Type)
		}
	}
}

func TestPrintPalettes(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintPalettes(&buf); err != nil {
		t.Fatal(err)
	}
	for _, p := range palette.All() {
		if !strings.Contains(buf.String(), p.Name) {
			t.Errorf("output missing palette %q", p.Name)
		}
	}
}

func TestPrintSelection(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintSelection(&buf, tui.Selection{DeviceID: 3, Name: "Microphone", SampleRate: 48000}); err != nil {
		t.Fatal(err)
	}
	want := "# Microphone\naudio:\n  source: portaudio\n  input_device: 3\n  sample_rate: 48000\n"
	if buf.String() != want {
		t.Errorf("PrintSelection() = %q, want %q", buf.String(), want)
	}
}

type fakeController struct {
	applied    []preset.Preset
	background string
}

func (f *fakeController) ApplyPreset(p preset.Preset) { f.applied = append(f.applied, p) }
func (f *fakeController) SetBackground(bg string)     { f.background = bg }

func TestCommandHandler(t *testing.T) {
	ctrl := &fakeController{}
	randoms := 0
	handle := CommandHandler(ctrl, func() preset.Preset {
		randoms++
		return preset.Preset{}
	})

	apply := transport.Command{Action: transport.ActionApply}
	apply.Type = layout.Rings
	handle(apply)
	handle(transport.Command{Action: transport.ActionBackground})
	bg := transport.Command{Action: transport.ActionBackground}
	bg.Background = "#0000ff"
	handle(bg)
	handle(transport.Command{Action: transport.ActionRandom})
	handle(transport.Command{Action: "explode"})

	if len(ctrl.applied) != 1 || ctrl.applied[0].Type != layout.Rings {
		t.Errorf("applied = %+v", ctrl.applied)
	}
	if ctrl.background != "#0000ff" {
		t.Errorf("background = %q, want #0000ff", ctrl.background)
	}
	if randoms != 1 {
		t.Errorf("random called %d times, want 1", randoms)
	}
}

func TestCommandHandlerWithoutPresets(t *testing.T) {
	ctrl := &fakeController{}
	CommandHandler(ctrl, nil)(transport.Command{Action: transport.ActionRandom})
	if len(ctrl.applied) != 0 {
		t.Errorf("applied = %+v, want nothing", ctrl.applied)
	}
}
