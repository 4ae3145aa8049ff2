// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"talkulizer/cmd"
	"talkulizer/internal/audio"
	"talkulizer/internal/config"
	"talkulizer/internal/log"
	"talkulizer/internal/preset"
	"talkulizer/internal/scene"
	"talkulizer/internal/spectrum"
	"talkulizer/internal/transport"
	"talkulizer/internal/transport/udp"
	"talkulizer/internal/tui"
	"talkulizer/pkg/build"
)

// previewLogFile receives log output while the preview owns the terminal.
const previewLogFile = "talkulizer.log"

// main runs in three phases:
//
// 1. Startup (cold path): build info, arguments, configuration, one-off
// commands, then the audio source, analyser, scene and publishers.
//
// 2. Frame loop (hot path): the audio source feeds the analyser while the
// scene samples it once per frame and hands each frame to the publishers.
//
// 3. Shutdown (cold path): on a signal or when the preview quits, stop the
// loop and release audio and network resources.
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	// One thread for the audio callback, one for frames and I/O.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.Command != "" {
		if err := executeCommand(opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Help and version output end here.
	if !opts.Run {
		return
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := opts.Apply(cfg); err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}
	log.SetLevel(cfg.Level())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := start(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	// ==================== FRAME LOOP (Hot Path) ====================

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.scene.Run(ctx, cfg.Visualizer.FPS); err != nil {
			log.Errorf("frame loop: %v", err)
		}
	}()

	if opts.Preview {
		if err := runPreview(app); err != nil {
			log.Errorf("preview: %v", err)
		}
	} else {
		log.Infof("%s running, press Ctrl+C to stop", build.GetBuildFlags().Name)
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		select {
		case <-done:
		case <-app.sourceDone:
			log.Infof("audio source finished")
		}
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	cancel()
	wg.Wait()
	app.close()
}

// app holds everything started for the frame loop.
type app struct {
	scene      *scene.Scene
	cycler     *preset.Cycler
	sourceDone chan struct{}
	closers    []func() error
}

// start builds the pipeline described by cfg: audio source, analyser,
// scene, preset cycler and publishers.
func start(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{sourceDone: make(chan struct{})}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	analyser, err := startSource(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	sc, err := scene.New(spectrum.NewSampler(analyser), cfg.Visualizer.Settings())
	if err != nil {
		return nil, err
	}
	a.scene = sc

	if cfg.Presets.File != "" {
		presets, err := preset.Load(cfg.Presets.File)
		if err != nil {
			return nil, err
		}
		cycler, err := preset.NewCycler(presets, cfg.Presets.CycleInterval, uint64(time.Now().UnixNano()), sc.ApplyPreset)
		if err != nil {
			return nil, err
		}
		a.cycler = cycler
		a.closers = append(a.closers, func() error { cycler.Stop(); return nil })
		if cfg.Presets.Cycle {
			cycler.Start()
		}
		log.Infof("loaded %d presets from %s", len(presets), cfg.Presets.File)
	}

	if err := startPublishers(cfg, a); err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

// startSource opens the configured audio source and returns the analyser it
// feeds.
func startSource(ctx context.Context, cfg *config.Config, a *app) (*spectrum.Analyser, error) {
	if cfg.Audio.Source == config.SourceWAV {
		player, err := audio.OpenWAV(cfg.Audio.WAVFile, cfg.Audio.FramesPerBuffer, cfg.Audio.LoopWAV)
		if err != nil {
			return nil, err
		}
		analyser, err := spectrum.NewAnalyser(cfg.AnalyserOptions(player.SampleRate()))
		if err != nil {
			return nil, err
		}
		log.Infof("playing %s (%s at %.0f Hz)", cfg.Audio.WAVFile, player.Duration(), player.SampleRate())
		go func() {
			defer close(a.sourceDone)
			if err := player.Run(ctx, analyser); err != nil {
				log.Errorf("wav playback: %v", err)
			}
		}()
		return analyser, nil
	}

	if err := audio.Initialize(); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, audio.Terminate)

	analyser, err := spectrum.NewAnalyser(cfg.AnalyserOptions(cfg.Audio.SampleRate))
	if err != nil {
		return nil, err
	}
	engine, err := audio.NewEngine(cfg.Audio, analyser)
	if err != nil {
		return nil, err
	}
	// Engine.Close must run before Terminate.
	a.closers = append(a.closers, engine.Close)

	// The first callback from PortAudio marks the start of the hot path.
	if err := engine.StartInputStream(); err != nil {
		return nil, err
	}
	return analyser, nil
}

// startPublishers adds the configured renderers to the scene.
func startPublishers(cfg *config.Config, a *app) error {
	if cfg.Transport.WebSocketEnabled {
		var random func() preset.Preset
		if a.cycler != nil {
			random = a.cycler.Next
		}
		wsp := transport.NewWebSocketPublisher(cfg.Transport.WebSocketAddress, cmd.CommandHandler(a.scene, random))
		if err := wsp.Start(); err != nil {
			wsp.Close()
			return err
		}
		a.scene.AddRenderer(wsp)
		a.closers = append(a.closers, wsp.Close)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		fp, err := udp.NewFramePublisher(cfg.Transport.UDPSendInterval, sender)
		if err != nil {
			sender.Close()
			return err
		}
		fp.Start()
		a.scene.AddRenderer(fp)
		a.closers = append(a.closers, sender.Close, fp.Close)
	}

	if cfg.Level() == log.LevelDebug {
		a.scene.AddRenderer(transport.NewLoggingPublisher(cfg.Visualizer.FPS))
	}
	return nil
}

// runPreview shows the terminal preview until the user quits. Logs go to
// a file while it runs.
func runPreview(a *app) error {
	f, err := os.Create(previewLogFile)
	if err != nil {
		return err
	}
	defer f.Close()
	log.SetOutput(f)
	defer log.SetOutput(os.Stderr)

	preview := tui.NewPreview(tui.DefaultPreviewFPS)
	a.scene.AddRenderer(preview)

	// A nil *preset.Cycler must not become a non-nil interface.
	var cycler tui.Cycler
	if a.cycler != nil {
		cycler = a.cycler
	}
	return tui.Run(a.scene, cycler, preview)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}
	a.closers = nil
}

// executeCommand handles one-off commands that don't need the frame loop.
func executeCommand(opts *cmd.Options) error {
	switch opts.Command {
	case cmd.CommandTypes:
		return cmd.PrintTypes(os.Stdout)
	case cmd.CommandPalettes:
		return cmd.PrintPalettes(os.Stdout)
	case cmd.CommandList:
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
		if !opts.Interactive {
			return audio.ListDevices(os.Stdout)
		}
		sel, err := tui.PickDevice()
		if errors.Is(err, tui.ErrNoSelection) {
			return nil
		}
		if err != nil {
			return err
		}
		return cmd.PrintSelection(os.Stdout, sel)
	}
	return fmt.Errorf("unknown command %q", opts.Command)
}
