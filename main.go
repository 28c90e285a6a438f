// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"lightbox/cmd"
	"lightbox/internal/analysis"
	"lightbox/internal/audio"
	"lightbox/internal/build"
	"lightbox/internal/config"
	"lightbox/internal/engine"
	"lightbox/internal/frame"
	"lightbox/internal/log"
	"lightbox/internal/pattern"
	"lightbox/internal/preview"
	"lightbox/internal/scheduler"
	"lightbox/internal/transport"
	"lightbox/internal/transport/udp"
	"lightbox/internal/tui"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
)

const (
	synthBPM   = 120
	tuiLogFile = "lightbox.log"
)

// main is the entry point for the renderer.
//
// 1. Startup: parse flags, load configuration, run one-off commands.
// 2. Render: the engine ticks on its own goroutine while the preview (if
// any) owns the main goroutine, which the window backend requires.
// 3. Shutdown: a signal or quitting the preview cancels the engine, which
// closes every sink before returning.
func main() {
	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	switch opts.Command {
	case "":
		return
	case cmd.CommandList:
		err = listDevices(opts.Interactive)
	case cmd.CommandPatterns:
		err = listPatterns()
	default:
		err = run(opts)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func listDevices(interactive bool) error {
	if !interactive {
		return audio.ListDevices(os.Stdout)
	}
	device, ok, err := tui.PickDevice()
	if err != nil || !ok {
		return err
	}
	fmt.Printf("Selected [%d] %s. Start with --device %d\n", device.ID, device.Name, device.ID)
	return nil
}

func listPatterns() error {
	env := pattern.Env{Clock: pattern.SystemClock, Rand: pattern.NewRand(1)}
	sch, err := scheduler.New(scheduler.DefaultModes(env, config.DefaultSmoothing), pattern.SystemClock)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tPATTERN\tSETTINGS")
	for _, e := range sch.Catalog() {
		toggle := "-"
		if e.Toggle {
			toggle = "s"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Mode, e.Pattern, toggle)
	}
	return w.Flush()
}

func run(opts *cmd.Options) error {
	// ==================== STARTUP ====================

	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		return err
	}
	opts.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, ok := log.ParseLevel(cfg.LogLevel)
	if !ok {
		log.Warnf("Main: unknown log level %q, using info", cfg.LogLevel)
	}
	if cfg.Debug {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	if cfg.Preview.Mode == config.PreviewTUI {
		// The terminal belongs to the preview.
		f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	log.Infof("Main: %s", build.Get())

	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	sampleRate := cfg.Audio.SampleRate
	if source != nil {
		sampleRate = source.SampleRate()
	}

	window, err := analysis.ParseWindowFunc(cfg.Audio.FFTWindow)
	if err != nil {
		log.Warnf("Main: %v, using %s", err, window)
	}
	ex, err := analysis.NewExtractor(analysis.Options{
		SampleRate:     sampleRate,
		ChunkSize:      cfg.Audio.ChunkSize,
		WindowCapacity: cfg.Audio.WindowCapacity,
		Window:         window,
		Bands:          cfg.Audio.Bands,
		MinFreq:        cfg.Audio.MinFreq,
		MaxFreq:        cfg.Audio.MaxFreq,
		BeatRatio:      cfg.Beat.ThresholdRatio,
		Refractory:     cfg.Beat.Refractory,
		BeatHistory:    cfg.Beat.History,
		BeatRecent:     cfg.Beat.Recent,
	})
	if err != nil {
		return err
	}

	env := pattern.Env{Clock: pattern.SystemClock, Rand: pattern.NewRand(cfg.Render.Seed)}
	sch, err := scheduler.New(scheduler.DefaultModes(env, cfg.Render.Smoothing), pattern.SystemClock)
	if err != nil {
		return err
	}

	buf, err := frame.NewBuffer(cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		return err
	}

	sinks, latest, err := newSinks(cfg)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, ex, sch, buf, sinks...)
	if err != nil {
		closeAll(sinks)
		return err
	}

	if cfg.Audio.RecordFile != "" {
		rec := audio.NewRecorder(sampleRate)
		if err := rec.StartRecording(cfg.Audio.RecordFile); err != nil {
			closeAll(sinks)
			return err
		}
		defer func() {
			if err := rec.StopRecording(); err != nil {
				log.Errorf("Main: stopping recording: %v", err)
				return
			}
			log.Infof("Main: Recording saved to %s", cfg.Audio.RecordFile)
		}()
		eng.SetRecorder(rec)
	}

	// ==================== RENDER ====================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(ctx, source)
	}()

	var previewErr error
	switch cfg.Preview.Mode {
	case config.PreviewTUI:
		previewErr = tui.RunPreview(ctx, eng, latest)
	case config.PreviewWindow:
		previewErr = preview.Run(ctx, eng, latest, cfg.Grid.Width, cfg.Grid.Height, cfg.Preview.Scale)
	default:
		<-ctx.Done()
	}

	// ==================== SHUTDOWN ====================

	stop()
	runErr := <-done
	log.Infof("Main: Shutdown complete")
	return errors.Join(previewErr, runErr)
}

// newSource builds the configured audio source. SourceNone yields nil,
// which the engine renders as silence.
func newSource(cfg *config.Config) (audio.Source, error) {
	a := cfg.Audio
	switch a.Source {
	case config.SourcePortAudio:
		var gate *audio.Gate
		if a.GateThreshold > 0 {
			gate = audio.NewGate(a.GateThreshold)
		}
		return audio.NewPortAudioSource(a.InputDevice, a.SampleRate, a.FramesPerBuffer, gate)
	case config.SourceWAV:
		return audio.NewWAVSource(a.WAVFile, a.FramesPerBuffer, a.Loop)
	case config.SourceSynth:
		return audio.NewSynthSource(a.SampleRate, a.FramesPerBuffer, synthBPM, uint64(cfg.Render.Seed))
	default:
		return nil, nil
	}
}

// newSinks opens the configured outputs. latest is non-nil when a preview
// needs to read frames back.
func newSinks(cfg *config.Config) (sinks []transport.Sink, latest *transport.LatestSink, err error) {
	t := cfg.Transport
	if t.LogFrames {
		sinks = append(sinks, transport.NewLoggingSink())
	}
	if t.UDPEnabled {
		sender, err := udp.NewSender(t.UDPTargetAddress)
		if err != nil {
			closeAll(sinks)
			return nil, nil, err
		}
		pub, err := udp.NewPublisher(sender)
		if err != nil {
			sender.Close()
			closeAll(sinks)
			return nil, nil, err
		}
		sinks = append(sinks, pub)
	}
	if t.WebSocketEnabled {
		ws, err := transport.NewWebSocketSink(t.WebSocketAddress)
		if err != nil {
			closeAll(sinks)
			return nil, nil, err
		}
		sinks = append(sinks, ws)
	}
	if cfg.Preview.Mode != config.PreviewNone {
		latest = &transport.LatestSink{}
		sinks = append(sinks, latest)
	}
	return sinks, latest, nil
}

func closeAll(sinks []transport.Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Warnf("Main: closing %T: %v", s, err)
		}
	}
}
