// SPDX-License-Identifier: MIT
/*
Package engine drives the render loop: on every tick it refreshes the audio
features, lets the active pattern paint, shapes the output (brightness then
gamma), commits the frame and hands a copy to every sink.

Audio ingest runs on a second goroutine owned by the source; the two only
meet in the extractor's sample window.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"lightbox/internal/analysis"
	"lightbox/internal/audio"
	"lightbox/internal/config"
	"lightbox/internal/frame"
	"lightbox/internal/log"
	"lightbox/internal/scheduler"
	"lightbox/internal/transport"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// BrightnessStep is the change applied by one brightness key press.
const BrightnessStep = 0.1

// Controls is the command surface offered to the previews.
type Controls interface {
	NextPattern()
	PreviousPattern()
	NextMode()
	ToggleSettings() bool
	AdjustBrightness(delta float64) float64
	Brightness() float64
	Active() scheduler.State
}

// Stats are running counters since the engine was created.
type Stats struct {
	Frames     uint64
	Changed    uint64
	SinkErrors uint64
}

type Engine struct {
	extractor *analysis.Extractor
	scheduler *scheduler.Scheduler
	buffer    *frame.Buffer
	sinks     []transport.Sink
	recorder  *audio.Recorder

	interval   time.Duration
	gamma      float64
	brightness atomic.Uint64 // math.Float64bits of the factor.
	now        func() time.Time

	features analysis.Features // Reused every tick.

	frames     atomic.Uint64
	changed    atomic.Uint64
	sinkErrors atomic.Uint64
}

// New wires the render pipeline. The sinks are closed when Run returns.
func New(cfg *config.Config, ex *analysis.Extractor, sch *scheduler.Scheduler, buf *frame.Buffer, sinks ...transport.Sink) (*Engine, error) {
	if cfg == nil || ex == nil || sch == nil || buf == nil {
		return nil, errors.New("engine: config, extractor, scheduler and buffer are required")
	}
	if buf.Width() != cfg.Grid.Width || buf.Height() != cfg.Grid.Height {
		return nil, fmt.Errorf("engine: buffer is %dx%d, config wants %dx%d",
			buf.Width(), buf.Height(), cfg.Grid.Width, cfg.Grid.Height)
	}

	e := &Engine{
		extractor: ex,
		scheduler: sch,
		buffer:    buf,
		sinks:     sinks,
		interval:  cfg.FrameInterval(),
		gamma:     cfg.Render.Gamma,
		now:       time.Now,
	}
	e.setBrightness(cfg.Render.Brightness)

	log.Infof("Engine: Initializing (%dx%d @ %s, gamma %.2f, brightness %.2f, %d sinks)",
		buf.Width(), buf.Height(), e.interval, e.gamma, e.Brightness(), len(sinks))
	return e, nil
}

// SetRecorder taps every ingested batch into r. Call before Run.
func (e *Engine) SetRecorder(r *audio.Recorder) {
	e.recorder = r
}

// Tick renders one frame and reports whether it differs from the last one.
func (e *Engine) Tick() bool {
	e.extractor.Process()
	e.extractor.FeaturesInto(&e.features)

	e.scheduler.Update(e.buffer, e.features)
	e.buffer.Scale(e.Brightness())
	e.buffer.ApplyGamma(e.gamma)
	changed := e.buffer.Commit()

	f := e.buffer.Snapshot()
	f.Time = e.now()
	for _, sink := range e.sinks {
		if err := sink.Send(f); err != nil {
			// Log the first error and then every 100th to keep a dead sink quiet.
			if n := e.sinkErrors.Add(1); n%100 == 1 {
				log.Warnf("Engine: sink %T: %v (%d errors)", sink, err, n)
			}
		}
	}

	e.frames.Add(1)
	if changed {
		e.changed.Add(1)
	}
	return changed
}

// Run starts the ingest goroutine for source (nil renders silence) and
// ticks at the frame rate until ctx is cancelled. Sinks are closed on exit.
func (e *Engine) Run(ctx context.Context, source audio.Source) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if source != nil {
		ingest := audio.IngestFunc(e.extractor.Ingest)
		if e.recorder != nil {
			ingest = e.recorder.Tap(ingest)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Infof("Engine: Ingest goroutine started (%T)", source)
			if err := source.Stream(ctx, ingest); err != nil {
				log.Errorf("Engine: audio source stopped: %v", err)
				return
			}
			log.Infof("Engine: Ingest goroutine finished")
		}()
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	log.Infof("Engine: Render loop started (interval %s)", e.interval)
	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-ticker.C:
			e.Tick()
		}
	}

	cancel()
	wg.Wait()

	stats := e.Stats()
	log.Infof("Engine: Render loop stopped after %d frames (%d changed, %d sink errors)",
		stats.Frames, stats.Changed, stats.SinkErrors)
	return e.closeSinks()
}

func (e *Engine) closeSinks() error {
	var errs []error
	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", sink, err))
		}
	}
	return errors.Join(errs...)
}

// Stats returns the frame counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Frames:     e.frames.Load(),
		Changed:    e.changed.Load(),
		SinkErrors: e.sinkErrors.Load(),
	}
}

func (e *Engine) Brightness() float64 {
	return math.Float64frombits(e.brightness.Load())
}

func (e *Engine) setBrightness(v float64) float64 {
	if math.IsNaN(v) {
		v = config.DefaultBrightness
	}
	v = min(max(v, config.MinBrightness), config.MaxBrightness)
	e.brightness.Store(math.Float64bits(v))
	return v
}

// AdjustBrightness adds delta to the global brightness, clamped to
// [config.MinBrightness, config.MaxBrightness], and returns the new value.
func (e *Engine) AdjustBrightness(delta float64) float64 {
	for {
		old := e.brightness.Load()
		v := min(max(math.Float64frombits(old)+delta, config.MinBrightness), config.MaxBrightness)
		if e.brightness.CompareAndSwap(old, math.Float64bits(v)) {
			log.Debugf("Engine: brightness %.2f", v)
			return v
		}
	}
}

func (e *Engine) NextPattern()            { e.scheduler.NextPattern() }
func (e *Engine) PreviousPattern()        { e.scheduler.PreviousPattern() }
func (e *Engine) NextMode()               { e.scheduler.NextMode() }
func (e *Engine) ToggleSettings() bool    { return e.scheduler.ToggleSettings() }
func (e *Engine) Active() scheduler.State { return e.scheduler.Active() }

var _ Controls = (*Engine)(nil)
