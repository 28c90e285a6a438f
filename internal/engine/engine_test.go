// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"errors"
	"lightbox/internal/analysis"
	"lightbox/internal/audio"
	"lightbox/internal/config"
	"lightbox/internal/frame"
	"lightbox/internal/pattern"
	"lightbox/internal/scheduler"
	"lightbox/internal/transport"
	"lightbox/pkg/utils"
	"sync"
	"testing"
	"time"
)

const testSampleRate = 8000

// solidPattern fills the grid with one colour and remembers the features
// it was given.
type solidPattern struct {
	name  string
	color frame.Color

	mu   sync.Mutex
	seen []analysis.Features
}

func (p *solidPattern) Name() string { return p.name }

func (p *solidPattern) Update(buf *frame.Buffer, in analysis.Features) {
	buf.Fill(p.color)
	p.mu.Lock()
	p.seen = append(p.seen, analysis.Features{
		Bands:  append([]float64(nil), in.Bands...),
		Volume: in.Volume,
		Beat:   in.Beat,
	})
	p.mu.Unlock()
}

func (p *solidPattern) maxVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var v float64
	for _, f := range p.seen {
		v = max(v, f.Volume)
	}
	return v
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Grid.Width, cfg.Grid.Height = 4, 3
	cfg.Audio.SampleRate = testSampleRate
	cfg.Audio.ChunkSize = 256
	cfg.Audio.Bands = 4
	cfg.Audio.MaxFreq = 4000
	cfg.Render.FrameRate = 200
	cfg.Render.Gamma = 0
	cfg.Render.Brightness = 1
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, patterns []pattern.Pattern, sinks ...*utils.MockSink) *Engine {
	t.Helper()
	ex, err := analysis.NewExtractor(analysis.Options{
		SampleRate:  cfg.Audio.SampleRate,
		ChunkSize:   cfg.Audio.ChunkSize,
		Window:      analysis.Hann,
		Bands:       cfg.Audio.Bands,
		MinFreq:     cfg.Audio.MinFreq,
		MaxFreq:     cfg.Audio.MaxFreq,
		BeatRatio:   cfg.Beat.ThresholdRatio,
		Refractory:  cfg.Beat.Refractory,
		BeatHistory: cfg.Beat.History,
		BeatRecent:  cfg.Beat.Recent,
	})
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	sch, err := scheduler.New([]scheduler.Mode{{Name: "Test", Patterns: patterns}}, pattern.SystemClock)
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	buf, err := frame.NewBuffer(cfg.Grid.Width, cfg.Grid.Height)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	var out []transport.Sink
	for _, s := range sinks {
		out = append(out, s)
	}
	e, err := New(cfg, ex, sch, buf, out...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestEngine_TickDeliversFrames(t *testing.T) {
	t.Parallel()
	sink := &utils.MockSink{}
	p := &solidPattern{name: "solid", color: frame.RGB(200, 100, 50)}
	e := newTestEngine(t, testConfig(), []pattern.Pattern{p}, sink)

	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return stamp }

	if !e.Tick() {
		t.Error("first tick should report a change")
	}
	if e.Tick() {
		t.Error("second identical tick should report no change")
	}

	if got := sink.Count(); got != 2 {
		t.Fatalf("sink received %d frames, want 2", got)
	}
	f, _ := sink.Last()
	if f.Seq != 2 || f.Width != 4 || f.Height != 3 || !f.Time.Equal(stamp) {
		t.Errorf("frame header = seq %d, %dx%d, %v", f.Seq, f.Width, f.Height, f.Time)
	}
	for i, c := range f.Pixels {
		if c != frame.RGB(200, 100, 50) {
			t.Fatalf("pixel %d = %v, want {200 100 50}", i, c)
		}
	}

	stats := e.Stats()
	if stats.Frames != 2 || stats.Changed != 1 || stats.SinkErrors != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestEngine_BrightnessThenGamma(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Render.Gamma = 2.2
	cfg.Render.Brightness = 0.5

	sink := &utils.MockSink{}
	p := &solidPattern{name: "solid", color: frame.RGB(200, 100, 50)}
	e := newTestEngine(t, cfg, []pattern.Pattern{p}, sink)

	e.Tick()
	f, _ := sink.Last()
	// 200, 100, 50 halve to 100, 50, 25 and then pass through the 2.2 curve.
	want := frame.RGB(167, 122, 89)
	if f.Pixels[0] != want {
		t.Errorf("pixel = %v, want %v", f.Pixels[0], want)
	}

	// A second tick must not compound the shaping.
	e.Tick()
	f, _ = sink.Last()
	if f.Pixels[0] != want {
		t.Errorf("pixel after second tick = %v, want %v", f.Pixels[0], want)
	}
}

func TestEngine_SinkErrorsDoNotStopRendering(t *testing.T) {
	t.Parallel()
	bad := &utils.MockSink{Err: errors.New("link down")}
	good := &utils.MockSink{}
	p := &solidPattern{name: "solid", color: frame.RGB(1, 2, 3)}
	e := newTestEngine(t, testConfig(), []pattern.Pattern{p}, bad, good)

	for range 5 {
		e.Tick()
	}
	if got := good.Count(); got != 5 {
		t.Errorf("healthy sink received %d frames, want 5", got)
	}
	if got := e.Stats().SinkErrors; got != 5 {
		t.Errorf("SinkErrors = %d, want 5", got)
	}
}

func TestEngine_AdjustBrightness(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Render.Brightness = 0.5
	e := newTestEngine(t, cfg, []pattern.Pattern{&solidPattern{name: "solid"}})

	tests := []struct {
		delta float64
		want  float64
	}{
		{0.1, 0.6},
		{1, config.MaxBrightness},
		{-5, config.MinBrightness},
		{0.2, 0.3},
	}
	for _, tt := range tests {
		got := e.AdjustBrightness(tt.delta)
		if got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("AdjustBrightness(%v) = %v, want %v", tt.delta, got, tt.want)
		}
		if e.Brightness() != got {
			t.Errorf("Brightness() = %v, want %v", e.Brightness(), got)
		}
	}
}

func TestEngine_Controls(t *testing.T) {
	t.Parallel()
	a, b := &solidPattern{name: "a"}, &solidPattern{name: "b"}
	e := newTestEngine(t, testConfig(), []pattern.Pattern{a, b})

	var c Controls = e
	c.NextPattern()
	if got := c.Active().Pattern; got != "b" {
		t.Errorf("after NextPattern active = %q, want b", got)
	}
	c.PreviousPattern()
	c.PreviousPattern()
	if got := c.Active().Pattern; got != "b" {
		t.Errorf("after two PreviousPattern active = %q, want b", got)
	}
	c.NextMode()
	if got := c.Active().Pattern; got != "a" {
		t.Errorf("after NextMode active = %q, want a", got)
	}
	if c.ToggleSettings() {
		t.Error("ToggleSettings reported support for a plain pattern")
	}
}

// toneSource streams a sine until cancelled.
type toneSource struct{}

func (toneSource) SampleRate() float64 { return testSampleRate }

func (toneSource) Stream(ctx context.Context, ingest audio.IngestFunc) error {
	tone := utils.GenerateSineWave(256, testSampleRate, 440)
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ingest(tone)
		}
	}
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()
	sink := &utils.MockSink{}
	p := &solidPattern{name: "solid", color: frame.RGB(9, 9, 9)}
	e := newTestEngine(t, testConfig(), []pattern.Pattern{p}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, toneSource{}) }()

	deadline := time.After(5 * time.Second)
	for p.maxVolume() < 0.5 {
		select {
		case <-deadline:
			t.Fatal("features never reflected the ingested tone")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if !sink.Closed {
		t.Error("sink was not closed")
	}
	if sink.Count() == 0 {
		t.Error("no frames delivered")
	}
}

func TestEngine_RunWithoutSource(t *testing.T) {
	t.Parallel()
	sink := &utils.MockSink{}
	p := &solidPattern{name: "solid"}
	e := newTestEngine(t, testConfig(), []pattern.Pattern{p}, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := e.Run(ctx, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.maxVolume() != 0 {
		t.Errorf("silence produced volume %v", p.maxVolume())
	}
	if !sink.Closed {
		t.Error("sink was not closed")
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	buf, _ := frame.NewBuffer(5, 5)
	if _, err := New(cfg, nil, nil, buf); err == nil {
		t.Error("expected error for missing components")
	}

	e := newTestEngine(t, cfg, []pattern.Pattern{&solidPattern{name: "solid"}})
	if _, err := New(cfg, e.extractor, e.scheduler, buf); err == nil {
		t.Error("expected error for mismatched buffer size")
	}
}

func BenchmarkEngine_Tick(b *testing.B) {
	cfg := config.Default()
	ex, _ := analysis.NewExtractor(analysis.Options{
		SampleRate: cfg.Audio.SampleRate, ChunkSize: cfg.Audio.ChunkSize, Window: analysis.Hann,
		Bands: cfg.Audio.Bands, MinFreq: cfg.Audio.MinFreq, MaxFreq: cfg.Audio.MaxFreq,
		BeatRatio: cfg.Beat.ThresholdRatio, Refractory: cfg.Beat.Refractory,
		BeatHistory: cfg.Beat.History, BeatRecent: cfg.Beat.Recent,
	})
	ex.Ingest(utils.GenerateComplexWave(cfg.Audio.ChunkSize, cfg.Audio.SampleRate))
	env := pattern.Env{Clock: pattern.SystemClock, Rand: pattern.NewRand(1)}
	sch, _ := scheduler.New(scheduler.DefaultModes(env, cfg.Render.Smoothing), pattern.SystemClock)
	buf, _ := frame.NewBuffer(cfg.Grid.Width, cfg.Grid.Height)
	e, _ := New(cfg, ex, sch, buf, &transport.LatestSink{})

	b.ReportAllocs()
	for b.Loop() {
		e.Tick()
	}
}
