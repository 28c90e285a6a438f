// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"lightbox/internal/log"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Features is one snapshot of the extracted audio signals.
type Features struct {
	Bands  []float64 // Normalized band energies in [0,1], lowest band first.
	Volume float64   // RMS of the last analysed chunk.
	Beat   bool      // True for the single Process call that detected an onset.
}

// Options configures an Extractor.
type Options struct {
	SampleRate     float64
	ChunkSize      int // FFT size, power of two.
	WindowCapacity int // Sample ring capacity, defaults to ChunkSize.
	Window         WindowFunc
	Bands          int
	MinFreq        float64
	MaxFreq        float64
	BeatRatio      float64
	Refractory     time.Duration
	BeatHistory    int
	BeatRecent     int
	Now            func() time.Time // Defaults to time.Now.
}

// Extractor turns the raw sample stream into band energies, volume and a
// beat flag. Ingest may run on the audio goroutine concurrently with
// Process and the accessors on the render goroutine.
type Extractor struct {
	window   *SampleWindow
	spectrum *Spectrum
	bands    *BandMapper
	beat     *BeatDetector
	now      func() time.Time

	// Render-side workspace, guarded by procMu.
	procMu sync.Mutex
	chunk  []float64
	energy []float64

	// Latest completed result.
	mu       sync.RWMutex
	snapshot Features
}

// NewExtractor validates opts and allocates every buffer used by Process.
func NewExtractor(opts Options) (*Extractor, error) {
	if opts.WindowCapacity < opts.ChunkSize {
		opts.WindowCapacity = opts.ChunkSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	spectrum, err := NewSpectrum(opts.ChunkSize, opts.SampleRate, opts.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create spectrum: %w", err)
	}
	bands, err := NewBandMapper(opts.Bands, opts.MinFreq, opts.MaxFreq, spectrum)
	if err != nil {
		return nil, fmt.Errorf("failed to create band mapper: %w", err)
	}
	beat, err := NewBeatDetector(opts.BeatHistory, opts.BeatRecent, opts.BeatRatio, opts.Refractory)
	if err != nil {
		return nil, fmt.Errorf("failed to create beat detector: %w", err)
	}

	log.Infof("Analysis: Initializing Extractor (Chunk: %d, SampleRate: %.1f Hz, Window: %v, Bands: %d)",
		opts.ChunkSize, opts.SampleRate, opts.Window, opts.Bands)

	return &Extractor{
		window:   NewSampleWindow(opts.WindowCapacity),
		spectrum: spectrum,
		bands:    bands,
		beat:     beat,
		now:      opts.Now,
		chunk:    make([]float64, opts.ChunkSize),
		energy:   make([]float64, opts.Bands),
		snapshot: Features{Bands: make([]float64, opts.Bands)},
	}, nil
}

// Ingest appends samples to the rolling window. It performs no analysis.
func (e *Extractor) Ingest(samples []float64) {
	e.window.Write(samples)
}

// Process analyses the most recent chunk and publishes a new snapshot.
// With fewer than a chunk of samples buffered it does nothing and the
// previous values are kept.
func (e *Extractor) Process() {
	e.procMu.Lock()
	defer e.procMu.Unlock()

	if !e.window.Latest(e.chunk) {
		return
	}

	volume := math.Sqrt(floats.Dot(e.chunk, e.chunk) / float64(len(e.chunk)))
	beat := e.beat.Observe(volume, e.now())
	e.bands.Map(e.spectrum.Compute(e.chunk), e.energy)

	e.mu.Lock()
	copy(e.snapshot.Bands, e.energy)
	e.snapshot.Volume = volume
	e.snapshot.Beat = beat
	e.mu.Unlock()

	if beat {
		log.Debugf("Analysis: beat (volume %.3f)", volume)
	}
}

// BandEnergies returns a copy of the latest band energies.
func (e *Extractor) BandEnergies() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]float64, len(e.snapshot.Bands))
	copy(out, e.snapshot.Bands)
	return out
}

// Volume returns the latest RMS volume.
func (e *Extractor) Volume() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot.Volume
}

// BeatDetected reports whether the latest Process call detected an onset.
func (e *Extractor) BeatDetected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot.Beat
}

// Features returns a copy of the latest snapshot.
func (e *Extractor) Features() Features {
	var f Features
	e.FeaturesInto(&f)
	return f
}

// FeaturesInto copies the latest snapshot into dst, reusing dst.Bands when it
// has enough capacity.
func (e *Extractor) FeaturesInto(dst *Features) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if cap(dst.Bands) < len(e.snapshot.Bands) {
		dst.Bands = make([]float64, len(e.snapshot.Bands))
	}
	dst.Bands = dst.Bands[:len(e.snapshot.Bands)]
	copy(dst.Bands, e.snapshot.Bands)
	dst.Volume = e.snapshot.Volume
	dst.Beat = e.snapshot.Beat
}

// BandCount returns the number of bands.
func (e *Extractor) BandCount() int { return e.bands.Len() }

// BandEdges returns the band boundaries in Hz.
func (e *Extractor) BandEdges() []float64 { return e.bands.Edges() }

// Buffered returns the number of samples currently in the window.
func (e *Extractor) Buffered() int { return e.window.Len() }
