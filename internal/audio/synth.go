// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const (
	synthGain     = 0.25
	synthNoise    = 0.01
	kickFrequency = 60.0
	kickDecay     = 0.08 // Seconds for the kick envelope to fall by 1/e.
	kickAmplitude = 2.0
)

type oscillator struct {
	freq, amp         float64
	ampMod, ampModF   float64
	freqMod, freqModF float64
}

// synthVoices is a spread of partials from bass to treble with slow
// amplitude modulation so every band moves.
var synthVoices = []oscillator{
	{freq: 55, amp: 0.8, ampMod: 0.9, ampModF: 2.1, freqMod: 10, freqModF: 2.1},
	{freq: 80, amp: 0.6, ampMod: 0.8, ampModF: 1.05},
	{freq: 150, amp: 0.4, ampMod: 0.7, ampModF: 3.3},
	{freq: 220, amp: 0.35, ampMod: 0.6, ampModF: 1.7},
	{freq: 440, amp: 0.3, ampMod: 0.8, ampModF: 0.8},
	{freq: 660, amp: 0.25, ampMod: 0.75, ampModF: 0.6},
	{freq: 880, amp: 0.2, ampMod: 0.6, ampModF: 1.5},
	{freq: 1800, amp: 0.1, ampMod: 0.6, ampModF: 3.0},
	{freq: 3600, amp: 0.06, ampMod: 0.4, ampModF: 2.2},
	{freq: 8000, amp: 0.03, ampMod: 0.4, ampModF: 5.5},
}

// SynthSource generates a music-like test signal with a kick on every beat.
type SynthSource struct {
	sampleRate float64
	batchSize  int
	beat       time.Duration
	rng        *rand.Rand
	t          float64 // Seconds generated so far.
}

// NewSynthSource returns a generator at bpm beats per minute. The noise
// floor is drawn from a PCG seeded with seed.
func NewSynthSource(sampleRate float64, batchSize int, bpm float64, seed uint64) (*SynthSource, error) {
	if sampleRate <= 0 || batchSize <= 0 || bpm <= 0 {
		return nil, fmt.Errorf("invalid synth parameters: %.0f Hz, %d samples, %.0f bpm", sampleRate, batchSize, bpm)
	}
	return &SynthSource{
		sampleRate: sampleRate,
		batchSize:  batchSize,
		beat:       time.Duration(60 / bpm * float64(time.Second)),
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

func (s *SynthSource) SampleRate() float64 {
	return s.sampleRate
}

// Read fills dst with the next len(dst) samples.
func (s *SynthSource) Read(dst []float64) {
	dt := 1 / s.sampleRate
	beat := s.beat.Seconds()

	for i := range dst {
		t := s.t + float64(i)*dt
		v := 0.0
		for _, o := range synthVoices {
			amp := o.amp * (1 - o.ampMod + o.ampMod*math.Abs(math.Sin(2*math.Pi*o.ampModF*t)))
			freq := o.freq + o.freqMod*math.Sin(2*math.Pi*o.freqModF*t)
			v += amp * math.Sin(2*math.Pi*freq*t)
		}

		since := math.Mod(t, beat)
		v += kickAmplitude * math.Exp(-since/kickDecay) * math.Sin(2*math.Pi*kickFrequency*since)

		v += (s.rng.Float64()*2 - 1) * synthNoise
		dst[i] = v * synthGain
	}
	s.t += float64(len(dst)) * dt
}

// Stream emits one batch per batch period until ctx is cancelled.
func (s *SynthSource) Stream(ctx context.Context, ingest IngestFunc) error {
	ticker := time.NewTicker(batchPeriod(s.batchSize, s.sampleRate))
	defer ticker.Stop()

	batch := make([]float64, s.batchSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Read(batch)
			ingest(batch)
		}
	}
}

var _ Source = (*SynthSource)(nil)
