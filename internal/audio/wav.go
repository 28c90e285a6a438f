// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"fmt"
	"lightbox/internal/log"
	"os"
	"time"

	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("not a valid WAV file")

// WAVSource replays a WAV file as mono batches paced at its own sample rate.
type WAVSource struct {
	path       string
	samples    []float64 // Whole file, downmixed and scaled to [-1, 1].
	sampleRate float64
	batchSize  int
	loop       bool
}

// NewWAVSource decodes path fully into memory.
func NewWAVSource(path string, batchSize int, loop bool) (*WAVSource, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("invalid batch size %d", batchSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV file: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format in %s", ErrInvalidWAV, path)
	}

	samples := downmix(buf.Data, buf.Format.NumChannels, int(dec.BitDepth))
	log.Infof("Audio: Loaded %s (%d Hz, %d ch, %d-bit, %.1fs)",
		path, buf.Format.SampleRate, buf.Format.NumChannels, dec.BitDepth,
		float64(len(samples))/float64(buf.Format.SampleRate))

	return &WAVSource{
		path:       path,
		samples:    samples,
		sampleRate: float64(buf.Format.SampleRate),
		batchSize:  batchSize,
		loop:       loop,
	}, nil
}

func (s *WAVSource) SampleRate() float64 {
	return s.sampleRate
}

// Len returns the number of mono samples in the file.
func (s *WAVSource) Len() int {
	return len(s.samples)
}

// Stream delivers one batch per batch period. Without looping it returns
// nil once the file is exhausted.
func (s *WAVSource) Stream(ctx context.Context, ingest IngestFunc) error {
	if len(s.samples) == 0 {
		log.Warnf("Audio: %s contains no samples", s.path)
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(batchPeriod(s.batchSize, s.sampleRate))
	defer ticker.Stop()

	batch := make([]float64, s.batchSize)
	pos := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		n := copy(batch, s.samples[pos:])
		pos += n
		if n < len(batch) {
			if !s.loop {
				if n > 0 {
					ingest(batch[:n])
				}
				log.Infof("Audio: Reached end of %s", s.path)
				return nil
			}
			for n < len(batch) {
				m := copy(batch[n:], s.samples)
				n += m
				pos = m
			}
		}
		ingest(batch)
	}
}

// downmix averages interleaved channels and scales to [-1, 1].
func downmix(data []int, channels, bitDepth int) []float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1 / float64(int64(1)<<(bitDepth-1))
	// 8-bit WAV is unsigned.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(data) / channels
	out := make([]float64, frames)
	for i := range out {
		var sum int
		for c := range channels {
			sum += data[i*channels+c] - offset
		}
		out[i] = float64(sum) / float64(channels) * scale
	}
	return out
}

var _ Source = (*WAVSource)(nil)
