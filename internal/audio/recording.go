// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"lightbox/internal/log"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const recordBitDepth = 16

// ErrAlreadyRecording is returned by StartRecording while a file is open.
var ErrAlreadyRecording = errors.New("already recording")

// Recorder writes ingested mono samples to a 16-bit PCM WAV file.
type Recorder struct {
	sampleRate int

	isRecording atomic.Bool // Fast path for Write when idle.
	mu          sync.Mutex
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
	written     int
}

// NewRecorder returns an idle recorder.
func NewRecorder(sampleRate float64) *Recorder {
	return &Recorder{sampleRate: int(sampleRate)}
}

// StartRecording creates filename and begins accepting samples.
func (r *Recorder) StartRecording(filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRecording.Load() {
		return ErrAlreadyRecording
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	r.outputFile = file
	r.wavEncoder = wav.NewEncoder(file, r.sampleRate, recordBitDepth, 1, 1)
	r.sampleBuf = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: r.sampleRate},
		SourceBitDepth: recordBitDepth,
	}
	r.written = 0

	r.isRecording.Store(true)
	log.Infof("Audio: Recording to %s", filename)
	return nil
}

// StopRecording finalizes the WAV header and closes the file.
func (r *Recorder) StopRecording() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRecording.Load() {
		return nil
	}
	r.isRecording.Store(false)

	var errs []error
	if r.wavEncoder != nil {
		errs = append(errs, r.wavEncoder.Close())
		r.wavEncoder = nil
	}
	if r.outputFile != nil {
		errs = append(errs, r.outputFile.Close())
		r.outputFile = nil
	}
	log.Infof("Audio: Recording stopped after %d samples", r.written)
	return errors.Join(errs...)
}

// Recording reports whether a file is open.
func (r *Recorder) Recording() bool {
	return r.isRecording.Load()
}

// Written returns the number of samples written to the current or last file.
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Write appends samples to the open file. It is a no-op when idle.
func (r *Recorder) Write(samples []float64) error {
	if !r.isRecording.Load() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wavEncoder == nil {
		return nil
	}

	r.sampleBuf.Data = toPCM(r.sampleBuf.Data[:0], samples)
	if err := r.wavEncoder.Write(r.sampleBuf); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	r.written += len(samples)
	return nil
}

// Tap returns an IngestFunc that records each batch before passing it on.
func (r *Recorder) Tap(next IngestFunc) IngestFunc {
	return func(samples []float64) {
		if err := r.Write(samples); err != nil {
			log.Errorf("Audio: %v", err)
		}
		next(samples)
	}
}

// Close stops any recording in progress.
func (r *Recorder) Close() error {
	return r.StopRecording()
}

// toPCM appends samples as clipped signed 16-bit integers.
func toPCM(dst []int, samples []float64) []int {
	const full = 1<<(recordBitDepth-1) - 1
	for _, s := range samples {
		if math.IsNaN(s) {
			s = 0
		}
		s = min(max(s, -1), 1)
		dst = append(dst, int(s*full))
	}
	return dst
}
