// SPDX-License-Identifier: MIT
package utils

import (
	"lightbox/internal/frame"
	"math"
	"sync"
)

// MockSink records the frames it is sent instead of transmitting them.
type MockSink struct {
	mu     sync.Mutex
	Frames []frame.Frame
	Err    error // Returned from Send when set.
	Closed bool
}

// Send stores the frame for later inspection.
func (m *MockSink) Send(f frame.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, f)
	return m.Err
}

// Close marks the sink closed.
func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Count returns the number of frames received.
func (m *MockSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

// Last returns the most recent frame, if any.
func (m *MockSink) Last() (frame.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Frames) == 0 {
		return frame.Frame{}, false
	}
	return m.Frames[len(m.Frames)-1], true
}

// GenerateComplexWave returns a 440 Hz tone with two harmonics, peak 0.9.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = signal * 0.9
	}
	return buffer
}

// GenerateSineWave returns a pure tone with peak amplitude 0.9.
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * 0.9
	}
	return buffer
}

// GenerateConstant returns size samples of value v.
func GenerateConstant(size int, v float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = v
	}
	return buffer
}

func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// FindPeakBand returns the index of the strongest band.
func FindPeakBand(bands []float64) int {
	return FindPeakBin(bands, 0, len(bands)-1)
}
