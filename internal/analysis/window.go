// SPDX-License-Identifier: MIT
package analysis

import "sync"

// SampleWindow is a fixed-capacity ring of the most recent audio samples.
// The audio source writes into it from its own goroutine while the render
// loop copies the newest chunk out; both hold the lock only for a copy, so
// a chunk read by Latest is at most one ingest batch stale.
type SampleWindow struct {
	mu    sync.Mutex
	buf   []float64
	head  int // Next write position.
	count int // Valid samples, <= len(buf).
}

// NewSampleWindow returns an empty window holding up to capacity samples.
func NewSampleWindow(capacity int) *SampleWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &SampleWindow{buf: make([]float64, capacity)}
}

// Write appends samples, overwriting the oldest when full. If the batch is
// larger than the window only its tail is kept.
func (w *SampleWindow) Write(samples []float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	size := len(w.buf)
	if len(samples) >= size {
		copy(w.buf, samples[len(samples)-size:])
		w.head = 0
		w.count = size
		return
	}

	n := copy(w.buf[w.head:], samples)
	if n < len(samples) {
		copy(w.buf, samples[n:])
	}
	w.head = (w.head + len(samples)) % size
	w.count = min(w.count+len(samples), size)
}

// Latest copies the len(dst) most recent samples into dst, oldest first.
// It reports false and leaves dst untouched when fewer are available.
func (w *SampleWindow) Latest(dst []float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(dst)
	if n > w.count {
		return false
	}

	size := len(w.buf)
	start := (w.head - n + size) % size
	if start+n <= size {
		copy(dst, w.buf[start:start+n])
	} else {
		k := copy(dst, w.buf[start:])
		copy(dst[k:], w.buf[:n-k])
	}
	return true
}

// Len returns the number of buffered samples.
func (w *SampleWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Cap returns the window capacity.
func (w *SampleWindow) Cap() int {
	return len(w.buf)
}

// Reset discards all buffered samples.
func (w *SampleWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.head = 0
	w.count = 0
}
