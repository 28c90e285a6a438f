// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// BeatDetector flags onsets by comparing the mean of the most recent volumes
// against the mean of the older volumes in a bounded history. Two beats are
// always at least the refractory interval apart.
type BeatDetector struct {
	history    []float64 // Ring of volumes.
	head       int
	count      int
	recent     int
	ratio      float64
	refractory time.Duration

	lastBeat time.Time
	hasBeat  bool

	ordered []float64 // History in chronological order, reused per call.
}

// NewBeatDetector returns a detector keeping capacity volumes, of which the
// last recent form the recent window.
func NewBeatDetector(capacity, recent int, ratio float64, refractory time.Duration) (*BeatDetector, error) {
	if recent < 1 || capacity <= recent {
		return nil, fmt.Errorf("beat history %d must exceed recent window %d", capacity, recent)
	}
	if ratio <= 0 {
		return nil, fmt.Errorf("beat threshold ratio must be positive, got %f", ratio)
	}
	return &BeatDetector{
		history:    make([]float64, capacity),
		recent:     recent,
		ratio:      ratio,
		refractory: refractory,
		ordered:    make([]float64, capacity),
	}, nil
}

// Observe records volume measured at now and reports whether it completes
// an onset. Nothing is reported until the history holds more than the
// recent window.
func (d *BeatDetector) Observe(volume float64, now time.Time) bool {
	size := len(d.history)
	d.history[d.head] = volume
	d.head = (d.head + 1) % size
	d.count = min(d.count+1, size)

	if d.count <= d.recent {
		return false
	}

	ordered := d.ordered[:d.count]
	start := (d.head - d.count + size) % size
	for i := range ordered {
		ordered[i] = d.history[(start+i)%size]
	}

	split := d.count - d.recent
	historical := stat.Mean(ordered[:split], nil)
	recent := stat.Mean(ordered[split:], nil)

	if recent <= historical*d.ratio {
		return false
	}
	if d.hasBeat && now.Sub(d.lastBeat) < d.refractory {
		return false
	}
	d.lastBeat = now
	d.hasBeat = true
	return true
}

// Reset clears the history and the refractory state.
func (d *BeatDetector) Reset() {
	d.head = 0
	d.count = 0
	d.hasBeat = false
}
