// SPDX-License-Identifier: MIT
package audio

import "math"

// Gate suppresses batches whose peak amplitude stays below a threshold.
type Gate struct {
	enabled   bool
	threshold float32 // Absolute amplitude in [0, 1].
}

// NewGate returns an enabled gate with the given threshold.
func NewGate(threshold float64) *Gate {
	g := &Gate{enabled: true}
	g.SetThreshold(threshold)
	return g
}

func (g *Gate) Enable() {
	g.enabled = true
}

func (g *Gate) Disable() {
	g.enabled = false
}

// Enabled reports whether the gate is active.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// SetThreshold adjusts the noise gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0.0 || math.IsNaN(threshold) {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	g.threshold = float32(threshold)
}

// Threshold returns the current noise gate threshold.
func (g *Gate) Threshold() float64 {
	return float64(g.threshold)
}

// Open reports whether buf should pass. A disabled gate is always open.
func (g *Gate) Open(buf []float32) bool {
	if !g.enabled {
		return true
	}
	return peak(buf) > g.threshold
}

// peak returns the largest absolute sample without branching on sign.
func peak(buf []float32) float32 {
	var m float32
	for _, s := range buf {
		a := math.Float32frombits(math.Float32bits(s) &^ (1 << 31))
		m = max(m, a)
	}
	return m
}
