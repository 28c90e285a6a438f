// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// BandMapper groups FFT magnitude bins into log-spaced frequency bands.
// Band boundaries and the bin range of every band are fixed at construction.
type BandMapper struct {
	edges []float64 // len(bands)+1 boundaries in Hz.
	start []int     // First bin of each band.
	end   []int     // One past the last bin of each band.
}

// NewBandMapper spaces n bands logarithmically from minFreq to
// min(maxFreq, sampleRate/2) over the bins of spectrum. A bin belongs to a
// band when its frequency lies in [low, high).
func NewBandMapper(n int, minFreq, maxFreq float64, spectrum *Spectrum) (*BandMapper, error) {
	if n < 1 {
		return nil, fmt.Errorf("band count must be positive, got %d", n)
	}
	high := math.Min(maxFreq, spectrum.sampleRate/2)
	if minFreq <= 0 || high <= minFreq {
		return nil, fmt.Errorf("invalid band range %.1f..%.1f Hz", minFreq, high)
	}

	edges := make([]float64, n+1)
	floats.LogSpan(edges, minFreq, high)

	m := &BandMapper{
		edges: edges,
		start: make([]int, n),
		end:   make([]int, n),
	}
	bins := spectrum.Bins()
	bin := 0
	for b := range n {
		for bin < bins && spectrum.BinFrequency(bin) < edges[b] {
			bin++
		}
		m.start[b] = bin
		for bin < bins && spectrum.BinFrequency(bin) < edges[b+1] {
			bin++
		}
		m.end[b] = bin
	}
	return m, nil
}

// Len returns the number of bands.
func (m *BandMapper) Len() int { return len(m.start) }

// Edges returns the band boundaries in Hz.
func (m *BandMapper) Edges() []float64 { return m.edges }

// Band returns the index of the band containing freq, or -1.
func (m *BandMapper) Band(freq float64) int {
	for b := range m.start {
		if freq >= m.edges[b] && freq < m.edges[b+1] {
			return b
		}
	}
	return -1
}

// Map writes the mean magnitude of every band into dst and normalizes dst by
// its maximum, so every value lies in [0,1]. Bands without bins read 0 and an
// all-zero spectrum yields a zero vector.
func (m *BandMapper) Map(magnitudes, dst []float64) {
	for b := range m.start {
		lo, hi := m.start[b], min(m.end[b], len(magnitudes))
		if hi <= lo {
			dst[b] = 0
			continue
		}
		dst[b] = floats.Sum(magnitudes[lo:hi]) / float64(hi-lo)
	}

	peak := floats.Max(dst[:len(m.start)])
	if peak <= 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		clear(dst[:len(m.start)])
		return
	}
	// Division keeps the peak at exactly 1.
	for b := range m.start {
		dst[b] /= peak
	}
}
