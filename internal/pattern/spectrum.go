// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
)

// DefaultSmoothing is the exponential smoothing factor applied to bands.
const DefaultSmoothing = 0.7

// Spectrum draws one bar per column from the band energies, smoothed over
// time. Hue follows the column, brightness rises towards the top of a bar.
type Spectrum struct {
	smoothing   float64
	smoothed    []float64
	hueByHeight bool
}

var (
	_ Pattern         = (*Spectrum)(nil)
	_ SettingsToggler = (*Spectrum)(nil)
)

// NewSpectrum returns a spectrum analyser. alpha is the weight of the
// previous value, in [0,1).
func NewSpectrum(alpha float64) *Spectrum {
	if alpha < 0 || alpha >= 1 {
		alpha = DefaultSmoothing
	}
	return &Spectrum{smoothing: alpha}
}

func (p *Spectrum) Name() string { return "Spectrum" }

// ToggleSettings switches between hue per column and hue per row.
func (p *Spectrum) ToggleSettings() { p.hueByHeight = !p.hueByHeight }

func (p *Spectrum) Update(buf *frame.Buffer, in analysis.Features) {
	w, h := buf.Width(), buf.Height()
	if len(p.smoothed) != w {
		p.smoothed = make([]float64, w)
	}
	buf.Clear()

	for x := range w {
		p.smoothed[x] = p.smoothing*p.smoothed[x] + (1-p.smoothing)*bandAt(in.Bands, x, w)
		height := min(int(p.smoothed[x]*float64(h)), h)
		for y := range height {
			hue := float64(x) / float64(w)
			if p.hueByHeight {
				hue = float64(y) / float64(h)
			}
			buf.SetPixelHSV(x, h-1-y, hue, 1, float64(y+1)/float64(h))
		}
	}
}

// Level returns the smoothed value of column x.
func (p *Spectrum) Level(x int) float64 {
	if x < 0 || x >= len(p.smoothed) {
		return 0
	}
	return p.smoothed[x]
}
