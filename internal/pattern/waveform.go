// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
)

// Waveform scrolls the recent volume history across the grid, one column
// per frame, drawn as a band around the centre row.
type Waveform struct {
	history []float64 // Oldest first, at most one entry per column.
}

var _ Pattern = (*Waveform)(nil)

func NewWaveform() *Waveform {
	return &Waveform{}
}

func (p *Waveform) Name() string { return "Waveform" }

func (p *Waveform) Update(buf *frame.Buffer, in analysis.Features) {
	w, h := buf.Width(), buf.Height()

	if len(p.history) >= w {
		n := copy(p.history, p.history[len(p.history)-w+1:])
		p.history = p.history[:n]
	}
	p.history = append(p.history, clamp01(in.Volume))

	buf.Clear()
	center := h / 2
	reach := float64(max(center, 1))
	for x, amplitude := range p.history {
		waveHeight := int(amplitude * reach)
		for y := max(0, center-waveHeight); y <= min(h-1, center+waveHeight); y++ {
			dist := y - center
			if dist < 0 {
				dist = -dist
			}
			intensity := clamp01(1 - float64(dist)/reach)
			buf.SetPixel(x, y, frame.RGB(uint8(intensity*255), uint8(intensity*100), uint8(intensity*255)))
		}
	}
}

// History returns the buffered volumes, oldest first.
func (p *Waveform) History() []float64 {
	return p.history
}
