// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"

	"github.com/charmbracelet/harmonica"
)

// Peak marker spring, tuned for the default frame rate.
const (
	peakFPS       = 60
	peakFrequency = 4.0
	peakDamping   = 0.35
)

// springField animates one damped spring per bar.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64) springField {
	return springField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	s.pos = make([]float64, n)
	s.vel = make([]float64, n)
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}

// FrequencyBars draws a bar on every other column with a dimmer gap column
// beside it, coloured from red at the top to blue at the bottom. The toggle
// adds spring-animated peak markers.
type FrequencyBars struct {
	peaks     springField
	showPeaks bool
}

var (
	_ Pattern         = (*FrequencyBars)(nil)
	_ SettingsToggler = (*FrequencyBars)(nil)
)

func NewFrequencyBars() *FrequencyBars {
	return &FrequencyBars{peaks: newSpringField(peakFPS, peakFrequency, peakDamping)}
}

func (p *FrequencyBars) Name() string { return "FrequencyBars" }

// ToggleSettings shows or hides the peak markers.
func (p *FrequencyBars) ToggleSettings() { p.showPeaks = !p.showPeaks }

func (p *FrequencyBars) Update(buf *frame.Buffer, in analysis.Features) {
	w, h := buf.Width(), buf.Height()
	bars := (w + 1) / 2
	p.peaks.resize(bars)
	buf.Clear()

	for i := range bars {
		x := 2 * i
		height := min(int(bandAt(in.Bands, i, bars)*float64(h)), h)
		for y := range height {
			hue := (1 - float64(y)/float64(h)) * 0.8
			buf.SetPixelHSV(x, h-1-y, hue, 1, 1)
			buf.SetPixelHSV(x+1, h-1-y, hue, 1, 0.7)
		}

		peak := p.peaks.step(i, float64(height))
		if p.showPeaks && peak >= 1 {
			row := h - int(peak+0.5)
			buf.SetPixel(x, max(row, 0), frame.RGB(255, 255, 255))
		}
	}
}
