// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"math"
)

// Plasma colours every pixel by the mean of four travelling sine waves.
type Plasma struct {
	env   Env
	clock stepper
	fast  bool
}

var (
	_ Pattern         = (*Plasma)(nil)
	_ SettingsToggler = (*Plasma)(nil)
)

func NewPlasma(env Env) *Plasma {
	return &Plasma{env: env.withDefaults()}
}

func (p *Plasma) Name() string { return "Plasma" }

// ToggleSettings switches between normal and triple speed.
func (p *Plasma) ToggleSettings() { p.fast = !p.fast }

func (p *Plasma) Update(buf *frame.Buffer, _ analysis.Features) {
	t := p.clock.advance(p.env.Clock.Now()).Seconds()
	if p.fast {
		t *= 3
	}

	w, h := buf.Width(), buf.Height()
	cx, cy := float64(w/2), float64(h/2)
	for y := range h {
		fy := float64(y)
		for x := range w {
			fx := float64(x)
			v := math.Sin((fx+t)*0.5) +
				math.Sin((fy+t)*0.4) +
				math.Sin((fx+fy+t)*0.3) +
				math.Sin(math.Hypot(fx-cx, fy-cy)+t)
			buf.SetPixelHSV(x, y, (v/4+1)/2, 1, 1)
		}
	}
}
