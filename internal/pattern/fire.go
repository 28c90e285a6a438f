// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
)

const (
	fireCooling   = 0.95 // Whole-field decay per update.
	fireSpread    = 0.98 // Decay applied by the diffusion kernel.
	fireIgniteP   = 0.8  // Chance a bottom cell is fed per update.
	fireMinIgnite = 0.3
	fireMaxIgnite = 1.0
	fireVisible   = 0.1 // Heat below this stays black.
)

// Fire simulates rising heat: the field cools, the bottom row is fed random
// heat and every other row takes the mean of the 3x2 block at and below it.
type Fire struct {
	env  Env
	heat []float64
	next []float64
	w, h int
}

var _ Pattern = (*Fire)(nil)

func NewFire(env Env) *Fire {
	return &Fire{env: env.withDefaults()}
}

func (p *Fire) Name() string { return "Fire" }

func (p *Fire) Update(buf *frame.Buffer, _ analysis.Features) {
	w, h := buf.Width(), buf.Height()
	if p.w != w || p.h != h {
		p.heat = make([]float64, w*h)
		p.next = make([]float64, w*h)
		p.w, p.h = w, h
	}

	for i := range p.heat {
		p.heat[i] *= fireCooling
	}
	bottom := (h - 1) * w
	for x := range w {
		if p.env.Rand.Float64() < fireIgniteP {
			p.heat[bottom+x] = min(1, p.heat[bottom+x]+uniform(p.env.Rand, fireMinIgnite, fireMaxIgnite))
		}
	}

	copy(p.next, p.heat)
	for y := h - 2; y >= 0; y-- {
		for x := range w {
			sum, n := 0.0, 0
			for dy := 0; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					sum += p.heat[(y+dy)*w+nx]
					n++
				}
			}
			p.next[y*w+x] = sum / float64(n) * fireSpread
		}
	}
	p.heat, p.next = p.next, p.heat

	buf.Clear()
	for y := range h {
		for x := range w {
			if v := p.heat[y*w+x]; v > fireVisible {
				buf.SetPixel(x, y, heatColor(v))
			}
		}
	}
}

// Heat returns the heat at (x, y).
func (p *Fire) Heat(x, y int) float64 {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return 0
	}
	return p.heat[y*p.w+x]
}

// heatColor maps heat to a black, red, orange, yellow, white ramp.
func heatColor(v float64) frame.Color {
	switch {
	case v < 0.3:
		return frame.RGB(uint8(255*v/0.3), 0, 0)
	case v < 0.6:
		return frame.RGB(255, uint8(128*(v-0.3)/0.3), 0)
	case v < 0.9:
		return frame.RGB(255, 128+uint8(127*(v-0.6)/0.3), 0)
	default:
		return frame.RGB(255, 255, uint8(255*clamp01((v-0.9)/0.1)))
	}
}
