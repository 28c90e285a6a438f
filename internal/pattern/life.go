// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"time"
)

const (
	lifeInterval      = 200 * time.Millisecond
	lifeSeedDensity   = 0.3
	lifeReseedDensity = 0.2
	lifeMaxAge        = 32
)

// Life runs Conway's B3/S23 rules on a toroidal grid, one generation per
// interval, and reseeds when every cell has died. The toggle colours cells
// by how many generations they have survived.
type Life struct {
	env   Env
	clock stepper
	tick  gate
	cur   []uint8 // 0 dead, otherwise age in generations, capped.
	nxt   []uint8
	shade []float64 // Per-cell brightness in [0.5,1), drawn once per seed.
	w, h  int
	byAge bool
}

var (
	_ Pattern         = (*Life)(nil)
	_ SettingsToggler = (*Life)(nil)
)

func NewLife(env Env) *Life {
	return &Life{env: env.withDefaults(), tick: newGate(lifeInterval)}
}

func (p *Life) Name() string { return "Life" }

// ToggleSettings switches between flat yellow and age-based colouring.
func (p *Life) ToggleSettings() { p.byAge = !p.byAge }

// Seed fills the grid at random with the given density of live cells.
func (p *Life) Seed(density float64) {
	for i := range p.cur {
		p.cur[i] = 0
		if p.env.Rand.Float64() < density {
			p.cur[i] = 1
		}
		p.shade[i] = uniform(p.env.Rand, 0.5, 1)
	}
}

func (p *Life) resize(w, h int) {
	p.cur = make([]uint8, w*h)
	p.nxt = make([]uint8, w*h)
	p.shade = make([]float64, w*h)
	p.w, p.h = w, h
	p.Seed(lifeSeedDensity)
}

func (p *Life) Update(buf *frame.Buffer, _ analysis.Features) {
	now := p.clock.advance(p.env.Clock.Now())
	w, h := buf.Width(), buf.Height()
	if p.w != w || p.h != h {
		p.resize(w, h)
	}

	if p.tick.ready(now) {
		if p.Step() == 0 {
			p.Seed(lifeReseedDensity)
		}
	}

	buf.Clear()
	for i, age := range p.cur {
		if age == 0 {
			continue
		}
		x, y := i%w, i/w
		if p.byAge {
			buf.SetPixelHSV(x, y, 0.66*float64(age)/lifeMaxAge, 1, 1)
			continue
		}
		v := uint8(255 * p.shade[i])
		buf.SetPixel(x, y, frame.RGB(v, v, 0))
	}
}

// Step advances one generation and returns the number of live cells.
func (p *Life) Step() int {
	w, h := p.w, p.h
	alive := 0
	for y := range h {
		for x := range w {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if p.cur[wrap(y+dy, h)*w+wrap(x+dx, w)] != 0 {
						n++
					}
				}
			}

			i := y*w + x
			age := p.cur[i]
			switch {
			case age != 0 && (n == 2 || n == 3):
				p.nxt[i] = min(age+1, lifeMaxAge)
			case age == 0 && n == 3:
				p.nxt[i] = 1
			default:
				p.nxt[i] = 0
			}
			if p.nxt[i] != 0 {
				alive++
			}
		}
	}
	p.cur, p.nxt = p.nxt, p.cur
	return alive
}

// Alive reports whether the cell at (x, y) is alive.
func (p *Life) Alive(x, y int) bool {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return false
	}
	return p.cur[y*p.w+x] != 0
}

// Set forces the cell at (x, y) alive or dead.
func (p *Life) Set(x, y int, alive bool) {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return
	}
	p.cur[y*p.w+x] = 0
	if alive {
		p.cur[y*p.w+x] = 1
	}
}
