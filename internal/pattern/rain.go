// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"time"
)

const (
	rainFade     = 15  // Per channel per update.
	rainSpawnP   = 0.3 // Probability of a new drop per update.
	rainMinSpeed = 0.5 // Rows per second.
	rainMaxSpeed = 2.0
	rainMaxDrops = 64
)

var (
	rainTrail = frame.RGB(0, 255, 0)
	rainHead  = frame.RGB(180, 255, 180)
)

type drop struct {
	x, y  int
	step  time.Duration // Time per row.
	moved time.Duration // Running time of the last move.
}

// MatrixRain lets green drops fall down random columns, leaving trails that
// fade a little every update. The trail field is kept by the pattern itself
// so gamma correction of the output never feeds back into it.
type MatrixRain struct {
	env   Env
	clock stepper
	drops []drop
	trail []frame.Color
	w, h  int
}

var _ Pattern = (*MatrixRain)(nil)

func NewMatrixRain(env Env) *MatrixRain {
	return &MatrixRain{env: env.withDefaults()}
}

func (p *MatrixRain) Name() string { return "MatrixRain" }

func (p *MatrixRain) Update(buf *frame.Buffer, _ analysis.Features) {
	now := p.clock.advance(p.env.Clock.Now())
	w, h := buf.Width(), buf.Height()
	if p.w != w || p.h != h {
		p.trail = make([]frame.Color, w*h)
		p.drops = p.drops[:0]
		p.w, p.h = w, h
	}

	for i, c := range p.trail {
		p.trail[i] = frame.RGB(fade(c.R), fade(c.G), fade(c.B))
	}

	if len(p.drops) < rainMaxDrops && p.env.Rand.Float64() < rainSpawnP {
		speed := uniform(p.env.Rand, rainMinSpeed, rainMaxSpeed)
		p.drops = append(p.drops, drop{
			x:     p.env.Rand.IntN(w),
			step:  time.Duration(float64(time.Second) / speed),
			moved: now,
		})
	}

	live := p.drops[:0]
	for _, d := range p.drops {
		if now-d.moved > d.step {
			d.y++
			d.moved = now
			if d.y >= h {
				continue
			}
			p.trail[d.y*w+d.x] = rainTrail
		}
		live = append(live, d)
	}
	p.drops = live

	for y := range h {
		for x := range w {
			buf.SetPixel(x, y, p.trail[y*w+x])
		}
	}
	for _, d := range p.drops {
		buf.SetPixel(d.x, d.y, rainHead)
	}
}

// Drops returns the number of falling drops.
func (p *MatrixRain) Drops() int {
	return len(p.drops)
}

func fade(v uint8) uint8 {
	if v < rainFade {
		return 0
	}
	return v - rainFade
}
