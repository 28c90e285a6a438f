// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"math"
	"time"
)

const circleLifetime = 2 * time.Second

type circle struct {
	born time.Duration
	hue  float64
}

// PulsingCircles spawns an expanding ring on every beat. Rings grow linearly
// to the maximum radius and fade out over their lifetime.
type PulsingCircles struct {
	env     Env
	clock   stepper
	circles []circle
}

var _ Pattern = (*PulsingCircles)(nil)

func NewPulsingCircles(env Env) *PulsingCircles {
	return &PulsingCircles{env: env.withDefaults()}
}

func (p *PulsingCircles) Name() string { return "PulsingCircles" }

func (p *PulsingCircles) Update(buf *frame.Buffer, in analysis.Features) {
	now := p.clock.advance(p.env.Clock.Now())

	if in.Beat {
		p.circles = append(p.circles, circle{born: now, hue: p.env.Rand.Float64()})
	}

	// Rings leave by age only, keeping order.
	live := p.circles[:0]
	for _, c := range p.circles {
		if now-c.born < circleLifetime {
			live = append(live, c)
		}
	}
	p.circles = live

	buf.Clear()
	w, h := buf.Width(), buf.Height()
	cx, cy := w/2, h/2
	maxRadius := 0.75 * float64(max(w, h))

	for _, c := range p.circles {
		progress := float64(now-c.born) / float64(circleLifetime)
		radius := progress * maxRadius
		alpha := 1 - progress
		for y := range h {
			for x := range w {
				d := math.Abs(math.Hypot(float64(x-cx), float64(y-cy)) - radius)
				if d < 1 {
					buf.SetPixelHSV(x, y, c.hue, 1, alpha*(1-d))
				}
			}
		}
	}
}

// Active returns the number of live rings.
func (p *PulsingCircles) Active() int {
	return len(p.circles)
}
