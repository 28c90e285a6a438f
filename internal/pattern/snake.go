// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"time"
)

const (
	snakeInterval    = 500 * time.Millisecond
	snakeMinInterval = 60 * time.Millisecond
	snakeSpeedUp     = 0.95 // Interval factor per food eaten.
	snakeTurnP       = 0.1  // Chance of a random turn per move.
)

type point struct{ x, y int }

var directions = [4]point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

var snakeFood = frame.RGB(255, 0, 0)

// Snake plays itself on a wrap-around board: it moves on a timer, turns at
// random but never reverses, grows and speeds up when it eats, and starts
// over when it runs into itself.
type Snake struct {
	env   Env
	clock stepper
	move  gate
	body  []point // Head first.
	dir   point
	food  point
	w, h  int
}

var _ Pattern = (*Snake)(nil)

func NewSnake(env Env) *Snake {
	return &Snake{env: env.withDefaults()}
}

func (p *Snake) Name() string { return "Snake" }

func (p *Snake) reset(w, h int) {
	cx, cy := w/2, h/2
	p.body = append(p.body[:0], point{cx, cy}, point{cx, wrap(cy+1, h)}, point{cx, wrap(cy+2, h)})
	p.dir = point{0, -1}
	p.food = point{w / 4, h / 4}
	p.move = newGate(snakeInterval)
	p.move.reset(p.clock.elapsed)
	p.w, p.h = w, h
}

func (p *Snake) Update(buf *frame.Buffer, _ analysis.Features) {
	now := p.clock.advance(p.env.Clock.Now())
	w, h := buf.Width(), buf.Height()
	if p.w != w || p.h != h || len(p.body) == 0 {
		p.reset(w, h)
	}

	if p.move.ready(now) {
		p.step()
	}

	buf.Clear()
	n := float64(len(p.body))
	for i, s := range p.body {
		intensity := 1 - float64(i)/n*0.7
		buf.SetPixel(s.x, s.y, frame.RGB(0, uint8(255*intensity), 0))
	}
	buf.SetPixel(p.food.x, p.food.y, snakeFood)
}

func (p *Snake) step() {
	head := p.body[0]
	next := point{wrap(head.x+p.dir.x, p.w), wrap(head.y+p.dir.y, p.h)}

	// The tail cell is vacated by this move unless the snake eats.
	eats := next == p.food
	body := p.body
	if !eats {
		body = body[:len(body)-1]
	}
	for _, s := range body {
		if s == next {
			p.reset(p.w, p.h)
			return
		}
	}

	if eats {
		p.body = append(p.body, point{})
	}
	copy(p.body[1:], p.body[:len(p.body)-1])
	p.body[0] = next

	if eats {
		p.food = point{p.env.Rand.IntN(p.w), p.env.Rand.IntN(p.h)}
		p.move.interval = max(time.Duration(float64(p.move.interval)*snakeSpeedUp), snakeMinInterval)
	}

	if p.env.Rand.Float64() < snakeTurnP {
		d := directions[p.env.Rand.IntN(len(directions))]
		if d.x != -p.dir.x || d.y != -p.dir.y {
			p.dir = d
		}
	}
}

// Len returns the snake length.
func (p *Snake) Len() int { return len(p.body) }

// Head returns the head position.
func (p *Snake) Head() (x, y int) {
	if len(p.body) == 0 {
		return 0, 0
	}
	return p.body[0].x, p.body[0].y
}
