// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"time"
)

const (
	tetrisDrop     = time.Second
	tetrisLateral  = 150 * time.Millisecond
	tetrisLateralP = 0.5 // Chance of a sideways move when the lateral gate fires.
)

type tetromino struct {
	cells [4]point
	color frame.Color
}

var tetrominoes = [...]tetromino{
	{[4]point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, frame.RGB(0, 240, 240)}, // I
	{[4]point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, frame.RGB(240, 240, 0)}, // O
	{[4]point{{1, 0}, {0, 1}, {1, 1}, {2, 1}}, frame.RGB(160, 0, 240)}, // T
	{[4]point{{1, 0}, {2, 0}, {0, 1}, {1, 1}}, frame.RGB(0, 240, 0)},   // S
	{[4]point{{0, 0}, {1, 0}, {1, 1}, {2, 1}}, frame.RGB(240, 0, 0)},   // Z
	{[4]point{{0, 0}, {0, 1}, {1, 1}, {2, 1}}, frame.RGB(0, 0, 240)},   // J
	{[4]point{{2, 0}, {0, 1}, {1, 1}, {2, 1}}, frame.RGB(240, 160, 0)}, // L
}

// Tetris drops random pieces that drift sideways at random, lands them,
// clears full rows and starts a fresh board when a new piece has no room.
type Tetris struct {
	env     Env
	clock   stepper
	drop    gate
	lateral gate
	board   []uint8 // 0 empty, otherwise tetromino index + 1.
	piece   int
	px, py  int
	w, h    int
	cleared int
}

var _ Pattern = (*Tetris)(nil)

func NewTetris(env Env) *Tetris {
	return &Tetris{
		env:     env.withDefaults(),
		drop:    newGate(tetrisDrop),
		lateral: newGate(tetrisLateral),
	}
}

func (p *Tetris) Name() string { return "Tetris" }

func (p *Tetris) resize(w, h int) {
	p.board = make([]uint8, w*h)
	p.w, p.h = w, h
	p.spawn()
}

func (p *Tetris) Update(buf *frame.Buffer, _ analysis.Features) {
	now := p.clock.advance(p.env.Clock.Now())
	w, h := buf.Width(), buf.Height()
	if p.w != w || p.h != h {
		p.resize(w, h)
	}

	if p.drop.ready(now) {
		if p.fits(p.px, p.py+1) {
			p.py++
		} else {
			p.lock()
			p.cleared += p.clearLines()
			p.spawn()
		}
	}
	if p.lateral.ready(now) && p.env.Rand.Float64() < tetrisLateralP {
		dx := 1
		if p.env.Rand.IntN(2) == 0 {
			dx = -1
		}
		if p.fits(p.px+dx, p.py) {
			p.px += dx
		}
	}

	buf.Clear()
	for i, cell := range p.board {
		if cell != 0 {
			buf.SetPixel(i%w, i/w, tetrominoes[cell-1].color.Scale(0.45))
		}
	}
	t := tetrominoes[p.piece]
	for _, c := range t.cells {
		buf.SetPixel(p.px+c.x, p.py+c.y, t.color)
	}
}

// spawn picks a random piece at the top centre, clearing the board when it
// does not fit.
func (p *Tetris) spawn() {
	p.piece = p.env.Rand.IntN(len(tetrominoes))
	p.px, p.py = p.w/2-1, 0
	if !p.fits(p.px, p.py) {
		clear(p.board)
		p.cleared = 0
	}
}

func (p *Tetris) fits(px, py int) bool {
	for _, c := range tetrominoes[p.piece].cells {
		x, y := px+c.x, py+c.y
		if x < 0 || x >= p.w || y >= p.h {
			return false
		}
		if y >= 0 && p.board[y*p.w+x] != 0 {
			return false
		}
	}
	return true
}

func (p *Tetris) lock() {
	for _, c := range tetrominoes[p.piece].cells {
		x, y := p.px+c.x, p.py+c.y
		if x >= 0 && x < p.w && y >= 0 && y < p.h {
			p.board[y*p.w+x] = uint8(p.piece + 1)
		}
	}
}

// clearLines removes full rows, shifts the rows above down and returns the
// number removed.
func (p *Tetris) clearLines() int {
	w := p.w
	dst := p.h - 1
	for src := p.h - 1; src >= 0; src-- {
		row := p.board[src*w : (src+1)*w]
		full := true
		for _, c := range row {
			if c == 0 {
				full = false
				break
			}
		}
		if full {
			continue
		}
		if dst != src {
			copy(p.board[dst*w:(dst+1)*w], row)
		}
		dst--
	}
	removed := dst + 1
	clear(p.board[:removed*w])
	return removed
}

// Cleared returns the number of rows cleared since the board was last reset.
func (p *Tetris) Cleared() int { return p.cleared }
