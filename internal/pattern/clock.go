// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
)

// 3x5 glyphs, one bit per pixel, most significant bit on the left.
var digitFont = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

const (
	glyphWidth  = 3
	glyphHeight = 5
	// HH:MM laid out as digit, gap, digit, gap, colon, gap, digit, gap, digit.
	clockWidth = 4*glyphWidth + 4
)

// DigitalClock shows the wall-clock time as HH:MM with a slowly cycling hue.
type DigitalClock struct {
	env   Env
	clock stepper
}

var _ Pattern = (*DigitalClock)(nil)

func NewClock(env Env) *DigitalClock {
	return &DigitalClock{env: env.withDefaults()}
}

func (p *DigitalClock) Name() string { return "Clock" }

func (p *DigitalClock) Update(buf *frame.Buffer, _ analysis.Features) {
	wall := p.env.Clock.Now()
	elapsed := p.clock.advance(wall)

	buf.Clear()
	color := frame.HSV(elapsed.Seconds()*0.1, 1, 1)
	x := (buf.Width() - clockWidth) / 2
	y := (buf.Height() - glyphHeight) / 2

	hour, minute := wall.Hour(), wall.Minute()
	drawDigit(buf, hour/10, x, y, color)
	drawDigit(buf, hour%10, x+4, y, color)
	buf.SetPixel(x+7, y+1, color)
	buf.SetPixel(x+7, y+3, color)
	drawDigit(buf, minute/10, x+9, y, color)
	drawDigit(buf, minute%10, x+13, y, color)
}

func drawDigit(buf *frame.Buffer, d, x0, y0 int, c frame.Color) {
	glyph := digitFont[d%10]
	for row, bits := range glyph {
		for col := range glyphWidth {
			if bits&(1<<(glyphWidth-1-col)) != 0 {
				buf.SetPixel(x0+col, y0+row, c)
			}
		}
	}
}
