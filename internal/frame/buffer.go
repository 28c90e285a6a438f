// SPDX-License-Identifier: MIT
package frame

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSize is returned by NewBuffer for non-positive dimensions.
var ErrInvalidSize = errors.New("frame: invalid buffer size")

// outlineWidth is the distance band around the radius painted by an
// outlined circle.
const outlineWidth = 0.7

// Buffer holds the current and previously committed pixel grids. Drawing
// only touches the current grid, Commit replaces the previous grid in full.
//
// A Buffer is owned by the render goroutine and is not safe for concurrent
// use; sinks receive copies through Snapshot.
type Buffer struct {
	width    int
	height   int
	current  []Color
	previous []Color
	commits  uint64

	// Gamma lookup table, rebuilt when the exponent changes.
	gammaLUT   [256]uint8
	gammaValue float64
}

// NewBuffer allocates a width x height buffer with both grids black.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Buffer{
		width:    width,
		height:   height,
		current:  make([]Color, width*height),
		previous: make([]Color, width*height),
	}, nil
}

// Width returns the grid width.
func (b *Buffer) Width() int { return b.width }

// Height returns the grid height.
func (b *Buffer) Height() int { return b.height }

// Commits returns how many times Commit has been called.
func (b *Buffer) Commits() uint64 { return b.commits }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// SetPixel writes c at (x, y). Out-of-range coordinates are ignored.
func (b *Buffer) SetPixel(x, y int, c Color) {
	if !b.inBounds(x, y) {
		return
	}
	b.current[y*b.width+x] = c
}

// SetPixelHSV converts (h, s, v) and writes the result at (x, y).
func (b *Buffer) SetPixelHSV(x, y int, h, s, v float64) {
	if !b.inBounds(x, y) {
		return
	}
	b.current[y*b.width+x] = HSV(h, s, v)
}

// Pixel returns the current colour at (x, y), or Black when out of range.
func (b *Buffer) Pixel(x, y int) Color {
	if !b.inBounds(x, y) {
		return Black
	}
	return b.current[y*b.width+x]
}

// Fill sets every pixel of the current grid to c.
func (b *Buffer) Fill(c Color) {
	for i := range b.current {
		b.current[i] = c
	}
}

// Clear sets every pixel of the current grid to black.
func (b *Buffer) Clear() {
	clear(b.current)
}

// DrawLine draws from (x0, y0) to (x1, y1) inclusive using integer
// Bresenham. Every pixel on the path is written once.
func (b *Buffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		b.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawCircle paints a circle centred on (cx, cy). A filled circle covers
// pixels whose distance from the centre is at most r, an outline covers
// pixels within 0.7 of the radius.
func (b *Buffer) DrawCircle(cx, cy int, r float64, c Color, filled bool) {
	if r < 0 || math.IsNaN(r) {
		return
	}
	reach := int(math.Ceil(r + outlineWidth))
	x0, x1 := max(cx-reach, 0), min(cx+reach, b.width-1)
	y0, y1 := max(cy-reach, 0), min(cy+reach, b.height-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if filled {
				if d <= r {
					b.current[y*b.width+x] = c
				}
			} else if math.Abs(d-r) < outlineWidth {
				b.current[y*b.width+x] = c
			}
		}
	}
}

// Scale multiplies every channel of the current grid by f. The engine uses
// it for global brightness before gamma correction.
func (b *Buffer) Scale(f float64) {
	if f == 1 {
		return
	}
	for i, c := range b.current {
		b.current[i] = c.Scale(f)
	}
}

// ApplyGamma maps every channel through round(255 * (c/255)^(1/gamma)).
// It must run once per frame, after drawing and before Commit.
// Non-positive, NaN or unit gamma leaves the grid unchanged.
func (b *Buffer) ApplyGamma(gamma float64) {
	if gamma <= 0 || gamma == 1 || math.IsNaN(gamma) {
		return
	}
	if gamma != b.gammaValue {
		inv := 1 / gamma
		for i := range b.gammaLUT {
			b.gammaLUT[i] = uint8(math.Round(255 * math.Pow(float64(i)/255, inv)))
		}
		b.gammaValue = gamma
	}
	for i, c := range b.current {
		b.current[i] = Color{R: b.gammaLUT[c.R], G: b.gammaLUT[c.G], B: b.gammaLUT[c.B]}
	}
}

// Dirty returns the number of pixels that differ from the last commit.
func (b *Buffer) Dirty() int {
	n := 0
	for i, c := range b.current {
		if c != b.previous[i] {
			n++
		}
	}
	return n
}

// Changed reports whether the current grid differs from the last commit.
func (b *Buffer) Changed() bool {
	for i, c := range b.current {
		if c != b.previous[i] {
			return true
		}
	}
	return false
}

// Commit reports whether the current grid differs from the previous one and
// then copies current into previous. The current grid is left untouched so
// persistence-based patterns can keep drawing over it.
func (b *Buffer) Commit() bool {
	changed := b.Changed()
	copy(b.previous, b.current)
	b.commits++
	return changed
}

// Snapshot returns a copy of the last committed grid.
func (b *Buffer) Snapshot() Frame {
	pixels := make([]Color, len(b.previous))
	copy(pixels, b.previous)
	return Frame{
		Seq:    b.commits,
		Width:  b.width,
		Height: b.height,
		Pixels: pixels,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
