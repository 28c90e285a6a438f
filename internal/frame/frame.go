// SPDX-License-Identifier: MIT
package frame

import "time"

// Frame is an immutable copy of a committed pixel grid handed to sinks.
type Frame struct {
	Seq    uint64    // Commit sequence number, starting at 1.
	Time   time.Time // Set by the caller that produced the frame.
	Width  int
	Height int
	Pixels []Color // Row-major, len == Width*Height.
}

// At returns the pixel at (x, y), or Black when out of range.
func (f Frame) At(x, y int) Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return Black
	}
	return f.Pixels[y*f.Width+x]
}

// AppendRGB appends the pixels as row-major R,G,B bytes to dst.
func (f Frame) AppendRGB(dst []byte) []byte {
	for _, c := range f.Pixels {
		dst = append(dst, c.R, c.G, c.B)
	}
	return dst
}

// Lit returns the number of non-black pixels.
func (f Frame) Lit() int {
	n := 0
	for _, c := range f.Pixels {
		if !c.IsBlack() {
			n++
		}
	}
	return n
}
