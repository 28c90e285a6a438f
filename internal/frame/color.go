// SPDX-License-Identifier: MIT
package frame

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Black is the zero Color.
var Black = Color{}

// RGB builds a Color from its channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// HSV converts hue, saturation and value to a Color. Hue wraps into [0,1),
// saturation and value are clamped to [0,1].
func HSV(h, s, v float64) Color {
	h -= math.Floor(h)
	if h >= 1 || math.IsNaN(h) {
		h = 0
	}
	r, g, b := colorful.Hsv(h*360, clamp01(s), clamp01(v)).RGB255()
	return Color{R: r, G: g, B: b}
}

// Scale multiplies every channel by f, saturating at 255.
func (c Color) Scale(f float64) Color {
	return Color{R: scaleChannel(c.R, f), G: scaleChannel(c.G, f), B: scaleChannel(c.B, f)}
}

// Lerp blends linearly from c to o by t in [0,1].
func (c Color) Lerp(o Color, t float64) Color {
	t = clamp01(t)
	mix := func(a, b uint8) uint8 {
		return toByte(float64(a) + (float64(b)-float64(a))*t)
	}
	return Color{R: mix(c.R, o.R), G: mix(c.G, o.G), B: mix(c.B, o.B)}
}

// IsBlack reports whether all channels are zero.
func (c Color) IsBlack() bool {
	return c == Black
}

func scaleChannel(v uint8, f float64) uint8 {
	if f <= 0 {
		return 0
	}
	return toByte(float64(v) * f)
}

// toByte rounds and saturates v to a channel value.
func toByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
