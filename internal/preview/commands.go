// SPDX-License-Identifier: MIT
// Package preview shows the LED grid in a desktop window. Build with the
// headless tag to leave out the windowing stack.
package preview

import (
	"errors"
	"lightbox/internal/engine"
	"lightbox/internal/frame"
)

// ErrUnavailable is returned by Run in headless builds.
var ErrUnavailable = errors.New("preview: window support not compiled in")

type command int

const (
	cmdNone command = iota
	cmdNext
	cmdPrevious
	cmdMode
	cmdSettings
	cmdBrighter
	cmdDimmer
	cmdQuit
)

// apply runs cmd against c and reports whether the window should close.
func apply(c engine.Controls, cmd command) bool {
	switch cmd {
	case cmdNext:
		c.NextPattern()
	case cmdPrevious:
		c.PreviousPattern()
	case cmdMode:
		c.NextMode()
	case cmdSettings:
		c.ToggleSettings()
	case cmdBrighter:
		c.AdjustBrightness(engine.BrightnessStep)
	case cmdDimmer:
		c.AdjustBrightness(-engine.BrightnessStep)
	case cmdQuit:
		return true
	}
	return false
}

// fillRGBA writes f as opaque RGBA pixels into dst, resizing it as needed.
func fillRGBA(dst []byte, f frame.Frame) []byte {
	n := len(f.Pixels) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, c := range f.Pixels {
		dst[i*4] = c.R
		dst[i*4+1] = c.G
		dst[i*4+2] = c.B
		dst[i*4+3] = 0xff
	}
	return dst
}
