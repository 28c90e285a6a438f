// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"lightbox/internal/frame"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport: sink closed")

// Sink receives every committed frame. Send is called from the render
// goroutine and must not block; implementations drop rather than wait.
type Sink interface {
	Send(f frame.Frame) error
	Close() error
}
