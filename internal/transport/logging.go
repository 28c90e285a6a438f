// SPDX-License-Identifier: MIT
package transport

import (
	"lightbox/internal/frame"
	"lightbox/internal/log"
	"sync/atomic"
)

// LoggingSink writes a one-line summary of each frame at debug level.
type LoggingSink struct {
	frames atomic.Uint64
}

// NewLoggingSink creates a new LoggingSink instance.
func NewLoggingSink() *LoggingSink {
	log.Infof("Transport: Using LoggingSink")
	return &LoggingSink{}
}

// Send logs the frame summary.
func (ls *LoggingSink) Send(f frame.Frame) error {
	ls.frames.Add(1)
	log.Debugf("Transport: frame %d (%dx%d, %d lit)", f.Seq, f.Width, f.Height, f.Lit())
	return nil
}

// Frames returns how many frames have been logged.
func (ls *LoggingSink) Frames() uint64 {
	return ls.frames.Load()
}

// Close reports the frame count.
func (ls *LoggingSink) Close() error {
	log.Infof("Transport: LoggingSink closed after %d frames", ls.frames.Load())
	return nil
}

var _ Sink = (*LoggingSink)(nil)
