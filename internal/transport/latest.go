// SPDX-License-Identifier: MIT
package transport

import (
	"lightbox/internal/frame"
	"sync/atomic"
)

// LatestSink keeps only the most recent frame for pull-based readers such
// as the previews, which redraw on their own schedule.
type LatestSink struct {
	latest atomic.Pointer[frame.Frame]
	closed atomic.Bool
}

func (ls *LatestSink) Send(f frame.Frame) error {
	if ls.closed.Load() {
		return ErrClosed
	}
	ls.latest.Store(&f)
	return nil
}

// Latest returns the last frame sent, if any.
func (ls *LatestSink) Latest() (frame.Frame, bool) {
	f := ls.latest.Load()
	if f == nil {
		return frame.Frame{}, false
	}
	return *f, true
}

func (ls *LatestSink) Close() error {
	ls.closed.Store(true)
	return nil
}

var _ Sink = (*LatestSink)(nil)
