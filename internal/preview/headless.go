//go:build headless

// SPDX-License-Identifier: MIT

package preview

import (
	"context"
	"lightbox/internal/engine"
	"lightbox/internal/transport"
)

// Run reports ErrUnavailable; this binary was built without a window system.
func Run(context.Context, engine.Controls, *transport.LatestSink, int, int, int) error {
	return ErrUnavailable
}
