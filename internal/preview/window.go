//go:build !headless

// SPDX-License-Identifier: MIT

package preview

import (
	"context"
	"fmt"
	"lightbox/internal/engine"
	"lightbox/internal/log"
	"lightbox/internal/transport"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Window is an ebiten game that scales the LED grid up to screen pixels.
type Window struct {
	ctx      context.Context
	controls engine.Controls
	frames   *transport.LatestSink

	width, height int
	scale         int

	image  *ebiten.Image
	pixels []byte
	seq    uint64
	title  string
}

// NewWindow prepares a preview of a width x height grid, scale screen
// pixels per LED.
func NewWindow(ctx context.Context, controls engine.Controls, sink *transport.LatestSink, width, height, scale int) (*Window, error) {
	if width <= 0 || height <= 0 || scale <= 0 {
		return nil, fmt.Errorf("preview: invalid geometry %dx%d at scale %d", width, height, scale)
	}
	return &Window{
		ctx:      ctx,
		controls: controls,
		frames:   sink,
		width:    width,
		height:   height,
		scale:    scale,
		pixels:   make([]byte, width*height*4),
	}, nil
}

func (w *Window) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	select {
	case <-w.ctx.Done():
		return ebiten.Termination
	default:
	}

	if apply(w.controls, commandFor(inpututil.IsKeyJustPressed)) {
		return ebiten.Termination
	}

	if f, ok := w.frames.Latest(); ok && f.Seq != w.seq && f.Width == w.width && f.Height == w.height {
		w.pixels = fillRGBA(w.pixels, f)
		w.seq = f.Seq
	}

	state := w.controls.Active()
	if title := fmt.Sprintf("lightbox - %s / %s", state.Mode, state.Pattern); title != w.title {
		ebiten.SetWindowTitle(title)
		w.title = title
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(w.width, w.height)
	}
	w.image.WritePixels(w.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.image, op)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("brightness %.0f%%", w.controls.Brightness()*100))
}

func (w *Window) Layout(_, _ int) (int, int) {
	return w.width * w.scale, w.height * w.scale
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
// It must be called from the main goroutine.
func Run(ctx context.Context, controls engine.Controls, sink *transport.LatestSink, width, height, scale int) error {
	w, err := NewWindow(ctx, controls, sink, width, height, scale)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetWindowTitle("lightbox")
	ebiten.SetTPS(60)

	log.Infof("Preview: Opening %dx%d window", width*scale, height*scale)
	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("preview window: %w", err)
	}
	log.Infof("Preview: Window closed")
	return nil
}
