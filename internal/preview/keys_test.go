//go:build !headless

// SPDX-License-Identifier: MIT

package preview

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestCommandFor(t *testing.T) {
	tests := []struct {
		pressed []ebiten.Key
		want    command
	}{
		{nil, cmdNone},
		{[]ebiten.Key{ebiten.KeyArrowRight}, cmdNext},
		{[]ebiten.Key{ebiten.KeyN}, cmdNext},
		{[]ebiten.Key{ebiten.KeyP}, cmdPrevious},
		{[]ebiten.Key{ebiten.KeyM}, cmdMode},
		{[]ebiten.Key{ebiten.KeyS}, cmdSettings},
		{[]ebiten.Key{ebiten.KeyEqual}, cmdBrighter},
		{[]ebiten.Key{ebiten.KeyMinus}, cmdDimmer},
		{[]ebiten.Key{ebiten.KeyEscape}, cmdQuit},
		// Quit wins over anything pressed in the same tick.
		{[]ebiten.Key{ebiten.KeyN, ebiten.KeyQ}, cmdQuit},
	}

	for _, tt := range tests {
		pressed := func(k ebiten.Key) bool {
			for _, p := range tt.pressed {
				if p == k {
					return true
				}
			}
			return false
		}
		if got := commandFor(pressed); got != tt.want {
			t.Errorf("commandFor(%v) = %d, want %d", tt.pressed, got, tt.want)
		}
	}
}
