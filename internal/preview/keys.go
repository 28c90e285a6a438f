//go:build !headless

// SPDX-License-Identifier: MIT

package preview

import "github.com/hajimehoshi/ebiten/v2"

var keyCommands = []struct {
	keys []ebiten.Key
	cmd  command
}{
	{[]ebiten.Key{ebiten.KeyQ, ebiten.KeyEscape}, cmdQuit},
	{[]ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyN}, cmdNext},
	{[]ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyP}, cmdPrevious},
	{[]ebiten.Key{ebiten.KeyM}, cmdMode},
	{[]ebiten.Key{ebiten.KeyS}, cmdSettings},
	{[]ebiten.Key{ebiten.KeyEqual, ebiten.KeyNumpadAdd}, cmdBrighter},
	{[]ebiten.Key{ebiten.KeyMinus, ebiten.KeyNumpadSubtract}, cmdDimmer},
}

// commandFor returns the first command whose key was just pressed.
func commandFor(justPressed func(ebiten.Key) bool) command {
	for _, kc := range keyCommands {
		for _, k := range kc.keys {
			if justPressed(k) {
				return kc.cmd
			}
		}
	}
	return cmdNone
}
