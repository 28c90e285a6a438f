// SPDX-License-Identifier: MIT
package analysis

import (
	"math/rand/v2"
	"testing"
	"time"
)

func newTestDetector(t *testing.T) *BeatDetector {
	t.Helper()
	d, err := NewBeatDetector(30, 10, 1.3, 300*time.Millisecond)
	if err != nil {
		t.Fatalf("NewBeatDetector: %v", err)
	}
	return d
}

func TestBeatDetector_SingleOnset(t *testing.T) {
	t.Parallel()
	d := newTestDetector(t)
	start := time.Unix(0, 0)

	var beats []int
	for i := range 20 {
		volume := 0.1
		if i >= 10 {
			volume = 0.9
		}
		if d.Observe(volume, start.Add(time.Duration(i)*10*time.Millisecond)) {
			beats = append(beats, i)
		}
	}

	if len(beats) != 1 || beats[0] != 10 {
		t.Errorf("beats at %v, want exactly one at index 10", beats)
	}
}

func TestBeatDetector_Warmup(t *testing.T) {
	t.Parallel()
	d := newTestDetector(t)
	now := time.Unix(0, 0)
	// Nothing may fire until the history exceeds the recent window.
	for i := range 10 {
		if d.Observe(float64(i+1), now.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("beat reported during warmup at %d", i)
		}
	}
}

func TestBeatDetector_Refractory(t *testing.T) {
	t.Parallel()
	d := newTestDetector(t)
	rng := rand.New(rand.NewPCG(7, 11))
	now := time.Unix(0, 0)

	var last time.Time
	beats := 0
	for range 5000 {
		now = now.Add(time.Duration(5+rng.IntN(30)) * time.Millisecond)
		volume := rng.Float64() * rng.Float64()
		if rng.IntN(8) == 0 {
			volume *= 6
		}
		if d.Observe(volume, now) {
			if beats > 0 && now.Sub(last) < 300*time.Millisecond {
				t.Fatalf("beats %s apart, refractory is 300ms", now.Sub(last))
			}
			last = now
			beats++
		}
	}
	if beats == 0 {
		t.Error("no beats detected in a spiky signal")
	}
}

func TestBeatDetector_Silence(t *testing.T) {
	t.Parallel()
	d := newTestDetector(t)
	now := time.Unix(0, 0)
	for i := range 100 {
		if d.Observe(0, now.Add(time.Duration(i)*time.Second)) {
			t.Fatal("beat reported on silence")
		}
	}
}

func TestNewBeatDetector_Invalid(t *testing.T) {
	t.Parallel()
	if _, err := NewBeatDetector(10, 10, 1.3, 0); err == nil {
		t.Error("expected error when history does not exceed recent window")
	}
	if _, err := NewBeatDetector(30, 10, 0, 0); err == nil {
		t.Error("expected error for zero ratio")
	}
}
