// SPDX-License-Identifier: MIT
package pattern

import (
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"math"
	"math/rand/v2"
	"time"
)

// Pattern paints one frame per Update call. A pattern either clears or fully
// repaints the buffer, or keeps its own persistent state and repaints from
// it; it never relies on what another pattern left behind.
type Pattern interface {
	Name() string
	Update(buf *frame.Buffer, in analysis.Features)
}

// SettingsToggler is implemented by patterns with an alternate presentation.
type SettingsToggler interface {
	ToggleSettings()
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Rand is the random source used by patterns. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a seeded PCG source. A zero seed picks one from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}

// Env carries the injectable dependencies shared by all patterns.
type Env struct {
	Clock Clock
	Rand  Rand
}

func (e Env) withDefaults() Env {
	if e.Clock == nil {
		e.Clock = SystemClock
	}
	if e.Rand == nil {
		e.Rand = NewRand(0)
	}
	return e
}

// maxStep caps the time a pattern advances in one update, so a pattern that
// was inactive resumes where it stopped instead of jumping ahead.
const maxStep = 250 * time.Millisecond

// stepper tracks a pattern's own running time.
type stepper struct {
	last    time.Time
	started bool
	elapsed time.Duration
}

// advance moves the running time forward by the wall time since the last
// call, capped at maxStep, and returns the new running time.
func (s *stepper) advance(now time.Time) time.Duration {
	if !s.started {
		s.started = true
		s.last = now
		return s.elapsed
	}
	dt := now.Sub(s.last)
	s.last = now
	if dt < 0 {
		dt = 0
	}
	s.elapsed += min(dt, maxStep)
	return s.elapsed
}

// gate fires at most once per interval of running time.
type gate struct {
	interval time.Duration
	next     time.Duration
}

func newGate(interval time.Duration) gate {
	return gate{interval: interval, next: interval}
}

func (g *gate) ready(elapsed time.Duration) bool {
	if elapsed < g.next {
		return false
	}
	g.next = elapsed + g.interval
	return true
}

func (g *gate) reset(elapsed time.Duration) {
	g.next = elapsed + g.interval
}

// bandAt maps column i of n onto the band vector.
func bandAt(bands []float64, i, n int) float64 {
	if len(bands) == 0 || n <= 0 {
		return 0
	}
	idx := min(i*len(bands)/n, len(bands)-1)
	return clamp01(bands[idx])
}

// uniform returns a value in [lo, hi).
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
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

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
