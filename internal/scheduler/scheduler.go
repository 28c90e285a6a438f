// SPDX-License-Identifier: MIT
package scheduler

import (
	"errors"
	"fmt"
	"lightbox/internal/analysis"
	"lightbox/internal/frame"
	"lightbox/internal/log"
	"lightbox/internal/pattern"
	"sync"
	"time"
)

// Mode names, in catalog order.
const (
	ModeAudio   = "AUDIO"
	ModeAmbient = "AMBIENT"
	ModeGames   = "GAMES"
)

// ErrEmptyCatalog is returned by New when there is nothing to schedule.
var ErrEmptyCatalog = errors.New("scheduler: empty catalog")

// Mode is a named, ordered group of patterns.
type Mode struct {
	Name     string
	Patterns []pattern.Pattern
}

// State describes the active selection.
type State struct {
	Mode         string
	Pattern      string
	ModeIndex    int
	PatternIndex int
	Since        time.Time // When the active pattern was selected.
}

// Entry is one line of the catalog listing.
type Entry struct {
	Mode         string
	Pattern      string
	ModeIndex    int
	PatternIndex int
	Toggle       bool // Implements pattern.SettingsToggler.
}

// Scheduler owns the catalog and dispatches each frame to the active
// pattern. Selection commands may come from any goroutine.
type Scheduler struct {
	mu      sync.Mutex
	modes   []Mode
	mode    int
	index   int
	started time.Time
	clock   pattern.Clock
}

// New returns a scheduler with the first pattern of the first mode active.
// Every mode must hold at least one pattern.
func New(modes []Mode, clock pattern.Clock) (*Scheduler, error) {
	if len(modes) == 0 {
		return nil, ErrEmptyCatalog
	}
	for _, m := range modes {
		if len(m.Patterns) == 0 {
			return nil, fmt.Errorf("%w: mode %s has no patterns", ErrEmptyCatalog, m.Name)
		}
	}
	if clock == nil {
		clock = pattern.SystemClock
	}
	return &Scheduler{
		modes:   modes,
		started: clock.Now(),
		clock:   clock,
	}, nil
}

// DefaultModes builds the standard catalog: audio-reactive patterns, ambient
// animations and self-playing games.
func DefaultModes(env pattern.Env, smoothing float64) []Mode {
	return []Mode{
		{Name: ModeAudio, Patterns: []pattern.Pattern{
			pattern.NewSpectrum(smoothing),
			pattern.NewWaveform(),
			pattern.NewPulsingCircles(env),
			pattern.NewFrequencyBars(),
		}},
		{Name: ModeAmbient, Patterns: []pattern.Pattern{
			pattern.NewClock(env),
			pattern.NewMatrixRain(env),
			pattern.NewFire(env),
			pattern.NewPlasma(env),
		}},
		{Name: ModeGames, Patterns: []pattern.Pattern{
			pattern.NewSnake(env),
			pattern.NewLife(env),
			pattern.NewTetris(env),
		}},
	}
}

// NextPattern selects the next pattern of the active mode, wrapping around.
func (s *Scheduler) NextPattern() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(s.mode, s.index+1)
}

// PreviousPattern selects the previous pattern of the active mode, wrapping around.
func (s *Scheduler) PreviousPattern() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(s.mode, s.index-1)
}

// NextMode selects the first pattern of the next mode, wrapping around.
func (s *Scheduler) NextMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(s.mode+1, 0)
}

// Select activates a pattern by mode and pattern name.
func (s *Scheduler) Select(modeName, patternName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for mi, m := range s.modes {
		if m.Name != modeName {
			continue
		}
		for pi, p := range m.Patterns {
			if patternName == "" || p.Name() == patternName {
				s.selectLocked(mi, pi)
				return nil
			}
		}
		return fmt.Errorf("mode %s has no pattern %q", modeName, patternName)
	}
	return fmt.Errorf("unknown mode %q", modeName)
}

func (s *Scheduler) selectLocked(mode, index int) {
	s.mode = wrap(mode, len(s.modes))
	s.index = wrap(index, len(s.modes[s.mode].Patterns))
	s.started = s.clock.Now()
	log.Infof("Scheduler: switched to %s/%s", s.modes[s.mode].Name, s.modes[s.mode].Patterns[s.index].Name())
}

// ToggleSettings forwards to the active pattern when it supports it and
// reports whether it did.
func (s *Scheduler) ToggleSettings() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.modes[s.mode].Patterns[s.index].(pattern.SettingsToggler)
	if !ok {
		return false
	}
	t.ToggleSettings()
	log.Debugf("Scheduler: toggled settings of %s", s.modes[s.mode].Patterns[s.index].Name())
	return true
}

// Update runs the active pattern once.
func (s *Scheduler) Update(buf *frame.Buffer, in analysis.Features) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[s.mode].Patterns[s.index].Update(buf, in)
}

// Active returns the current selection.
func (s *Scheduler) Active() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Mode:         s.modes[s.mode].Name,
		Pattern:      s.modes[s.mode].Patterns[s.index].Name(),
		ModeIndex:    s.mode,
		PatternIndex: s.index,
		Since:        s.started,
	}
}

// Catalog lists every pattern in order.
func (s *Scheduler) Catalog() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []Entry
	for mi, m := range s.modes {
		for pi, p := range m.Patterns {
			_, toggle := p.(pattern.SettingsToggler)
			entries = append(entries, Entry{
				Mode:         m.Name,
				Pattern:      p.Name(),
				ModeIndex:    mi,
				PatternIndex: pi,
				Toggle:       toggle,
			})
		}
	}
	return entries
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
