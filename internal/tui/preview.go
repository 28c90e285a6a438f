// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"fmt"
	"lightbox/internal/engine"
	"lightbox/internal/frame"
	"lightbox/internal/scheduler"
	"lightbox/internal/transport"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	cell        = "██"
	previewRate = 30 // Terminal redraws per second.
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7A7A7A"))
)

type frameTickMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/previewRate, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// PreviewModel draws the latest committed frame and forwards key presses
// to the engine.
type PreviewModel struct {
	controls engine.Controls
	frames   *transport.LatestSink
	keys     KeyMap

	frame      frame.Frame
	hasFrame   bool
	state      scheduler.State
	brightness float64
	toggled    bool // Last settings toggle reached a pattern.
}

// NewPreviewModel reads frames from sink and sends commands to controls.
func NewPreviewModel(controls engine.Controls, sink *transport.LatestSink) PreviewModel {
	return PreviewModel{
		controls:   controls,
		frames:     sink,
		keys:       DefaultKeyMap,
		state:      controls.Active(),
		brightness: controls.Brightness(),
		toggled:    true,
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return frameTick()
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameTickMsg:
		m.refresh()
		return m, frameTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.controls.NextPattern()
		case key.Matches(msg, m.keys.Previous):
			m.controls.PreviousPattern()
		case key.Matches(msg, m.keys.Mode):
			m.controls.NextMode()
		case key.Matches(msg, m.keys.Settings):
			m.toggled = m.controls.ToggleSettings()
		case key.Matches(msg, m.keys.Brighter):
			m.controls.AdjustBrightness(engine.BrightnessStep)
		case key.Matches(msg, m.keys.Dimmer):
			m.controls.AdjustBrightness(-engine.BrightnessStep)
		default:
			return m, nil
		}
		m.refresh()
	}
	return m, nil
}

func (m *PreviewModel) refresh() {
	if f, ok := m.frames.Latest(); ok {
		m.frame, m.hasFrame = f, true
	}
	m.state = m.controls.Active()
	m.brightness = m.controls.Brightness()
}

func (m PreviewModel) View() string {
	var sb strings.Builder

	status := fmt.Sprintf("%s / %s   brightness %.0f%%", m.state.Mode, m.state.Pattern, m.brightness*100)
	sb.WriteString(statusStyle.Render(status))
	sb.WriteString("\n\n")

	if !m.hasFrame {
		sb.WriteString(dimStyle.Render("waiting for first frame..."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(renderGrid(m.frame))
	}

	sb.WriteString("\n")
	if !m.toggled {
		sb.WriteString(dimStyle.Render("(pattern has no settings)"))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(m.keys.helpText()))
	return sb.String()
}

// renderGrid draws each LED as a two-column block coloured with its RGB value.
func renderGrid(f frame.Frame) string {
	var sb strings.Builder
	for y := range f.Height {
		for x := range f.Width {
			c := f.At(x, y)
			hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RunPreview blocks until the user quits or ctx is cancelled.
func RunPreview(ctx context.Context, controls engine.Controls, sink *transport.LatestSink) error {
	p := tea.NewProgram(
		NewPreviewModel(controls, sink),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal preview: %w", err)
	}
	return nil
}
