// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"lightbox/internal/audio"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// listDevices is replaced in tests.
var listDevices = audio.Devices

var (
	upKey     = key.NewBinding(key.WithKeys("up", "k"))
	downKey   = key.NewBinding(key.WithKeys("down", "j"))
	selectKey = key.NewBinding(key.WithKeys("enter"))
	cancelKey = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"))
)

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// DeviceListModel lets the user pick a capture device. Only devices with
// input channels can be selected.
type DeviceListModel struct {
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error

	chosen   *audio.Device
	canceled bool
}

// NewDeviceListModel creates a new device list model
func NewDeviceListModel() DeviceListModel {
	return DeviceListModel{}
}

func (m DeviceListModel) Init() tea.Cmd {
	return fetchDevices
}

func fetchDevices() tea.Msg {
	devices, err := listDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.viewport.SetContent(m.renderDevices())

	case devicesMsg:
		m.devices = msg.devices
		m.selectedIndex = 0
		for i, d := range m.devices {
			if d.MaxInputChannels > 0 {
				m.selectedIndex = i
				break
			}
		}
		m.viewport.SetContent(m.renderDevices())

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case m.err != nil, key.Matches(msg, cancelKey):
			m.canceled = true
			return m, tea.Quit

		case key.Matches(msg, upKey):
			m.move(-1)

		case key.Matches(msg, downKey):
			m.move(1)

		case key.Matches(msg, selectKey):
			if d, ok := m.selected(); ok && d.MaxInputChannels > 0 {
				m.chosen = &d
				return m, tea.Quit
			}
		}
		m.viewport.SetContent(m.renderDevices())
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// move steps the cursor to the next input-capable device in dir.
func (m *DeviceListModel) move(dir int) {
	for i := m.selectedIndex + dir; i >= 0 && i < len(m.devices); i += dir {
		if m.devices[i].MaxInputChannels > 0 {
			m.selectedIndex = i
			return
		}
	}
}

func (m DeviceListModel) selected() (audio.Device, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.devices) {
		return audio.Device{}, false
	}
	return m.devices[m.selectedIndex], true
}

// Chosen returns the device picked with enter.
func (m DeviceListModel) Chosen() (audio.Device, bool) {
	if m.chosen == nil {
		return audio.Device{}, false
	}
	return *m.chosen, true
}

func (m DeviceListModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render("Audio Input Devices")
	help := infoStyle.Render("↑/↓: Navigate • Enter: Select • q: Quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DeviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		marker := " "
		if i == m.selectedIndex {
			marker = "▶"
		}
		info := fmt.Sprintf("%s [%d] %s (%s)\n", marker, device.ID, device.Name, device.Kind())
		info += fmt.Sprintf("    Input channels: %d, Default sample rate: %.0f Hz\n",
			device.MaxInputChannels, device.DefaultSampleRate)

		switch {
		case i == m.selectedIndex:
			info = highlightStyle.Render(info)
		case device.MaxInputChannels == 0:
			info = dimStyle.Render(info)
		}
		sb.WriteString(info)
		sb.WriteString("\n")
	}
	return sb.String()
}

// PickDevice runs the device picker. ok is false when the user quit
// without choosing.
func PickDevice() (device audio.Device, ok bool, err error) {
	p := tea.NewProgram(NewDeviceListModel(), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return audio.Device{}, false, fmt.Errorf("device picker: %w", err)
	}
	m := final.(DeviceListModel)
	if m.err != nil {
		return audio.Device{}, false, m.err
	}
	device, ok = m.Chosen()
	return device, ok, nil
}
