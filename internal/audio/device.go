// SPDX-License-Identifier: MIT
package audio

import "time"

// Device represents an audio device
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowInputLatency   time.Duration
	HighInputLatency  time.Duration
}

// Kind describes the device direction.
func (d Device) Kind() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return "Unavailable"
	}
}

// Devices initializes PortAudio, reads the device table and terminates again.
func Devices() ([]Device, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	defer Terminate()

	return HostDevices()
}
