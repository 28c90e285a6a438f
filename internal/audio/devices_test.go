// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

var mockDeviceTable = []*portaudio.DeviceInfo{
	{Name: "Built-in Microphone", MaxInputChannels: 1, DefaultSampleRate: 48000,
		DefaultLowInputLatency: 3 * time.Millisecond, DefaultHighInputLatency: 12 * time.Millisecond},
	{Name: "Built-in Output", MaxOutputChannels: 2, DefaultSampleRate: 48000},
	{Name: "USB Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 44100},
}

// mockPortAudio replaces the PortAudio entry points for the duration of t.
func mockPortAudio(t *testing.T, devices []*portaudio.DeviceInfo) {
	t.Helper()
	origInit, origTerm := paLibInitialize, paLibTerminate
	origDevices, origDefault := paLibDevicesFunc, paLibDefaultInputDeviceFunc
	t.Cleanup(func() {
		paLibInitialize, paLibTerminate = origInit, origTerm
		paLibDevicesFunc, paLibDefaultInputDeviceFunc = origDevices, origDefault
	})

	paLibInitialize = func() error { return nil }
	paLibTerminate = func() error { return nil }
	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return devices, nil }
	paLibDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		if len(devices) == 0 {
			return nil, fmt.Errorf("no default input device")
		}
		return devices[0], nil
	}
}

func TestHostDevices(t *testing.T) {
	mockPortAudio(t, mockDeviceTable)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != len(mockDeviceTable) {
		t.Fatalf("got %d devices, want %d", len(devices), len(mockDeviceTable))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name != mockDeviceTable[i].Name {
			t.Errorf("Device %d name = %q", i, d.Name)
		}
	}
	if devices[0].HighInputLatency != 12*time.Millisecond {
		t.Errorf("latency not carried over: %v", devices[0].HighInputLatency)
	}

	wantKinds := []string{"Input", "Output", "Input/Output"}
	for i, want := range wantKinds {
		if got := devices[i].Kind(); got != want {
			t.Errorf("device %d Kind() = %q, want %q", i, got, want)
		}
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	_, err := HostDevices()
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice(t *testing.T) {
	mockPortAudio(t, mockDeviceTable)

	if dev, err := InputDevice(-1); err != nil || dev.Name != "Built-in Microphone" {
		t.Errorf("InputDevice(-1) = %v, %v", dev, err)
	}
	if dev, err := InputDevice(2); err != nil || dev.Name != "USB Interface" {
		t.Errorf("InputDevice(2) = %v, %v", dev, err)
	}

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", len(mockDeviceTable) + 10, "invalid device ID"},
		{"Non-input device", 1, "does not support input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InputDevice(tt.id)
			if err == nil {
				t.Errorf("Expected error for ID %d", tt.id)
			} else if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestInputDevice_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	_, err := InputDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice_paDefaultInputDeviceError(t *testing.T) {
	mockPortAudio(t, mockDeviceTable)
	paLibDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock default input error")
	}

	_, err := InputDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock default input error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestErrorInitialize(t *testing.T) {
	orig := paLibInitialize
	defer func() { paLibInitialize = orig }()

	paLibInitialize = func() error { return nil }
	if err := Initialize(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibInitialize = func() error { return fmt.Errorf("mock init error") }
	if err := Initialize(); err == nil || !strings.Contains(err.Error(), "mock init error") {
		t.Errorf("expected mock init error, got %v", err)
	}
	if _, err := Devices(); err == nil {
		t.Error("Devices() should fail when Initialize fails")
	}
}

func TestErrorTerminate(t *testing.T) {
	orig := paLibTerminate
	defer func() { paLibTerminate = orig }()

	paLibTerminate = func() error { return nil }
	if err := Terminate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paLibTerminate = func() error { return fmt.Errorf("mock term error") }
	if err := Terminate(); err == nil || !strings.Contains(err.Error(), "mock term error") {
		t.Errorf("expected mock term error, got %v", err)
	}
}

func TestNilDevices(t *testing.T) {
	mockPortAudio(t, nil)

	devices, err := paDevices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if devices == nil {
		t.Errorf("expected empty slice, got nil")
	}
	if len(devices) != 0 {
		t.Errorf("expected length 0, got %d", len(devices))
	}
}

func TestPortAudioNotInitialized(t *testing.T) {
	orig := paLibDevicesFunc
	defer func() { paLibDevicesFunc = orig }()
	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("PortAudio not initialized")
	}

	devices, err := paDevices()
	if err == nil || !strings.Contains(err.Error(), "PortAudio not initialized") {
		t.Errorf("expected 'PortAudio not initialized' error, got %v", err)
	}
	if devices != nil {
		t.Errorf("expected devices to be nil on error, got %v", devices)
	}
}

func TestListDevices(t *testing.T) {
	mockPortAudio(t, mockDeviceTable)

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"[0] Built-in Microphone (Input)",
		"[2] USB Interface (Input/Output)",
		"Default sample rate: 44100 Hz",
		"Latency: Low=3.00ms, High=12.00ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteDevices(&buf, nil)
	if !strings.Contains(buf.String(), "(none)") {
		t.Errorf("empty table output = %q", buf.String())
	}
}
