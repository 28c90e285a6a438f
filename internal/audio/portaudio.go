// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"lightbox/internal/log"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource captures mono input from a PortAudio device.
type PortAudioSource struct {
	deviceID        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool
	gate            *Gate

	mono []float64 // Reused for every callback.
}

// NewPortAudioSource prepares capture from deviceID. A nil gate passes every batch.
func NewPortAudioSource(deviceID int, sampleRate float64, framesPerBuffer int, gate *Gate) (*PortAudioSource, error) {
	if sampleRate <= 0 || framesPerBuffer <= 0 {
		return nil, fmt.Errorf("invalid stream parameters: %.0f Hz, %d frames", sampleRate, framesPerBuffer)
	}
	if gate == nil {
		gate = NewGate(0)
		gate.Disable()
	}
	return &PortAudioSource{
		deviceID:        deviceID,
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
		gate:            gate,
		mono:            make([]float64, framesPerBuffer),
	}, nil
}

// SetLowLatency selects the device's low input latency instead of the high one.
func (s *PortAudioSource) SetLowLatency(low bool) {
	s.lowLatency = low
}

func (s *PortAudioSource) SampleRate() float64 {
	return s.sampleRate
}

// Stream opens the input stream and blocks until ctx is cancelled.
func (s *PortAudioSource) Stream(ctx context.Context, ingest IngestFunc) error {
	if err := Initialize(); err != nil {
		return err
	}
	defer Terminate()

	device, err := InputDevice(s.deviceID)
	if err != nil {
		return fmt.Errorf("failed to open input device: %w", err)
	}

	latency := device.DefaultHighInputLatency
	if s.lowLatency {
		latency = device.DefaultLowInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: s.framesPerBuffer,
		SampleRate:      s.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		ingest(s.convert(in))
	})
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	log.Infof("Audio: Capturing from %q at %.0f Hz, %d frames/buffer, latency %s",
		device.Name, s.sampleRate, s.framesPerBuffer, latency.Round(time.Microsecond))

	<-ctx.Done()

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	log.Infof("Audio: Capture stopped")
	return nil
}

// convert copies in to the reusable mono buffer, silencing gated batches.
func (s *PortAudioSource) convert(in []float32) []float64 {
	if cap(s.mono) < len(in) {
		s.mono = make([]float64, len(in))
	}
	out := s.mono[:len(in)]

	if !s.gate.Open(in) {
		clear(out)
		return out
	}
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

var _ Source = (*PortAudioSource)(nil)
