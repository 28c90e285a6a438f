// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"lightbox/pkg/bitint"
	"strings"
	"time"
)

// Sources accepted by Audio.Source.
const (
	SourcePortAudio = "portaudio"
	SourceWAV       = "wav"
	SourceSynth     = "synth"
	SourceNone      = "none"
)

// Preview modes accepted by Preview.Mode.
const (
	PreviewNone   = "none"
	PreviewTUI    = "tui"
	PreviewWindow = "window"
)

// Defaults and limits. The defaults drive a 16x16 light box at 60 fps from
// 44.1 kHz audio analysed in 1024-sample chunks.
const (
	DefaultGridWidth       = 16
	DefaultGridHeight      = 16
	DefaultSampleRate      = 44100
	DefaultFramesPerBuffer = 512
	DefaultChunkSize       = 1024
	DefaultBands           = 16
	DefaultMinFreq         = 20.0
	DefaultMaxFreq         = 20000.0
	DefaultFFTWindow       = "Hann"
	DefaultDeviceID        = MinDeviceID

	DefaultBeatRatio      = 1.3
	DefaultRefractory     = 300 * time.Millisecond
	DefaultBeatHistory    = 30
	DefaultBeatRecent     = 10
	DefaultFrameRate      = 60
	DefaultGamma          = 2.2
	DefaultSmoothing      = 0.7
	DefaultBrightness     = 0.5
	DefaultUDPTarget      = "127.0.0.1:7777"
	DefaultWebSocketAddr  = ":8080"
	DefaultPreviewScale   = 24
	DefaultLogLevel       = "info"
	DefaultAudioSource    = SourceSynth
	DefaultPreviewMode    = PreviewNone
	DefaultWindowCapacity = DefaultSampleRate / 10 // 100 ms of audio

	MinDeviceID    = -1 // -1 selects the system default input device
	MaxGridSide    = 256
	MinSampleRate  = 8000
	MaxSampleRate  = 192000
	MinChunkSize   = 64
	MaxChunkSize   = 16384
	MaxFrameRate   = 240
	MinBrightness  = 0.1
	MaxBrightness  = 1.0
	MaxPreviewSize = 64
)

// Validation failures. Validate wraps one of these so callers can use errors.Is.
var (
	ErrInvalidGrid      = errors.New("invalid grid configuration")
	ErrInvalidAudio     = errors.New("invalid audio configuration")
	ErrInvalidBeat      = errors.New("invalid beat configuration")
	ErrInvalidRender    = errors.New("invalid render configuration")
	ErrInvalidTransport = errors.New("invalid transport configuration")
	ErrInvalidPreview   = errors.New("invalid preview configuration")
)

// Config is the static runtime configuration, loaded once at startup.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Forces debug logging.
	LogLevel  string          `yaml:"log_level"` // debug, info, warn, error.
	Grid      GridConfig      `yaml:"grid"`
	Audio     AudioConfig     `yaml:"audio"`
	Beat      BeatConfig      `yaml:"beat"`
	Render    RenderConfig    `yaml:"render"`
	Transport TransportConfig `yaml:"transport"`
	Preview   PreviewConfig   `yaml:"preview"`
}

// GridConfig sets the LED matrix dimensions.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// AudioConfig holds input and analysis settings.
type AudioConfig struct {
	Source          string  `yaml:"source"`            // portaudio, wav, synth or none.
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index, -1 for default.
	WAVFile         string  `yaml:"wav_file"`          // Input file for the wav source.
	Loop            bool    `yaml:"loop"`              // Restart the wav source at end of file.
	RecordFile      string  `yaml:"record_file"`       // Optional WAV tap of the ingested audio.
	SampleRate      float64 `yaml:"sample_rate"`       // Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Capture batch size.
	ChunkSize       int     `yaml:"chunk_size"`        // FFT analysis window, power of two.
	WindowCapacity  int     `yaml:"window_capacity"`   // Sample ring capacity, >= chunk_size.
	FFTWindow       string  `yaml:"fft_window"`        // Hann, Hamming, Blackman, ...
	Bands           int     `yaml:"bands"`             // Number of log-spaced bands.
	MinFreq         float64 `yaml:"min_freq"`          // Lowest band edge in Hz.
	MaxFreq         float64 `yaml:"max_freq"`          // Highest band edge, capped at Nyquist.
	GateThreshold   float64 `yaml:"gate_threshold"`    // 0..1 peak below which capture batches are silenced.
}

// BeatConfig tunes onset detection.
type BeatConfig struct {
	ThresholdRatio float64       `yaml:"threshold_ratio"` // recent mean must exceed history mean by this factor.
	Refractory     time.Duration `yaml:"refractory"`      // Minimum time between beats.
	History        int           `yaml:"history"`         // Volume history capacity.
	Recent         int           `yaml:"recent"`          // Size of the recent window inside the history.
}

// RenderConfig controls the frame loop and output shaping.
type RenderConfig struct {
	FrameRate  int     `yaml:"frame_rate"` // Frames per second.
	Gamma      float64 `yaml:"gamma"`      // 0 disables gamma correction.
	Smoothing  float64 `yaml:"smoothing"`  // Spectrum smoothing factor alpha in [0,1).
	Brightness float64 `yaml:"brightness"` // Global brightness in [0.1,1].
	Seed       int64   `yaml:"seed"`       // Random seed for patterns, 0 picks a time-based seed.
}

// TransportConfig selects the frame sinks.
type TransportConfig struct {
	UDPEnabled       bool   `yaml:"udp_enabled"`
	UDPTargetAddress string `yaml:"udp_target_address"` // host:port of the LED controller.
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddress string `yaml:"websocket_address"` // Listen address for /frames.
	LogFrames        bool   `yaml:"log_frames"`        // Log a summary of every committed frame at debug level.
}

// PreviewConfig selects the on-screen preview, which is also the command input.
type PreviewConfig struct {
	Mode  string `yaml:"mode"`  // none, tui or window.
	Scale int    `yaml:"scale"` // Window pixels per LED.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Grid: GridConfig{
			Width:  DefaultGridWidth,
			Height: DefaultGridHeight,
		},
		Audio: AudioConfig{
			Source:          DefaultAudioSource,
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			ChunkSize:       DefaultChunkSize,
			WindowCapacity:  DefaultWindowCapacity,
			FFTWindow:       DefaultFFTWindow,
			Bands:           DefaultBands,
			MinFreq:         DefaultMinFreq,
			MaxFreq:         DefaultMaxFreq,
		},
		Beat: BeatConfig{
			ThresholdRatio: DefaultBeatRatio,
			Refractory:     DefaultRefractory,
			History:        DefaultBeatHistory,
			Recent:         DefaultBeatRecent,
		},
		Render: RenderConfig{
			FrameRate:  DefaultFrameRate,
			Gamma:      DefaultGamma,
			Smoothing:  DefaultSmoothing,
			Brightness: DefaultBrightness,
		},
		Transport: TransportConfig{
			UDPTargetAddress: DefaultUDPTarget,
			WebSocketAddress: DefaultWebSocketAddr,
		},
		Preview: PreviewConfig{
			Mode:  DefaultPreviewMode,
			Scale: DefaultPreviewScale,
		},
	}
}

// FrameInterval is the render period derived from the frame rate.
func (c *Config) FrameInterval() time.Duration {
	if c.Render.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.Render.FrameRate)
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	g := c.Grid
	if g.Width < 1 || g.Width > MaxGridSide || g.Height < 1 || g.Height > MaxGridSide {
		return fmt.Errorf("%w: grid %dx%d must be within 1..%d", ErrInvalidGrid, g.Width, g.Height, MaxGridSide)
	}

	a := c.Audio
	switch a.Source {
	case SourcePortAudio, SourceSynth, SourceNone:
	case SourceWAV:
		if a.WAVFile == "" {
			return fmt.Errorf("%w: wav source requires audio.wav_file", ErrInvalidAudio)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidAudio, a.Source)
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %.0f outside %d..%d Hz", ErrInvalidAudio, a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(a.ChunkSize) || a.ChunkSize < MinChunkSize || a.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d must be a power of two in %d..%d (nearest: %d)",
			ErrInvalidAudio, a.ChunkSize, MinChunkSize, MaxChunkSize, bitint.NextPowerOfTwo(a.ChunkSize))
	}
	if a.WindowCapacity < a.ChunkSize {
		return fmt.Errorf("%w: window capacity %d smaller than chunk size %d", ErrInvalidAudio, a.WindowCapacity, a.ChunkSize)
	}
	if a.FramesPerBuffer < 1 {
		return fmt.Errorf("%w: frames per buffer must be positive", ErrInvalidAudio)
	}
	if a.Bands < 1 {
		return fmt.Errorf("%w: band count must be positive", ErrInvalidAudio)
	}
	if a.MinFreq <= 0 || a.MaxFreq <= a.MinFreq {
		return fmt.Errorf("%w: frequency range %.1f..%.1f Hz", ErrInvalidAudio, a.MinFreq, a.MaxFreq)
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		return fmt.Errorf("%w: gate threshold %.3f outside 0..1", ErrInvalidAudio, a.GateThreshold)
	}

	b := c.Beat
	if b.ThresholdRatio <= 0 || b.Refractory < 0 {
		return fmt.Errorf("%w: ratio %.2f, refractory %s", ErrInvalidBeat, b.ThresholdRatio, b.Refractory)
	}
	if b.Recent < 1 || b.History <= b.Recent {
		return fmt.Errorf("%w: history %d must exceed recent window %d", ErrInvalidBeat, b.History, b.Recent)
	}

	r := c.Render
	if r.FrameRate < 1 || r.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: frame rate %d outside 1..%d", ErrInvalidRender, r.FrameRate, MaxFrameRate)
	}
	if r.Gamma < 0 {
		return fmt.Errorf("%w: negative gamma %.2f", ErrInvalidRender, r.Gamma)
	}
	if r.Smoothing < 0 || r.Smoothing >= 1 {
		return fmt.Errorf("%w: smoothing %.2f outside [0,1)", ErrInvalidRender, r.Smoothing)
	}
	if r.Brightness < MinBrightness || r.Brightness > MaxBrightness {
		return fmt.Errorf("%w: brightness %.2f outside %.1f..%.1f", ErrInvalidRender, r.Brightness, MinBrightness, MaxBrightness)
	}

	t := c.Transport
	if t.UDPEnabled && !strings.Contains(t.UDPTargetAddress, ":") {
		return fmt.Errorf("%w: udp_target_address %q is missing a port", ErrInvalidTransport, t.UDPTargetAddress)
	}
	if t.WebSocketEnabled && !strings.Contains(t.WebSocketAddress, ":") {
		return fmt.Errorf("%w: websocket_address %q is missing a port", ErrInvalidTransport, t.WebSocketAddress)
	}

	p := c.Preview
	switch p.Mode {
	case PreviewNone, PreviewTUI, PreviewWindow:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidPreview, p.Mode)
	}
	if p.Scale < 1 || p.Scale > MaxPreviewSize {
		return fmt.Errorf("%w: scale %d outside 1..%d", ErrInvalidPreview, p.Scale, MaxPreviewSize)
	}

	return nil
}
