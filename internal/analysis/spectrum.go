// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"lightbox/pkg/bitint"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the FFT window function.
type WindowFunc int

// Available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
	Rectangular
)

var windowNames = [...]string{
	BartlettHann:    "BartlettHann",
	Blackman:        "Blackman",
	BlackmanNuttall: "BlackmanNuttall",
	Hann:            "Hann",
	Hamming:         "Hamming",
	Lanczos:         "Lanczos",
	Nuttall:         "Nuttall",
	Rectangular:     "Rectangular",
}

func (w WindowFunc) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
	return windowNames[w]
}

// ParseWindowFunc converts a case-insensitive name to a WindowFunc. Unknown
// names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	case "rectangular", "none":
		return Rectangular, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	// gonum windows scale the slice in place, so start from ones.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Rectangular:
	default:
		window.Hann(coeffs)
	}
}

// Spectrum computes windowed FFT magnitudes over fixed-size chunks. All
// buffers are allocated up front; a Spectrum is not safe for concurrent use.
type Spectrum struct {
	fft        *fourier.FFT
	size       int
	sampleRate float64
	window     []float64
	input      []float64
	coeffs     []complex128
	magnitude  []float64
}

// NewSpectrum returns a Spectrum for chunks of size samples, which must be a
// power of two.
func NewSpectrum(size int, sampleRate float64, windowType WindowFunc) (*Spectrum, error) {
	if !bitint.IsPowerOfTwo(size) || size < 2 {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	coeffs := make([]float64, size)
	applyWindow(coeffs, windowType)

	return &Spectrum{
		fft:        fourier.NewFFT(size),
		size:       size,
		sampleRate: sampleRate,
		window:     coeffs,
		input:      make([]float64, size),
		// Real input yields size/2+1 coefficients.
		coeffs:    make([]complex128, size/2+1),
		magnitude: make([]float64, size/2),
	}, nil
}

// Compute windows chunk, transforms it and returns the magnitudes of the
// first size/2 bins. Short chunks are zero padded. The returned slice is
// reused by the next call.
func (s *Spectrum) Compute(chunk []float64) []float64 {
	for i := range s.size {
		if i < len(chunk) {
			s.input[i] = chunk[i] * s.window[i]
		} else {
			s.input[i] = 0
		}
	}

	s.fft.Coefficients(s.coeffs, s.input)

	for i := range s.magnitude {
		s.magnitude[i] = cmplx.Abs(s.coeffs[i])
	}
	return s.magnitude
}

// BinFrequency returns the centre frequency in Hz of bin i.
func (s *Spectrum) BinFrequency(i int) float64 {
	return float64(i) * s.sampleRate / float64(s.size)
}

// Size returns the FFT size.
func (s *Spectrum) Size() int { return s.size }

// Bins returns the number of magnitude bins produced by Compute.
func (s *Spectrum) Bins() int { return len(s.magnitude) }
