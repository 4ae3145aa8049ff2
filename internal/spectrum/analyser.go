// SPDX-License-Identifier: MIT
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"talkulizer/internal/log"
	"talkulizer/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrFFTSize is returned when the analysis size is not a power of two.
var ErrFFTSize = errors.New("spectrum: fft size must be a power of 2")

// Analyser defaults.
const (
	DefaultFFTSize     = 2048
	DefaultSmoothing   = 0.5
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// AnalyserOptions configures an Analyser.
type AnalyserOptions struct {
	FFTSize     int        // Samples per analysis window (power of 2).
	SampleRate  float64    // Input sample rate in Hz.
	Smoothing   float64    // Time constant in [0, 1] blending each spectrum with the previous one.
	MinDecibels float64    // Level mapped to byte 0.
	MaxDecibels float64    // Level mapped to byte 255.
	Window      WindowFunc // Window applied before the FFT.
}

// DefaultAnalyserOptions returns the standard analysis settings for sampleRate.
func DefaultAnalyserOptions(sampleRate float64) AnalyserOptions {
	return AnalyserOptions{
		FFTSize:     DefaultFFTSize,
		SampleRate:  sampleRate,
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
		Window:      Blackman,
	}
}

// Pre-allocated buffers for the analysis hot path.
type analyserWorkspace struct {
	history   []float64    // Most recent FFTSize samples, oldest first, in [-1, 1).
	input     []float64    // Windowed copy of history.
	fftOutput []complex128 // FFTSize/2 + 1 coefficients.
	smoothed  []float64    // Smoothed linear magnitudes, one per bin.
	window    []float64    // Window coefficients.
}

// Analyser converts a stream of PCM blocks into byte spectra. It keeps a
// sliding window of the last FFTSize samples; every Process call advances
// the window, recomputes the smoothed spectrum and re-encodes both output
// buffers. Magnitudes are mapped linearly from [MinDecibels, MaxDecibels] to
// [0, 255]; time-domain samples are encoded as 128 + 128*x.
//
// Process and the Source methods may be called from different goroutines.
type Analyser struct {
	opts      AnalyserOptions
	fft       *fourier.FFT
	bins      int
	workspace analyserWorkspace

	mu         sync.RWMutex // Protects magnitudes and timeDomain.
	magnitudes []byte
	timeDomain []byte
}

// Compile-time checks for interface implementations.
var _ Source = (*Analyser)(nil)
var _ AudioProcessor = (*Analyser)(nil)

// NewAnalyser validates opts and pre-allocates every buffer the analysis
// needs.
func NewAnalyser(opts AnalyserOptions) (*Analyser, error) {
	if !bitint.IsPowerOfTwo(opts.FFTSize) || opts.FFTSize < 32 {
		return nil, fmt.Errorf("%w, got %d", ErrFFTSize, opts.FFTSize)
	}
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("spectrum: sample rate must be positive, got %f", opts.SampleRate)
	}
	if opts.Smoothing < 0 || opts.Smoothing > 1 {
		return nil, fmt.Errorf("spectrum: smoothing must be in [0, 1], got %f", opts.Smoothing)
	}
	if opts.MinDecibels >= opts.MaxDecibels {
		return nil, fmt.Errorf("spectrum: min decibels %.1f must be below max decibels %.1f",
			opts.MinDecibels, opts.MaxDecibels)
	}

	bins := opts.FFTSize / 2
	windowCoeffs := make([]float64, opts.FFTSize)
	applyWindow(windowCoeffs, opts.Window)

	log.Infof("spectrum: analyser ready (size %d, %d bins, %.1f Hz, window %v, smoothing %.2f)",
		opts.FFTSize, bins, opts.SampleRate, opts.Window, opts.Smoothing)

	a := &Analyser{
		opts: opts,
		fft:  fourier.NewFFT(opts.FFTSize),
		bins: bins,
		workspace: analyserWorkspace{
			history:   make([]float64, opts.FFTSize),
			input:     make([]float64, opts.FFTSize),
			fftOutput: make([]complex128, opts.FFTSize/2+1),
			smoothed:  make([]float64, bins),
			window:    windowCoeffs,
		},
		magnitudes: make([]byte, bins),
		timeDomain: make([]byte, opts.FFTSize),
	}
	for i := range a.timeDomain {
		a.timeDomain[i] = 128
	}
	return a, nil
}

// Process appends a block of mono samples and refreshes both spectra.
// It performs no allocations.
func (a *Analyser) Process(inputBuffer []int32) {
	const normFactor = 1.0 / float64(0x80000000)

	a.mu.Lock()

	// Slide the history window forward by len(inputBuffer) samples.
	h := a.workspace.history
	n := len(inputBuffer)
	if n >= len(h) {
		tail := inputBuffer[n-len(h):]
		for i, s := range tail {
			h[i] = float64(s) * normFactor
		}
	} else {
		copy(h, h[n:])
		off := len(h) - n
		for i, s := range inputBuffer {
			h[off+i] = float64(s) * normFactor
		}
	}

	for i, x := range h {
		a.workspace.input[i] = x * a.workspace.window[i]
	}
	a.fft.Coefficients(a.workspace.fftOutput, a.workspace.input)

	scale := 1.0 / float64(a.opts.FFTSize)
	tau := a.opts.Smoothing
	byteScale := 255.0 / (a.opts.MaxDecibels - a.opts.MinDecibels)
	for k := range a.bins {
		mag := cmplx.Abs(a.workspace.fftOutput[k]) * scale
		s := tau*a.workspace.smoothed[k] + (1-tau)*mag
		a.workspace.smoothed[k] = s
		a.magnitudes[k] = clampByte(byteScale * (20*math.Log10(s) - a.opts.MinDecibels))
	}

	for i, x := range h {
		a.timeDomain[i] = clampByte(128 * (x + 1))
	}

	a.mu.Unlock()
}

// FrequencyBinCount returns FFTSize/2.
func (a *Analyser) FrequencyBinCount() int {
	return a.bins
}

// FrequencyMagnitudes copies the latest byte spectrum into dst.
func (a *Analyser) FrequencyMagnitudes(dst []byte) {
	a.mu.RLock()
	copy(dst, a.magnitudes)
	a.mu.RUnlock()
}

// TimeDomainSamples copies the start of the current analysis window into dst.
func (a *Analyser) TimeDomainSamples(dst []byte) {
	a.mu.RLock()
	copy(dst, a.timeDomain)
	a.mu.RUnlock()
}

// FrequencyForBin returns the center frequency in Hz of bin, or 0 when bin
// is outside the spectrum.
func (a *Analyser) FrequencyForBin(bin int) float64 {
	if bin < 0 || bin >= a.bins {
		return 0
	}
	return float64(bin) * a.opts.SampleRate / float64(a.opts.FFTSize)
}

// Options returns the settings the Analyser was built with.
func (a *Analyser) Options() AnalyserOptions {
	return a.opts
}

// Reset clears the history and the smoothing state.
func (a *Analyser) Reset() {
	a.mu.Lock()
	clear(a.workspace.history)
	clear(a.workspace.smoothed)
	clear(a.magnitudes)
	for i := range a.timeDomain {
		a.timeDomain[i] = 128
	}
	a.mu.Unlock()
}

// clampByte floors v into [0, 255]. -Inf and NaN map to 0.
func clampByte(v float64) byte {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v)
	}
}
