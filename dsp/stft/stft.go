// Package stft computes short-time Fourier transforms: windowed,
// overlapping block FFTs of a signal, laid out as a frequency x time
// complex matrix.
package stft

import (
	"errors"
	"math"

	"audiograph/dsp/complexnum"
	"audiograph/dsp/fft"
)

// Errors returned by Transform.
var (
	ErrInvalidWindowSize = errors.New("stft: window size must be a power of two")
	ErrSignalTooShort    = errors.New("stft: signal shorter than window size")
	ErrInvalidHopSize    = errors.New("stft: hop size must be > 0 and <= window size")
)

// WindowType selects the analysis window applied to each frame.
type WindowType int

const (
	// Hann applies a raised-cosine window.
	Hann WindowType = iota
	// Blackman applies a three-term cosine window with lower sidelobes
	// than Hann at the cost of a wider main lobe.
	Blackman
)

// BuildWindow returns the windowType coefficients for a window of the given
// size.
func BuildWindow(windowType WindowType, size int) []float64 {
	w := make([]float64, size)
	if size == 1 {
		w[0] = 1
		return w
	}
	switch windowType {
	case Blackman:
		for i := range w {
			x := float64(i) / float64(size-1)
			w[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
		}
	default:
		for i := range w {
			x := float64(i) / float64(size-1)
			w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*x)
		}
	}
	return w
}

// Config describes one STFT pass over a signal.
type Config struct {
	// WindowSize is the analysis frame length, a power of two.
	WindowSize int
	// HopFraction is the frame advance as a fraction of WindowSize (e.g.
	// 0.25 for a quarter-window hop).
	HopFraction float64
	WindowType  WindowType
	// Normalize divides each frame's spectrum by the window's coefficient
	// sum, compensating for the window's energy loss.
	Normalize bool
}

// Transform slices signal into overlapping, windowed frames of
// cfg.WindowSize samples spaced round(cfg.HopFraction*WindowSize) samples
// apart, and returns their spectra as a (WindowSize/2+1) x numFrames
// complex matrix, one column per frame.
func Transform[T complexnum.Float](signal []T, cfg Config) (*complexnum.Matrix[T], error) {
	n := cfg.WindowSize
	if n <= 0 || n&(n-1) != 0 {
		return nil, ErrInvalidWindowSize
	}
	if len(signal) < n {
		return nil, ErrSignalTooShort
	}
	hop := int(float64(n)*cfg.HopFraction + 0.5)
	if hop <= 0 || hop > n {
		return nil, ErrInvalidHopSize
	}
	numFrames := (len(signal)-n)/hop + 1
	rows := n/2 + 1

	window := BuildWindow(cfg.WindowType, n)
	windowSum := 0.0
	for _, v := range window {
		windowSum += v
	}

	engine, err := fft.NewStaticFFT[T](n)
	if err != nil {
		return nil, err
	}

	matrix, err := complexnum.NewMatrix[T](rows, numFrames, complexnum.RowMajor)
	if err != nil {
		return nil, err
	}

	frame := complexnum.NewList[T](n)
	frameRaw := frame.Raw()
	for f := 0; f < numFrames; f++ {
		start := f * hop
		for i := 0; i < n; i++ {
			frameRaw[2*i] = signal[start+i] * T(window[i])
			frameRaw[2*i+1] = 0
		}
		if err := engine.Forward(frame); err != nil {
			return nil, err
		}
		for k := 0; k < rows; k++ {
			re, im, _ := frame.Get(k)
			if cfg.Normalize && windowSum != 0 {
				re = T(float64(re) / windowSum)
				im = T(float64(im) / windowSum)
			}
			if err := matrix.Set(k, f, re, im); err != nil {
				return nil, err
			}
		}
	}
	return matrix, nil
}
