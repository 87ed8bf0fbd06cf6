// Package wave provides simple signal generators used as graph source
// nodes and as test fixtures for the FFT and STFT engines.
package wave

import (
	"math"

	"audiograph/dsp/complexnum"
)

// Wave is a stateful sine oscillator: it carries its own phase across
// calls to Next so a node can pull samples one block at a time without
// discontinuities at block boundaries.
type Wave[T complexnum.Float] struct {
	freq       float64
	amplitude  float64
	sampleRate float64
	phase      float64
	increment  float64
}

// NewWave builds an oscillator at freq Hz, the given amplitude, sampled at
// sampleRate Hz.
func NewWave[T complexnum.Float](freq, amplitude, sampleRate float64) *Wave[T] {
	w := &Wave[T]{freq: freq, amplitude: amplitude}
	w.SetSampleRate(sampleRate)
	return w
}

// SetSampleRate updates the sample rate and recomputes the phase
// increment, preserving the oscillator's current phase.
func (w *Wave[T]) SetSampleRate(sampleRate float64) {
	w.sampleRate = sampleRate
	w.increment = 2 * math.Pi * w.freq / sampleRate
}

// SetFrequency updates the oscillator's frequency and recomputes the phase
// increment for the current sample rate.
func (w *Wave[T]) SetFrequency(freq float64) {
	w.freq = freq
	w.increment = 2 * math.Pi * w.freq / w.sampleRate
}

// Next advances the oscillator by one sample and returns it.
func (w *Wave[T]) Next() T {
	v := T(w.amplitude * math.Sin(w.phase))
	w.phase += w.increment
	if w.phase >= 2*math.Pi {
		w.phase -= 2 * math.Pi
	}
	return v
}

// Fill writes len(out) consecutive samples into out.
func (w *Wave[T]) Fill(out []T) {
	for i := range out {
		out[i] = w.Next()
	}
}

// Reset zeroes the oscillator's phase.
func (w *Wave[T]) Reset() { w.phase = 0 }
