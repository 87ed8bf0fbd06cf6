package fft

import "audiograph/dsp/complexnum"

// DynamicFFT transforms complex lists of any length decided at call time:
// power-of-two inputs dispatch to the radix-2 engine, everything else to
// Bluestein's chirp-Z construction. Use StaticFFT instead when the
// transform size is fixed and known ahead of time, to avoid rebuilding
// twiddle tables on every call.
type DynamicFFT[T complexnum.Float] struct{}

// NewDynamicFFT creates a size-agnostic FFT engine.
func NewDynamicFFT[T complexnum.Float]() *DynamicFFT[T] {
	return &DynamicFFT[T]{}
}

// Forward computes the in-place forward DFT of x.
func (e *DynamicFFT[T]) Forward(x *complexnum.List[T]) error { return e.transform(x, false) }

// Inverse computes the in-place, normalized inverse DFT of x.
func (e *DynamicFFT[T]) Inverse(x *complexnum.List[T]) error { return e.transform(x, true) }

func (e *DynamicFFT[T]) transform(x *complexnum.List[T], inverse bool) error {
	n := x.Len()
	if n == 0 {
		return nil
	}
	if isPowerOfTwo(n) {
		return radix2TransformList(x, inverse)
	}
	return bluesteinTransformList(x, inverse)
}

// Convolve computes the circular convolution of a and b, which must have
// equal length. Both inputs are overwritten with their forward spectra as
// scratch space; the result is the normalized inverse FFT of their
// pointwise product.
func (e *DynamicFFT[T]) Convolve(a, b *complexnum.List[T]) (*complexnum.List[T], error) {
	if a.Len() != b.Len() {
		return nil, ErrInvalidInputSize
	}
	if err := e.Forward(a); err != nil {
		return nil, err
	}
	if err := e.Forward(b); err != nil {
		return nil, err
	}

	n := a.Len()
	out := complexnum.NewList[T](n)
	araw, braw, oraw := a.Raw(), b.Raw(), out.Raw()
	for i := 0; i < n; i++ {
		are, aim := araw[2*i], araw[2*i+1]
		bre, bim := braw[2*i], braw[2*i+1]
		oraw[2*i] = are*bre - aim*bim
		oraw[2*i+1] = are*bim + aim*bre
	}
	if err := e.Inverse(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FrequencyBins returns the first n/2 bin center frequencies k*sampleRate/n
// for an n-point transform.
func FrequencyBins[T complexnum.Float](n int, sampleRate float64) []T {
	bins := make([]T, n/2)
	for k := range bins {
		bins[k] = T(float64(k) * sampleRate / float64(n))
	}
	return bins
}
