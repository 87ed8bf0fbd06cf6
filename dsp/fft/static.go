package fft

import "audiograph/dsp/complexnum"

// StaticFFT is a radix-2 FFT engine fixed to one power-of-two size, with
// its twiddle tables and scratch buffer precomputed at construction. Go has
// no const generics, so "static" here means "built once per size" rather
// than a compile-time constant, matched via NewStaticFFT acting as the
// factory a const-generic size parameter would otherwise be.
//
// StaticFFT is not safe for concurrent use: callers that need one per
// worker should construct one per goroutine.
type StaticFFT[T complexnum.Float] struct {
	n          int
	fwdTwiddle []complex128
	invTwiddle []complex128
	scratch    []complex128
}

// NewStaticFFT builds a radix-2 engine for exactly n samples, which must be
// a power of two.
func NewStaticFFT[T complexnum.Float](n int) (*StaticFFT[T], error) {
	if !isPowerOfTwo(n) {
		return nil, ErrInvalidInputSize
	}
	return &StaticFFT[T]{
		n:          n,
		fwdTwiddle: buildTwiddleTable(n, false),
		invTwiddle: buildTwiddleTable(n, true),
		scratch:    make([]complex128, n),
	}, nil
}

// Size returns the engine's fixed transform length.
func (e *StaticFFT[T]) Size() int { return e.n }

// Forward computes the in-place forward DFT of x, which must have Len() ==
// Size().
func (e *StaticFFT[T]) Forward(x *complexnum.List[T]) error { return e.transform(x, false) }

// Inverse computes the in-place, normalized inverse DFT of x, which must
// have Len() == Size().
func (e *StaticFFT[T]) Inverse(x *complexnum.List[T]) error { return e.transform(x, true) }

func (e *StaticFFT[T]) transform(x *complexnum.List[T], inverse bool) error {
	if x.Len() != e.n {
		return ErrInvalidInputSize
	}
	raw := x.Raw()
	for i := 0; i < e.n; i++ {
		e.scratch[i] = complex(float64(raw[2*i]), float64(raw[2*i+1]))
	}
	twiddle := e.fwdTwiddle
	if inverse {
		twiddle = e.invTwiddle
	}
	if err := radix2Transform(e.scratch, twiddle, inverse); err != nil {
		return err
	}
	for i := 0; i < e.n; i++ {
		raw[2*i] = T(real(e.scratch[i]))
		raw[2*i+1] = T(imag(e.scratch[i]))
	}
	return nil
}
