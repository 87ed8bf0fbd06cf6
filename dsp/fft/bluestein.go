package fft

import (
	"math"

	"audiograph/dsp/complexnum"
)

// bluesteinConvolutionSize returns the smallest power of two M >= 2*n.
func bluesteinConvolutionSize(n int) (int, error) {
	if n > (1<<62)/2 {
		return 0, ErrOverflow
	}
	m := 1
	for m < 2*n {
		m <<= 1
	}
	return m, nil
}

func cmplxConj(c complex128) complex128 { return complex(real(c), -imag(c)) }

// bluesteinForward computes the forward DFT of x (arbitrary nonzero length)
// via the chirp-Z transform: it builds a_i = x_i * e^{-i*pi*i^2/n}, a
// symmetric convolution kernel b derived from the same chirp, and recovers
// X_k = chirp_k * conv(a,b)_k from their power-of-two circular convolution.
func bluesteinForward(x []complex128) ([]complex128, error) {
	n := len(x)
	if n == 0 {
		return nil, nil
	}
	m, err := bluesteinConvolutionSize(n)
	if err != nil {
		return nil, err
	}

	chirp := make([]complex128, n)
	for i := 0; i < n; i++ {
		angle := -math.Pi * float64((i*i)%(2*n)) / float64(n)
		chirp[i] = complex(math.Cos(angle), math.Sin(angle))
	}

	a := make([]complex128, m)
	for i := 0; i < n; i++ {
		a[i] = x[i] * chirp[i]
	}

	b := make([]complex128, m)
	b[0] = cmplxConj(chirp[0])
	for i := 1; i < n; i++ {
		c := cmplxConj(chirp[i])
		b[i] = c
		b[m-i] = c
	}

	fwdTwiddle := buildTwiddleTable(m, false)
	if err := radix2Transform(a, fwdTwiddle, false); err != nil {
		return nil, err
	}
	if err := radix2Transform(b, fwdTwiddle, false); err != nil {
		return nil, err
	}
	for i := range a {
		a[i] *= b[i]
	}
	invTwiddle := buildTwiddleTable(m, true)
	if err := radix2Transform(a, invTwiddle, true); err != nil {
		return nil, err
	}

	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		out[k] = chirp[k] * a[k]
	}
	return out, nil
}

// bluesteinTransformList dispatches forward and inverse transforms of
// arbitrary (non-power-of-two) length through bluesteinForward, using the
// standard IDFT(x) = (1/N) * conj(DFT(conj(x))) identity for the inverse
// direction so only one chirp-Z code path is needed.
func bluesteinTransformList[T complexnum.Float](x *complexnum.List[T], inverse bool) error {
	n := x.Len()
	raw := x.Raw()
	buf := make([]complex128, n)
	for i := 0; i < n; i++ {
		buf[i] = complex(float64(raw[2*i]), float64(raw[2*i+1]))
	}

	var out []complex128
	var err error
	if inverse {
		conjIn := make([]complex128, n)
		for i, v := range buf {
			conjIn[i] = cmplxConj(v)
		}
		out, err = bluesteinForward(conjIn)
		if err != nil {
			return err
		}
		scale := complex(1/float64(n), 0)
		for i := range out {
			out[i] = cmplxConj(out[i]) * scale
		}
	} else {
		out, err = bluesteinForward(buf)
		if err != nil {
			return err
		}
	}

	for i := 0; i < n; i++ {
		raw[2*i] = T(real(out[i]))
		raw[2*i+1] = T(imag(out[i]))
	}
	return nil
}
