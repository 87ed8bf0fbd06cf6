package fft

import "audiograph/dsp/complexnum"

// radix2Transform runs an in-place Cooley-Tukey decimation-in-time FFT on
// data (length must be a power of two) using a precomputed twiddle table
// of length len(data)/2. inverse scales the result by 1/N on completion.
func radix2Transform(data []complex128, twiddle []complex128, inverse bool) error {
	n := len(data)
	if n == 0 {
		return nil
	}
	if !isPowerOfTwo(n) {
		return ErrInvalidInputSize
	}
	bitReversePermuteInPlace(data)
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := n / size
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				w := twiddle[k*step]
				t := data[start+k+half] * w
				data[start+k+half] = data[start+k] - t
				data[start+k] = data[start+k] + t
			}
		}
	}
	if inverse {
		scale := complex(1/float64(n), 0)
		for i := range data {
			data[i] *= scale
		}
	}
	return nil
}

// radix2TransformList runs radix2Transform over a complexnum.List, carrying
// the list's stored precision through a complex128 working buffer.
func radix2TransformList[T complexnum.Float](x *complexnum.List[T], inverse bool) error {
	n := x.Len()
	raw := x.Raw()
	buf := make([]complex128, n)
	for i := 0; i < n; i++ {
		buf[i] = complex(float64(raw[2*i]), float64(raw[2*i+1]))
	}
	twiddle := buildTwiddleTable(n, inverse)
	if err := radix2Transform(buf, twiddle, inverse); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		raw[2*i] = T(real(buf[i]))
		raw[2*i+1] = T(imag(buf[i]))
	}
	return nil
}
