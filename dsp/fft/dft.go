package fft

import (
	"math"

	"audiograph/dsp/complexnum"
)

// DFT computes the direct O(N^2) discrete Fourier transform of x. It exists
// as a correctness oracle for the fast transforms, not for production use.
func DFT[T complexnum.Float](x *complexnum.List[T]) *complexnum.List[T] {
	n := x.Len()
	out := complexnum.NewList[T](n)
	raw := x.Raw()
	oraw := out.Raw()
	for k := 0; k < n; k++ {
		var sumRe, sumIm float64
		for i := 0; i < n; i++ {
			angle := -2 * math.Pi * float64(k*i) / float64(n)
			c, s := math.Cos(angle), math.Sin(angle)
			re := float64(raw[2*i])
			im := float64(raw[2*i+1])
			sumRe += re*c - im*s
			sumIm += re*s + im*c
		}
		oraw[2*k] = T(sumRe)
		oraw[2*k+1] = T(sumIm)
	}
	return out
}
