package fft

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"

	"audiograph/dsp/complexnum"
)

const tolerance = 1e-4

func closeEnough(a, b float64) bool { return math.Abs(a-b) < tolerance }

func TestBitReversePermutationN8(t *testing.T) {
	want := []int{0, 4, 2, 6, 1, 5, 3, 7}
	got := BitReversePermutation(8)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("perm[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestBitReversePermutationN16(t *testing.T) {
	want := []int{0, 8, 4, 12, 2, 10, 6, 14, 1, 9, 5, 13, 3, 11, 7, 15}
	got := BitReversePermutation(16)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("perm[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestStaticFFTRoundTrip(t *testing.T) {
	e, err := NewStaticFFT[float64](8)
	if err != nil {
		t.Fatalf("NewStaticFFT: %v", err)
	}
	signal := []float64{1.0, 0.75, 0.5, 0.25, 0, -0.25, -0.5, -0.75}
	x := complexnum.NewListFromReal[float64](signal)
	if err := e.Forward(x); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := e.Inverse(x); err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	for i, want := range signal {
		re, im, _ := x.Get(i)
		if !closeEnough(re, want) || !closeEnough(im, 0) {
			t.Errorf("round-trip[%d] = (%v, %v), want (%v, 0)", i, re, im, want)
		}
	}
}

func TestStaticFFTAgreesWithDFT(t *testing.T) {
	e, err := NewStaticFFT[float64](8)
	if err != nil {
		t.Fatalf("NewStaticFFT: %v", err)
	}
	signal := []float64{1.0, 0.75, 0.5, 0.25, 0, -0.25, -0.5, -0.75}
	fast := complexnum.NewListFromReal[float64](signal)
	slow := complexnum.NewListFromReal[float64](signal)

	if err := e.Forward(fast); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	reference := DFT(slow)

	for i := 0; i < 8; i++ {
		fre, fim, _ := fast.Get(i)
		rre, rim, _ := reference.Get(i)
		if !closeEnough(fre, rre) || !closeEnough(fim, rim) {
			t.Errorf("bin %d = (%v, %v), want (%v, %v)", i, fre, fim, rre, rim)
		}
	}
}

func TestParsevalMagnitudes(t *testing.T) {
	signal := []float64{1.0, 0.75, 0.5, 0.25, 0, -0.25, -0.5, -0.75}
	x := complexnum.NewListFromReal[float64](signal)
	e, _ := NewStaticFFT[float64](8)
	if err := e.Forward(x); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	want := []float64{1.0, 2.6131259, 1.4142136, 1.0823922, 1.0, 1.0823922, 1.4142136, 2.6131259}
	got := x.MagnitudeAlloc(complexnum.Linear)
	for i := range want {
		if !closeEnough(got[i], want[i]) {
			t.Errorf("magnitude[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPhaseValues(t *testing.T) {
	signal := []float64{1.0, 0.75, 0.5, 0.25, 0, -0.25, -0.5, -0.75}
	x := complexnum.NewListFromReal[float64](signal)
	e, _ := NewStaticFFT[float64](8)
	if err := e.Forward(x); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	want := []float64{0, -1.1780972, -0.7853982, -0.3926991, 0, 0.3926991, 0.7853982, 1.1780972}
	got := x.PhaseAlloc()
	for i := range want {
		if !closeEnough(got[i], want[i]) {
			t.Errorf("phase[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestConvolutionReference(t *testing.T) {
	a := complexnum.NewListFromReal[float64]([]float64{1.0, 0.75, 0.5, 0.25, 0, -0.25, -0.5, -0.75})
	b := complexnum.NewListFromReal[float64]([]float64{0.5, -0.5, 0.25, -0.25, 0, 0.75, -0.75, 1.0})

	want := []float64{1.375, 0.125, 0.375, -0.375, -0.625, 0.625, -1.125, 0.625}

	e := NewDynamicFFT[float64]()
	out, err := e.Convolve(a, b)
	if err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	for i, w := range want {
		re, _, _ := out.Get(i)
		if !closeEnough(re, w) {
			t.Errorf("convolution[%d] = %v, want %v", i, re, w)
		}
	}
}

func TestDynamicFFTNonPowerOfTwo(t *testing.T) {
	e := NewDynamicFFT[float64]()
	signal := []float64{1, 2, 3, 4, 5}
	x := complexnum.NewListFromReal[float64](signal)
	if err := e.Forward(x); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := e.Inverse(x); err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	for i, want := range signal {
		re, im, _ := x.Get(i)
		if !closeEnough(re, want) || !closeEnough(im, 0) {
			t.Errorf("round-trip[%d] = (%v, %v), want (%v, 0)", i, re, im, want)
		}
	}
}

func TestDynamicFFTNonPowerOfTwoAgreesWithDFT(t *testing.T) {
	signal := []float64{1, 2, 3, 4, 5, 6, 7}
	fast := complexnum.NewListFromReal[float64](signal)
	slow := complexnum.NewListFromReal[float64](signal)

	e := NewDynamicFFT[float64]()
	if err := e.Forward(fast); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	reference := DFT(slow)

	for i := 0; i < len(signal); i++ {
		fre, fim, _ := fast.Get(i)
		rre, rim, _ := reference.Get(i)
		if !closeEnough(fre, rre) || !closeEnough(fim, rim) {
			t.Errorf("bin %d = (%v, %v), want (%v, %v)", i, fre, fim, rre, rim)
		}
	}
}

func TestStaticFFTRejectsWrongLength(t *testing.T) {
	e, _ := NewStaticFFT[float64](8)
	x := complexnum.NewList[float64](4)
	if err := e.Forward(x); err != ErrInvalidInputSize {
		t.Errorf("Forward with wrong length error = %v, want ErrInvalidInputSize", err)
	}
}

func TestNewStaticFFTRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewStaticFFT[float64](6); err != ErrInvalidInputSize {
		t.Errorf("NewStaticFFT(6) error = %v, want ErrInvalidInputSize", err)
	}
}

func TestFrequencyBins(t *testing.T) {
	bins := FrequencyBins[float64](8, 8000)
	want := []float64{0, 1000, 2000, 3000}
	for i, w := range want {
		if !closeEnough(bins[i], w) {
			t.Errorf("bin[%d] = %v, want %v", i, bins[i], w)
		}
	}
}

func TestPlan32RoundTrip(t *testing.T) {
	p, err := NewPlan32(8)
	if err != nil {
		t.Fatalf("NewPlan32: %v", err)
	}
	src := []complex64{1, 2, 3, 4, 5, 6, 7, 8}
	freq := make([]complex64, 8)
	if err := p.Forward(freq, src); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	back := make([]complex64, 8)
	if err := p.Inverse(back, freq); err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	for i, want := range src {
		if !closeEnough(float64(real(back[i])), float64(real(want))) {
			t.Errorf("round-trip[%d] = %v, want %v", i, back[i], want)
		}
	}
}

func TestPlanReal32RoundTrip(t *testing.T) {
	p, err := NewPlanReal32(8)
	if err != nil {
		t.Fatalf("NewPlanReal32: %v", err)
	}
	src := []float32{1, 0.75, 0.5, 0.25, 0, -0.25, -0.5, -0.75}
	spectrum := make([]complex64, 5)
	if err := p.Forward(spectrum, src); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	back := make([]float32, 8)
	if err := p.Inverse(back, spectrum); err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	for i, want := range src {
		if !closeEnough(float64(back[i]), float64(want)) {
			t.Errorf("round-trip[%d] = %v, want %v", i, back[i], want)
		}
	}
}

func TestPlanReal32RejectsWrongBufferLength(t *testing.T) {
	p, _ := NewPlanReal32(8)
	if err := p.Forward(make([]complex64, 4), make([]float32, 8)); err != ErrBufferLength {
		t.Errorf("Forward with short dst error = %v, want ErrBufferLength", err)
	}
}

// TestPlan64MatchesGonumOracle cross-checks Plan64's forward transform
// against gonum's independent FFT implementation on small power-of-two
// sizes. This is the only place the CORE touches gonum; it never
// appears outside _test.go files.
func TestPlan64MatchesGonumOracle(t *testing.T) {
	for _, n := range []int{4, 8, 16, 32} {
		src := make([]complex128, n)
		for i := range src {
			src[i] = complex(math.Sin(float64(i)*0.37), math.Cos(float64(i)*0.21))
		}

		p, err := NewPlan64(n)
		if err != nil {
			t.Fatalf("NewPlan64(%d): %v", n, err)
		}
		got := make([]complex128, n)
		if err := p.Forward(got, src); err != nil {
			t.Fatalf("Forward(n=%d): %v", n, err)
		}

		oracle := fourier.NewCmplxFFT(n)
		want := oracle.Coefficients(nil, src)

		for i := range want {
			if !closeEnough(real(got[i]), real(want[i])) || !closeEnough(imag(got[i]), imag(want[i])) {
				t.Errorf("n=%d bin %d: got %v, want %v (gonum)", n, i, got[i], want[i])
			}
		}
	}
}
