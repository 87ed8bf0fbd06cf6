package fft

import "audiograph/dsp/complexnum"

// Plan32 is a complex-to-complex FFT plan over complex64 samples at a
// fixed, power-of-two size. It matches the construction/call shape the
// convolution engines were originally wired against, so that code built on
// top of it needed no restructuring, only a swapped import.
type Plan32 struct {
	engine *StaticFFT[float32]
	n      int
}

// NewPlan32 builds a complex-to-complex plan for n (power of two) samples.
func NewPlan32(n int) (*Plan32, error) {
	e, err := NewStaticFFT[float32](n)
	if err != nil {
		return nil, err
	}
	return &Plan32{engine: e, n: n}, nil
}

// Forward computes dst = FFT(src). src and dst may alias.
func (p *Plan32) Forward(dst, src []complex64) error { return p.transform(dst, src, false) }

// Inverse computes dst = IFFT(src), normalized by 1/n. src and dst may alias.
func (p *Plan32) Inverse(dst, src []complex64) error { return p.transform(dst, src, true) }

func (p *Plan32) transform(dst, src []complex64, inverse bool) error {
	if len(src) != p.n || len(dst) != p.n {
		return ErrBufferLength
	}
	list := complexnum.NewList[float32](p.n)
	raw := list.Raw()
	for i, c := range src {
		raw[2*i] = real(c)
		raw[2*i+1] = imag(c)
	}
	var err error
	if inverse {
		err = p.engine.Inverse(list)
	} else {
		err = p.engine.Forward(list)
	}
	if err != nil {
		return err
	}
	for i := 0; i < p.n; i++ {
		dst[i] = complex(raw[2*i], raw[2*i+1])
	}
	return nil
}

// Plan64 is the complex128 counterpart of Plan32.
type Plan64 struct {
	engine *StaticFFT[float64]
	n      int
}

// NewPlan64 builds a complex-to-complex plan for n (power of two) samples.
func NewPlan64(n int) (*Plan64, error) {
	e, err := NewStaticFFT[float64](n)
	if err != nil {
		return nil, err
	}
	return &Plan64{engine: e, n: n}, nil
}

// Forward computes dst = FFT(src). src and dst may alias.
func (p *Plan64) Forward(dst, src []complex128) error { return p.transform(dst, src, false) }

// Inverse computes dst = IFFT(src), normalized by 1/n. src and dst may alias.
func (p *Plan64) Inverse(dst, src []complex128) error { return p.transform(dst, src, true) }

func (p *Plan64) transform(dst, src []complex128, inverse bool) error {
	if len(src) != p.n || len(dst) != p.n {
		return ErrBufferLength
	}
	list := complexnum.NewList[float64](p.n)
	raw := list.Raw()
	for i, c := range src {
		raw[2*i] = real(c)
		raw[2*i+1] = imag(c)
	}
	var err error
	if inverse {
		err = p.engine.Inverse(list)
	} else {
		err = p.engine.Forward(list)
	}
	if err != nil {
		return err
	}
	for i := 0; i < p.n; i++ {
		dst[i] = complex(raw[2*i], raw[2*i+1])
	}
	return nil
}

// PlanReal32 is a real-to-complex FFT plan over float32 samples at a fixed,
// power-of-two size n. Forward produces the n/2+1 non-redundant spectral
// bins of a real signal; Inverse reconstructs the n real samples from
// those bins via conjugate symmetry.
type PlanReal32 struct {
	engine *StaticFFT[float32]
	n      int
	half   int
}

// NewPlanReal32 builds a real-to-complex plan for n (power of two) samples.
func NewPlanReal32(n int) (*PlanReal32, error) {
	e, err := NewStaticFFT[float32](n)
	if err != nil {
		return nil, err
	}
	return &PlanReal32{engine: e, n: n, half: n/2 + 1}, nil
}

// Forward computes the n/2+1 spectral bins of the real signal src into dst.
func (p *PlanReal32) Forward(dst []complex64, src []float32) error {
	if len(src) != p.n || len(dst) != p.half {
		return ErrBufferLength
	}
	list := complexnum.NewListFromReal[float32](src)
	if err := p.engine.Forward(list); err != nil {
		return err
	}
	raw := list.Raw()
	for i := 0; i < p.half; i++ {
		dst[i] = complex(raw[2*i], raw[2*i+1])
	}
	return nil
}

// Inverse reconstructs n real samples from the n/2+1 spectral bins in src,
// mirroring the upper half via conjugate symmetry before the inverse
// transform.
func (p *PlanReal32) Inverse(dst []float32, src []complex64) error {
	if len(dst) != p.n || len(src) != p.half {
		return ErrBufferLength
	}
	list := complexnum.NewList[float32](p.n)
	raw := list.Raw()
	for i := 0; i < p.half; i++ {
		raw[2*i] = real(src[i])
		raw[2*i+1] = imag(src[i])
	}
	for i := p.half; i < p.n; i++ {
		mirror := p.n - i
		raw[2*i] = real(src[mirror])
		raw[2*i+1] = -imag(src[mirror])
	}
	if err := p.engine.Inverse(list); err != nil {
		return err
	}
	for i := 0; i < p.n; i++ {
		dst[i] = raw[2*i]
	}
	return nil
}

// PlanReal64 is the float64/complex128 counterpart of PlanReal32.
type PlanReal64 struct {
	engine *StaticFFT[float64]
	n      int
	half   int
}

// NewPlanReal64 builds a real-to-complex plan for n (power of two) samples.
func NewPlanReal64(n int) (*PlanReal64, error) {
	e, err := NewStaticFFT[float64](n)
	if err != nil {
		return nil, err
	}
	return &PlanReal64{engine: e, n: n, half: n/2 + 1}, nil
}

// Forward computes the n/2+1 spectral bins of the real signal src into dst.
func (p *PlanReal64) Forward(dst []complex128, src []float64) error {
	if len(src) != p.n || len(dst) != p.half {
		return ErrBufferLength
	}
	list := complexnum.NewListFromReal[float64](src)
	if err := p.engine.Forward(list); err != nil {
		return err
	}
	raw := list.Raw()
	for i := 0; i < p.half; i++ {
		dst[i] = complex(raw[2*i], raw[2*i+1])
	}
	return nil
}

// Inverse reconstructs n real samples from the n/2+1 spectral bins in src.
func (p *PlanReal64) Inverse(dst []float64, src []complex128) error {
	if len(dst) != p.n || len(src) != p.half {
		return ErrBufferLength
	}
	list := complexnum.NewList[float64](p.n)
	raw := list.Raw()
	for i := 0; i < p.half; i++ {
		raw[2*i] = real(src[i])
		raw[2*i+1] = imag(src[i])
	}
	for i := p.half; i < p.n; i++ {
		mirror := p.n - i
		raw[2*i] = real(src[mirror])
		raw[2*i+1] = -imag(src[mirror])
	}
	if err := p.engine.Inverse(list); err != nil {
		return err
	}
	for i := 0; i < p.n; i++ {
		dst[i] = raw[2*i]
	}
	return nil
}
