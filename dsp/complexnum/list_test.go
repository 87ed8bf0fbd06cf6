package complexnum

import (
	"math"
	"testing"
)

func TestListGetSetRoundTrip(t *testing.T) {
	l := NewList[float64](4)
	for i := 0; i < 4; i++ {
		if err := l.Set(i, float64(i), float64(-i)); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		re, im, err := l.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if re != float64(i) || im != float64(-i) {
			t.Errorf("Get(%d) = (%v, %v), want (%v, %v)", i, re, im, i, -i)
		}
	}
}

func TestListOutOfBounds(t *testing.T) {
	l := NewList[float64](2)
	if _, _, err := l.Get(2); err != ErrOutOfBounds {
		t.Errorf("Get(2) error = %v, want ErrOutOfBounds", err)
	}
	if err := l.Set(-1, 0, 0); err != ErrOutOfBounds {
		t.Errorf("Set(-1) error = %v, want ErrOutOfBounds", err)
	}
}

func TestListMagnitudeAndPhase(t *testing.T) {
	l := NewList[float64](2)
	_ = l.Set(0, 3, 4)
	_ = l.Set(1, 0, 0)

	mag := l.MagnitudeAlloc(Linear)
	if math.Abs(mag[0]-5.0) > 1e-9 {
		t.Errorf("magnitude[0] = %v, want 5", mag[0])
	}
	if mag[1] != 0 {
		t.Errorf("magnitude[1] = %v, want 0", mag[1])
	}

	phase := l.PhaseAlloc()
	want := math.Atan2(4, 3)
	if math.Abs(phase[0]-want) > 1e-9 {
		t.Errorf("phase[0] = %v, want %v", phase[0], want)
	}
}

func TestListNormalize(t *testing.T) {
	l := NewList[float64](4)
	for i := 0; i < 4; i++ {
		_ = l.Set(i, 8, 4)
	}
	l.Normalize()
	for i := 0; i < 4; i++ {
		re, im, _ := l.Get(i)
		if math.Abs(re-2) > 1e-9 || math.Abs(im-1) > 1e-9 {
			t.Errorf("Normalize()[%d] = (%v, %v), want (2, 1)", i, re, im)
		}
	}
}

func TestNewListFromReal(t *testing.T) {
	l := NewListFromReal[float32]([]float32{1, 2, 3})
	for i, want := range []float32{1, 2, 3} {
		re, im, _ := l.Get(i)
		if re != want || im != 0 {
			t.Errorf("Get(%d) = (%v, %v), want (%v, 0)", i, re, im, want)
		}
	}
}
