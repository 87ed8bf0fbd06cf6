package sampleformat

import "testing"

func TestRoundTripAllDepths(t *testing.T) {
	cases := []Format{
		{Kind: Int, BitDepth: 8, ByteOrder: LittleEndian},
		{Kind: Int, BitDepth: 16, ByteOrder: LittleEndian},
		{Kind: Int, BitDepth: 16, ByteOrder: BigEndian},
		{Kind: Int, BitDepth: 20, ByteOrder: LittleEndian},
		{Kind: Int, BitDepth: 24, ByteOrder: LittleEndian},
		{Kind: Int, BitDepth: 24, ByteOrder: BigEndian},
		{Kind: Int, BitDepth: 32, ByteOrder: LittleEndian},
		{Kind: Float, BitDepth: 32, ByteOrder: LittleEndian},
		{Kind: Float, BitDepth: 64, ByteOrder: BigEndian},
	}

	samples := []float32{0, 0.5, -0.5, 0.999, -0.999}

	for _, f := range cases {
		buf := make([]byte, f.ByteRate())
		for _, s := range samples {
			if err := Encode(f, buf, s); err != nil {
				t.Fatalf("Encode(%+v): %v", f, err)
			}
			got, err := Decode(f, buf)
			if err != nil {
				t.Fatalf("Decode(%+v): %v", f, err)
			}
			tolerance := float32(0.01)
			if f.BitDepth >= 24 {
				tolerance = 1e-4
			} else if f.BitDepth == 16 {
				tolerance = 1e-3
			} else if f.BitDepth == 8 {
				tolerance = 0.02
			}
			diff := got - s
			if diff < 0 {
				diff = -diff
			}
			if diff > tolerance {
				t.Errorf("%+v: round trip %v -> %v, diff %v > %v", f, s, got, diff, tolerance)
			}
		}
	}
}

func TestByteRate(t *testing.T) {
	cases := map[int]int{8: 1, 16: 2, 20: 3, 24: 3, 32: 4}
	for depth, want := range cases {
		f := Format{Kind: Int, BitDepth: depth}
		if got := f.ByteRate(); got != want {
			t.Errorf("ByteRate(%d) = %d, want %d", depth, got, want)
		}
	}
}

func TestValidateRejectsUnsupportedDepth(t *testing.T) {
	f := Format{Kind: Int, BitDepth: 17}
	if err := f.Validate(); err != ErrUnsupportedBitDepth {
		t.Errorf("Validate() = %v, want ErrUnsupportedBitDepth", err)
	}
}
