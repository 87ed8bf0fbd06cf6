package view

import "testing"

func TestChannelViewInterleavedIndexing(t *testing.T) {
	// 2 channels, 3 frames, interleaved: L0 R0 L1 R1 L2 R2
	buf := make([]float32, 6)
	left := NewChannelView(buf, 0, 2, 3, Interleaved)
	right := NewChannelView(buf, 1, 2, 3, Interleaved)

	left.Set(0, 1)
	left.Set(1, 2)
	left.Set(2, 3)
	right.Set(0, -1)
	right.Set(1, -2)
	right.Set(2, -3)

	want := []float32{1, -1, 2, -2, 3, -3}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], w)
		}
	}
}

func TestChannelViewPlanarIndexing(t *testing.T) {
	// 2 channels, 3 frames, planar: L0 L1 L2 R0 R1 R2
	buf := make([]float32, 6)
	left := NewChannelView(buf, 0, 2, 3, Planar)
	right := NewChannelView(buf, 1, 2, 3, Planar)

	left.Set(0, 1)
	left.Set(1, 2)
	left.Set(2, 3)
	right.Set(0, -1)
	right.Set(1, -2)
	right.Set(2, -3)

	want := []float32{1, 2, 3, -1, -2, -3}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], w)
		}
	}
	if right.At(2) != -3 {
		t.Errorf("right.At(2) = %v, want -3", right.At(2))
	}
}

func TestUniformChannelViewsGetViewRoundTrip(t *testing.T) {
	buf := make([]float32, 4*2)
	views := NewUniformChannelViews(buf, 2, 4, Interleaved)
	if views.NChannels() != 2 {
		t.Fatalf("NChannels() = %d, want 2", views.NChannels())
	}
	views.GetView(0).Set(0, 9)
	views.GetView(1).Set(0, -9)
	if buf[0] != 9 || buf[1] != -9 {
		t.Errorf("buf[0:2] = %v, want [9 -9]", buf[0:2])
	}
}

func TestUnmanagedChannelView(t *testing.T) {
	samples := []float32{1, 2, 3}
	v := NewUnmanagedChannelView(samples)
	if v.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", v.Len())
	}
	v.Set(1, 42)
	if samples[1] != 42 {
		t.Errorf("samples[1] = %v, want 42", samples[1])
	}
}
