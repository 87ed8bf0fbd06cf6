package scheduler

import (
	"context"
	"math"
	"testing"

	"audiograph/audio/view"
	"audiograph/dsp/complexnum"
	"audiograph/dsp/fft"
	"audiograph/graph"
)

// sineTestNode and gainTestNode are minimal graph.Node implementations
// used to exercise the scheduler without depending on the nodes package
// (which itself depends on scheduler's sibling packages), keeping this
// test self-contained.

type sineTestNode struct {
	status     graph.Status
	freq, amp  float64
	phase      float64
	sampleRate float64
}

func (n *sineTestNode) Prepare(ctx graph.PrepareContext) error {
	n.sampleRate = ctx.SampleRate
	return nil
}

func (n *sineTestNode) Process(ctx graph.ProcessContext) error {
	for c := 0; c < ctx.View.NChannels(); c++ {
		v := ctx.View.GetView(c)
		phase := n.phase
		for f := 0; f < v.Len(); f++ {
			v.Set(f, float32(n.amp*math.Sin(phase)))
			phase += 2 * math.Pi * n.freq / n.sampleRate
		}
	}
	n.phase += float64(ctx.View.GetView(0).Len()) * 2 * math.Pi * n.freq / n.sampleRate
	return nil
}

func (n *sineTestNode) Status() *graph.Status { return &n.status }

type gainTestNode struct {
	status graph.Status
	gain   float32
}

func (n *gainTestNode) Prepare(ctx graph.PrepareContext) error { return nil }

func (n *gainTestNode) Process(ctx graph.ProcessContext) error {
	for c := 0; c < ctx.View.NChannels(); c++ {
		v := ctx.View.GetView(c)
		for f := 0; f < v.Len(); f++ {
			v.Set(f, v.At(f)*n.gain)
		}
	}
	return nil
}

func (n *gainTestNode) Status() *graph.Status { return &n.status }

func TestSchedulerSineGainTick(t *testing.T) {
	const (
		sampleRate = 44100.0
		blockSize  = 256
		freq       = 540.0
		gain       = 0.01
	)
	s := NewScheduler()
	sine := &sineTestNode{freq: freq, amp: 1.0}
	gainNode := &gainTestNode{gain: gain}
	a := s.Graph().AddNode(sine)
	b := s.Graph().AddNode(gainNode)
	if err := s.Graph().Connect(a, b); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	pctx := graph.PrepareContext{
		NChannels:  2,
		BlockSize:  blockSize,
		SampleRate: sampleRate,
		Access:     view.Interleaved,
	}
	if err := s.Prepare(context.Background(), pctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := s.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	out, err := s.OutputBuffer()
	if err != nil {
		t.Fatalf("OutputBuffer: %v", err)
	}

	left := out.GetView(0)
	samples := make([]float64, blockSize)
	peak := float32(0)
	for f := 0; f < blockSize; f++ {
		v := left.At(f)
		samples[f] = float64(v)
		if abs32(v) > peak {
			peak = abs32(v)
		}
	}
	if peak > gain+1e-6 {
		t.Errorf("peak = %v, want <= %v", peak, gain)
	}

	x := complexnum.NewListFromReal[float64](samples)
	spectrum := fft.DFT(x)
	mags := spectrum.MagnitudeAlloc(complexnum.Linear)
	peakBin, peakMag := 0, 0.0
	for i := 0; i < blockSize/2; i++ {
		if mags[i] > peakMag {
			peakBin, peakMag = i, mags[i]
		}
	}
	wantBin := int(math.Round(freq * blockSize / sampleRate))
	if peakBin != wantBin {
		t.Errorf("peak bin = %d, want %d", peakBin, wantBin)
	}
}

func TestSchedulerDeterministicAcrossTicks(t *testing.T) {
	build := func() *Scheduler {
		s := NewScheduler()
		sine := &sineTestNode{freq: 440, amp: 1.0}
		a := s.Graph().AddNode(sine)
		_ = a
		pctx := graph.PrepareContext{NChannels: 1, BlockSize: 32, SampleRate: 44100, Access: view.Interleaved}
		if err := s.Prepare(context.Background(), pctx); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		return s
	}

	s1 := build()
	s2 := build()
	for i := 0; i < 5; i++ {
		if err := s1.Process(); err != nil {
			t.Fatalf("Process: %v", err)
		}
		if _, err := s1.OutputBuffer(); err != nil {
			t.Fatalf("OutputBuffer: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		if err := s2.Process(); err != nil {
			t.Fatalf("Process: %v", err)
		}
		if _, err := s2.OutputBuffer(); err != nil {
			t.Fatalf("OutputBuffer: %v", err)
		}
	}

	out1, _ := s1.OutputBuffer()
	if err := s1.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	final1, _ := s1.OutputBuffer()

	out2, _ := s2.OutputBuffer()
	if err := s2.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	final2, _ := s2.OutputBuffer()

	_ = out1
	_ = out2
	v1 := final1.GetView(0)
	v2 := final2.GetView(0)
	for f := 0; f < v1.Len(); f++ {
		if v1.At(f) != v2.At(f) {
			t.Errorf("frame %d diverged: %v vs %v", f, v1.At(f), v2.At(f))
		}
	}
}

func TestSchedulerRejectsProcessBeforePrepare(t *testing.T) {
	s := NewScheduler()
	if err := s.Process(); err != ErrNotPrepared {
		t.Errorf("error = %v, want ErrNotPrepared", err)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
