package audioio_test

import (
	"context"
	"testing"
	"time"

	"audiograph/audio/view"
	"audiograph/audioio"
	"audiograph/audioio/mockdevice"
)

func prepareContext() audioio.PrepareContext {
	return audioio.PrepareContext{
		NChannels:  2,
		BlockSize:  256,
		SampleRate: 44100,
		Access:     view.Interleaved,
		ByteRate:   2,
	}
}

// TestCallbackRecoversFromXrun injects an xrun on the third tick and confirms
// the loop keeps making progress rather than getting stuck.
func TestCallbackRecoversFromXrun(t *testing.T) {
	events := []mockdevice.Event{{Tick: 3, Kind: mockdevice.EventXrun}}
	dev := mockdevice.New(4096, 2, events)
	pctx := prepareContext()
	if err := dev.Prepare(pctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ticks := 0
	cb := func(ctx *audioio.CallbackContext, audio audioio.AudioData) {
		ticks++
	}

	loop := audioio.NewLoop(dev, pctx, cb, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not return within timeout")
	}

	if ticks == 0 {
		t.Error("expected at least one callback invocation despite the injected xrun")
	}
}

// TestCallbackRecoversFromSuspend drives the loop past an injected suspend
// and checks it either resumes within MaxResumeRetries or surfaces
// ErrTimeout, matching the bounded-recovery property.
func TestCallbackRecoversFromSuspend(t *testing.T) {
	events := []mockdevice.Event{{Tick: 2, Kind: mockdevice.EventSuspend}}
	dev := mockdevice.New(4096, 2, events)
	pctx := prepareContext()
	if err := dev.Prepare(pctx); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	cb := func(ctx *audioio.CallbackContext, audio audioio.AudioData) {}
	loop := audioio.NewLoop(dev, pctx, cb, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := loop.Run(ctx)
	if err != nil && err != audioio.ErrTimeout {
		t.Fatalf("Run: unexpected error %v", err)
	}
}
