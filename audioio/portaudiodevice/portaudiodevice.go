// Package portaudiodevice adapts PortAudio's callback-driven stream model
// onto the audioio.Device mmap_begin/mmap_commit shape via an internal ring
// buffer, giving the engine a second, non-cgo driver binding on platforms
// without ALSA mmap access.
package portaudiodevice

import (
	"errors"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"audiograph/audioio"
)

var ErrNotPrepared = errors.New("portaudiodevice: Prepare must be called before Start")

// Device wraps a portaudio.Stream, buffering its callback-delivered frames
// into a ring that the audioio.Loop can drain via MMapBegin/MMapCommit.
type Device struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	pctx   audioio.PrepareContext

	ring       []byte
	ringFrames int
	readPos    int
	writePos   int
	filled     int

	state   audioio.State
	newData chan struct{}
}

// New creates an unprepared device. Call Prepare before Start.
func New() *Device {
	return &Device{state: audioio.StateIdle, newData: make(chan struct{}, 1)}
}

func (d *Device) State() audioio.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Avail reports free space in the ring, i.e. how many frames the loop may
// write before blocking; playback draining the ring is what frees space.
func (d *Device) Avail() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ringFrames - d.filled
}

func (d *Device) Wait(timeout time.Duration) error {
	select {
	case <-d.newData:
		return nil
	case <-time.After(timeout):
		return nil
	}
}

func (d *Device) Prepare(ctx audioio.PrepareContext) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream != nil {
		_ = d.stream.Close()
		d.stream = nil
	}

	d.pctx = ctx
	d.ringFrames = ctx.BlockSize * 8
	d.ring = make([]byte, d.ringFrames*ctx.NChannels*ctx.ByteRate)
	d.readPos, d.writePos, d.filled = 0, 0, 0
	d.state = audioio.StateIdle

	params := portaudio.HighLatencyParameters(nil, nil)
	params.Output.Channels = ctx.NChannels
	params.SampleRate = ctx.SampleRate
	params.FramesPerBuffer = ctx.BlockSize

	stream, err := portaudio.OpenStream(params, d.streamCallback)
	if err != nil {
		return err
	}
	d.stream = stream
	return nil
}

// streamCallback is PortAudio's real-time callback: it drains whatever the
// loop has already committed into the ring (via MMapBegin/MMapCommit) and
// hands it to the hardware, zero-filling any shortfall rather than
// blocking.
func (d *Device) streamCallback(out []int32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bytesPerFrame := d.pctx.NChannels * d.pctx.ByteRate
	samplesPerFrame := d.pctx.NChannels
	framesWanted := len(out) / samplesPerFrame
	framesAvail := framesWanted
	if framesAvail > d.filled {
		framesAvail = d.filled
	}

	for f := 0; f < framesAvail; f++ {
		frameStart := ((d.readPos + f) % d.ringFrames) * bytesPerFrame
		for c := 0; c < samplesPerFrame; c++ {
			sampleStart := frameStart + c*d.pctx.ByteRate
			out[f*samplesPerFrame+c] = int32FromBytes(d.ring[sampleStart : sampleStart+d.pctx.ByteRate])
		}
	}
	for f := framesAvail; f < framesWanted; f++ {
		for c := 0; c < samplesPerFrame; c++ {
			out[f*samplesPerFrame+c] = 0
		}
	}

	d.readPos = (d.readPos + framesAvail) % d.ringFrames
	d.filled -= framesAvail

	select {
	case d.newData <- struct{}{}:
	default:
	}
}

// int32FromBytes reads one little-endian sample of byteRate bytes,
// widened to int32; the ring always stores samples at the device's
// configured byte rate.
func int32FromBytes(b []byte) int32 {
	var v int32
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | int32(b[i])
	}
	return v
}

func (d *Device) Start() error {
	d.mu.Lock()
	stream := d.stream
	d.mu.Unlock()

	if stream == nil {
		return ErrNotPrepared
	}
	if err := stream.Start(); err != nil {
		return err
	}

	d.mu.Lock()
	d.state = audioio.StateRunning
	d.mu.Unlock()
	return nil
}

func (d *Device) Resume() (bool, error) {
	d.mu.Lock()
	stream := d.stream
	d.mu.Unlock()

	if stream == nil {
		return true, ErrNotPrepared
	}
	if err := stream.Start(); err != nil {
		return true, err
	}
	d.mu.Lock()
	d.state = audioio.StateRunning
	d.mu.Unlock()
	return false, nil
}

// MMapBegin grants a writable area starting at writePos, the producer
// side of the ring; the consumer side is drained by streamCallback.
func (d *Device) MMapBegin(frames int) ([]audioio.MMapArea, int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bytesPerFrame := d.pctx.NChannels * d.pctx.ByteRate
	free := d.ringFrames - d.filled
	if frames > free {
		frames = free
	}
	if frames > d.ringFrames-d.writePos {
		frames = d.ringFrames - d.writePos
	}
	start := d.writePos * bytesPerFrame
	end := (d.writePos + frames) * bytesPerFrame
	return []audioio.MMapArea{{Data: d.ring[start:end], Offset: d.writePos}}, d.writePos, frames, nil
}

func (d *Device) MMapCommit(offset, frames int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writePos = (offset + frames) % d.ringFrames
	d.filled += frames
	if d.filled > d.ringFrames {
		d.filled = d.ringFrames
	}
	return frames, nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return nil
	}
	err := d.stream.Close()
	d.stream = nil
	return err
}
