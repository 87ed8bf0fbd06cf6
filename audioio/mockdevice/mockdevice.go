// Package mockdevice provides an in-memory audioio.Device that can inject
// xruns and suspends on a fixed schedule, for exercising the callback
// loop's recovery paths without touching real hardware.
package mockdevice

import (
	"errors"
	"time"

	"audiograph/audioio"
)

// ErrResumeFailed is returned by Resume while the injected suspend is still
// in its failure window.
var ErrResumeFailed = errors.New("mockdevice: resume failed")

// Event schedules a transient fault to occur on a specific tick.
type Event struct {
	Tick int
	Kind EventKind
}

type EventKind int

const (
	EventXrun EventKind = iota
	EventSuspend
)

// Device is a ring-buffer-backed audioio.Device. Ticks increment on every
// Avail call, the loop's natural per-iteration pulse.
type Device struct {
	ring          []byte
	ringFrames    int
	bytesPerFrame int

	state audioio.State
	tick  int

	events         []Event
	suspendFailFor int // remaining failed Resume calls before success

	writePos int
	avail    int
}

// New builds a mock device with a ring buffer holding ringFrames frames of
// bytesPerFrame bytes each, and the given fault schedule.
func New(ringFrames, bytesPerFrame int, events []Event) *Device {
	return &Device{
		ring:          make([]byte, ringFrames*bytesPerFrame),
		ringFrames:    ringFrames,
		bytesPerFrame: bytesPerFrame,
		state:         audioio.StateIdle,
		events:        events,
	}
}

func (d *Device) State() audioio.State { return d.state }

func (d *Device) nextEvent() *Event {
	for i := range d.events {
		if d.events[i].Tick == d.tick {
			return &d.events[i]
		}
	}
	return nil
}

func (d *Device) Avail() int {
	d.tick++
	if ev := d.nextEvent(); ev != nil {
		switch ev.Kind {
		case EventXrun:
			d.state = audioio.StateXrun
			return -1
		case EventSuspend:
			d.state = audioio.StateSuspended
			d.suspendFailFor = 2
			return -1
		}
	}
	d.avail += d.ringFrames / 4
	if d.avail > d.ringFrames {
		d.avail = d.ringFrames
	}
	return d.avail
}

func (d *Device) Wait(timeout time.Duration) error {
	d.avail = d.ringFrames
	return nil
}

func (d *Device) Start() error {
	d.state = audioio.StateRunning
	return nil
}

func (d *Device) Prepare(ctx audioio.PrepareContext) error {
	d.state = audioio.StateIdle
	d.avail = 0
	d.writePos = 0
	return nil
}

func (d *Device) Resume() (bool, error) {
	if d.suspendFailFor > 0 {
		d.suspendFailFor--
		return false, ErrResumeFailed
	}
	d.state = audioio.StateRunning
	return true, nil
}

func (d *Device) MMapBegin(frames int) ([]audioio.MMapArea, int, int, error) {
	if frames > d.avail {
		frames = d.avail
	}
	if frames > d.ringFrames-d.writePos {
		frames = d.ringFrames - d.writePos
	}
	data := d.ring[d.writePos*d.bytesPerFrame : (d.writePos+frames)*d.bytesPerFrame]
	return []audioio.MMapArea{{Data: data, Offset: d.writePos}}, d.writePos, frames, nil
}

func (d *Device) MMapCommit(offset, frames int) (int, error) {
	d.writePos = (offset + frames) % d.ringFrames
	d.avail -= frames
	if d.avail < 0 {
		d.avail = 0
	}
	return frames, nil
}

func (d *Device) Close() error { return nil }
