// Package audioio implements the MMAP-style audio callback loop: a
// bounded-latency producer that pulls blocks from a user callback and
// delivers them to a device, recovering from underruns and suspends without
// allocating on the hot path.
package audioio

import (
	"context"
	"errors"
	"time"

	"audiograph/audio/view"
)

// State is a device's reported transport state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateXrun
	StateSuspended
)

var (
	// ErrTimeout is returned when a suspended device fails to resume
	// within MaxResumeRetries attempts.
	ErrTimeout = errors.New("audioio: resume timeout")
	// ErrDeviceStart is returned when Start fails.
	ErrDeviceStart = errors.New("audioio: device start failed")
	// ErrUnexpectedState is returned when the device reports a state
	// code outside {idle, running, xrun, suspended}.
	ErrUnexpectedState = errors.New("audioio: unexpected device state")
)

// MaxResumeRetries bounds the exponential-backoff resume loop after a
// suspend. initialBackoff doubles on every attempt.
const (
	MaxResumeRetries = 50
	initialBackoff   = 100 * time.Millisecond
)

// PrepareContext describes the block shape a Device must be configured for.
type PrepareContext struct {
	NChannels  int
	BlockSize  int
	SampleRate float64
	Access     view.Layout
	ByteRate   int // bytes per sample, e.g. 2 for 16-bit PCM
}

// MMapArea is one contiguous region of a device's MMAP buffer: Data holds
// its bytes and Offset is its start in frames; Device.MMapBegin may return
// more than one area when the underlying ring wraps.
type MMapArea struct {
	Data   []byte
	Offset int
}

// Device abstracts a memory-mapped audio transport. Implementations must be
// safe to drive from a single goroutine only; none of these methods are
// expected to be called concurrently.
type Device interface {
	State() State
	// Avail returns frames available for transfer, or a negative value
	// to signal an xrun.
	Avail() int
	// Wait blocks until frames become available or timeout elapses.
	// Returns an error if the wait itself fails (not a timeout).
	Wait(timeout time.Duration) error
	Start() error
	Prepare(ctx PrepareContext) error
	// Resume attempts to bring a suspended device back to running.
	// needsPrepare reports whether the caller must call Prepare again.
	Resume() (needsPrepare bool, err error)
	// MMapBegin requests access to up to frames of MMAP area; the
	// device may grant fewer. offset is in frames from the start of
	// the device's internal ring.
	MMapBegin(frames int) (areas []MMapArea, offset int, granted int, err error)
	// MMapCommit commits granted frames written starting at offset.
	// Returns the number of frames actually committed; a negative
	// value signals an xrun.
	MMapCommit(offset, frames int) (committed int, err error)
	Close() error
}

// AudioData is the byte-level view of one MMAP area handed to the user
// callback.
type AudioData struct {
	Buffer     []byte
	Channels   int
	SampleRate float64
}

// Frames returns the number of complete sample frames in Buffer, given
// byteRate bytes per sample.
func (a AudioData) Frames(byteRate int) int {
	if a.Channels == 0 || byteRate == 0 {
		return 0
	}
	return len(a.Buffer) / (a.Channels * byteRate)
}

// CallbackContext carries the loop's per-tick bookkeeping into the user
// callback; it currently exposes nothing beyond the enclosing Context but
// exists so the callback signature can grow without breaking callers.
type CallbackContext struct {
	Ctx context.Context
}

// Callback fills audio with the next block of samples.
type Callback func(ctx *CallbackContext, audio AudioData)
