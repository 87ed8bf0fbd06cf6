// Package alsadevice binds the audioio.Device interface directly to
// libasound's mmap transport: snd_pcm_avail_update, snd_pcm_wait,
// snd_pcm_mmap_begin, and snd_pcm_mmap_commit.
package alsadevice

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"audiograph/audioio"
)

var (
	ErrOpenFailed    = errors.New("alsadevice: snd_pcm_open failed")
	ErrHWParamsFailed = errors.New("alsadevice: hw params setup failed")
)

// Device wraps a single ALSA PCM handle opened for mmap interleaved
// playback.
type Device struct {
	pcm      *C.snd_pcm_t
	deviceID string
	pctx     audioio.PrepareContext
}

// New opens deviceID (e.g. "default" or "hw:0,0") but does not configure it;
// call Prepare to set the format.
func New(deviceID string) (*Device, error) {
	d := &Device{deviceID: deviceID}
	cname := C.CString(deviceID)
	defer C.free(unsafe.Pointer(cname))

	var pcm *C.snd_pcm_t
	ret := C.snd_pcm_open(&pcm, cname, C.SND_PCM_STREAM_PLAYBACK, 0)
	if ret < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOpenFailed, C.GoString(C.snd_strerror(ret)))
	}
	d.pcm = pcm
	return d, nil
}

func (d *Device) State() audioio.State {
	switch C.snd_pcm_state(d.pcm) {
	case C.SND_PCM_STATE_XRUN:
		return audioio.StateXrun
	case C.SND_PCM_STATE_SUSPENDED:
		return audioio.StateSuspended
	case C.SND_PCM_STATE_RUNNING, C.SND_PCM_STATE_PREPARED, C.SND_PCM_STATE_DRAINING:
		return audioio.StateRunning
	default:
		return audioio.StateIdle
	}
}

func (d *Device) Avail() int {
	n := C.snd_pcm_avail_update(d.pcm)
	return int(n)
}

func (d *Device) Wait(timeout time.Duration) error {
	ret := C.snd_pcm_wait(d.pcm, C.int(timeout.Milliseconds()))
	if ret < 0 {
		return fmt.Errorf("alsadevice: snd_pcm_wait: %s", C.GoString(C.snd_strerror(C.int(ret))))
	}
	return nil
}

func (d *Device) Start() error {
	ret := C.snd_pcm_start(d.pcm)
	if ret < 0 {
		return fmt.Errorf("alsadevice: snd_pcm_start: %s", C.GoString(C.snd_strerror(ret)))
	}
	return nil
}

func (d *Device) Prepare(ctx audioio.PrepareContext) error {
	d.pctx = ctx

	ret := C.snd_pcm_set_params(
		d.pcm,
		C.SND_PCM_FORMAT_FLOAT_LE,
		C.SND_PCM_ACCESS_MMAP_INTERLEAVED,
		C.unsigned(ctx.NChannels),
		C.unsigned(ctx.SampleRate),
		1, // allow software resampling
		C.unsigned(50000),
	)
	if ret < 0 {
		return fmt.Errorf("%w: %s", ErrHWParamsFailed, C.GoString(C.snd_strerror(ret)))
	}
	return nil
}

func (d *Device) Resume() (bool, error) {
	ret := C.snd_pcm_resume(d.pcm)
	if ret == 0 {
		return false, nil
	}
	// -EAGAIN means try again later; any other error requires a prepare.
	if ret == -C.EAGAIN {
		return false, fmt.Errorf("alsadevice: resume not ready yet")
	}
	prepErr := C.snd_pcm_prepare(d.pcm)
	if prepErr < 0 {
		return true, fmt.Errorf("alsadevice: snd_pcm_prepare after resume: %s", C.GoString(C.snd_strerror(prepErr)))
	}
	return true, nil
}

// MMapBegin requests direct access to the ring via snd_pcm_mmap_begin and
// returns a byte slice over the granted area.
func (d *Device) MMapBegin(frames int) ([]audioio.MMapArea, int, int, error) {
	var areas *C.snd_pcm_channel_area_t
	var offset C.snd_pcm_uframes_t
	requested := C.snd_pcm_uframes_t(frames)

	ret := C.snd_pcm_mmap_begin(d.pcm, &areas, &offset, &requested)
	if ret < 0 {
		return nil, 0, 0, fmt.Errorf("alsadevice: snd_pcm_mmap_begin: %s", C.GoString(C.snd_strerror(C.int(ret))))
	}

	granted := int(requested)
	bytesPerFrame := d.pctx.NChannels * d.pctx.ByteRate
	base := unsafe.Pointer(areas.addr)
	byteOffset := int(offset) * bytesPerFrame
	length := granted * bytesPerFrame

	data := unsafe.Slice((*byte)(unsafe.Add(base, byteOffset)), length)
	return []audioio.MMapArea{{Data: data, Offset: int(offset)}}, int(offset), granted, nil
}

func (d *Device) MMapCommit(offset, frames int) (int, error) {
	ret := C.snd_pcm_mmap_commit(d.pcm, C.snd_pcm_uframes_t(offset), C.snd_pcm_uframes_t(frames))
	if ret < 0 {
		return int(ret), fmt.Errorf("alsadevice: snd_pcm_mmap_commit: %s", C.GoString(C.snd_strerror(C.int(ret))))
	}
	return int(ret), nil
}

func (d *Device) Close() error {
	if d.pcm == nil {
		return nil
	}
	ret := C.snd_pcm_close(d.pcm)
	d.pcm = nil
	if ret < 0 {
		return fmt.Errorf("alsadevice: snd_pcm_close: %s", C.GoString(C.snd_strerror(ret)))
	}
	return nil
}
