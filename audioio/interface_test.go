package audioio_test

import (
	"audiograph/audioio"
	"audiograph/audioio/alsadevice"
	"audiograph/audioio/mockdevice"
	"audiograph/audioio/portaudiodevice"
)

// These assignments only need to compile: they confirm every concrete
// backend satisfies audioio.Device without touching real hardware.
var (
	_ audioio.Device = (*mockdevice.Device)(nil)
	_ audioio.Device = (*alsadevice.Device)(nil)
	_ audioio.Device = (*portaudiodevice.Device)(nil)
)
