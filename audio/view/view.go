// Package view provides zero-copy addressing over multi-channel audio
// buffers, abstracting the interleaved-vs-planar layout decision away from
// the graph nodes that read and write samples.
package view

// Layout selects how multi-channel samples are arranged in a flat buffer.
type Layout int

const (
	// Interleaved stores samples as frame-major: sample(f, c) at
	// f*NChannels+c.
	Interleaved Layout = iota
	// Planar stores samples as channel-major: sample(f, c) at
	// c*BlockSize+f.
	Planar
)

// ChannelView addresses one channel's samples within a shared buffer,
// without copying it.
type ChannelView struct {
	buf        []float32
	channel    int
	nChannels  int
	blockSize  int
	layout     Layout
}

// NewChannelView builds a view over channel within a buffer holding
// nChannels channels of blockSize frames each, arranged per layout.
func NewChannelView(buf []float32, channel, nChannels, blockSize int, layout Layout) *ChannelView {
	return &ChannelView{
		buf:       buf,
		channel:   channel,
		nChannels: nChannels,
		blockSize: blockSize,
		layout:    layout,
	}
}

// index computes the flat buffer offset for frame within this view's
// channel.
func (v *ChannelView) index(frame int) int {
	if v.layout == Interleaved {
		return frame*v.nChannels + v.channel
	}
	return v.channel*v.blockSize + frame
}

// At returns the sample at frame.
func (v *ChannelView) At(frame int) float32 { return v.buf[v.index(frame)] }

// Set stores value at frame.
func (v *ChannelView) Set(frame int, value float32) { v.buf[v.index(frame)] = value }

// Len returns the number of frames addressable through this view.
func (v *ChannelView) Len() int { return v.blockSize }

// UnmanagedChannelView is a raw-pointer-free equivalent of ChannelView built
// directly over a channel-major slice of exactly BlockSize samples; it
// exists for call sites that already hold a per-channel slice (e.g. a
// planar device buffer) and want the same addressing API without the
// interleaved/planar branch on every access.
type UnmanagedChannelView struct {
	samples []float32
}

// NewUnmanagedChannelView wraps an existing per-channel slice directly.
func NewUnmanagedChannelView(samples []float32) *UnmanagedChannelView {
	return &UnmanagedChannelView{samples: samples}
}

// At returns the sample at frame.
func (v *UnmanagedChannelView) At(frame int) float32 { return v.samples[frame] }

// Set stores value at frame.
func (v *UnmanagedChannelView) Set(frame int, value float32) { v.samples[frame] = value }

// Len returns the number of frames in this view.
func (v *UnmanagedChannelView) Len() int { return len(v.samples) }

// UniformChannelViews is an arena of ChannelViews over one shared buffer,
// all sharing the same channel count, block size, and layout. GetView
// allocates nothing after construction.
type UniformChannelViews struct {
	views []ChannelView
}

// NewUniformChannelViews builds one ChannelView per channel over buf.
func NewUniformChannelViews(buf []float32, nChannels, blockSize int, layout Layout) *UniformChannelViews {
	views := make([]ChannelView, nChannels)
	for c := range views {
		views[c] = ChannelView{
			buf:       buf,
			channel:   c,
			nChannels: nChannels,
			blockSize: blockSize,
			layout:    layout,
		}
	}
	return &UniformChannelViews{views: views}
}

// GetView returns the view for channel i.
func (u *UniformChannelViews) GetView(i int) *ChannelView { return &u.views[i] }

// NChannels returns the number of channel views in the arena.
func (u *UniformChannelViews) NChannels() int { return len(u.views) }
