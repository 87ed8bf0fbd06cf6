package graph

import (
	"sync/atomic"

	"audiograph/audio/view"
)

// Status values a Node transitions through once per tick.
const (
	StatusInit int32 = iota
	StatusReady
	StatusProcessed
)

// Status is an atomically-observable node lifecycle state. It stays a
// plain atomic.Int32 rather than a mutex-guarded field so the
// engineweb/enginetui status reporters, which run on other goroutines, can
// read it without tearing, even though the scheduler itself never
// processes nodes concurrently.
type Status struct {
	v atomic.Int32
}

// Load returns the current status.
func (s *Status) Load() int32 { return s.v.Load() }

// Store sets the current status.
func (s *Status) Store(v int32) { s.v.Store(v) }

// PrepareContext carries the parameters every node needs once, before the
// graph starts processing ticks.
type PrepareContext struct {
	NChannels  int
	BlockSize  int
	SampleRate float64
	Access     view.Layout
}

// ProcessContext carries the buffer view a node reads its input from and
// writes its output to for one tick. The scheduler has already copied any
// predecessor data into this view when the predecessor's own buffer index
// differed from this node's.
type ProcessContext struct {
	View *view.UniformChannelViews
}

// Node is the graph's type-erased, polymorphic unit of audio processing.
// Concrete node types embed a Status field and return its address from
// Status() so the graph and scheduler can drive its lifecycle externally.
type Node interface {
	Prepare(ctx PrepareContext) error
	Process(ctx ProcessContext) error
	Status() *Status
}
