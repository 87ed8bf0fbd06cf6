package nodes

import (
	"sync"

	"audiograph/graph"
)

// GainNode scales every sample in its buffer view by a fixed gain. Gain
// mutation goes through a mutex rather than an atomic float because it's
// only ever touched outside Process, by a control surface.
type GainNode struct {
	status graph.Status
	mu     sync.RWMutex
	gain   float32
}

// NewGainNode creates a gain stage at the given linear gain.
func NewGainNode(gain float32) *GainNode {
	return &GainNode{gain: gain}
}

// SetGain updates the gain applied on the next tick.
func (n *GainNode) SetGain(gain float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gain = gain
}

// Gain returns the gain currently applied.
func (n *GainNode) Gain() float32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gain
}

// Prepare does nothing; GainNode holds no per-channel state.
func (n *GainNode) Prepare(ctx graph.PrepareContext) error { return nil }

// Process multiplies every sample in the node's buffer view by its gain.
func (n *GainNode) Process(ctx graph.ProcessContext) error {
	gain := n.Gain()
	for c := 0; c < ctx.View.NChannels(); c++ {
		v := ctx.View.GetView(c)
		for f := 0; f < v.Len(); f++ {
			v.Set(f, v.At(f)*gain)
		}
	}
	return nil
}

// Status returns the node's atomic lifecycle status.
func (n *GainNode) Status() *graph.Status { return &n.status }
