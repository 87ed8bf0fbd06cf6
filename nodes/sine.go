// Package nodes provides the built-in graph.Node implementations: signal
// generation, gain staging, and convolution-reverb processing.
package nodes

import (
	"audiograph/dsp/wave"
	"audiograph/graph"
)

// SineNode generates a sine tone at a fixed frequency and amplitude into
// every channel of its assigned buffer.
type SineNode struct {
	status graph.Status
	freq   float64
	amp    float64
	osc    []*wave.Wave[float32]
}

// NewSineNode creates a sine generator at freq Hz and the given amplitude.
func NewSineNode(freq, amp float64) *SineNode {
	return &SineNode{freq: freq, amp: amp}
}

// Prepare allocates one independent oscillator per channel so phase stays
// continuous per channel across ticks.
func (n *SineNode) Prepare(ctx graph.PrepareContext) error {
	n.osc = make([]*wave.Wave[float32], ctx.NChannels)
	for c := range n.osc {
		n.osc[c] = wave.NewWave[float32](n.freq, n.amp, ctx.SampleRate)
	}
	return nil
}

// Process fills every channel of the node's buffer view with the next
// block of oscillator samples.
func (n *SineNode) Process(ctx graph.ProcessContext) error {
	for c := 0; c < ctx.View.NChannels(); c++ {
		v := ctx.View.GetView(c)
		for f := 0; f < v.Len(); f++ {
			v.Set(f, n.osc[c].Next())
		}
	}
	return nil
}

// Status returns the node's atomic lifecycle status.
func (n *SineNode) Status() *graph.Status { return &n.status }
