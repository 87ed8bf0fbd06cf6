package nodes

import (
	"fmt"

	"audiograph/dsp/convolution"
	"audiograph/graph"
)

// ConvolutionNode wraps a convolution.ConvolutionReverb as a graph node,
// running one reverb channel per buffer channel.
type ConvolutionNode struct {
	status graph.Status
	reverb *convolution.ConvolutionReverb
	in     []float32
	out    []float32

	// library, irName, and irIndex are set by NewConvolutionNodeFromLibrary;
	// when library is non-nil, Prepare loads the IR from it before the node
	// processes its first block.
	library []byte
	irName  string
	irIndex int
}

// NewConvolutionNode wraps an already-configured reverb (IR loaded, wet/dry
// levels set) as a processing node.
func NewConvolutionNode(reverb *convolution.ConvolutionReverb) *ConvolutionNode {
	return &ConvolutionNode{reverb: reverb}
}

// NewConvolutionNodeFromLibrary wraps reverb as a processing node that loads
// its impulse response during Prepare, from an .irlib-encoded library held
// in libraryData. If irName is non-empty the IR is looked up by name,
// otherwise by irIndex.
func NewConvolutionNodeFromLibrary(reverb *convolution.ConvolutionReverb, libraryData []byte, irName string, irIndex int) *ConvolutionNode {
	return &ConvolutionNode{reverb: reverb, library: libraryData, irName: irName, irIndex: irIndex}
}

// Prepare loads the node's impulse response, if constructed via
// NewConvolutionNodeFromLibrary, then allocates the per-tick scratch buffers
// used to bridge between the graph's channel views and the reverb's
// flat-slice ProcessBlock API.
func (n *ConvolutionNode) Prepare(ctx graph.PrepareContext) error {
	if n.library != nil {
		if err := n.reverb.LoadImpulseResponseFromBytes(n.library, n.irName, n.irIndex); err != nil {
			return fmt.Errorf("convolution node: load IR: %w", err)
		}
	}
	n.in = make([]float32, ctx.BlockSize)
	n.out = make([]float32, ctx.BlockSize)
	return nil
}

// Process runs every channel of the node's buffer view through the wrapped
// reverb, in place.
func (n *ConvolutionNode) Process(ctx graph.ProcessContext) error {
	for c := 0; c < ctx.View.NChannels(); c++ {
		v := ctx.View.GetView(c)
		for f := 0; f < v.Len(); f++ {
			n.in[f] = v.At(f)
		}
		if err := n.reverb.ProcessBlock(n.in, n.out, c); err != nil {
			return fmt.Errorf("convolution node: channel %d: %w", c, err)
		}
		for f := 0; f < v.Len(); f++ {
			v.Set(f, n.out[f])
		}
	}
	return nil
}

// Status returns the node's atomic lifecycle status.
func (n *ConvolutionNode) Status() *graph.Status { return &n.status }
