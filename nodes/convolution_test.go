package nodes

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"audiograph/audio/view"
	"audiograph/dsp/convolution"
	"audiograph/graph"
	"audiograph/pkg/irformat"
)

// closeEnoughF16 mirrors the tolerance irformat's own integration tests use
// to check f16 round-trip error: a sample is wrong only if both its relative
// and absolute error exceed the format's documented quantization tolerance.
func closeEnoughF16(got, want float32) bool {
	absErr := math.Abs(float64(got - want))
	relErr := float64(0)
	if math.Abs(float64(want)) > 1e-6 {
		relErr = absErr / math.Abs(float64(want))
	}
	return relErr <= 0.01 || absErr <= 1e-4
}

// writeTestLibrary encodes a one-IR .irlib library to a temp file and
// returns its raw bytes, the same round trip a caller loading a library
// from disk or an embedded asset would perform.
func writeTestLibrary(t *testing.T, ir []float32, sampleRate float64) []byte {
	t.Helper()

	lib := irformat.NewIRLibrary()
	lib.AddIR(irformat.NewImpulseResponse("test-ir", sampleRate, 1, [][]float32{ir}))

	path := filepath.Join(t.TempDir(), "test.irlib")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("os.Create: %v", err)
	}
	if err := irformat.WriteLibrary(file, lib); err != nil {
		file.Close()
		t.Fatalf("WriteLibrary: %v", err)
	}
	file.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	return data
}

// TestConvolutionNodePrepareLoadsIRFromLibrary drives the node's Prepare
// through a full .irlib write/read round trip and checks that the loaded,
// f16-quantized IR is what actually convolves the signal, rather than
// whatever the caller might have pre-loaded into the reverb.
func TestConvolutionNodePrepareLoadsIRFromLibrary(t *testing.T) {
	const (
		sampleRate = 48000.0
		blockSize  = 16
	)
	ir := []float32{1.0, -0.5, 0.25, -0.125, 0.0625, -0.03125, 0.015625, -0.0078125}
	libraryData := writeTestLibrary(t, ir, sampleRate)

	reverb := convolution.NewConvolutionReverbWithEngine(sampleRate, 1, convolution.EngineTypeOverlapAdd)
	reverb.SetWetLevel(1.0)
	reverb.SetDryLevel(0.0)

	node := NewConvolutionNodeFromLibrary(reverb, libraryData, "", 0)
	if err := node.Prepare(graph.PrepareContext{
		NChannels:  1,
		BlockSize:  blockSize,
		SampleRate: sampleRate,
		Access:     view.Interleaved,
	}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	buf := make([]float32, blockSize)
	buf[0] = 1.0 // unit impulse: output should equal the IR itself
	views := view.NewUniformChannelViews(buf, 1, blockSize, view.Interleaved)

	if err := node.Process(graph.ProcessContext{View: views}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	for i, want := range ir {
		if got := buf[i]; !closeEnoughF16(got, want) {
			t.Errorf("sample %d = %v, want %v (f16 tolerance)", i, got, want)
		}
	}
	for i := len(ir); i < blockSize; i++ {
		if got := buf[i]; !closeEnoughF16(got, 0) {
			t.Errorf("sample %d = %v, want ~0 beyond IR tail", i, got)
		}
	}
}

// TestConvolutionNodePrepareLoadsIRByName exercises the name-based lookup
// path through LoadImpulseResponseFromBytes rather than by index.
func TestConvolutionNodePrepareLoadsIRByName(t *testing.T) {
	const sampleRate = 48000.0
	ir := []float32{0.5, 0.25}
	libraryData := writeTestLibrary(t, ir, sampleRate)

	reverb := convolution.NewConvolutionReverb(sampleRate, 1)
	node := NewConvolutionNodeFromLibrary(reverb, libraryData, "test-ir", 0)

	if err := node.Prepare(graph.PrepareContext{
		NChannels:  1,
		BlockSize:  8,
		SampleRate: sampleRate,
		Access:     view.Interleaved,
	}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
}

// TestConvolutionNodeProcessPropagatesBufferLengthMismatch verifies the node
// surfaces ProcessBlock's error instead of panicking or silently dropping it.
func TestConvolutionNodeProcessPropagatesBufferLengthMismatch(t *testing.T) {
	reverb := convolution.NewConvolutionReverb(48000, 1)
	node := NewConvolutionNode(reverb)

	if err := node.Prepare(graph.PrepareContext{NChannels: 1, BlockSize: 8, SampleRate: 48000}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	// Corrupt the node's scratch output buffer to a mismatched length to
	// force ProcessBlock's length check.
	node.out = node.out[:len(node.out)-1]

	buf := make([]float32, 8)
	views := view.NewUniformChannelViews(buf, 1, 8, view.Interleaved)
	if err := node.Process(graph.ProcessContext{View: views}); err == nil {
		t.Error("Process with mismatched scratch buffers: error = nil, want non-nil")
	}
}
