package nodes

import "audiograph/scheduler"

// BuildGraph populates s with the reference sine-into-gain chain used by
// the demo CLI and the scheduler's own tests.
func BuildGraph(s *scheduler.Scheduler, freq, amp float64, gain float32) error {
	sine := NewSineNode(freq, amp)
	gainNode := NewGainNode(gain)
	a := s.Graph().AddNode(sine)
	b := s.Graph().AddNode(gainNode)
	return s.Graph().Connect(a, b)
}

// BuildReverbGraph populates s with a sine generator feeding a convolution
// reverb node feeding a final gain stage, for demo and integration-test
// purposes.
func BuildReverbGraph(s *scheduler.Scheduler, freq, amp float64, conv *ConvolutionNode, gain float32) error {
	sine := NewSineNode(freq, amp)
	gainNode := NewGainNode(gain)
	a := s.Graph().AddNode(sine)
	b := s.Graph().AddNode(conv)
	c := s.Graph().AddNode(gainNode)
	if err := s.Graph().Connect(a, b); err != nil {
		return err
	}
	return s.Graph().Connect(b, c)
}
