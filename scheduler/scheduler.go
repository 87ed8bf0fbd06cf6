// Package scheduler drives a graph.Graph through its prepare/process
// lifecycle: it runs the topological sort and buffer planner once, then
// ticks nodes in order on every Process call, copying predecessor data
// across buffer boundaries only when the planner didn't let them share one.
package scheduler

import (
	"context"
	"errors"

	"audiograph/audio/view"
	"audiograph/graph"
)

// ErrNotPrepared is returned by Process and OutputBuffer when called
// before Prepare.
var ErrNotPrepared = errors.New("scheduler: not prepared")

// Scheduler owns a Graph, its topology queue, and the physical buffer
// arena the buffer planner sized.
type Scheduler struct {
	graph   *graph.Graph
	queue   *graph.TopologyQueue
	buffers []*view.UniformChannelViews
	raw     [][]float32
	ctx     graph.PrepareContext
	prepared bool
}

// NewScheduler creates a scheduler around an empty graph.
func NewScheduler() *Scheduler {
	return &Scheduler{graph: graph.NewGraph()}
}

// Graph returns the underlying graph so callers can add nodes and edges
// before calling Prepare.
func (s *Scheduler) Graph() *graph.Graph { return s.graph }

// Prepare runs every node's Prepare, the topological sort, the buffer
// planner, and (re)allocates the buffer arena only if it's undersized for
// the new plan.
func (s *Scheduler) Prepare(ctx context.Context, pctx graph.PrepareContext) error {
	for i := 0; i < s.graph.NumNodes(); i++ {
		n, err := s.graph.Node(graph.NodeHandle(i))
		if err != nil {
			return err
		}
		if err := n.Prepare(pctx); err != nil {
			return err
		}
	}

	queue, err := s.graph.TopologicalSort()
	if err != nil {
		return err
	}
	totalBuffers := graph.PlanBuffers(queue)

	if len(s.buffers) < totalBuffers {
		s.raw = make([][]float32, totalBuffers)
		s.buffers = make([]*view.UniformChannelViews, totalBuffers)
		for i := range s.raw {
			s.raw[i] = make([]float32, pctx.NChannels*pctx.BlockSize)
			s.buffers[i] = view.NewUniformChannelViews(s.raw[i], pctx.NChannels, pctx.BlockSize, pctx.Access)
		}
	}

	s.queue = queue
	s.ctx = pctx
	s.prepared = true
	return nil
}

// Process iterates the topology queue until every node has run once,
// copying a predecessor's data into a node's own buffer (and clearing the
// predecessor's) whenever the two don't already share a buffer index.
func (s *Scheduler) Process() error {
	if !s.prepared {
		return ErrNotPrepared
	}

	remaining := s.queue.Len()
	done := make([]bool, s.queue.Len())
	for remaining > 0 {
		progressed := false
		for qi := 0; qi < s.queue.Len(); qi++ {
			if done[qi] {
				continue
			}
			entry := s.queue.At(qi)
			if !s.predecessorsProcessed(entry) {
				continue
			}

			n, err := s.graph.Node(graph.NodeHandle(entry.GraphIndex))
			if err != nil {
				return err
			}

			for _, predGraphIdx := range entry.Inputs {
				predQueueIdx, ok := s.queue.QueueIndexOf(predGraphIdx)
				if !ok {
					continue
				}
				predEntry := s.queue.At(predQueueIdx)
				if predEntry.BufferIndex == entry.BufferIndex {
					continue
				}
				s.copyBuffer(predEntry.BufferIndex, entry.BufferIndex)
				s.zeroBuffer(predEntry.BufferIndex)
			}

			if err := n.Process(graph.ProcessContext{View: s.buffers[entry.BufferIndex]}); err != nil {
				return err
			}
			n.Status().Store(graph.StatusProcessed)
			done[qi] = true
			remaining--
			progressed = true
		}
		if !progressed {
			// Acyclicity guarantees this is unreachable; guard against an
			// infinite loop if it ever isn't.
			return errors.New("scheduler: no progress; graph may contain a cycle")
		}
	}
	return nil
}

func (s *Scheduler) predecessorsProcessed(entry *graph.TopologyQueueNode) bool {
	for _, predGraphIdx := range entry.Inputs {
		n, err := s.graph.Node(graph.NodeHandle(predGraphIdx))
		if err != nil {
			return false
		}
		if n.Status().Load() != graph.StatusProcessed {
			return false
		}
	}
	return true
}

func (s *Scheduler) copyBuffer(srcIdx, dstIdx int) {
	copy(s.raw[dstIdx], s.raw[srcIdx])
}

func (s *Scheduler) zeroBuffer(idx int) {
	for i := range s.raw[idx] {
		s.raw[idx][i] = 0
	}
}

// OutputBuffer returns the view assigned to the last queue entry and
// resets every node's status to ready, preparing the next tick.
func (s *Scheduler) OutputBuffer() (*view.UniformChannelViews, error) {
	if !s.prepared {
		return nil, ErrNotPrepared
	}
	last := s.queue.At(s.queue.Len() - 1)
	out := s.buffers[last.BufferIndex]

	for i := 0; i < s.graph.NumNodes(); i++ {
		n, err := s.graph.Node(graph.NodeHandle(i))
		if err != nil {
			return nil, err
		}
		n.Status().Store(graph.StatusReady)
	}
	return out, nil
}

// Close releases the scheduler's buffer arena and topology queue.
func (s *Scheduler) Close() {
	s.buffers = nil
	s.raw = nil
	s.queue = nil
	s.prepared = false
}
