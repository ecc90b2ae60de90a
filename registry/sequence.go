package registry

import (
	"go.uber.org/atomic"
)

// Sequencer is a monotonically non-decreasing sequence counter. The registry
// treats the counter as an environment input: the serving layer advances it
// once per mutating call, or mirrors an externally supplied height via
// Observe. It never moves backwards.
type Sequencer struct {
	height atomic.Uint64
}

// NewSequencer creates a sequencer starting at the given height.
func NewSequencer(start uint64) *Sequencer {
	s := &Sequencer{}
	s.height.Store(start)
	return s
}

// Current returns the current sequence value.
func (s *Sequencer) Current() uint64 {
	return s.height.Load()
}

// Advance increments the counter and returns the new value.
func (s *Sequencer) Advance() uint64 {
	return s.height.Inc()
}

// Observe raises the counter to h if h is ahead of it. Stale values are
// ignored, preserving monotonicity.
func (s *Sequencer) Observe(h uint64) {
	for {
		cur := s.height.Load()
		if h <= cur {
			return
		}
		if s.height.CompareAndSwap(cur, h) {
			return
		}
	}
}
