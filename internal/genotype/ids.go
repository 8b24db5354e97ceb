package genotype

import "sync/atomic"

// IDSource hands out monotonically increasing encoding ids. It is safe for
// concurrent use and is owned by whoever runs the evolution, so tests and
// replays can start from a known value.
type IDSource struct {
	next atomic.Uint64
}

func NewIDSource(start uint64) *IDSource {
	s := &IDSource{}
	s.next.Store(start)
	return s
}

func (s *IDSource) Next() uint64 {
	return s.next.Add(1) - 1
}

// Peek returns the id the next call to Next will hand out.
func (s *IDSource) Peek() uint64 {
	return s.next.Load()
}
