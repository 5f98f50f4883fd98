package catalog

import "sync"

// Sequence hands out monotonically increasing product ids. It is an
// explicit, injectable object rather than package state so tests can
// control and reset id assignment deterministically.
type Sequence struct {
	mu   sync.Mutex
	next int
}

// NewSequence creates a sequence whose first Next returns start.
func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next id.
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

// Advance moves the sequence past id if it has not been passed already.
// Used after restoring a catalog from disk.
func (s *Sequence) Advance(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= s.next {
		s.next = id + 1
	}
}
