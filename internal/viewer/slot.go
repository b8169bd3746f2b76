package viewer

import (
	"errors"
	"sync"
)

var ErrSlotClosed = errors.New("document slot closed")

// Slot keeps exactly one live handle for a viewer session.
type Slot struct {
	store   *Store
	mu      sync.Mutex
	current string
	closed  bool
}

func NewSlot(store *Store) *Slot {
	return &Slot{store: store}
}

// Replace publishes data, then retracts the previous handle.
func (s *Slot) Replace(data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSlotClosed
	}

	handle := s.store.Publish(data)
	prev := s.current
	s.current = handle
	if prev != "" {
		s.store.Retract(prev)
	}
	return handle, nil
}

func (s *Slot) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close retracts the current handle. Further Replace calls fail.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.current != "" {
		s.store.Retract(s.current)
		s.current = ""
	}
}
