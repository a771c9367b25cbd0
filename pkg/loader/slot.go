package loader

import "sync"

// Slot is a reactive holder for a single value. It is written at most once
// and read any number of times. Observers registered with Subscribe are
// notified of the write; observers registered later are called immediately.
//
// The zero value is an empty slot ready for use.
type Slot[T any] struct {
	mu        sync.RWMutex
	value     T
	set       bool
	observers []func(T)
}

// Get returns the stored value and whether the slot has been written.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set
}

// IsSet reports whether the slot has been written.
func (s *Slot[T]) IsSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Set stores v and notifies observers. It returns false, leaving the first
// value in place, if the slot was already written.
func (s *Slot[T]) Set(v T) bool {
	s.mu.Lock()
	if s.set {
		s.mu.Unlock()
		return false
	}
	s.value, s.set = v, true
	observers := s.observers
	s.observers = nil
	s.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
	return true
}

// Subscribe registers fn to receive the slot's value. If the slot is already
// written, fn runs immediately on the caller's goroutine.
func (s *Slot[T]) Subscribe(fn func(T)) {
	s.mu.Lock()
	if !s.set {
		s.observers = append(s.observers, fn)
		s.mu.Unlock()
		return
	}
	v := s.value
	s.mu.Unlock()
	fn(v)
}
