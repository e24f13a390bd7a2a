// Package bounded provides a fixed-capacity, concurrency-safe FIFO store.
//
// A Store keeps at most Cap() items. Pushing onto a full store evicts the
// oldest item, so after every completed Push the store holds the newest
// min(pushed, Cap()) items in insertion order.
package bounded

import "sync"

// Store is a ring buffer guarded by a single RWMutex.
type Store[T any] struct {
	mu   sync.RWMutex
	buf  []T
	head int // index of the oldest item
	size int
}

// New returns an empty store holding at most capacity items. Capacities below 1 are raised to 1.
func New[T any](capacity int) *Store[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Store[T]{buf: make([]T, capacity)}
}

// Push appends item, evicting the oldest item when the store is full.
// It reports whether an item was evicted.
func (s *Store[T]) Push(item T) (evicted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushLocked(item)
}

// PushAll appends items in order as one atomic step.
// It returns how many items were evicted.
func (s *Store[T]) PushAll(items ...T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range items {
		if s.pushLocked(it) {
			n++
		}
	}
	return n
}

func (s *Store[T]) pushLocked(item T) bool {
	c := len(s.buf)
	if s.size < c {
		s.buf[(s.head+s.size)%c] = item
		s.size++
		return false
	}
	s.buf[s.head] = item
	s.head = (s.head + 1) % c
	return true
}

// Snapshot returns a copy of the contents, oldest first.
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rangeLocked(0, s.size)
}

// Tail returns the newest min(n, Len()) items, oldest first. n <= 0 yields an empty slice.
func (s *Store[T]) Tail(n int) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return []T{}
	}
	if n > s.size {
		n = s.size
	}
	return s.rangeLocked(s.size-n, n)
}

// Filter returns the items for which keep is true, oldest first.
// keep runs under the read lock and must not call back into the store.
func (s *Store[T]) Filter(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []T{}
	c := len(s.buf)
	for i := 0; i < s.size; i++ {
		it := s.buf[(s.head+i)%c]
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Clear empties the store. Capacity is unchanged.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	for i := range s.buf {
		s.buf[i] = zero
	}
	s.head, s.size = 0, 0
}

// Len returns the number of items currently held.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Cap returns the fixed capacity.
func (s *Store[T]) Cap() int {
	return len(s.buf)
}

// rangeLocked copies n items starting at logical offset off.
func (s *Store[T]) rangeLocked(off, n int) []T {
	out := make([]T, n)
	c := len(s.buf)
	for i := 0; i < n; i++ {
		out[i] = s.buf[(s.head+off+i)%c]
	}
	return out
}
