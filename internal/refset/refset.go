// Package refset provides a coarse-locked ordered integer set. It serves as
// the sequential model in tests and as the blocking baseline in benchmarks.
package refset

import (
	"sync"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Set is an ordered set guarded by a single RWMutex.
type Set[T constraints.Integer] struct {
	mu   sync.RWMutex
	keys []T
}

func New[T constraints.Integer]() *Set[T] {
	return &Set[T]{}
}

func (s *Set[T]) search(x T) (int, bool) {
	return slices.BinarySearch(s.keys, x)
}

// Add inserts x and reports whether it was absent.
func (s *Set[T]) Add(x T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.search(x)
	if found {
		return false
	}
	s.keys = slices.Insert(s.keys, i, x)
	return true
}

// Remove deletes x and reports whether it was present.
func (s *Set[T]) Remove(x T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.search(x)
	if !found {
		return false
	}
	s.keys = slices.Delete(s.keys, i, i+1)
	return true
}

// Contains reports whether x is present.
func (s *Set[T]) Contains(x T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := s.search(x)
	return found
}

func (s *Set[T]) Len() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.keys))
}

// Keys returns the keys in ascending order.
func (s *Set[T]) Keys() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.keys))
	copy(out, s.keys)
	return out
}
