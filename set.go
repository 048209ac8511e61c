// Package listset implements a lock-free ordered set of integers.
//
// The set is a sorted singly-linked list between two sentinel nodes. Searches
// are optimistic and restart when they lose a race. Removal is lazy: a node is
// first marked by replacing its successor slot with a tombstone, then unlinked
// by the remover or by any later traversal that passes it.
//
// The lowest and highest values of the key type are reserved for the sentinels.
package listset

import (
	"golang.org/x/exp/constraints"
)

// Set is a concurrent ordered set of integers. The zero value is not usable;
// create sets with New.
type Set[T constraints.Integer] struct {
	head    *node[T]
	tail    *node[T]
	metrics *Metrics
}

// New returns an empty set.
func New[T constraints.Integer](opts ...Option) *Set[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	head, tail := newSentinels[T]()
	return &Set[T]{
		head:    head,
		tail:    tail,
		metrics: newMetrics(o),
	}
}

// Len returns the number of keys in the set. Under concurrent mutation the
// result is approximate and never negative; it is exact once all calls have
// returned.
// Len is always zero when stats are disabled.
func (s *Set[T]) Len() int64 {
	return s.metrics.Len()
}

// Stats returns a snapshot of the set's contention counters.
func (s *Set[T]) Stats() Stats {
	return s.metrics.Snapshot()
}

// Bounds returns the reserved sentinel keys of the set.
func (s *Set[T]) Bounds() (lo, hi T) {
	return s.head.key, s.tail.key
}

// CheckKey returns an error wrapping ErrReservedKey if x cannot be stored.
func (s *Set[T]) CheckKey(x T) error {
	return checkKey(x, s.head.key, s.tail.key)
}

// ValidKey reports whether x can be passed to Add, Remove and Contains.
func (s *Set[T]) ValidKey(x T) bool {
	return x != s.head.key && x != s.tail.key
}

func (s *Set[T]) mustValid(x T) {
	if !s.ValidKey(x) {
		panic(s.CheckKey(x))
	}
}
