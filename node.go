package listset

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// linkState tags the value stored in a node's successor slot.
type linkState uint8

const (
	// linkLive means the owning node is part of the set and node is its successor.
	linkLive linkState = iota
	// linkTombstone means the owning node was removed. node is the successor it had
	// when it was marked and never changes afterwards.
	linkTombstone
)

func (s linkState) String() string {
	switch s {
	case linkLive:
		return "live"
	case linkTombstone:
		return "tombstone"
	default:
		return "unknown"
	}
}

// link is the immutable content of a successor slot. Slots are updated by swapping
// the whole link, so marking a node and wrapping its successor is a single CAS.
type link[T constraints.Integer] struct {
	node  *node[T]
	state linkState
}

func liveLink[T constraints.Integer](n *node[T]) *link[T] {
	return &link[T]{node: n, state: linkLive}
}

func tombstoneLink[T constraints.Integer](n *node[T]) *link[T] {
	return &link[T]{node: n, state: linkTombstone}
}

// node holds an immutable key and the single mutable successor slot.
type node[T constraints.Integer] struct {
	key  T
	next atomic.Pointer[link[T]]
}

func newNode[T constraints.Integer](key T, succ *node[T]) *node[T] {
	n := &node[T]{key: key}
	n.next.Store(liveLink(succ))
	return n
}

// newSentinels returns head and tail holding the lowest and highest value of T.
// The tail's slot stays nil: nothing is ever searched past it.
func newSentinels[T constraints.Integer]() (*node[T], *node[T]) {
	lo, hi := keyBounds[T]()
	tail := &node[T]{key: hi}
	head := newNode(lo, tail)
	return head, tail
}

// keyBounds reports the minimum and maximum representable values of T.
func keyBounds[T constraints.Integer]() (lo, hi T) {
	var zero T
	width := uint(unsafe.Sizeof(zero)) * 8
	allOnes := zero - 1
	if allOnes > zero {
		return zero, allOnes
	}
	hi = T(uint64(1)<<(width-1) - 1)
	return -hi - 1, hi
}
