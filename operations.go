package listset

// Add inserts x and reports whether it was absent.
// Concurrent Add calls for the same absent key link exactly one node.
// Add panics with an error wrapping ErrReservedKey if x is a sentinel value.
func (s *Set[T]) Add(x T) bool {
	s.mustValid(x)
	var fresh *node[T]
	for {
		w := s.locate(x)
		if w.succ.key == x && w.succ.next.Load().state == linkLive {
			return false
		}

		if fresh == nil {
			fresh = newNode(x, w.succ)
		} else {
			// The node is still private, so re-pointing it is not a publication.
			fresh.next.Store(liveLink(w.succ))
		}

		if addBeforeLinkHook != nil {
			addBeforeLinkHook(w.pred, w.succ)
		}

		if w.pred.next.CompareAndSwap(w.predLink, liveLink(fresh)) {
			s.metrics.IncInsertCASSuccess()
			s.metrics.AddLen(1)
			return true
		}
		s.metrics.IncInsertCASRetry()
	}
}

// Remove deletes x and reports whether it was present.
// The node is first marked, which is the linearization point, then unlinked with
// a single attempt. A failed unlink is left to later traversals.
// Remove panics with an error wrapping ErrReservedKey if x is a sentinel value.
func (s *Set[T]) Remove(x T) bool {
	s.mustValid(x)
	for {
		w := s.locate(x)
		if w.succ.key != x {
			return false
		}

		target := w.succ
		succLink := target.next.Load()
		if succLink.state == linkTombstone {
			return false
		}

		if !target.next.CompareAndSwap(succLink, tombstoneLink(succLink.node)) {
			s.metrics.IncMarkCASRetry()
			continue
		}
		s.metrics.IncMarkCASSuccess()
		s.metrics.AddLen(-1)

		if removeAfterMarkHook != nil && removeAfterMarkHook(target) {
			return true
		}

		if w.pred.next.CompareAndSwap(w.predLink, liveLink(succLink.node)) {
			s.metrics.IncRemoverUnlink()
		} else {
			s.metrics.IncRemoverUnlinkMiss()
		}
		return true
	}
}

// Contains reports whether x is in the set. The answer is taken from the
// successor slot of the node holding x, so a node that is marked but not yet
// unlinked is reported absent.
// Contains panics with an error wrapping ErrReservedKey if x is a sentinel value.
func (s *Set[T]) Contains(x T) bool {
	s.mustValid(x)
	w := s.locate(x)
	return w.succ.key == x && w.succ.next.Load().state == linkLive
}
