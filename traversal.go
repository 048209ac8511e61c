package listset

import "golang.org/x/exp/constraints"

// window brackets a search key: pred.key < x <= succ.key. predLink is the exact
// value observed in pred's slot and is the expected value of any CAS on that slot.
type window[T constraints.Integer] struct {
	pred     *node[T]
	predLink *link[T]
	succ     *node[T]
}

// locate returns a window for x, unlinking tombstoned nodes on the way.
// A failed unlink means pred's slot changed under us, so the walk restarts from head.
func (s *Set[T]) locate(x T) window[T] {
retry:
	for {
		pred := s.head
		predLink := pred.next.Load()
		succ := predLink.node

		for succ.key < x {
			succLink := succ.next.Load()
			switch succLink.state {
			case linkTombstone:
				if locateHelpHook != nil {
					locateHelpHook(pred, succ)
				}
				skip := liveLink(succLink.node)
				if !pred.next.CompareAndSwap(predLink, skip) {
					s.metrics.IncRestart()
					continue retry
				}
				s.metrics.IncHelpedUnlink()
				predLink = skip
				succ = succLink.node
			case linkLive:
				pred = succ
				predLink = succLink
				succ = succLink.node
			}
		}

		return window[T]{pred: pred, predLink: predLink, succ: succ}
	}
}

// liveKeys walks the live sub-list from head and returns its keys in order.
// It does not help; it is meant for quiescent inspection.
func (s *Set[T]) liveKeys() []T {
	var keys []T
	l := s.head.next.Load()
	for l.node != s.tail {
		n := l.node
		l = n.next.Load()
		if l.state == linkLive {
			keys = append(keys, n.key)
		}
	}
	return keys
}
