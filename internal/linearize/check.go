package linearize

import (
	"cmp"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// MaxEventsPerKey bounds the search for a single key.
const MaxEventsPerKey = 1 << 12

var ErrHistoryTooLarge = errors.New("linearize: too many events for one key")

// Result is the outcome of Check.
type Result struct {
	// OK is true when every key admits a sequential witness.
	OK bool
	// Key is the first key without a witness when OK is false.
	Key int64
	// Witness holds, per key, an order of that key's events that is legal for a
	// sequential set and respects real-time precedence.
	Witness map[int64][]Event
}

// Check searches for a linearization of events. A set is linearizable iff the
// history restricted to each key is, so every key is checked on its own.
func Check(events []Event) (Result, error) {
	byKey := make(map[int64][]Event)
	for _, e := range events {
		byKey[e.Key] = append(byKey[e.Key], e)
	}

	keys := make([]int64, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	res := Result{OK: true, Witness: make(map[int64][]Event, len(keys))}
	for _, k := range keys {
		evs := byKey[k]
		if len(evs) > MaxEventsPerKey {
			return Result{}, errors.Wrapf(ErrHistoryTooLarge, "key %d has %d events", k, len(evs))
		}
		witness, ok := checkKey(evs)
		if !ok {
			return Result{OK: false, Key: k}, nil
		}
		res.Witness[k] = witness
	}
	return res, nil
}

// apply runs e against a single-key set model. It reports the new presence
// and whether e's result is legal in state present.
func apply(present bool, e Event) (bool, bool) {
	switch e.Kind {
	case Add:
		return true, e.Result == !present
	case Remove:
		return false, e.Result == present
	case Contains:
		return present, e.Result == present
	}
	return present, false
}

type searcher struct {
	evs   []Event
	done  bitset
	order []Event
	seen  map[string]struct{}
}

// checkKey is a depth-first search over minimal events, memoised on the set of
// linearized events and the model state.
func checkKey(evs []Event) ([]Event, bool) {
	sorted := make([]Event, len(evs))
	copy(sorted, evs)
	slices.SortStableFunc(sorted, func(a, b Event) int { return cmp.Compare(a.Start, b.Start) })

	s := &searcher{
		evs:   sorted,
		done:  newBitset(len(sorted)),
		order: make([]Event, 0, len(sorted)),
		seen:  make(map[string]struct{}),
	}
	if !s.search(false) {
		return nil, false
	}
	return s.order, true
}

func (s *searcher) search(present bool) bool {
	if len(s.order) == len(s.evs) {
		return true
	}

	// An event may go next iff no pending event returned before it started.
	// The pending event that returns first is the only one worth testing.
	earliest := -1
	for i, e := range s.evs {
		if s.done.has(i) {
			continue
		}
		if earliest < 0 || e.End < s.evs[earliest].End {
			earliest = i
		}
	}

	for i, e := range s.evs {
		if s.done.has(i) || s.evs[earliest].precedes(e) {
			continue
		}
		next, legal := apply(present, e)
		if !legal {
			continue
		}
		s.done.set(i)
		key := s.done.key(next)
		if _, ok := s.seen[key]; ok {
			s.done.clear(i)
			continue
		}
		s.seen[key] = struct{}{}
		s.order = append(s.order, e)
		if s.search(next) {
			return true
		}
		s.order = s.order[:len(s.order)-1]
		s.done.clear(i)
	}
	return false
}
