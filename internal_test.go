package listset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// rawEntry is one physically linked node as seen by rawChain.
type rawEntry struct {
	Key   int
	State string
}

// rawChain walks every node still linked from head, tombstoned or not.
func rawChain(s *Set[int]) []rawEntry {
	var out []rawEntry
	l := s.head.next.Load()
	for l.node != s.tail {
		n := l.node
		l = n.next.Load()
		out = append(out, rawEntry{Key: n.key, State: l.state.String()})
	}
	return out
}

func stallRemovers(t *testing.T) {
	t.Helper()
	removeAfterMarkHook = func(any) bool { return true }
	t.Cleanup(func() { removeAfterMarkHook = nil })
}

func TestNewSetHasOnlySentinels(t *testing.T) {
	s := New[int]()
	require.Same(t, s.tail, s.head.next.Load().node)
	require.Equal(t, linkLive, s.head.next.Load().state)
	require.Nil(t, s.tail.next.Load())
	require.Empty(t, rawChain(s))
}

func TestLocateWindowBracketsKey(t *testing.T) {
	s := New[int]()
	for _, k := range []int{10, 20, 30} {
		s.Add(k)
	}

	cases := []struct {
		x          int
		pred, succ int
	}{
		{x: 5, pred: s.head.key, succ: 10},
		{x: 10, pred: s.head.key, succ: 10},
		{x: 11, pred: 10, succ: 20},
		{x: 30, pred: 20, succ: 30},
		{x: 31, pred: 30, succ: s.tail.key},
	}
	for _, tc := range cases {
		w := s.locate(tc.x)
		require.Equal(t, tc.pred, w.pred.key, "pred for %d", tc.x)
		require.Equal(t, tc.succ, w.succ.key, "succ for %d", tc.x)
		require.Same(t, w.predLink, w.pred.next.Load())
		require.Same(t, w.succ, w.predLink.node)
		require.Equal(t, linkLive, w.predLink.state)
	}
}

func TestStalledRemoverLeavesTombstoneForHelpers(t *testing.T) {
	s := New[int](WithStatsShards(1))
	for _, k := range []int{1, 2, 3} {
		s.Add(k)
	}

	stallRemovers(t)
	require.True(t, s.Remove(2))
	removeAfterMarkHook = nil

	want := []rawEntry{{1, "live"}, {2, "tombstone"}, {3, "live"}}
	if diff := cmp.Diff(want, rawChain(s)); diff != "" {
		t.Fatalf("unexpected chain after stalled remove (-want +got):\n%s", diff)
	}
	require.Equal(t, []int{1, 3}, s.liveKeys())

	// The window for 2 ends at the tombstoned node itself, so nothing is unlinked yet.
	require.False(t, s.Contains(2))
	require.False(t, s.Remove(2))
	require.Equal(t, int64(0), s.Stats().HelpedUnlinks)

	// Searching past it unlinks it.
	require.True(t, s.Contains(3))
	require.Equal(t, int64(1), s.Stats().HelpedUnlinks)
	want = []rawEntry{{1, "live"}, {3, "live"}}
	if diff := cmp.Diff(want, rawChain(s)); diff != "" {
		t.Fatalf("unexpected chain after helping (-want +got):\n%s", diff)
	}
}

func TestHelpingUnlinksRunOfTombstones(t *testing.T) {
	s := New[int](WithStatsShards(1))
	for k := 1; k <= 6; k++ {
		s.Add(k)
	}

	// Descending, so no remover's search passes an earlier tombstone.
	stallRemovers(t)
	for k := 5; k >= 2; k-- {
		require.True(t, s.Remove(k))
	}
	removeAfterMarkHook = nil
	stalled := []rawEntry{
		{1, "live"}, {2, "tombstone"}, {3, "tombstone"},
		{4, "tombstone"}, {5, "tombstone"}, {6, "live"},
	}
	if diff := cmp.Diff(stalled, rawChain(s)); diff != "" {
		t.Fatalf("unexpected chain before helping (-want +got):\n%s", diff)
	}
	require.Equal(t, int64(0), s.Stats().HelpedUnlinks)

	require.True(t, s.Add(7))
	require.Equal(t, int64(4), s.Stats().HelpedUnlinks)
	want := []rawEntry{{1, "live"}, {6, "live"}, {7, "live"}}
	if diff := cmp.Diff(want, rawChain(s)); diff != "" {
		t.Fatalf("unexpected chain (-want +got):\n%s", diff)
	}
}

func TestLocateRestartsWhenHelpingLosesRace(t *testing.T) {
	s := New[int](WithStatsShards(1))
	for _, k := range []int{10, 20, 30} {
		s.Add(k)
	}

	stallRemovers(t)
	require.True(t, s.Remove(20))
	removeAfterMarkHook = nil

	fired := false
	locateHelpHook = func(pred, succ any) {
		if fired {
			return
		}
		fired = true
		require.Equal(t, 10, pred.(*node[int]).key)
		require.Equal(t, 20, succ.(*node[int]).key)
		// Another thread links 15 behind the same predecessor.
		require.True(t, s.Add(15))
	}
	t.Cleanup(func() { locateHelpHook = nil })

	require.True(t, s.Contains(30))

	st := s.Stats()
	require.Equal(t, int64(1), st.Restarts)
	require.Equal(t, int64(1), st.HelpedUnlinks)
	want := []rawEntry{{10, "live"}, {15, "live"}, {30, "live"}}
	if diff := cmp.Diff(want, rawChain(s)); diff != "" {
		t.Fatalf("unexpected chain (-want +got):\n%s", diff)
	}
}

func TestAddRetriesWhenPredecessorChanges(t *testing.T) {
	s := New[int](WithStatsShards(1))
	s.Add(10)
	s.Add(30)

	fired := false
	addBeforeLinkHook = func(pred, succ any) {
		if fired {
			return
		}
		fired = true
		require.Equal(t, 10, pred.(*node[int]).key)
		require.Equal(t, 30, succ.(*node[int]).key)
		require.True(t, s.Add(25))
	}
	t.Cleanup(func() { addBeforeLinkHook = nil })

	require.True(t, s.Add(20))

	st := s.Stats()
	require.Equal(t, int64(1), st.InsertCASRetries)
	require.Equal(t, int64(4), st.InsertCASSuccesses)
	require.Equal(t, []int{10, 20, 25, 30}, s.liveKeys())
}

func TestAddRacingSameKeyInsertsOnce(t *testing.T) {
	s := New[int](WithStatsShards(1))

	fired := false
	addBeforeLinkHook = func(pred, succ any) {
		if fired {
			return
		}
		fired = true
		require.True(t, s.Add(5))
	}
	t.Cleanup(func() { addBeforeLinkHook = nil })

	// The outer call loses the link CAS, retries, and finds 5 present.
	require.False(t, s.Add(5))
	require.Equal(t, []rawEntry{{5, "live"}}, rawChain(s))
	require.Equal(t, int64(1), s.Len())
}

func TestAddInFrontOfTombstonedTwin(t *testing.T) {
	s := New[int](WithStatsShards(1))
	s.Add(5)

	stallRemovers(t)
	require.True(t, s.Remove(5))
	removeAfterMarkHook = nil

	require.True(t, s.Add(5))
	want := []rawEntry{{5, "live"}, {5, "tombstone"}}
	if diff := cmp.Diff(want, rawChain(s)); diff != "" {
		t.Fatalf("unexpected chain (-want +got):\n%s", diff)
	}
	require.True(t, s.Contains(5))
	require.Equal(t, []int{5}, s.liveKeys())

	require.True(t, s.Remove(5))
	require.Equal(t, []rawEntry{{5, "tombstone"}}, rawChain(s))
	require.False(t, s.Contains(5))

	require.True(t, s.Add(6))
	require.Equal(t, []rawEntry{{6, "live"}}, rawChain(s))
}

func TestTombstoneKeepsSuccessor(t *testing.T) {
	s := New[int]()
	s.Add(1)
	s.Add(2)
	one := s.head.next.Load().node
	two := one.next.Load().node

	stallRemovers(t)
	require.True(t, s.Remove(1))

	l := one.next.Load()
	require.Equal(t, linkTombstone, l.state)
	require.Same(t, two, l.node)

	// A second remover sees the tombstone and loses.
	require.False(t, s.Remove(1))
	require.Same(t, l, one.next.Load())
}

func TestRemoverUnlinkCounters(t *testing.T) {
	s := New[int](WithStatsShards(1))
	s.Add(1)
	s.Add(2)
	require.True(t, s.Remove(1))

	st := s.Stats()
	require.Equal(t, int64(1), st.MarkCASSuccesses)
	require.Equal(t, int64(1), st.RemoverUnlinks)
	require.Equal(t, int64(0), st.RemoverUnlinkMisses)
	require.Equal(t, []rawEntry{{2, "live"}}, rawChain(s))
}
