package listset

import (
	"math/bits"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
)

type metricShard struct {
	insertCASRetries   atomic.Int64
	insertCASSuccesses atomic.Int64
	markCASRetries     atomic.Int64
	markCASSuccesses   atomic.Int64
	removerUnlinks     atomic.Int64
	removerUnlinkMiss  atomic.Int64
	helpedUnlinks      atomic.Int64
	restarts           atomic.Int64
	length             atomic.Int64
	// Pad to two cache lines to prevent false sharing.
	_ [56]byte
}

// Stats is a point-in-time sum of a set's contention counters.
type Stats struct {
	// InsertCASRetries counts Add attempts whose linking CAS lost a race.
	InsertCASRetries int64
	// InsertCASSuccesses counts nodes linked by Add.
	InsertCASSuccesses int64
	// MarkCASRetries counts Remove attempts whose marking CAS lost a race.
	MarkCASRetries int64
	// MarkCASSuccesses counts nodes logically removed.
	MarkCASSuccesses int64
	// RemoverUnlinks counts marked nodes unlinked by their own remover.
	RemoverUnlinks int64
	// RemoverUnlinkMisses counts marked nodes whose remover left the unlink to others.
	RemoverUnlinkMisses int64
	// HelpedUnlinks counts tombstoned nodes unlinked by a traversal.
	HelpedUnlinks int64
	// Restarts counts traversals restarted from head after a failed unlink.
	Restarts int64
	// Len is the number of live keys.
	Len int64
}

// Metrics holds sharded counters. A nil *Metrics discards everything.
type Metrics struct {
	shards []metricShard
	mask   uint32
}

func newMetrics(o options) *Metrics {
	if o.disableStats {
		return nil
	}
	shardCount := o.statsShards
	if shardCount < 1 {
		shardCount = runtime.GOMAXPROCS(0)
	}
	shardCount = nextPowerOfTwo(shardCount)
	return &Metrics{
		shards: make([]metricShard, shardCount),
		mask:   uint32(shardCount - 1),
	}
}

func nextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}

// shard picks a shard from the runtime's per-thread generator, so choosing
// one writes no shared state.
func (m *Metrics) shard() *metricShard {
	if m.mask == 0 {
		return &m.shards[0]
	}
	return &m.shards[rand.Uint32()&m.mask]
}

func (m *Metrics) IncInsertCASRetry() {
	if m != nil {
		m.shard().insertCASRetries.Add(1)
	}
}

func (m *Metrics) IncInsertCASSuccess() {
	if m != nil {
		m.shard().insertCASSuccesses.Add(1)
	}
}

func (m *Metrics) IncMarkCASRetry() {
	if m != nil {
		m.shard().markCASRetries.Add(1)
	}
}

func (m *Metrics) IncMarkCASSuccess() {
	if m != nil {
		m.shard().markCASSuccesses.Add(1)
	}
}

func (m *Metrics) IncRemoverUnlink() {
	if m != nil {
		m.shard().removerUnlinks.Add(1)
	}
}

func (m *Metrics) IncRemoverUnlinkMiss() {
	if m != nil {
		m.shard().removerUnlinkMiss.Add(1)
	}
}

func (m *Metrics) IncHelpedUnlink() {
	if m != nil {
		m.shard().helpedUnlinks.Add(1)
	}
}

func (m *Metrics) IncRestart() {
	if m != nil {
		m.shard().restarts.Add(1)
	}
}

func (m *Metrics) AddLen(d int64) {
	if m != nil {
		m.shard().length.Add(d)
	}
}

func (m *Metrics) Len() int64 {
	if m == nil {
		return 0
	}
	var total int64
	for i := range m.shards {
		total += m.shards[i].length.Load()
	}
	// A decrement can land before the increment it pairs with.
	return max(total, 0)
}

// Snapshot sums all shards. Counters are read one at a time, so a snapshot taken
// during mutation is not atomic across fields.
func (m *Metrics) Snapshot() Stats {
	var st Stats
	if m == nil {
		return st
	}
	for i := range m.shards {
		sh := &m.shards[i]
		st.InsertCASRetries += sh.insertCASRetries.Load()
		st.InsertCASSuccesses += sh.insertCASSuccesses.Load()
		st.MarkCASRetries += sh.markCASRetries.Load()
		st.MarkCASSuccesses += sh.markCASSuccesses.Load()
		st.RemoverUnlinks += sh.removerUnlinks.Load()
		st.RemoverUnlinkMisses += sh.removerUnlinkMiss.Load()
		st.HelpedUnlinks += sh.helpedUnlinks.Load()
		st.Restarts += sh.restarts.Load()
		st.Len += sh.length.Load()
	}
	st.Len = max(st.Len, 0)
	return st
}
