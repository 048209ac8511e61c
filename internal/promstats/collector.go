// Package promstats exports listset counters as Prometheus metrics.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/metailurini/listset"
)

const (
	namespace = "listset"
	subsystem = "set"
)

// Source returns the current counters, usually a bound Set.Stats method.
type Source func() listset.Stats

type counter struct {
	desc  *prometheus.Desc
	value func(listset.Stats) int64
}

// Collector reads a Source on every scrape.
type Collector struct {
	source   Source
	counters []counter
	length   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for source. constLabels are attached to
// every metric, which lets several sets share a registry.
func NewCollector(source Source, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, constLabels)
	}
	return &Collector{
		source: source,
		counters: []counter{
			{desc("insert_cas_retries_total", "Add attempts whose linking CAS lost a race."),
				func(s listset.Stats) int64 { return s.InsertCASRetries }},
			{desc("inserts_total", "Nodes linked by Add."),
				func(s listset.Stats) int64 { return s.InsertCASSuccesses }},
			{desc("mark_cas_retries_total", "Remove attempts whose marking CAS lost a race."),
				func(s listset.Stats) int64 { return s.MarkCASRetries }},
			{desc("removes_total", "Nodes logically removed."),
				func(s listset.Stats) int64 { return s.MarkCASSuccesses }},
			{desc("remover_unlinks_total", "Removed nodes unlinked by their remover."),
				func(s listset.Stats) int64 { return s.RemoverUnlinks }},
			{desc("remover_unlink_misses_total", "Removed nodes left for traversals to unlink."),
				func(s listset.Stats) int64 { return s.RemoverUnlinkMisses }},
			{desc("helped_unlinks_total", "Tombstoned nodes unlinked by a traversal."),
				func(s listset.Stats) int64 { return s.HelpedUnlinks }},
			{desc("traversal_restarts_total", "Traversals restarted from head."),
				func(s listset.Stats) int64 { return s.Restarts }},
		},
		length: desc("keys", "Number of keys in the set."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, ct := range c.counters {
		ch <- ct.desc
	}
	ch <- c.length
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source()
	for _, ct := range c.counters {
		ch <- prometheus.MustNewConstMetric(ct.desc, prometheus.CounterValue, float64(ct.value(st)))
	}
	ch <- prometheus.MustNewConstMetric(c.length, prometheus.GaugeValue, float64(st.Len))
}
