package promstats

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/metailurini/listset"
)

func TestCollectorExportsStats(t *testing.T) {
	set := listset.New[int](listset.WithStatsShards(1))
	for k := 1; k <= 10; k++ {
		set.Add(k)
	}
	set.Remove(4)
	set.Remove(5)

	c := NewCollector(set.Stats, prometheus.Labels{"set": "test"})
	require.Equal(t, 9, testutil.CollectAndCount(c))

	expected := `
# HELP listset_set_keys Number of keys in the set.
# TYPE listset_set_keys gauge
listset_set_keys{set="test"} 8
# HELP listset_set_inserts_total Nodes linked by Add.
# TYPE listset_set_inserts_total counter
listset_set_inserts_total{set="test"} 10
# HELP listset_set_removes_total Nodes logically removed.
# TYPE listset_set_removes_total counter
listset_set_removes_total{set="test"} 2
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"listset_set_keys", "listset_set_inserts_total", "listset_set_removes_total"))
}

func TestCollectorRegisters(t *testing.T) {
	set := listset.New[int64]()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(set.Stats, nil)))

	set.Add(1)
	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}
	keys := byName["listset_set_keys"]
	require.NotNil(t, keys)
	require.Equal(t, 1.0, keys.GetMetric()[0].GetGauge().GetValue())
}
