package workload

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseDistribution(t *testing.T) {
	for _, d := range []Distribution{Uniform, Ascending, Zipf} {
		got, err := ParseDistribution(d.String())
		require.NoError(t, err)
		require.Equal(t, d, got)
	}

	got, err := ParseDistribution(" Zipfian ")
	require.NoError(t, err)
	require.Equal(t, Zipf, got)

	_, err = ParseDistribution("gaussian")
	require.True(t, errors.Is(err, ErrUnknownDistribution))
}

func TestMixValidate(t *testing.T) {
	require.NoError(t, ReadMostly.Validate())
	require.NoError(t, Balanced.Validate())
	require.NoError(t, WriteHeavy.Validate())
	require.NoError(t, Mix{AddPercent: 100}.Validate())

	err := Mix{AddPercent: 60, RemovePercent: 50}.Validate()
	require.True(t, errors.Is(err, ErrInvalidMix))
	err = Mix{AddPercent: -1}.Validate()
	require.True(t, errors.Is(err, ErrInvalidMix))
}

func TestPartitionIsDisjointAndCovering(t *testing.T) {
	ranges := Partition(103, 4)
	require.Len(t, ranges, 4)

	next := int64(1)
	var total int64
	for _, r := range ranges {
		require.Equal(t, next, r.Lo)
		require.Greater(t, r.Size(), int64(0))
		next = r.Hi
		total += r.Size()
	}
	require.Equal(t, int64(103), total)
	require.Equal(t, int64(104), next)

	require.Len(t, Partition(10, 0), 1)
}

func TestGeneratorStaysInRange(t *testing.T) {
	keys := Range{Lo: 50, Hi: 70}
	for _, d := range []Distribution{Uniform, Ascending, Zipf} {
		g := NewGenerator(42, d, keys, Balanced, nil)
		for i := 0; i < 10000; i++ {
			op := g.Next()
			require.GreaterOrEqual(t, op.Key, keys.Lo, d.String())
			require.Less(t, op.Key, keys.Hi, d.String())
		}
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	keys := Range{Lo: 1, Hi: 1 << 10}
	a := NewGenerator(7, Uniform, keys, WriteHeavy, nil)
	b := NewGenerator(7, Uniform, keys, WriteHeavy, nil)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestGeneratorAscendingWraps(t *testing.T) {
	g := NewGenerator(1, Ascending, Range{Lo: 10, Hi: 13}, Balanced, nil)
	var got []int64
	for i := 0; i < 7; i++ {
		got = append(got, g.Key())
	}
	require.Equal(t, []int64{10, 11, 12, 10, 11, 12, 10}, got)
}

func TestGeneratorMixShares(t *testing.T) {
	g := NewGenerator(3, Uniform, Range{Lo: 1, Hi: 100}, Mix{AddPercent: 30, RemovePercent: 20}, nil)
	counts := make(map[OpKind]int)
	const n = 100000
	for i := 0; i < n; i++ {
		counts[g.Next().Kind]++
	}
	require.InDelta(t, 0.30, float64(counts[OpAdd])/n, 0.02)
	require.InDelta(t, 0.20, float64(counts[OpRemove])/n, 0.02)
	require.InDelta(t, 0.50, float64(counts[OpContains])/n, 0.02)
}
