// Package workload generates deterministic key and operation streams for
// exercising integer sets.
package workload

import (
	"math/rand"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Distribution selects how keys are drawn from the key space.
type Distribution int

const (
	Uniform Distribution = iota
	Ascending
	Zipf
)

var ErrUnknownDistribution = errors.New("workload: unknown distribution")

func (d Distribution) String() string {
	switch d {
	case Uniform:
		return "uniform"
	case Ascending:
		return "ascending"
	case Zipf:
		return "zipf"
	default:
		return "unknown"
	}
}

// ParseDistribution maps a name as printed by String back to a Distribution.
func ParseDistribution(name string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "uniform":
		return Uniform, nil
	case "ascending":
		return Ascending, nil
	case "zipf", "zipfian":
		return Zipf, nil
	}
	return 0, errors.Wrapf(ErrUnknownDistribution, "%q", name)
}

// OpKind is a set operation.
type OpKind uint8

const (
	OpContains OpKind = iota
	OpAdd
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpContains:
		return "contains"
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Op is one generated call.
type Op struct {
	Kind OpKind
	Key  int64
}

// Mix gives the share of adds and removes in percent; the rest are lookups.
type Mix struct {
	AddPercent    int
	RemovePercent int
}

var (
	ReadMostly = Mix{AddPercent: 3, RemovePercent: 2}
	Balanced   = Mix{AddPercent: 25, RemovePercent: 25}
	WriteHeavy = Mix{AddPercent: 45, RemovePercent: 45}
)

var ErrInvalidMix = errors.New("workload: invalid operation mix")

// Validate checks that both shares are non-negative and sum to at most 100.
func (m Mix) Validate() error {
	if m.AddPercent < 0 || m.RemovePercent < 0 || m.AddPercent+m.RemovePercent > 100 {
		return errors.Wrapf(ErrInvalidMix, "add=%d remove=%d", m.AddPercent, m.RemovePercent)
	}
	return nil
}

// Range is the half-open key interval [Lo, Hi).
type Range struct {
	Lo, Hi int64
}

func (r Range) Size() int64 {
	return r.Hi - r.Lo
}

// Partition splits [1, 1+keySpace) into n disjoint ranges of near-equal size.
// Key 0 is skipped so that generated keys never hit a sentinel of a small type.
func Partition(keySpace int64, n int) []Range {
	if n < 1 {
		n = 1
	}
	out := make([]Range, n)
	step := keySpace / int64(n)
	rem := keySpace % int64(n)
	lo := int64(1)
	for i := range out {
		size := step
		if int64(i) < rem {
			size++
		}
		out[i] = Range{Lo: lo, Hi: lo + size}
		lo += size
	}
	return out
}

// Generator produces a deterministic stream of operations over a key range.
// A Generator is not safe for concurrent use; give each worker its own.
type Generator struct {
	r         *rand.Rand
	zipf      *rand.Zipf
	dist      Distribution
	keys      Range
	mix       Mix
	ascending *atomic.Uint64
}

// NewGenerator returns a generator over keys. For Ascending, counter is shared
// by all generators that should walk the range together; nil gives a private one.
func NewGenerator(seed int64, dist Distribution, keys Range, mix Mix, counter *atomic.Uint64) *Generator {
	r := rand.New(rand.NewSource(seed))
	g := &Generator{r: r, dist: dist, keys: keys, mix: mix, ascending: counter}
	if g.ascending == nil {
		g.ascending = new(atomic.Uint64)
	}
	if dist == Zipf {
		upper := uint64(keys.Size() - 1)
		if upper == 0 {
			upper = 1
		}
		g.zipf = rand.NewZipf(r, 1.2, 1, upper)
	}
	return g
}

// Key returns the next key.
func (g *Generator) Key() int64 {
	size := g.keys.Size()
	if size <= 0 {
		return g.keys.Lo
	}
	var off int64
	switch g.dist {
	case Ascending:
		off = int64((g.ascending.Add(1) - 1) % uint64(size))
	case Zipf:
		off = int64(g.zipf.Uint64()) % size
	default:
		off = g.r.Int63n(size)
	}
	return g.keys.Lo + off
}

// Next returns the next operation.
func (g *Generator) Next() Op {
	key := g.Key()
	roll := g.r.Intn(100)
	switch {
	case roll < g.mix.AddPercent:
		return Op{Kind: OpAdd, Key: key}
	case roll < g.mix.AddPercent+g.mix.RemovePercent:
		return Op{Kind: OpRemove, Key: key}
	default:
		return Op{Kind: OpContains, Key: key}
	}
}
