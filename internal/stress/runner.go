// Package stress drives concurrent workloads against an integer set and
// checks what comes out.
package stress

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/metailurini/listset/internal/linearize"
	"github.com/metailurini/listset/internal/workload"
)

// IntSet is the surface exercised by a run.
type IntSet interface {
	Add(x int64) bool
	Remove(x int64) bool
	Contains(x int64) bool
}

var (
	ErrInconsistent = errors.New("stress: final state disagrees with call results")
	ErrWorkerPanic  = errors.New("stress: worker panicked")
)

// checkEvery is how many calls a worker makes between context checks.
const checkEvery = 64

// Report summarises a finished run.
type Report struct {
	Config  Config
	Elapsed time.Duration
	// Calls and Hits are indexed by workload.OpKind; Hits counts true results.
	Calls [3]int64
	Hits  [3]int64
	// History is set when Config.Record is true.
	History []linearize.Event

	// net is successful adds minus successful removes per key.
	net map[int64]int64
}

// Ops returns the total number of calls.
func (r *Report) Ops() int64 {
	return r.Calls[workload.OpContains] + r.Calls[workload.OpAdd] + r.Calls[workload.OpRemove]
}

// Throughput returns calls per second.
func (r *Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops()) / r.Elapsed.Seconds()
}

// Keys returns every key whose presence changed at least once, in order.
func (r *Report) Keys() []int64 {
	keys := make([]int64, 0, len(r.net))
	for k := range r.net {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Verify checks a quiescent set against the results of the run, which must have
// started from an empty set. Every key must have been added at most once more
// than it was removed, and be present exactly when it was.
func (r *Report) Verify(set IntSet) error {
	for _, k := range r.Keys() {
		n := r.net[k]
		if n != 0 && n != 1 {
			return errors.Wrapf(ErrInconsistent, "key %d: %d more successful adds than removes", k, n)
		}
		if got := set.Contains(k); got != (n == 1) {
			return errors.Wrapf(ErrInconsistent, "key %d: contains=%t after net %d", k, got, n)
		}
	}
	return nil
}

// Linearizable checks the recorded history.
func (r *Report) Linearizable() (linearize.Result, error) {
	if !r.Config.Record {
		return linearize.Result{}, errors.Wrap(ErrInvalidConfig, "run was not recorded")
	}
	return linearize.Check(r.History)
}

type workerResult struct {
	calls [3]int64
	hits  [3]int64
	net   map[int64]int64
}

// Run executes cfg against set and blocks until every worker stops.
// Reaching Duration or cancelling ctx ends the run without an error.
func Run(ctx context.Context, set IntSet, cfg Config, logger *log.Entry) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	logger = logger.WithFields(log.Fields{
		"workers":      cfg.Workers,
		"distribution": cfg.Distribution.String(),
		"keyspace":     cfg.KeySpace,
	})

	runCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	var ranges []workload.Range
	if cfg.Disjoint {
		ranges = workload.Partition(cfg.KeySpace, cfg.Workers)
	}
	whole := workload.Range{Lo: 1, Hi: 1 + cfg.KeySpace}

	var recorder *linearize.Recorder
	if cfg.Record {
		recorder = linearize.NewRecorder()
	}

	results := make([]workerResult, cfg.Workers)
	var ascending atomic.Uint64
	g, gctx := errgroup.WithContext(runCtx)

	logger.Debug("starting run")
	start := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		w := w
		keys := whole
		if ranges != nil {
			keys = ranges[w]
		}
		gen := workload.NewGenerator(cfg.Seed+int64(w), cfg.Distribution, keys, cfg.Mix, &ascending)
		g.Go(func() error {
			return runWorker(gctx, w, set, gen, cfg.OpsPerWorker, recorder, &results[w])
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		logger.WithError(err).Error("run failed")
		return nil, err
	}

	report := &Report{Config: cfg, Elapsed: elapsed, net: make(map[int64]int64)}
	for i := range results {
		res := &results[i]
		for k := range res.calls {
			report.Calls[k] += res.calls[k]
			report.Hits[k] += res.hits[k]
		}
		for key, n := range res.net {
			report.net[key] += n
		}
	}
	if recorder != nil {
		report.History = recorder.Events()
	}

	logger.WithFields(log.Fields{
		"ops":     report.Ops(),
		"elapsed": elapsed.String(),
	}).Info("run finished")
	return report, nil
}

func runWorker(ctx context.Context, id int, set IntSet, gen *workload.Generator, limit int, rec *linearize.Recorder, out *workerResult) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrapf(ErrWorkerPanic, "worker %d: %s", id, fmt.Sprint(p))
		}
	}()

	out.net = make(map[int64]int64)
	for i := 0; limit == 0 || i < limit; i++ {
		if i%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
		}

		op := gen.Next()
		var start int64
		if rec != nil {
			start = rec.Now()
		}

		var ok bool
		switch op.Kind {
		case workload.OpAdd:
			ok = set.Add(op.Key)
			if ok {
				out.net[op.Key]++
			}
		case workload.OpRemove:
			ok = set.Remove(op.Key)
			if ok {
				out.net[op.Key]--
			}
		default:
			ok = set.Contains(op.Key)
		}

		if rec != nil {
			rec.Record(id, historyKind(op.Kind), op.Key, ok, start)
		}
		out.calls[op.Kind]++
		if ok {
			out.hits[op.Kind]++
		}
	}
	return nil
}

func historyKind(k workload.OpKind) linearize.Kind {
	switch k {
	case workload.OpAdd:
		return linearize.Add
	case workload.OpRemove:
		return linearize.Remove
	default:
		return linearize.Contains
	}
}
