package stress

import (
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/metailurini/listset/internal/workload"
)

var ErrInvalidConfig = errors.New("stress: invalid config")

// Config describes one concurrent run.
type Config struct {
	// Workers is the number of goroutines issuing calls.
	Workers int
	// OpsPerWorker stops each worker after this many calls; zero means no limit.
	OpsPerWorker int
	// Duration stops the run after this long; zero means no limit.
	Duration time.Duration
	// KeySpace is the number of distinct keys, drawn from [1, KeySpace].
	KeySpace int64
	// Distribution selects how keys are drawn.
	Distribution workload.Distribution
	// Mix sets the share of adds and removes.
	Mix workload.Mix
	// Disjoint gives every worker its own slice of the key space.
	Disjoint bool
	// Seed makes the generated streams reproducible.
	Seed int64
	// Record keeps a timed history of every call for the linearizability check.
	Record bool
}

func DefaultConfig() Config {
	return Config{
		Workers:      max(2*runtime.GOMAXPROCS(0), 4),
		OpsPerWorker: 10000,
		KeySpace:     1 << 10,
		Distribution: workload.Uniform,
		Mix:          workload.Balanced,
		Seed:         1,
	}
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "workers must be positive, got %d", c.Workers)
	}
	if c.OpsPerWorker < 0 {
		return errors.Wrapf(ErrInvalidConfig, "ops per worker must not be negative, got %d", c.OpsPerWorker)
	}
	if c.Duration < 0 {
		return errors.Wrapf(ErrInvalidConfig, "duration must not be negative, got %s", c.Duration)
	}
	if c.OpsPerWorker == 0 && c.Duration == 0 {
		return errors.Wrap(ErrInvalidConfig, "either ops per worker or duration must be set")
	}
	if c.KeySpace < 1 {
		return errors.Wrapf(ErrInvalidConfig, "key space must be positive, got %d", c.KeySpace)
	}
	if c.Disjoint && c.KeySpace < int64(c.Workers) {
		return errors.Wrapf(ErrInvalidConfig, "key space %d is smaller than %d disjoint workers", c.KeySpace, c.Workers)
	}
	if err := c.Mix.Validate(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}
