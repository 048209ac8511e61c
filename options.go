package listset

// Option configures a Set.
type Option func(*options)

type options struct {
	statsShards  int
	disableStats bool
}

func defaultOptions() options {
	return options{}
}

// WithStatsShards sets the number of counter shards, rounded up to a power of two.
// Values below one select GOMAXPROCS, which is also the default.
func WithStatsShards(n int) Option {
	return func(o *options) {
		o.statsShards = n
	}
}

// WithoutStats disables all counters, including the one behind Len.
func WithoutStats() Option {
	return func(o *options) {
		o.disableStats = true
	}
}
