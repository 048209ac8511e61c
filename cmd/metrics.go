package cmd

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/metailurini/listset/internal/promstats"
)

// serveMetrics exposes the set's counters on addr until stop is called.
func serveMetrics(addr string, source promstats.Source, logger *log.Entry) (stop func(), err error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(promstats.NewCollector(source, nil)); err != nil {
		return nil, errors.Wrap(err, "registering set collector")
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, errors.Wrap(err, "registering go collector")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger = logger.WithField("addr", ln.Addr().String())
	logger.Info("prometheus handler listening")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("failed to serve prometheus metrics")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("failed to stop prometheus handler")
		}
	}, nil
}
