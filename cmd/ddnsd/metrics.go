package main

import (
	"net/http"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kuadrant/ddns-operator/internal/metrics"
)

const metricsAddr = ":9090"

// serveMetrics blocks serving the daemon's private prometheus registry. It
// is started as a goroutine by runRun and logs (rather than propagates) its
// own failure, since a metrics endpoint outage should not take the
// reconciliation loop down with it.
func serveMetrics(log logr.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	log.Info("serving metrics", "addr", metricsAddr)
	if err := http.ListenAndServe(metricsAddr, mux); err != nil {
		log.Error(err, "metrics server exited")
	}
}
