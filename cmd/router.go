package main

import (
	"net/http"

	"github.com/j3k0/haproxy-statsd/internal/metrics"
)

func setupRouter(metricsCollector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /status", metricsCollector.Handler())

	return mux
}
