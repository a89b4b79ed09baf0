package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

// Metrics exposes d.Metrics in the Prometheus text format.
func Metrics(d deps.Deps) http.Handler {
	var g prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Metrics != nil {
		g = d.Metrics
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
