// Package metrics exposes Prometheus instrumentation for the media pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// IngestsTotal counts ingestion attempts by media kind and outcome.
	IngestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediavault_ingests_total",
			Help: "Total number of media ingestion attempts by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: "image", "video", "unknown"; outcome: "ok", "error"
	)

	// EvictionsTotal counts assets removed by cleanup passes.
	EvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediavault_evictions_total",
			Help: "Total number of assets removed by LRU cleanup",
		},
	)

	// StoredBytes reports the aggregate stored size as of the last stats read.
	StoredBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediavault_stored_bytes",
			Help: "Aggregate size in bytes of all stored assets",
		},
	)

	// StoredAssets reports the live asset count as of the last stats read.
	StoredAssets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediavault_stored_assets",
			Help: "Number of live assets in the store",
		},
	)
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
