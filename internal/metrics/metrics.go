// Package metrics exposes Prometheus counters for the reconciliation and
// search pipelines.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SearchesIssued counts external search calls actually sent after the
	// debounce interval elapsed.
	SearchesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierate_searches_issued_total",
		Help: "External catalog search calls issued.",
	})

	// SearchesDiscardedStale counts search responses dropped because a newer
	// generation was issued before they arrived.
	SearchesDiscardedStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierate_searches_discarded_stale_total",
		Help: "Search responses discarded for carrying a superseded generation.",
	})

	// OverlayWriteFailures counts swallowed write-through failures on
	// per-user rating/status data.
	OverlayWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierate_overlay_write_failures_total",
		Help: "Per-user overlay writes that failed and were degraded to local state.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
