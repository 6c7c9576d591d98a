// ════════════════════════════════════════════════════════════════════════════════════════════════
// METRICSADAPTER — stats.Snapshot AND FEED STATE AS PROMETHEUS METRICS
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Registers GaugeFuncs over live counters and serves /metrics via promhttp
//
// Grounded in rahjooh-CryptoTrade/internal/metrics/metrics.go's Init/register-then-serve
// shape. Unlike that file's use of the global prometheus.DefaultRegisterer, this adapter
// owns a private prometheus.Registry so multiple Registry instances (e.g. one per test) never
// collide on metric names — the spec names no requirement to share the process-wide default
// registry, and duplicate registration there is a common source of test flakiness.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package metricsadapter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mdfh/feed"
	"mdfh/stats"
)

// Registry wires a stats.Statistics and a set of feed.Monitor instances into Prometheus
// gauges, backed by a private prometheus.Registry.
type Registry struct {
	reg *prometheus.Registry
}

// New constructs a Registry with no metrics registered yet; call Watch* to add sources.
func New() *Registry {
	return &Registry{reg: prometheus.NewRegistry()}
}

// WatchStatistics registers one GaugeFunc per stats.Snapshot counter, reading st live on
// every scrape (spec.md §6: "an adapter may subscribe to the statistics counters").
func (r *Registry) WatchStatistics(name string, st *stats.Statistics) {
	gauges := map[string]func() float64{
		"mdfh_received_total":       func() float64 { return float64(st.Received()) },
		"mdfh_processed_total":      func() float64 { return float64(st.Processed()) },
		"mdfh_dropped_total":        func() float64 { return float64(st.Dropped()) },
		"mdfh_bytes_received_total": func() float64 { return float64(st.BytesReceived()) },
		"mdfh_gap_count":            func() float64 { return float64(st.GapCount()) },
		"mdfh_latency_p50_us":       func() float64 { return float64(st.Percentile(0.50)) },
		"mdfh_latency_p99_us":       func() float64 { return float64(st.Percentile(0.99)) },
	}
	for metric, fn := range gauges {
		r.reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: metric, Help: metric, ConstLabels: prometheus.Labels{"feed": name}},
			fn,
		))
	}
}

// WatchFeed registers a gauge reflecting m's current FSM state as an integer
// (Connecting=0 .. Failed=4), so the state transitions named in spec.md §4.5 are visible to
// any Prometheus scraper.
func (r *Registry) WatchFeed(name string, m *feed.Monitor) {
	r.reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: "mdfh_feed_state", Help: "feed health FSM state (0=Connecting..4=Failed)", ConstLabels: prometheus.Labels{"feed": name}},
		func() float64 { return float64(m.State()) },
	))
	r.reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: "mdfh_feed_gap_count", Help: "per-feed sequence gap count", ConstLabels: prometheus.Labels{"feed": name}},
		func() float64 { return float64(m.GapCount()) },
	))
}

// Handler returns the http.Handler that serves this Registry's metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
