// Package metrics collects and exposes Prometheus counters for the sync
// layer. Its main purpose is to make deliberately-swallowed failures (profile
// enrichment, meeting deletion) observable even though they never surface to
// the user.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface consumed by the session and meeting layers.
type Recorder interface {
	RecordEnrichmentFailure(kind string)
	RecordDeleteFailure(kind string)
	RecordDeleteDenied()
	RecordSync(operation, outcome string)
}

// Collector is the Prometheus-backed Recorder implementation.
type Collector struct {
	enrichmentFailures *prometheus.CounterVec
	deleteFailures     *prometheus.CounterVec
	deleteDenied       prometheus.Counter
	syncOperations     *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		enrichmentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_profile_enrichment_failures_total",
			Help: "Profile enrichment attempts that failed and left the fallback profile in place.",
		}, []string{"kind"}),
		deleteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_meeting_delete_failures_total",
			Help: "Meeting deletions rejected or lost after the local authorization check passed.",
		}, []string{"kind"}),
		deleteDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_meeting_delete_denied_total",
			Help: "Meeting deletions refused locally because the session is not the initiator.",
		}),
		syncOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_sync_operations_total",
			Help: "Sync layer operations by name and outcome.",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(
		c.enrichmentFailures,
		c.deleteFailures,
		c.deleteDenied,
		c.syncOperations,
	)

	return c
}

// RecordEnrichmentFailure counts a swallowed profile enrichment failure.
func (c *Collector) RecordEnrichmentFailure(kind string) {
	c.enrichmentFailures.WithLabelValues(kind).Inc()
}

// RecordDeleteFailure counts a swallowed meeting deletion failure.
func (c *Collector) RecordDeleteFailure(kind string) {
	c.deleteFailures.WithLabelValues(kind).Inc()
}

// RecordDeleteDenied counts a deletion refused by the local initiator check.
func (c *Collector) RecordDeleteDenied() {
	c.deleteDenied.Inc()
}

// RecordSync counts a sync operation outcome.
func (c *Collector) RecordSync(operation, outcome string) {
	c.syncOperations.WithLabelValues(operation, outcome).Inc()
}

// Handler returns an HTTP handler serving the /metrics scrape endpoint for
// the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Nop is a Recorder that discards every observation. It keeps call sites
// unconditional when metrics are disabled.
type Nop struct{}

// RecordEnrichmentFailure implements Recorder.
func (Nop) RecordEnrichmentFailure(string) {}

// RecordDeleteFailure implements Recorder.
func (Nop) RecordDeleteFailure(string) {}

// RecordDeleteDenied implements Recorder.
func (Nop) RecordDeleteDenied() {}

// RecordSync implements Recorder.
func (Nop) RecordSync(string, string) {}
