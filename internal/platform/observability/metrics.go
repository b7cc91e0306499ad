package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkstash_links_created_total",
		Help: "The total number of links created",
	}, []string{"channel"})

	PreviewFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkstash_preview_fetches_total",
		Help: "The total number of preview fetch completions by outcome",
	}, []string{"outcome"})

	PreviewFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkstash_preview_fetch_duration_seconds",
		Help:    "Duration of preview fetches including retries",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"kind"})

	PreviewQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkstash_preview_queue_depth",
		Help: "Number of links waiting for preview acquisition",
	})

	DigestsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkstash_digests_built_total",
		Help: "The total number of per-user digests built by outcome",
	}, []string{"outcome"})

	DigestEmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkstash_digest_emails_total",
		Help: "The total number of digest emails by delivery status",
	}, []string{"frequency", "status"})

	DigestDispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkstash_digest_dispatch_duration_seconds",
		Help:    "Duration of a full digest dispatch run",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"frequency"})
)

// Preview fetch outcome label values.
const (
	OutcomeVideo     = "video"
	OutcomeHTML      = "html"
	OutcomeOpaque    = "opaque"
	OutcomeFallback  = "fallback"
	OutcomePermanent = "permanent_failure"
)
