// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "influencer_stats"

var (
	resolverLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "resolver",
		Name:      "lookups_total",
		Help:      "Total identifier lookups by platform and source",
	}, []string{"platform", "source"})

	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "pages_fetched_total",
		Help:      "Total upstream pages fetched by platform",
	}, []string{"platform"})

	postsNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "posts_normalized_total",
		Help:      "Total posts normalized by platform",
	}, []string{"platform"})

	upstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Upstream request latency by host and endpoint",
		Buckets:   prometheus.DefBuckets,
	}, []string{"host", "endpoint"})

	classifierCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "classifier",
		Name:      "calls_total",
		Help:      "Total classifier calls by status",
	}, []string{"status"})

	classifierLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "classifier",
		Name:      "call_duration_seconds",
		Help:      "Classifier call latency",
		Buckets:   prometheus.DefBuckets,
	})

	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total pipeline runs by platform and status",
	}, []string{"platform", "status"})

	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Pipeline run duration by platform",
		Buckets:   prometheus.DefBuckets,
	}, []string{"platform"})
)

// RecordResolverLookup counts one identifier lookup. Source is one of
// "session", "store" or "network".
func RecordResolverLookup(platform, source string) {
	resolverLookups.WithLabelValues(platform, source).Inc()
}

// RecordPageFetched counts one fetched page and its normalized posts.
func RecordPageFetched(platform string, posts int) {
	pagesFetched.WithLabelValues(platform).Inc()
	postsNormalized.WithLabelValues(platform).Add(float64(posts))
}

// RecordUpstreamLatency observes one upstream request duration.
func RecordUpstreamLatency(host, endpoint string, seconds float64) {
	upstreamLatency.WithLabelValues(host, endpoint).Observe(seconds)
}

// RecordClassifierCall counts one classifier call and its duration.
func RecordClassifierCall(status string, seconds float64) {
	classifierCalls.WithLabelValues(status).Inc()
	classifierLatency.Observe(seconds)
}

// RecordPipelineRun counts one completed run and its duration.
func RecordPipelineRun(platform, status string, seconds float64) {
	pipelineRuns.WithLabelValues(platform, status).Inc()
	pipelineDuration.WithLabelValues(platform).Observe(seconds)
}

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
