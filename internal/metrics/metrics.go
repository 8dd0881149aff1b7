// Package metrics exposes Prometheus collectors for scrape runs and the API.
package metrics

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	awardsSourcesTotal          *prometheus.CounterVec
	awardsFetchTotal            *prometheus.CounterVec
	awardsBytesTotal            *prometheus.CounterVec
	awardsRecordsTotal          *prometheus.CounterVec
	awardsEnrichmentStepsTotal  *prometheus.CounterVec
	awardsRateLimitDelaySeconds *prometheus.HistogramVec
	awardsLastRunTimestamp      prometheus.Gauge
	awardsRunDurationSeconds    prometheus.Gauge
	httpRequestsTotal           *prometheus.CounterVec
	httpRequestDurationSeconds  *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		awardsSourcesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awards_sources_total",
				Help: "Sources processed, labeled by outcome (ok, empty, failed).",
			},
			[]string{"status"},
		)

		awardsFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awards_fetch_total",
				Help: "Fetch attempts, labeled by retrieval strategy and status.",
			},
			[]string{"strategy", "status"},
		)

		awardsBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awards_bytes_total",
				Help: "Markup bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		awardsRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awards_records_total",
				Help: "Records seen per pipeline stage (scraped, seeded, final).",
			},
			[]string{"stage"},
		)

		awardsEnrichmentStepsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awards_enrichment_steps_total",
				Help: "Enrichment sub-steps executed, labeled by step and status.",
			},
			[]string{"step", "status"},
		)

		awardsRateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "awards_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		awardsLastRunTimestamp = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "awards_last_run_timestamp_seconds",
				Help: "Unix time at which the last scrape run finished.",
			},
		)

		awardsRunDurationSeconds = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "awards_run_duration_seconds",
				Help: "Wall-clock duration of the last scrape run.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// WriteTextfile dumps every registered metric to path in the node_exporter
// textfile format, for batch runs that exit before a scrape could happen.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// ObserveSource counts a processed source.
func ObserveSource(status string) {
	awardsSourcesTotal.WithLabelValues(status).Inc()
}

// ObserveFetch counts a fetch attempt and the bytes it returned.
func ObserveFetch(site, strategy, status string, bytesFetched int) {
	awardsFetchTotal.WithLabelValues(strategy, status).Inc()
	if bytesFetched > 0 {
		awardsBytesTotal.WithLabelValues(SanitizeSite(site)).Add(float64(bytesFetched))
	}
}

// ObserveRecords adds n records to a stage counter.
func ObserveRecords(stage string, n int) {
	if n > 0 {
		awardsRecordsTotal.WithLabelValues(stage).Add(float64(n))
	}
}

// ObserveEnrichmentStep counts one enrichment sub-step.
func ObserveEnrichmentStep(step string, ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	awardsEnrichmentStepsTotal.WithLabelValues(step, status).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	awardsRateLimitDelaySeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveRun records when the last run finished and how long it took.
func ObserveRun(finished time.Time, duration time.Duration) {
	awardsLastRunTimestamp.Set(float64(finished.Unix()))
	awardsRunDurationSeconds.Set(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
