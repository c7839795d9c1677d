package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// Ingestion metrics
	MessagesIngested prometheus.Counter
	IngestionErrors  prometheus.Counter

	// Matching metrics
	MatchesFound         prometheus.Counter
	NotificationsSent    prometheus.Counter
	NotificationFailures prometheus.Counter
	MatchingPassDuration prometheus.Histogram

	// Join queue metrics
	JoinRequestsEnqueued  prometheus.Counter
	JoinRequestsSucceeded prometheus.Counter
	JoinRequestsFailed    prometheus.Counter
	JoinRateLimitWaits    prometheus.Counter
	JoinProcessDuration   prometheus.Histogram
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the process-wide metrics instance. Counters
// can only be registered once on the default registry, so every caller
// shares this one.
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		defaultMetrics = NewMetrics()
	})
	return defaultMetrics
}

// NewMetrics creates a Metrics instance registered on the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_messages_ingested_total",
			Help: "Total number of channel messages persisted",
		}),
		IngestionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_ingestion_errors_total",
			Help: "Total number of message events that failed to persist",
		}),
		MatchesFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_matches_found_total",
			Help: "Total number of subscription matches",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_notifications_sent_total",
			Help: "Total number of notifications delivered",
		}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_notification_failures_total",
			Help: "Total number of notification sends that failed",
		}),
		MatchingPassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tgwrapper_matching_pass_duration_seconds",
			Help:    "Duration of a full matching pass over active subscriptions",
			Buckets: prometheus.DefBuckets,
		}),
		JoinRequestsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_join_requests_enqueued_total",
			Help: "Total number of join requests accepted into the queue",
		}),
		JoinRequestsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_join_requests_succeeded_total",
			Help: "Total number of join requests that reached SUCCESS",
		}),
		JoinRequestsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_join_requests_failed_total",
			Help: "Total number of join requests that reached FAILED",
		}),
		JoinRateLimitWaits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tgwrapper_join_rate_limit_waits_total",
			Help: "Total number of rate-limit throttles hit by the join processor",
		}),
		JoinProcessDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tgwrapper_join_process_duration_seconds",
			Help:    "Duration of processing a single join request",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
