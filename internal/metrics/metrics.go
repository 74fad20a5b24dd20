package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnads_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "earnads_http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnads_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	SignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "earnads_signups_total",
			Help: "Registered users",
		},
	)

	AdRewardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnads_ad_rewards_total",
			Help: "Ad reward attempts by outcome",
		},
		[]string{"outcome"},
	)

	WithdrawalsRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnads_withdrawals_requested_total",
			Help: "Withdrawal requests by payout method",
		},
		[]string{"method"},
	)

	WithdrawalsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnads_withdrawals_resolved_total",
			Help: "Resolved withdrawals by decision",
		},
		[]string{"decision"},
	)

	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "earnads_document_persist_seconds",
			Help:    "Time spent writing the document to the backend",
			Buckets: prometheus.DefBuckets,
		},
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "earnads_document_persist_failures_total",
			Help: "Failed document writes",
		},
	)
)

// ObservePersist хук для store.Options.OnPersist
func ObservePersist(d time.Duration, err error) {
	PersistDuration.Observe(d.Seconds())
	if err != nil {
		PersistFailures.Inc()
	}
}
