package api

import (
	"time"

	"Go2FlowLens/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels refreshes that produced a report.
	OutcomeSuccess = "success"
	// OutcomeError labels refreshes that failed to load or aggregate.
	OutcomeError = "error"
)

var (
	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowlens",
			Name:      "report_refreshes_total",
			Help:      "Total number of report recomputations, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	refreshDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flowlens",
			Name:      "report_refresh_seconds",
			Help:      "Report recomputation latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowlens",
			Name:      "report_requests_total",
			Help:      "Total number of report requests served, partitioned by route.",
		},
		[]string{"route"},
	)

	accuracyRates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "flowlens",
			Name:      "detection_rate",
			Help:      "Latest detection accuracy rates from the most recent report.",
		},
		[]string{"rate"},
	)
)

// Register attaches the API collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		refreshesTotal,
		refreshDurationSeconds,
		requestsTotal,
		accuracyRates,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// observeRefresh records one report recomputation.
func observeRefresh(duration time.Duration, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	refreshesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	refreshDurationSeconds.Observe(duration.Seconds())
}

// recordRates publishes the latest accuracy rates as gauges.
func recordRates(acc model.AccuracyMetrics) {
	accuracyRates.WithLabelValues("precision").Set(acc.Precision)
	accuracyRates.WithLabelValues("recall").Set(acc.Recall)
	accuracyRates.WithLabelValues("f1").Set(acc.F1)
	accuracyRates.WithLabelValues("accuracy").Set(acc.Accuracy)
	accuracyRates.WithLabelValues("fpr").Set(acc.FalsePositiveRate)
}

// countRequest tallies a served route.
func countRequest(route string) {
	requestsTotal.WithLabelValues(route).Inc()
}
