// Package metrics holds the Prometheus instruments for the subjects API.
// Collectors are registered with the default registry in init, so mounting
// promhttp.Handler() is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "class_subjects_submissions_total",
			Help: "Cumulative number of subjects records stored.",
		})

	SubmissionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "class_subjects_submission_errors_total",
			Help: "Cumulative number of rejected or failed submissions, by reason.",
		}, []string{"reason"})

	SubjectsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "class_subjects_subjects_received_total",
			Help: "Cumulative number of subject names received across all submissions.",
		})

	FeedSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "class_subjects_feed_subscribers",
			Help: "Number of live feed WebSocket connections.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		SubmissionErrorsTotal,
		SubjectsReceivedTotal,
		FeedSubscribers,
	)
}
