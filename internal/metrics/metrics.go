// Package metrics holds the Prometheus instruments of the service. All
// collectors live in the default registry, so serving promhttp.Handler()
// on /metrics is enough to expose them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "submission"

// Submission outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalid        = "invalid"
	OutcomeDeliveryFailed = "delivery_failed"
)

// Dispatch outcomes.
const (
	DispatchSent   = "sent"
	DispatchFailed = "failed"
)

var (
	// formSubmissions counts handled submissions.
	// Labels:
	// - form:    quote, guard, company, fleet-worker
	// - outcome: success, invalid, delivery_failed
	formSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_total",
			Help:      "Form submissions by form and outcome.",
		},
		[]string{"form", "outcome"},
	)

	// emailDispatch counts single send attempts.
	// Labels:
	// - role:    admin or acknowledgement
	// - outcome: sent or failed
	emailDispatch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_dispatch_total",
			Help:      "Outbound email attempts by form, recipient role and outcome.",
		},
		[]string{"form", "role", "outcome"},
	)

	emailDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "email_dispatch_duration_seconds",
			Help:      "Time spent handing one message to the mail provider.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	rateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter (HTTP 429).",
		},
		[]string{"route"},
	)
)

// IncFormSubmission records the final outcome of one submission.
func IncFormSubmission(form, outcome string) {
	formSubmissions.WithLabelValues(orUnknown(form), orUnknown(outcome)).Inc()
}

// ObserveDispatch records one send attempt and its latency.
func ObserveDispatch(form, role, provider string, err error, elapsed time.Duration) {
	outcome := DispatchSent
	if err != nil {
		outcome = DispatchFailed
	}
	emailDispatch.WithLabelValues(orUnknown(form), orUnknown(role), outcome).Inc()
	emailDispatchDuration.WithLabelValues(orUnknown(provider)).Observe(elapsed.Seconds())
}

// IncRateLimitRejection increments the 429 counter for route.
func IncRateLimitRejection(route string) {
	rateLimitRejections.WithLabelValues(orUnknown(route)).Inc()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
