package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"

	LegMerchant = "merchant"
	LegCustomer = "customer"
)

// CheckoutMetrics records checkout submissions and order email dispatch.
type CheckoutMetrics struct {
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	emails      *prometheus.CounterVec
	partial     prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_emails_total",
		Help: "Order emails by recipient leg and result.",
	}, []string{"leg", "result"})
	partial := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_partial_failures_total",
		Help: "Orders whose merchant email was sent but customer email failed.",
	})
	reg.MustRegister(submissions, duration, emails, partial)
	return &CheckoutMetrics{
		submissions: submissions,
		duration:    duration,
		emails:      emails,
		partial:     partial,
	}
}

// ObserveSubmission counts a finished submission and its duration.
func (c *CheckoutMetrics) ObserveSubmission(outcome string, elapsed time.Duration) {
	if c == nil || c.submissions == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	c.submissions.WithLabelValues(outcome).Inc()
	c.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// IncEmail counts one email attempt for leg.
func (c *CheckoutMetrics) IncEmail(leg string, sent bool) {
	if c == nil || c.emails == nil {
		return
	}
	result := "sent"
	if !sent {
		result = "failed"
	}
	c.emails.WithLabelValues(normalizeLabel(leg), result).Inc()
}

// IncPartialFailure counts an order left with only the merchant notified.
func (c *CheckoutMetrics) IncPartialFailure() {
	if c == nil || c.partial == nil {
		return
	}
	c.partial.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
