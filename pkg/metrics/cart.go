package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// CartMetrics records cart workflow outcomes and submission totals.
type CartMetrics struct {
	operations    *prometheus.CounterVec
	submitted     prometheus.Histogram
	publishFailed prometheus.Counter
}

// NewCartMetrics registers the cart workflow metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart workflow operations, by operation and outcome.",
	}, []string{"operation", "outcome"})
	submitted := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_submission_amount",
		Help:    "Total amount of submitted carts.",
		Buckets: []float64{0, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	publishFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_submission_event_failures_total",
		Help: "Submission events that could not be published.",
	})
	reg.MustRegister(operations, submitted, publishFailed)
	return &CartMetrics{
		operations:    operations,
		submitted:     submitted,
		publishFailed: publishFailed,
	}
}

// Record increments the counter for the operation with the outcome derived from err.
func (m *CartMetrics) Record(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// ObserveSubmission records the total amount of a submitted cart.
func (m *CartMetrics) ObserveSubmission(total decimal.Decimal) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.Observe(total.InexactFloat64())
}

// IncPublishFailure counts a submission event that failed to publish.
func (m *CartMetrics) IncPublishFailure() {
	if m == nil || m.publishFailed == nil {
		return
	}
	m.publishFailed.Inc()
}
