// Package metrics exposes Prometheus instrumentation for payout settlement.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Settle outcomes used as the "outcome" label
const (
	OutcomeCommitted      = "committed"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeAlreadySettled = "already_settled"
	OutcomeUnavailable    = "unavailable"
)

// Metrics holds the payout collectors. A nil *Metrics records nothing.
type Metrics struct {
	settleRequests  *prometheus.CounterVec
	settleDuration  prometheus.Histogram
	settledAmount   prometheus.Counter
	settledBookings prometheus.Counter
}

// New registers the payout collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		settleRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payouts",
			Name:      "settle_requests_total",
			Help:      "Settlement attempts by outcome.",
		}, []string{"outcome"}),
		settleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "payouts",
			Name:      "settle_duration_seconds",
			Help:      "Time spent settling a batch of bookings.",
			Buckets:   prometheus.DefBuckets,
		}),
		settledAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: "payouts",
			Name:      "settled_amount_total",
			Help:      "Sum of committed settlement amounts.",
		}),
		settledBookings: f.NewCounter(prometheus.CounterOpts{
			Namespace: "payouts",
			Name:      "settled_bookings_total",
			Help:      "Bookings attached to committed settlements.",
		}),
	}
}

// ObserveSettle records one settle attempt.
func (m *Metrics) ObserveSettle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.settleRequests.WithLabelValues(outcome).Inc()
	m.settleDuration.Observe(d.Seconds())
}

// RecordSettlement adds a committed settlement to the running totals.
func (m *Metrics) RecordSettlement(amount decimal.Decimal, bookings int) {
	if m == nil {
		return
	}
	m.settledAmount.Add(amount.InexactFloat64())
	m.settledBookings.Add(float64(bookings))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
