package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the order pipeline counters and timings.
type CheckoutMetrics struct {
	ordersCreated        prometheus.Counter
	checkoutDuration     prometheus.Histogram
	payoutsScheduled     prometheus.Counter
	payoutsPaid          prometheus.Counter
	notificationFailures *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created",
		Help: "Orders committed by the checkout pipeline.",
	})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	payoutsScheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_payouts_scheduled",
		Help: "Store payouts scheduled at checkout.",
	})
	payoutsPaid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_payouts_paid",
		Help: "Store payouts marked paid.",
	})
	notificationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_notification_failures",
		Help: "Best-effort store notifications that could not be delivered.",
	}, []string{"channel"})
	reg.MustRegister(ordersCreated, checkoutDuration, payoutsScheduled, payoutsPaid, notificationFailures)
	return &CheckoutMetrics{
		ordersCreated:        ordersCreated,
		checkoutDuration:     checkoutDuration,
		payoutsScheduled:     payoutsScheduled,
		payoutsPaid:          payoutsPaid,
		notificationFailures: notificationFailures,
	}
}

// IncOrdersCreated increments the committed order counter.
func (c *CheckoutMetrics) IncOrdersCreated() {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.Inc()
}

// ObserveCheckoutDuration records how long a checkout submission took.
func (c *CheckoutMetrics) ObserveCheckoutDuration(duration time.Duration) {
	if c == nil || c.checkoutDuration == nil {
		return
	}
	c.checkoutDuration.Observe(duration.Seconds())
}

// AddPayoutsScheduled counts payout rows written at checkout.
func (c *CheckoutMetrics) AddPayoutsScheduled(count int) {
	if c == nil || c.payoutsScheduled == nil || count <= 0 {
		return
	}
	c.payoutsScheduled.Add(float64(count))
}

// IncPayoutsPaid increments the settled payout counter.
func (c *CheckoutMetrics) IncPayoutsPaid() {
	if c == nil || c.payoutsPaid == nil {
		return
	}
	c.payoutsPaid.Inc()
}

// IncNotificationFailure counts a failed best-effort notification.
func (c *CheckoutMetrics) IncNotificationFailure(channel string) {
	if c == nil || c.notificationFailures == nil {
		return
	}
	if channel == "" {
		channel = "unknown"
	}
	c.notificationFailures.WithLabelValues(channel).Inc()
}
