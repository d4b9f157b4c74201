package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.IncOrdersCreated()
	metrics.ObserveCheckoutDuration(150 * time.Millisecond)
	metrics.AddPayoutsScheduled(2)
	metrics.IncPayoutsPaid()
	metrics.IncNotificationFailure("email")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_orders_created", "", ""); err != nil {
		t.Fatalf("fetch orders created: %v", err)
	} else if got != 1 {
		t.Fatalf("expected orders_created=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_payouts_scheduled", "", ""); err != nil {
		t.Fatalf("fetch payouts scheduled: %v", err)
	} else if got != 2 {
		t.Fatalf("expected payouts_scheduled=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_notification_failures", "channel", "email"); err != nil {
		t.Fatalf("fetch notification failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected notification_failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_duration_seconds"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var metrics *CheckoutMetrics
	metrics.IncOrdersCreated()
	metrics.ObserveCheckoutDuration(time.Second)
	metrics.AddPayoutsScheduled(1)
	metrics.IncPayoutsPaid()
	metrics.IncNotificationFailure("")

	unregistered := NewCheckoutMetrics(nil)
	unregistered.IncOrdersCreated()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if label == "" || matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetHistogram().GetSampleSum(), nil
	}
	return 0, fmt.Errorf("histogram %q has no samples", name)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
