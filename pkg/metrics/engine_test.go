package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEngineMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewEngineMetrics(reg)

	metrics.AddStatusAdvances("submissions", 3)
	metrics.AddStatusAdvances("cards", 7)
	metrics.IncRepack("member_positions")
	metrics.IncDraftCreated()
	metrics.IncInvoiceSent()
	metrics.IncInvoiceSent()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "lifecycle_status_advances_total", "entity", "submissions"); err != nil {
		t.Fatalf("fetch advances: %v", err)
	} else if got != 3 {
		t.Fatalf("expected submissions advances=3, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "lifecycle_status_advances_total", "entity", "cards"); err != nil {
		t.Fatalf("fetch advances: %v", err)
	} else if got != 7 {
		t.Fatalf("expected card advances=7, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "group_repacks_total", "kind", "member_positions"); err != nil {
		t.Fatalf("fetch repacks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected repacks=1, got %f", got)
	}

	if got := fetchScalarCounter(t, mfs, "billing_invoices_sent_total"); got != 2 {
		t.Fatalf("expected invoices sent=2, got %f", got)
	}
	if got := fetchScalarCounter(t, mfs, "billing_drafts_created_total"); got != 1 {
		t.Fatalf("expected drafts created=1, got %f", got)
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var metrics *EngineMetrics
	metrics.AddStatusAdvances("submissions", 1)
	metrics.IncRepack("card_order")
	metrics.IncDraftCreated()
	metrics.IncInvoiceSent()

	unregistered := NewEngineMetrics(nil)
	unregistered.AddStatusAdvances("submissions", 1)
	unregistered.IncInvoiceSent()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchScalarCounter(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		t.Fatalf("metric %q not found", name)
	}
	metrics := mf.GetMetric()
	if len(metrics) != 1 {
		t.Fatalf("expected one series for %q, got %d", name, len(metrics))
	}
	return metrics[0].GetCounter().GetValue()
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
