package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.IncOperation("add_product", "ok")
	m.ObserveOperation("add_product", 30*time.Millisecond)
	m.IncExpiration()
	m.ObserveRender(5 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "quote_cart_operations_total", "op", "add_product"); err != nil {
		t.Fatalf("fetch operations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected operations=1, got %f", got)
	}

	if mf := findMetricFamily(mfs, "quote_cart_expirations_total"); mf == nil {
		t.Fatal("expirations counter not exported")
	} else if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected expirations=1, got %f", got)
	}

	if mf := findMetricFamily(mfs, "quote_cart_render_duration_seconds"); mf == nil {
		t.Fatal("render histogram not exported")
	} else if got := mf.GetMetric()[0].GetHistogram().GetSampleSum(); got <= 0 {
		t.Fatalf("expected render sum > 0, got %f", got)
	}
}

func TestNilRegistererProducesNoopMetrics(t *testing.T) {
	m := NewCartMetrics(nil)
	m.IncOperation("remove", "ok")
	m.IncExpiration()
	m.ObserveRender(time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == label && pair.GetValue() == value {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("label %s=%s not found on %q", label, value, name)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
