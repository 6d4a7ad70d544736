package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEngineMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewEngineMetrics(reg)

	metrics.IncCommit("success")
	metrics.IncCommit("unavailable")
	metrics.ObserveAvailability("ok", 120*time.Millisecond)
	metrics.SetSessionsOpen(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "commit_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "commit_total", "outcome", "unavailable"); err != nil {
		t.Fatalf("fetch unavailable: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unavailable=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "availability_check_duration_seconds", "result", "ok"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if mf := findMetricFamily(mfs, "sessions_open"); mf == nil {
		t.Fatal("sessions_open gauge not exported")
	} else if mf.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected gauge 3, got %f", mf.GetMetric()[0].GetGauge().GetValue())
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var metrics *EngineMetrics
	metrics.IncCommit("success")
	metrics.ObserveAvailability("ok", time.Second)
	metrics.SetSessionsOpen(1)

	empty := NewEngineMetrics(nil)
	empty.IncCommit("success")
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

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
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
