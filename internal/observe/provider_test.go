package observe

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

func TestInitProvider_ExportsToRegisterer(t *testing.T) {
	origMP, origTP := otel.GetMeterProvider(), otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(origMP)
		otel.SetTracerProvider(origTP)
	})

	reg := prometheus.NewRegistry()
	shutdown, err := InitProvider(context.Background(), ProviderConfig{
		ServiceVersion: "test",
		Registerer:     reg,
		SampleRatio:    0.5,
	})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.RecordPackage(context.Background(), false, "ok", 0.01)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	var service string
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "wayfarer_ingest_packages") {
			found = true
		}
		if f.GetName() == "target_info" {
			for _, m := range f.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "service_name" {
						service = l.GetValue()
					}
				}
			}
		}
	}
	if !found {
		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}
		t.Errorf("ingest packages metric not exported, got %v", names)
	}
	if service != "wayfarer" {
		t.Errorf("target_info service_name = %q, want wayfarer", service)
	}
}

func TestInitProvider_RejectsBadSampleRatio(t *testing.T) {
	t.Parallel()
	if _, err := InitProvider(context.Background(), ProviderConfig{SampleRatio: 1.5}); err == nil {
		t.Fatal("expected error for sample ratio above 1")
	}
}
