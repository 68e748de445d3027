package observe

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// testSetup creates both metrics and tracing infrastructure for middleware tests.
func testSetup(t *testing.T) (*Metrics, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	// Metrics.
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	// Tracing.
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	return m, reader, exp
}

// newMux serves handler under "GET /probe" and always answers 500 on
// "GET /broken".
func newMux(handler http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /probe", handler)
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return mux
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestMiddleware_SetsCorrelationID(t *testing.T) {
	m, _, _ := testSetup(t)

	var capturedCID string
	h := Middleware(m, discardLogger())(newMux(func(w http.ResponseWriter, r *http.Request) {
		capturedCID = CorrelationID(r.Context())
	}))

	rec := serve(h, httptest.NewRequest("GET", "/probe", nil))

	if len(capturedCID) != 32 {
		t.Errorf("generated correlation ID = %q, want 32 hex chars", capturedCID)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != capturedCID {
		t.Errorf("response X-Correlation-ID = %q, want %q", got, capturedCID)
	}
}

func TestMiddleware_NamesSpanAfterRoute(t *testing.T) {
	m, _, exp := testSetup(t)
	h := Middleware(m, discardLogger())(newMux(func(http.ResponseWriter, *http.Request) {}))

	serve(h, httptest.NewRequest("GET", "/probe", nil))
	serve(h, httptest.NewRequest("GET", "/nowhere", nil))

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].Name != "HTTP GET /probe" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "HTTP GET /probe")
	}
	if spans[1].Name != "HTTP unmatched" {
		t.Errorf("span name = %q, want %q", spans[1].Name, "HTTP unmatched")
	}
}

func TestMiddleware_RecordsDuration(t *testing.T) {
	m, reader, _ := testSetup(t)
	h := Middleware(m, discardLogger())(newMux(func(http.ResponseWriter, *http.Request) {}))

	serve(h, httptest.NewRequest("GET", "/probe", nil))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	met := findMetric(rm, "wayfarer.http.request.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("data points = %d, want 1", len(hist.DataPoints))
	}

	dp := hist.DataPoints[0]
	if dp.Count != 1 {
		t.Errorf("sample count = %d, want 1", dp.Count)
	}
	want := map[string]string{"method": "GET", "route": "GET /probe", "status": "200"}
	for key, value := range want {
		v, ok := dp.Attributes.Value(attribute.Key(key))
		if !ok || v.AsString() != value {
			t.Errorf("attribute %s = %q, want %q", key, v.AsString(), value)
		}
	}
}

func TestMiddleware_CapturesStatusCode(t *testing.T) {
	m, _, exp := testSetup(t)
	h := Middleware(m, discardLogger())(newMux(func(http.ResponseWriter, *http.Request) {}))

	rec := serve(h, httptest.NewRequest("GET", "/broken", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("response status = %d, want 500", rec.Code)
	}

	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no spans recorded")
	}
	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == "http.response.status_code" && a.Value.AsInt64() == 500 {
			found = true
		}
	}
	if !found {
		t.Error("span missing http.response.status_code attribute")
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status.Code)
	}
}

func TestMiddleware_PropagatesW3CTraceContext(t *testing.T) {
	m, _, _ := testSetup(t)

	var capturedCID string
	h := Middleware(m, discardLogger())(newMux(func(w http.ResponseWriter, r *http.Request) {
		capturedCID = CorrelationID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := serve(h, req)

	const want = "4bf92f3577b34da6a3ce929d0e0e4736"
	if capturedCID != want {
		t.Errorf("correlation ID = %q, want %q", capturedCID, want)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != want {
		t.Errorf("response X-Correlation-ID = %q, want %q", got, want)
	}
}

func TestMiddleware_LogsProbesAtDebug(t *testing.T) {
	m, _, _ := testSetup(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(http.ResponseWriter, *http.Request) {})
	h := Middleware(m, logger)(mux)

	serve(h, httptest.NewRequest("GET", "/healthz", nil))
	if buf.Len() != 0 {
		t.Errorf("probe logged at info: %s", buf.String())
	}

	serve(h, httptest.NewRequest("GET", "/elsewhere", nil))
	if !strings.Contains(buf.String(), "route=unmatched") || !strings.Contains(buf.String(), "status=404") {
		t.Errorf("log = %s", buf.String())
	}
}
