package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// gatherValue returns the value of the sample of family name whose labels
// include want, or -1 when there is none.
func gatherValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if hasLabels(m, want) {
				switch {
				case m.Counter != nil:
					return m.GetCounter().GetValue()
				case m.Gauge != nil:
					return m.GetGauge().GetValue()
				case m.Histogram != nil:
					return float64(m.GetHistogram().GetSampleCount())
				}
			}
		}
	}
	return -1
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string)
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func newRouter(mw func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return r
}

func TestPrometheusLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(Prometheus(WithRegistry(reg), WithNamespace("test")))

	for _, path := range []string{"/items/1", "/items/2", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	ok := gatherValue(t, reg, "test_http_requests_total", map[string]string{
		"route": "/items/{id}", "method": "GET", "status": "2xx",
	})
	if ok != 2 {
		t.Errorf("2xx requests for /items/{id} = %v, want 2", ok)
	}
	failed := gatherValue(t, reg, "test_http_requests_total", map[string]string{
		"route": "/boom", "status": "5xx",
	})
	if failed != 1 {
		t.Errorf("5xx requests for /boom = %v, want 1", failed)
	}
	if n := gatherValue(t, reg, "test_http_request_duration_seconds", map[string]string{"route": "/items/{id}"}); n != 2 {
		t.Errorf("duration samples = %v, want 2", n)
	}
	if n := gatherValue(t, reg, "test_http_requests_in_flight", nil); n != 0 {
		t.Errorf("in flight = %v, want 0", n)
	}
}

func TestPrometheusUnmatchedRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(Prometheus(WithRegistry(reg)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", nil))

	got := gatherValue(t, reg, "reactive_http_requests_total", map[string]string{"status": "4xx"})
	if got != 1 {
		t.Errorf("4xx requests = %v, want 1", got)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{0: "hijacked", 200: "2xx", 204: "2xx", 404: "4xx", 503: "5xx"}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}

type recordedSpan struct {
	noop.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordedSpan) SetName(name string) { s.name = name }

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (tr *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, attrs: make(map[attribute.Key]attribute.Value)}
	s.SetAttributes(cfg.Attributes()...)
	tr.spans = append(tr.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

func TestOpenTelemetrySpans(t *testing.T) {
	tracer := &recordingTracer{}
	r := newRouter(OpenTelemetry(WithTracer(tracer)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/items/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/boom", nil))

	if len(tracer.spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(tracer.spans))
	}

	ok := tracer.spans[0]
	if ok.name != "HTTP GET /items/{id}" {
		t.Errorf("span name = %q", ok.name)
	}
	if got := ok.attrs["http.target"].AsString(); got != "/items/7" {
		t.Errorf("http.target = %q", got)
	}
	if got := ok.attrs["http.status_code"].AsInt64(); got != 200 {
		t.Errorf("http.status_code = %d", got)
	}
	if ok.status != codes.Ok || !ok.ended {
		t.Errorf("span status = %v ended = %v", ok.status, ok.ended)
	}

	if tracer.spans[1].status != codes.Error {
		t.Errorf("500 span status = %v, want Error", tracer.spans[1].status)
	}
}

func TestOpenTelemetrySpanInContext(t *testing.T) {
	tracer := &recordingTracer{}
	var seen trace.Span
	mw := OpenTelemetry(WithTracer(tracer))
	h := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = trace.SpanFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(tracer.spans) != 1 || seen != trace.Span(tracer.spans[0]) {
		t.Error("handler did not see the request span")
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	tracer := &recordingTracer{}
	r := newRouter(OpenTelemetry(
		WithTracer(tracer),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/boom" }),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("app", "test")}
		}),
	))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/boom", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/items/1", nil))

	if len(tracer.spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(tracer.spans))
	}
	if got := tracer.spans[0].attrs["app"].AsString(); got != "test" {
		t.Errorf("custom attribute = %q", got)
	}
}
