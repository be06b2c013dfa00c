// Package middleware instruments HTTP handlers with Prometheus metrics and
// OpenTelemetry spans. Both take and return a plain http.Handler, so they
// compose with chi's r.Use.
//
// # Prometheus Metrics
//
//	r.Use(middleware.Prometheus(
//	    middleware.WithRegistry(reg),
//	    middleware.WithNamespace("reactive"),
//	))
//
// Metrics collected:
//   - <namespace>_http_requests_total: requests by route, method and status class
//   - <namespace>_http_request_duration_seconds: request latency by route
//   - <namespace>_http_requests_in_flight: requests being served
//
// Routes are labelled with the chi route pattern, never the raw path, so
// label cardinality stays bounded.
//
// # OpenTelemetry
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("reactive/inspector"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The span is stored in the request context, so handlers reach it through
// trace.SpanFromContext(r.Context()).
package middleware
