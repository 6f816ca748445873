package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tauhid97k/voters-info-api/internal/telemetry/metrics"
)

func RequestMetrics(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			begin := time.Now()
			resp := &responseWriter{ResponseWriter: respWriter, statusCode: http.StatusOK}
			matched := &matchedRoute{}

			// handler call
			next.ServeHTTP(resp, req.WithContext(context.WithValue(req.Context(), matchedRouteCtxKey{}, matched)))

			route := matched.template
			if route == "" {
				route = routeTemplate(req)
			}

			status := strconv.Itoa(resp.statusCode)
			metricsManager.CounterRequests.With(
				prometheus.Labels{
					"method": req.Method,
					"status": status,
				},
			).Inc()
			metricsManager.HistogramRequestDuration.With(
				prometheus.Labels{
					"route":       route,
					"method":      req.Method,
					"status_code": status,
				},
			).Observe(time.Since(begin).Seconds())
		})
	}
}

type matchedRouteCtxKey struct{}

type matchedRoute struct {
	template string
}

// MatchedRoute reports the route the router picked back to RequestMetrics,
// which wraps the whole router and never sees it. Register with Router.Use.
func MatchedRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if matched, ok := r.Context().Value(matchedRouteCtxKey{}).(*matchedRoute); ok {
			matched.template = routeTemplate(r)
		}
		next.ServeHTTP(w, r)
	})
}

// routeTemplate keeps label cardinality bounded: /api/users/{id} instead of ids
func routeTemplate(req *http.Request) string {
	current := mux.CurrentRoute(req)
	if current == nil {
		return "unknown"
	}
	tpl, err := current.GetPathTemplate()
	if err != nil {
		return "unknown"
	}
	return tpl
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (r *responseWriter) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
