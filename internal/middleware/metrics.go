package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/54ba/midostore-sub004/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// HTTPMetrics records request latency per route pattern and counts error
// responses. The chi route pattern is used instead of the raw path so
// /products/comparison/{baseProductId} stays one series.
func HTTPMetrics(mm *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			mm.HTTPRequestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			if ww.Status() >= http.StatusBadRequest {
				mm.HTTPErrorsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
			}
		})
	}
}
