package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskvault/taskvault/internal/platform/metrics"
)

// Metrics records per-route latency and error counts. Routes are labeled
// with the chi pattern so path parameters don't explode cardinality.
func Metrics(mm *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mm == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

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
