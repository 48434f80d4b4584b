package api

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ivao_stats_http_request_duration_seconds",
	Help:    "HTTP request latency by method and path.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs one line per request and feeds the latency histogram.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(elapsed.Seconds())
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, elapsed.Round(time.Millisecond))
	})
}
