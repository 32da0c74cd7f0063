// Package telemetry exposes Prometheus counters for the chat and report
// pipelines plus a request-timing middleware.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_messages_total",
		Help: "Chat messages appended, by sender.",
	}, []string{"sender"})

	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_responder_intents_total",
		Help: "Responder rule hits, by intent class.",
	}, []string{"intent"})

	ReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crimewatch_reports_created_total",
		Help: "Crime reports accepted.",
	})

	ReportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_report_status_transitions_total",
		Help: "Report status transitions applied, by new status.",
	}, []string{"status"})

	ActiveStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crimewatch_active_streams",
		Help: "Open live subscriptions, by stream kind.",
	}, []string{"kind"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crimewatch_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request latency and status for every route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		requestDuration.WithLabelValues(r.Method, strconv.Itoa(srw.status)).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers keep flushing through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
