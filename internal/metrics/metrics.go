package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerlift_http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "powerlift_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powerlift_http_requests_in_flight",
		Help: "Current number of HTTP requests being processed.",
	})

	deviceCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerlift_device_commands_total",
			Help: "Total number of device commands dispatched, by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
)

// RecordCommand counts one device command dispatch attempt. outcome is
// "delivered" or "degraded".
func RecordCommand(action, outcome string) {
	deviceCommandsTotal.WithLabelValues(action, outcome).Inc()
}

// EquipmentDB is the subset of the equipment store needed to collect
// fleet metrics.
type EquipmentDB interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// equipmentCollector is a custom Prometheus collector that queries the
// database on each scrape to report equipment counts broken down by
// status.
type equipmentCollector struct {
	db            EquipmentDB
	equipmentDesc *prometheus.Desc
}

func (c *equipmentCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.equipmentDesc
}

func (c *equipmentCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.db.CountByStatus(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.equipmentDesc, err)
		return
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(
			c.equipmentDesc,
			prometheus.GaugeValue,
			float64(n),
			status,
		)
	}
}

// Register registers all metrics with the default Prometheus registry.
// Call once at startup after the database is initialised.
func Register(db EquipmentDB) {
	prometheus.MustRegister(
		// Standard Go runtime and process metrics
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		// HTTP service metrics
		httpRequestsTotal,
		httpRequestDuration,
		httpRequestsInFlight,

		// Application metrics
		deviceCommandsTotal,
		&equipmentCollector{
			db: db,
			equipmentDesc: prometheus.NewDesc(
				"powerlift_equipment_total",
				"Number of equipment units managed, partitioned by status.",
				[]string{"status"},
				nil,
			),
		},
	)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// responseWriter wraps http.ResponseWriter to capture the response status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records HTTP metrics for every request. The path label is
// the chi route pattern (e.g. "/api/v1/equipment/{id}") so its
// cardinality stays bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			httpRequestsInFlight.Dec()

			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			status := strconv.Itoa(rw.status)
			httpRequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rw, r)
	})
}
