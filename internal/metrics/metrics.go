package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_tracker_http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "equipment_tracker_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "equipment_tracker_http_requests_in_flight",
		Help: "Current number of HTTP requests being processed.",
	})
)

// EquipmentDB is the subset of db.DB needed to collect inventory metrics.
type EquipmentDB interface {
	CountByType() (map[string]int, error)
}

// equipmentCollector queries the database on each scrape to report record
// counts broken down by equipment type.
type equipmentCollector struct {
	db   EquipmentDB
	desc *prometheus.Desc
}

// NewEquipmentCollector returns a collector reporting equipment_tracker_equipment_total.
func NewEquipmentCollector(db EquipmentDB) prometheus.Collector {
	return &equipmentCollector{
		db: db,
		desc: prometheus.NewDesc(
			"equipment_tracker_equipment_total",
			"Number of equipment records, partitioned by type.",
			[]string{"type"},
			nil,
		),
	}
}

func (c *equipmentCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *equipmentCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.db.CountByType()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	for typ, n := range counts {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), typ)
	}
}

// Register registers all metrics with reg. Call once at startup after the
// database is opened.
func Register(reg prometheus.Registerer, db EquipmentDB) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		httpRequestsTotal,
		httpRequestDuration,
		httpRequestsInFlight,

		NewEquipmentCollector(db),
	)
}

// Handler returns the Prometheus HTTP handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
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

// Middleware wraps an http.Handler to record HTTP metrics.
// pattern should be the route pattern string (e.g. "PUT /api/equipment/{id}")
// so the path label has bounded cardinality.
func Middleware(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			httpRequestsInFlight.Dec()
			status := strconv.Itoa(rw.status)
			httpRequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rw, r)
	})
}
