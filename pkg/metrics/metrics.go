package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты бронирования для счётчика BookingsTotal
const (
	BookingResultSuccess  = "success"
	BookingResultConflict = "conflict"
	BookingResultInvalid  = "invalid"
	BookingResultError    = "error"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration     *prometheus.HistogramVec
	DBOpenConnections   prometheus.Gauge
	DBInUseConnections  prometheus.Gauge
	DBIdleConnections   prometheus.Gauge
	DBWaitCount         prometheus.Gauge
	DBWaitDurationTotal prometheus.Gauge

	// Парковка
	BookingsTotal         *prometheus.CounterVec
	RegistryMarkMissTotal prometheus.Counter
	RegistrySweptTotal    prometheus.Counter
	CacheRequestsTotal    *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer регистрирует метрики в указанном реестре
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),

		DBOpenConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),
		DBWaitCount: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),
		DBWaitDurationTotal: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_duration_seconds_total",
			Help:        "Total time blocked waiting for a new connection",
			ConstLabels: labels,
		}),

		BookingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "parking_bookings_total",
			Help:        "Booking attempts by result",
			ConstLabels: labels,
		}, []string{"result"}),

		RegistryMarkMissTotal: f.NewCounter(prometheus.CounterOpts{
			Name:        "registry_mark_occupied_miss_total",
			Help:        "Bookings whose slot/location pair matched no registry row",
			ConstLabels: labels,
		}),

		RegistrySweptTotal: f.NewCounter(prometheus.CounterOpts{
			Name:        "registry_swept_slots_total",
			Help:        "Registry rows released by the expiry sweeper",
			ConstLabels: labels,
		}),

		CacheRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_cache_requests_total",
			Help:        "Availability cache lookups by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}
}

// ObserveBooking безопасен для nil-получателя (метрики выключены)
func (m *Metrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
}

// ObserveRegistryMiss безопасен для nil-получателя
func (m *Metrics) ObserveRegistryMiss() {
	if m == nil {
		return
	}
	m.RegistryMarkMissTotal.Inc()
}

// ObserveSwept безопасен для nil-получателя
func (m *Metrics) ObserveSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.RegistrySweptTotal.Add(float64(n))
}

// ObserveCache безопасен для nil-получателя
func (m *Metrics) ObserveCache(outcome string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(outcome).Inc()
}
