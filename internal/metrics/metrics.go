package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "train_reservation_"

// Metrics bundles the reservation metrics. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry wiring.
type Metrics struct {
	BookingsTotal       *prometheus.CounterVec
	BookingDuration     *prometheus.HistogramVec
	CancellationsTotal  *prometheus.CounterVec
	RollbacksTotal      *prometheus.CounterVec
	SeatsAvailable      *prometheus.GaugeVec
	EventPublishFailure prometheus.Counter
}

// New constructs the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bookings_total",
				Help: "Total booking attempts by result",
			},
			[]string{"result"},
		),
		BookingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "booking_duration_seconds",
				Help:    "Booking latency in seconds, persistence included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		CancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cancellations_total",
				Help: "Total cancellation attempts by result",
			},
			[]string{"result"},
		),
		RollbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rollbacks_total",
				Help: "Seat rollbacks after a failed write, by step",
			},
			[]string{"step"},
		),
		SeatsAvailable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "seats_available",
				Help: "Available seats per train after the last booking or cancellation",
			},
			[]string{"train_id"},
		),
		EventPublishFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "event_publish_failures_total",
			Help: "Ticket events that could not be published",
		}),
	}
	reg.MustRegister(
		m.BookingsTotal,
		m.BookingDuration,
		m.CancellationsTotal,
		m.RollbacksTotal,
		m.SeatsAvailable,
		m.EventPublishFailure,
	)
	return m
}

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBooking records one booking attempt.
func (m *Metrics) ObserveBooking(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
	m.BookingDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// IncCancellation records one cancellation attempt.
func (m *Metrics) IncCancellation(result string) {
	if m == nil {
		return
	}
	m.CancellationsTotal.WithLabelValues(result).Inc()
}

// IncRollback records a seat rollback.
func (m *Metrics) IncRollback(step string) {
	if m == nil {
		return
	}
	m.RollbacksTotal.WithLabelValues(step).Inc()
}

// SetSeatsAvailable updates the availability gauge of one train.
func (m *Metrics) SetSeatsAvailable(trainID string, n int) {
	if m == nil {
		return
	}
	m.SeatsAvailable.WithLabelValues(trainID).Set(float64(n))
}

// IncEventPublishFailure records a ticket event that was dropped.
func (m *Metrics) IncEventPublishFailure() {
	if m == nil {
		return
	}
	m.EventPublishFailure.Inc()
}
