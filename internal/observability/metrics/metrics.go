package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the appointment lifecycle.
type BookingMetrics struct {
	bookingsTotal   *prometheus.CounterVec
	paymentsTotal   *prometheus.CounterVec
	finalizeLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "payments",
			Name:      "orders_total",
			Help:      "Payment order creations by status",
		}, []string{"status"}),
		finalizeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carebridge",
			Subsystem: "appointments",
			Name:      "finalize_latency_seconds",
			Help:      "Latency of appointment finalize",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.paymentsTotal, m.finalizeLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObservePaymentOrder(status string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveFinalizeLatency(seconds float64) {
	if m == nil {
		return
	}
	m.finalizeLatency.Observe(seconds)
}

// RealtimeMetrics tracks the change-feed hub.
type RealtimeMetrics struct {
	subscriptionsTotal *prometheus.CounterVec
	changesDelivered   *prometheus.CounterVec
}

func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	m := &RealtimeMetrics{
		subscriptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "realtime",
			Name:      "subscriptions_total",
			Help:      "Table subscriptions opened",
		}, []string{"table"}),
		changesDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "realtime",
			Name:      "changes_delivered_total",
			Help:      "Change pings delivered to subscribers",
		}, []string{"table"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.subscriptionsTotal, m.changesDelivered)
	return m
}

func (m *RealtimeMetrics) ObserveSubscription(table string) {
	if m == nil {
		return
	}
	m.subscriptionsTotal.WithLabelValues(table).Inc()
}

func (m *RealtimeMetrics) ObserveChangeDelivered(table string) {
	if m == nil {
		return
	}
	m.changesDelivered.WithLabelValues(table).Inc()
}
