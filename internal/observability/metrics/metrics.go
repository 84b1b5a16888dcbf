package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for conversation turns.
type ConversationMetrics struct {
	turnsTotal         *prometheus.CounterVec
	turnLatency        *prometheus.HistogramVec
	bookingsTotal      prometheus.Counter
	cancellationsTotal prometheus.Counter
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"state", "outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chatbot",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of conversation turn handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "conversation",
			Name:      "bookings_total",
			Help:      "Total confirmed appointment bookings",
		}),
		cancellationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "conversation",
			Name:      "cancellations_total",
			Help:      "Total appointment cancellations",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.bookingsTotal, m.cancellationsTotal)
	return m
}

func (m *ConversationMetrics) ObserveTurn(state, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(state, outcome).Inc()
	m.turnLatency.WithLabelValues(state).Observe(seconds)
}

func (m *ConversationMetrics) ObserveBooking() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

func (m *ConversationMetrics) ObserveCancellation() {
	if m == nil {
		return
	}
	m.cancellationsTotal.Inc()
}
