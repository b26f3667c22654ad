package chathub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the relay. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	sessions          prometheus.Gauge
	rooms             prometheus.Gauge
	broadcasts        *prometheus.CounterVec
	deliveriesSkipped prometheus.Counter
	framesRejected    *prometheus.CounterVec
}

// NewMetrics creates the relay collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "langbridge_relay_sessions",
			Help: "Current number of connected sessions",
		}),
		rooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "langbridge_relay_rooms",
			Help: "Current number of live rooms",
		}),
		broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langbridge_relay_messages_broadcast_total",
				Help: "Total number of room broadcasts by event type",
			},
			[]string{"type"},
		),
		deliveriesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "langbridge_relay_deliveries_skipped_total",
			Help: "Total number of deliveries skipped because the recipient was closed or not keeping up",
		}),
		framesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langbridge_relay_frames_rejected_total",
				Help: "Total number of inbound frames answered with an error reply",
			},
			[]string{"reason"},
		),
	}
}

func (m *Metrics) setSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func (m *Metrics) setRooms(n int) {
	if m == nil {
		return
	}
	m.rooms.Set(float64(n))
}

func (m *Metrics) recordBroadcast(eventType string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(eventType).Inc()
}

func (m *Metrics) recordSkippedDelivery() {
	if m == nil {
		return
	}
	m.deliveriesSkipped.Inc()
}

func (m *Metrics) recordRejectedFrame(kind ErrorKind) {
	if m == nil {
		return
	}
	m.framesRejected.WithLabelValues(string(kind)).Inc()
}
