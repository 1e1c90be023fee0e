// Package metrics exposes bus and stream counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrilink/mcubus/internal/bus"
)

// Stream transports.
const (
	TransportGRPC      = "grpc"
	TransportWebSocket = "websocket"
)

// Stream results.
const (
	ResultClosed      = "closed"
	ResultCanceled    = "canceled"
	ResultEncodeError = "encode_error"
	ResultSendError   = "send_error"
	ResultRejected    = "rejected"
)

// Metrics owns a private registry so several daemons can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry
	streams  *prometheus.CounterVec
	relayed  *prometheus.CounterVec
}

// New registers the bus collectors plus the Go runtime collectors.
func New(b *bus.Bus) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mcubus_subscribers",
		Help: "Number of registered bus subscribers",
	}, func() float64 { return float64(b.Len()) })

	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "mcubus_events_published_total",
		Help: "Events passed to Publish",
	}, func() float64 { return float64(b.Stats().Published) })

	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "mcubus_events_delivered_total",
		Help: "Event copies placed in subscriber inboxes",
	}, func() float64 { return float64(b.Stats().Delivered) })

	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "mcubus_events_filtered_total",
		Help: "Event copies skipped by subscriber filters",
	}, func() float64 { return float64(b.Stats().Filtered) })

	return &Metrics{
		registry: reg,
		streams: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mcubus_streams_total",
			Help: "Finished subscriber streams by transport and result",
		}, []string{"transport", "result"}),
		relayed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mcubus_relay_messages_total",
			Help: "Messages read from the Redis relay channel by outcome",
		}, []string{"outcome"}),
	}
}

// StreamClosed counts a finished stream. A nil receiver is a no-op.
func (m *Metrics) StreamClosed(transport, result string) {
	if m == nil {
		return
	}
	m.streams.WithLabelValues(transport, result).Inc()
}

// Relayed counts a relay message outcome. A nil receiver is a no-op.
func (m *Metrics) Relayed(outcome string) {
	if m == nil {
		return
	}
	m.relayed.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
