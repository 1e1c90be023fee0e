package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agrilink/mcubus/internal/bus"
)

func TestBusCollectors(t *testing.T) {
	b := bus.New()
	m := New(b)

	sub := bus.NewSubscriber(bus.NewFilter(nil, []string{bus.KindAlert}))
	if err := b.Register(sub); err != nil {
		t.Fatal(err)
	}
	b.Publish(bus.NewEvent("m", bus.Alert{Code: "A"}))
	b.Publish(bus.NewEvent("m", bus.SensorData{}))

	want := `
# HELP mcubus_events_delivered_total Event copies placed in subscriber inboxes
# TYPE mcubus_events_delivered_total counter
mcubus_events_delivered_total 1
# HELP mcubus_events_filtered_total Event copies skipped by subscriber filters
# TYPE mcubus_events_filtered_total counter
mcubus_events_filtered_total 1
# HELP mcubus_events_published_total Events passed to Publish
# TYPE mcubus_events_published_total counter
mcubus_events_published_total 2
# HELP mcubus_subscribers Number of registered bus subscribers
# TYPE mcubus_subscribers gauge
mcubus_subscribers 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(want),
		"mcubus_events_delivered_total",
		"mcubus_events_filtered_total",
		"mcubus_events_published_total",
		"mcubus_subscribers",
	)
	if err != nil {
		t.Error(err)
	}
}

func TestStreamClosed(t *testing.T) {
	m := New(bus.New())
	m.StreamClosed(TransportGRPC, ResultCanceled)
	m.StreamClosed(TransportGRPC, ResultCanceled)
	m.StreamClosed(TransportWebSocket, ResultSendError)

	if got := testutil.ToFloat64(m.streams.WithLabelValues(TransportGRPC, ResultCanceled)); got != 2 {
		t.Errorf("grpc canceled = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.streams.WithLabelValues(TransportWebSocket, ResultSendError)); got != 1 {
		t.Errorf("websocket send_error = %v, want 1", got)
	}

	var nilMetrics *Metrics
	nilMetrics.StreamClosed(TransportGRPC, ResultClosed)
	nilMetrics.Relayed("ok")
}
