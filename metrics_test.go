package netsim

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	return testutil.ToFloat64(g)
}

func TestPrometheusStatsSinkMirrorsRow(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewPrometheusStatsSink(reg)

	row := StatsRow{
		TimeMicros:            1000,
		EventsRaised:          2,
		MessagesGenerated:     3,
		MessagesDelivered:     4,
		AvgDeliveryTimeMicros: 5,
		FramesTransmitted:     6,
		FramesReceived:        7,
		BytesReceivedPhysical: 8,
		BytesReceivedApp:      9,
		Efficiency:            0.5,
	}
	if err := sink.WriteRow(row); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := gaugeValue(t, sink.eventsRaised); v != 2 {
		t.Fatalf("expected events_raised=2, got %f", v)
	}
	if v := gaugeValue(t, sink.messagesDelivered); v != 4 {
		t.Fatalf("expected messages_delivered=4, got %f", v)
	}
	if v := gaugeValue(t, sink.efficiency); v != 0.5 {
		t.Fatalf("expected efficiency=0.5, got %f", v)
	}
	if v := gaugeValue(t, sink.virtualTimeMicros); v != 1000 {
		t.Fatalf("expected virtual_time_microseconds=1000, got %f", v)
	}
}

func TestPrometheusStatsSinkRegistersAllGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusStatsSink(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(families) != 10 {
		t.Fatalf("expected 10 registered gauges, got %d", len(families))
	}
}
