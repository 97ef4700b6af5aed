package netsim

//
// Prometheus mirror of the CSV counters (domain stack addition, see
// SPEC_FULL.md)
//

import "github.com/prometheus/client_golang/prometheus"

// PrometheusStatsSink mirrors every counter also written to CSV (§4.G,
// §4.I) as Prometheus gauges, so a long-running simulation can be
// scraped instead of (or in addition to) tailing a CSV file. Register
// it with a [prometheus.Registerer] and pass it as the [Simulator]'s
// [StatsSink]; each stats tick refreshes every gauge to match the
// simulator's counters at that instant.
type PrometheusStatsSink struct {
	eventsRaised          prometheus.Gauge
	messagesGenerated     prometheus.Gauge
	messagesDelivered     prometheus.Gauge
	avgDeliveryTimeMicros prometheus.Gauge
	framesTransmitted     prometheus.Gauge
	framesReceived        prometheus.Gauge
	bytesReceivedPhysical prometheus.Gauge
	bytesReceivedApp      prometheus.Gauge
	efficiency            prometheus.Gauge
	virtualTimeMicros     prometheus.Gauge
}

// NewPrometheusStatsSink creates a [PrometheusStatsSink] and registers
// its gauges with reg.
func NewPrometheusStatsSink(reg prometheus.Registerer) *PrometheusStatsSink {
	newGauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netsim",
			Name:      name,
			Help:      help,
		})
		reg.MustRegister(g)
		return g
	}

	return &PrometheusStatsSink{
		eventsRaised:          newGauge("events_raised_total", "Events raised since the start of the run."),
		messagesGenerated:     newGauge("messages_generated_total", "Application messages generated since the start of the run."),
		messagesDelivered:     newGauge("messages_delivered_total", "Application messages delivered since the start of the run."),
		avgDeliveryTimeMicros: newGauge("avg_delivery_time_microseconds", "Average end-to-end delivery time."),
		framesTransmitted:     newGauge("frames_transmitted_total", "Frames transmitted since the start of the run."),
		framesReceived:        newGauge("frames_received_total", "Frames received since the start of the run."),
		bytesReceivedPhysical: newGauge("bytes_received_physical_total", "Physical-layer bytes received since the start of the run."),
		bytesReceivedApp:      newGauge("bytes_received_application_total", "Application-layer bytes received since the start of the run."),
		efficiency:            newGauge("efficiency_ratio", "Application bytes received divided by physical bytes received."),
		virtualTimeMicros:     newGauge("virtual_time_microseconds", "Current simulator virtual clock value."),
	}
}

var _ StatsSink = &PrometheusStatsSink{}

// WriteRow implements [StatsSink].
func (p *PrometheusStatsSink) WriteRow(row StatsRow) error {
	p.eventsRaised.Set(float64(row.EventsRaised))
	p.messagesGenerated.Set(float64(row.MessagesGenerated))
	p.messagesDelivered.Set(float64(row.MessagesDelivered))
	p.avgDeliveryTimeMicros.Set(float64(row.AvgDeliveryTimeMicros))
	p.framesTransmitted.Set(float64(row.FramesTransmitted))
	p.framesReceived.Set(float64(row.FramesReceived))
	p.bytesReceivedPhysical.Set(float64(row.BytesReceivedPhysical))
	p.bytesReceivedApp.Set(float64(row.BytesReceivedApp))
	p.efficiency.Set(row.Efficiency)
	p.virtualTimeMicros.Set(float64(row.TimeMicros))
	return nil
}
