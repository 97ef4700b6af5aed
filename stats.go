package netsim

//
// Stats collection (§4.G stats tick, §4.I, §6 CSV format)
//

import (
	"encoding/csv"
	"io"
	"strconv"
)

// StatsRow is one sampled row of simulator counters (§4.G, §6).
type StatsRow struct {
	TimeMicros            int64
	EventsRaised          int64
	MessagesGenerated     int64
	MessagesDelivered     int64
	AvgDeliveryTimeMicros int64
	FramesTransmitted     int64
	FramesReceived        int64
	BytesReceivedPhysical int64
	BytesReceivedApp      int64
	Efficiency            float64
}

// CSVHeader is the header row mandated by §6.
var CSVHeader = []string{
	"Time (usec)",
	"Events Raised",
	"Messages Generated",
	"Messages Delivered",
	"Average Delivery Time (usec)",
	"Frames Transmitted",
	"Frames Received",
	"Bytes Received (Physical)",
	"Bytes Received (Application)",
	"Efficiency (AL/PL)",
}

// CSVStatsSink writes [StatsRow]s to an [encoding/csv.Writer], per
// §6's CSV stats format.
type CSVStatsSink struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVStatsSink creates a [CSVStatsSink] writing to dst. The header
// row is written lazily, on the first call to WriteRow.
func NewCSVStatsSink(dst io.Writer) *CSVStatsSink {
	return &CSVStatsSink{w: csv.NewWriter(dst)}
}

var _ StatsSink = &CSVStatsSink{}

// WriteRow implements [StatsSink].
func (s *CSVStatsSink) WriteRow(row StatsRow) error {
	if !s.wroteHeader {
		if err := s.w.Write(CSVHeader); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	record := []string{
		strconv.FormatInt(row.TimeMicros, 10),
		strconv.FormatInt(row.EventsRaised, 10),
		strconv.FormatInt(row.MessagesGenerated, 10),
		strconv.FormatInt(row.MessagesDelivered, 10),
		strconv.FormatInt(row.AvgDeliveryTimeMicros, 10),
		strconv.FormatInt(row.FramesTransmitted, 10),
		strconv.FormatInt(row.FramesReceived, 10),
		strconv.FormatInt(row.BytesReceivedPhysical, 10),
		strconv.FormatInt(row.BytesReceivedApp, 10),
		strconv.FormatFloat(row.Efficiency, 'f', -1, 64),
	}
	if err := s.w.Write(record); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// MultiStatsSink fans a single stats tick out to several [StatsSink]s,
// e.g. CSV and Prometheus at once. The first error encountered is
// returned after every sink has been given a chance to write.
type MultiStatsSink []StatsSink

var _ StatsSink = MultiStatsSink{}

// WriteRow implements [StatsSink].
func (m MultiStatsSink) WriteRow(row StatsRow) error {
	var first error
	for _, sink := range m {
		if err := sink.WriteRow(row); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// snapshot builds the [StatsRow] for the current virtual time (§4.G
// stats tick formulas).
func (s *Simulator) snapshot() StatsRow {
	var avgDelivery int64
	if s.messagesDelivered > 0 {
		avgDelivery = s.totalDeliveryTime / s.messagesDelivered
	}

	efficiency := 1.0
	if s.bytesReceivedPhysical > 0 {
		efficiency = float64(s.bytesReceivedApp) / float64(s.bytesReceivedPhysical)
	}

	return StatsRow{
		TimeMicros:            s.currentTimeMicros,
		EventsRaised:          s.eventsRaised,
		MessagesGenerated:     s.messagesGenerated,
		MessagesDelivered:     s.messagesDelivered,
		AvgDeliveryTimeMicros: avgDelivery,
		FramesTransmitted:     s.framesTransmitted,
		FramesReceived:        s.framesReceived,
		BytesReceivedPhysical: s.bytesReceivedPhysical,
		BytesReceivedApp:      s.bytesReceivedApp,
		Efficiency:            efficiency,
	}
}

// tickStats implements §4.G's stats-tick action: emit one row if a
// sink is configured, then schedule the next tick, or stop ticking
// entirely if no sink is configured.
func (s *Simulator) tickStats() {
	if s.statsSink == nil {
		s.nextStatsTickMicros = -1
		return
	}
	if err := s.statsSink.WriteRow(s.snapshot()); err != nil {
		s.logger.Warnf("netsim: stats sink write failed: %s", err.Error())
	}
	s.nextStatsTickMicros += s.statsPeriodMicros
}
