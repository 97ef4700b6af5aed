package stopandwait_test

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/bassosimone/netsim"
	"github.com/bassosimone/netsim/internal"
	"github.com/bassosimone/netsim/protocols/stopandwait"
)

// TestTwoNodeExchangeDeliversMessages drives a full two-node stop-and-wait
// session over a lossless WAN link and checks that at least one message
// crosses end to end within the simulated window.
func TestTwoNodeExchangeDeliversMessages(t *testing.T) {
	seed := int64(7)
	var buf bytes.Buffer
	sim := netsim.NewSimulator(netsim.SimulatorConfig{
		Logger:            &internal.NullLogger{},
		Seed:              &seed,
		DurationMicros:    200_000,
		StatsPeriodMicros: 20_000,
		StatsSink:         netsim.NewCSVStatsSink(&buf),
	})

	a := sim.AddNode("a", 5_000, stopandwait.New)
	b := sim.AddNode("b", 5_000, stopandwait.New)
	sim.AddWANLink(a, b,
		netsim.LinkInfo{Up: true, PropagationDelayMicros: 1_000},
		netsim.LinkInfo{Up: true, PropagationDelayMicros: 1_000},
	)

	sim.Boot()
	sim.Run()

	if sim.CurrentTimeMicros() != 200_000 {
		t.Fatalf("expected the run to reach the duration cap, got %d", sim.CurrentTimeMicros())
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse the stats CSV: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("expected a header row plus at least one data row, got %d rows", len(rows))
	}

	var sawDelivery bool
	for _, row := range rows[1:] {
		delivered, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			t.Fatalf("malformed Messages Delivered column %q: %v", row[3], err)
		}
		if delivered > 0 {
			sawDelivery = true
		}
	}
	if !sawDelivery {
		t.Fatal("expected at least one delivered message over the simulated window")
	}
}
