package netsim

import (
	"errors"
	"testing"

	"github.com/bassosimone/netsim/internal"
)

type rebootOrderNode struct {
	order *[]int
	index int
}

func (n rebootOrderNode) Reboot() {
	*n.order = append(*n.order, n.index)
}

func TestBootRebootsNodesInIndexOrder(t *testing.T) {
	sim := newTestSimulator()
	var order []int
	for i := 0; i < 3; i++ {
		sim.AddNode("n", 1_000_000, func(api NodeAPI) NodeImpl {
			return rebootOrderNode{order: &order, index: api.NodeIndex()}
		})
	}
	sim.Boot()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected reboot order [0 1 2], got %v", order)
	}
}

func TestDispatchPanicsOnReentrantCall(t *testing.T) {
	sim := newTestSimulator()
	sim.AddNode("a", 1_000_000, func(api NodeAPI) NodeImpl { return noopNode{} })

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic from the nested dispatch call")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNodeHandler) {
			t.Fatalf("expected the panic to wrap ErrNodeHandler, got %v", r)
		}
	}()

	sim.dispatch(0, EventPhysicalReady, func() {
		sim.dispatch(0, EventPhysicalReady, func() {})
	})
}

func TestDispatchRebootPanicIsNotFatal(t *testing.T) {
	sim := newTestSimulator()
	sim.AddNode("a", 1_000_000, func(api NodeAPI) NodeImpl { return noopNode{} })

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("expected a REBOOT panic to be swallowed, got %v", r)
			}
		}()
		sim.dispatch(0, EventReboot, func() {
			panic("boom")
		})
	}()

	if sim.inCallback {
		t.Fatal("expected inCallback to be reset after dispatch returns")
	}
	if sim.currentNode != -1 {
		t.Fatal("expected currentNode to be reset to -1 after dispatch returns")
	}
}

func TestEarliestSourceTieBreakOrder(t *testing.T) {
	sim := newTestSimulator()
	sim.nextStatsTickMicros = 100

	// application and event tie at 100: application wins per §5's order.
	_, source := sim.earliestSource(100, &frameDelivery{deliverAtMicros: 100}, nil)
	if source != sourceApplication {
		t.Fatalf("expected application to win a tie with an event, got %v", source)
	}

	// event and timer tie at 100, no application pending: event wins.
	_, source = sim.earliestSource(-1, &frameDelivery{deliverAtMicros: 100}, &Timer{fireAtMicros: 100})
	if source != sourceEvent {
		t.Fatalf("expected event to win a tie with a timer, got %v", source)
	}

	// timer and stats tie at 100, nothing else pending: timer wins.
	_, source = sim.earliestSource(-1, nil, &Timer{fireAtMicros: 100})
	if source != sourceTimer {
		t.Fatalf("expected timer to win a tie with a stats tick, got %v", source)
	}

	// nothing pending at all.
	sim.nextStatsTickMicros = -1
	_, source = sim.earliestSource(-1, nil, nil)
	if source != sourceNone {
		t.Fatalf("expected sourceNone when nothing is pending, got %v", source)
	}
}

func TestRunStopsAtDurationCap(t *testing.T) {
	sim := NewSimulator(SimulatorConfig{
		Logger:         &internal.NullLogger{},
		DurationMicros: 500_000,
	})
	sim.AddNode("a", 1_000_000, func(api NodeAPI) NodeImpl { return noopNode{} })

	// schedule a timer well beyond the cap.
	sim.dispatch(0, EventReboot, func() {
		api := &nodeAPI{sim: sim, index: 0}
		api.StartTimer(EventTimer0, 10_000_000_000, nil) // 10s, in nanoseconds as time.Duration
	})

	sim.Run()

	if sim.currentTimeMicros != 500_000 {
		t.Fatalf("expected the clock to stop exactly at the cap, got %d", sim.currentTimeMicros)
	}
}

func TestRunStopsWhenNoWorkRemains(t *testing.T) {
	sim := newTestSimulator()
	sim.AddNode("a", 1_000_000, func(api NodeAPI) NodeImpl { return noopNode{} })
	sim.Run()
	if sim.currentTimeMicros != 0 {
		t.Fatalf("expected the clock to stay at 0 with no work scheduled, got %d", sim.currentTimeMicros)
	}
}
