package netsim

//
// Data model
//

import "time"

// Logger is the logger used by the simulator and by cmd/netsim. It is
// satisfied by [*internal.NullLogger] and by github.com/apex/log's
// package-level [log.Log].
type Logger interface {
	// Debugf formats and emits a debug message.
	Debugf(format string, v ...any)

	// Debug emits a debug message.
	Debug(message string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...any)

	// Info emits an informational message.
	Info(message string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...any)

	// Warn emits a warning message.
	Warn(message string)
}

// EventKind identifies the kind of event delivered to a [Node] handler.
type EventKind int

const (
	// EventReboot is delivered once per node at startup, before any
	// other event. The reboot handler is invoked directly, not through
	// [NodeAPI.SetHandler].
	EventReboot EventKind = iota

	// EventPhysicalReady is delivered when a frame arrives on a link.
	// The handler receives (linkIndex int, frame []byte).
	EventPhysicalReady

	// EventApplicationReady is delivered when the traffic generator
	// picks this node to originate an application message. The handler
	// receives (destination int, payload []byte).
	EventApplicationReady

	// EventTimer0..EventTimer6 are delivered when a timer started with
	// the matching kind fires. The handler receives (timerID int).
	EventTimer0
	EventTimer1
	EventTimer2
	EventTimer3
	EventTimer4
	EventTimer5
	EventTimer6
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventReboot:
		return "REBOOT"
	case EventPhysicalReady:
		return "PHYSICALREADY"
	case EventApplicationReady:
		return "APPLICATIONREADY"
	case EventTimer0:
		return "TIMER0"
	case EventTimer1:
		return "TIMER1"
	case EventTimer2:
		return "TIMER2"
	case EventTimer3:
		return "TIMER3"
	case EventTimer4:
		return "TIMER4"
	case EventTimer5:
		return "TIMER5"
	case EventTimer6:
		return "TIMER6"
	default:
		return "UNKNOWN"
	}
}

// RebootHandler is invoked once per node, right after construction.
type RebootHandler func()

// PhysicalReadyHandler handles an [EventPhysicalReady] event.
type PhysicalReadyHandler func(linkIndex int, frame []byte)

// ApplicationReadyHandler handles an [EventApplicationReady] event.
type ApplicationReadyHandler func(destination int, payload []byte)

// TimerHandler handles a TIMERn event.
type TimerHandler func(timerID int)

// NodeImpl is the interface every user-supplied protocol implementation
// satisfies. [NodeFactory] constructs one per [Node]; [Simulator.Boot]
// invokes [NodeImpl.Reboot] once for every node in index order.
//
// Within Reboot, and within any handler registered via
// [NodeAPI.SetHandler], the implementation may call back into the
// [NodeAPI] it received at construction time. Calling the [NodeAPI]
// from anywhere else (a goroutine, a deferred call after the handler
// returned) is a contract violation: see [ErrContractViolation].
type NodeImpl interface {
	Reboot()
}

// NodeFactory constructs a [NodeImpl] bound to the given [NodeAPI].
// Registered by name in a topology's module dispatch table (see
// cmd/netsim/modules.go); the core package never resolves a factory
// by name itself.
type NodeFactory func(api NodeAPI) NodeImpl

// NodeAPI is the narrow callback surface a [NodeImpl] uses to interact
// with the simulator. An implementation obtains one bound to its own
// node index at construction time and must not use it outside of a
// callback (§4.H Reentrancy).
type NodeAPI interface {
	// NodeIndex returns the index of the node this handle belongs to.
	NodeIndex() int

	// EnableApplication enables outgoing application traffic from this
	// node. With no argument, enables traffic to every other node. With
	// one argument, enables traffic to that single destination. Passing
	// more than one target is a contract violation.
	EnableApplication(target ...int)

	// DisableApplication mirrors EnableApplication.
	DisableApplication(target ...int)

	// StartTimer schedules a callback to run after delay and returns a
	// unique, positive timer ID. delay < 0 is a contract violation.
	StartTimer(kind EventKind, delay time.Duration, data any) int

	// StopTimer cancels a timer. Returns true if the timer existed and
	// was still live.
	StopTimer(timerID int) bool

	// TimerData returns the payload a live timer was started with. It
	// fails if the timer no longer exists (fired, was cancelled, or was
	// never created).
	TimerData(timerID int) (any, error)

	// SetHandler registers (or replaces) this node's handler for kind.
	// handler must be the type matching kind's doc comment
	// ([PhysicalReadyHandler], [ApplicationReadyHandler], or
	// [TimerHandler]); a mismatched type is a contract violation.
	SetHandler(kind EventKind, handler any)

	// WritePhysical transmits frame on linkIndex. See §4.E for the full
	// loss/corruption/delay model. Returns false if linkIndex is out of
	// range or the link is administratively down.
	WritePhysical(linkIndex int, frame []byte) (bool, error)

	// WriteApplication accounts a received application payload against
	// the outstanding send record created by the traffic generator.
	// Returns false if payload does not match a record on this node's
	// waiting map (already matched, or never sent to this node).
	WriteApplication(payload []byte) bool

	// LinkInfo returns a copy of the per-link parameters for linkIndex.
	LinkInfo(linkIndex int) (LinkInfo, error)

	// Print emits "[<node index>]: "+fmt.Sprint(args...) to the
	// node-output sink, unless silent-node mode is enabled.
	Print(args ...any)
}
