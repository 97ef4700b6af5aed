package netsim

//
// Scheduler loop and Simulator state (§4.G, §3)
//

import "fmt"

// StatsSink receives one row per stats tick (§4.G, §4.I). [NewCSVStatsSink]
// is the reference implementation; [NewPrometheusStatsSink] mirrors the
// same counters as gauges.
type StatsSink interface {
	WriteRow(row StatsRow) error
}

// Simulator holds all mutable simulation state (§3). The zero value is
// invalid; use [NewSimulator].
type Simulator struct {
	logger Logger

	// currentTimeMicros is the virtual clock.
	currentTimeMicros int64

	// durationCapMicros is the optional execution-duration cap; -1
	// means uncapped.
	durationCapMicros int64

	nodes           []*Node
	appEnabledNodes []*Node

	eventQ eventQueue
	timerQ *timerQueue
	timers idGenerator

	rnd *randomSource

	defaultLossProb    ProbExponent
	defaultCorruptProb ProbExponent

	// currentNode is the index of the node a callback is currently
	// executing on behalf of, or -1 outside of any callback (§4.H
	// Reentrancy).
	currentNode int
	inCallback  bool

	silentNodes bool
	nodeOutput  func(string)

	// stats
	statsSink           StatsSink
	statsPeriodMicros   int64
	nextStatsTickMicros int64

	// counters (§3)
	eventsRaised          int64
	messagesGenerated     int64
	messagesDelivered     int64
	totalDeliveryTime     int64
	framesTransmitted     int64
	framesReceived        int64
	bytesReceivedPhysical int64
	bytesReceivedApp      int64

	trace *TraceWriter
}

// SimulatorConfig configures a new [Simulator].
type SimulatorConfig struct {
	// Logger is the logger to use; required.
	Logger Logger

	// Seed optionally seeds the PRNG for reproducible runs (§8 invariant 6).
	Seed *int64

	// DurationMicros optionally caps execution (§4.G step 3); 0 means uncapped.
	DurationMicros int64

	// DefaultLossProb is the WAN-link default loss probability.
	DefaultLossProb ProbExponent

	// DefaultCorruptProb is the WAN-link default corruption probability.
	DefaultCorruptProb ProbExponent

	// SilentNodes suppresses NodeAPI.Print output.
	SilentNodes bool

	// NodeOutput receives each node's formatted print line, when not silent.
	NodeOutput func(string)

	// StatsSink optionally receives periodic stats rows (§4.G, §4.I).
	StatsSink StatsSink

	// StatsPeriodMicros is the interval between stats ticks. Defaults
	// to 10s (§6) if zero and a StatsSink is configured.
	StatsPeriodMicros int64

	// Trace optionally receives every delivered frame as a PCAP entry.
	Trace *TraceWriter
}

// defaultStatsPeriodMicros is §6's default --stats-period (10s).
const defaultStatsPeriodMicros = 10_000_000

// NewSimulator creates an empty [Simulator]. Add nodes with [Simulator.AddNode],
// then links, then call [Simulator.Boot] and [Simulator.Run].
func NewSimulator(cfg SimulatorConfig) *Simulator {
	durationCap := int64(-1)
	if cfg.DurationMicros > 0 {
		durationCap = cfg.DurationMicros
	}

	period := cfg.StatsPeriodMicros
	if period <= 0 {
		period = defaultStatsPeriodMicros
	}

	nodeOutput := cfg.NodeOutput
	if nodeOutput == nil {
		nodeOutput = func(string) {}
	}

	s := &Simulator{
		logger:              cfg.Logger,
		durationCapMicros:   durationCap,
		timerQ:              newTimerQueue(),
		rnd:                 newRandomSource(cfg.Seed),
		defaultLossProb:     cfg.DefaultLossProb,
		defaultCorruptProb:  cfg.DefaultCorruptProb,
		currentNode:         -1,
		silentNodes:         cfg.SilentNodes,
		nodeOutput:          nodeOutput,
		statsSink:           cfg.StatsSink,
		statsPeriodMicros:   period,
		nextStatsTickMicros: period,
		trace:               cfg.Trace,
	}
	if s.statsSink == nil {
		s.nextStatsTickMicros = -1
	}
	return s
}

// AddNode creates a [Node] named name with the given Poisson message
// rate, constructs its [NodeImpl] via factory, and returns the new
// node's index. The node's loopback link (index 0) is ready
// immediately; [NodeImpl.Reboot] has not run yet (see [Simulator.Boot]).
func (s *Simulator) AddNode(name string, messageRateMicros int64, factory NodeFactory) int {
	index := len(s.nodes)
	node := newNode(index, name, messageRateMicros)
	s.nodes = append(s.nodes, node)

	s.currentNode = index
	s.inCallback = true
	node.impl = factory(&nodeAPI{sim: s, index: index})
	s.inCallback = false
	s.currentNode = -1

	return index
}

// AddWANLink creates a [WAN] link between leftIndex and rightIndex and
// appends it to both nodes' link tables, returning each node's new
// link index. leftInfo/rightInfo are each node's view of the shared
// link (§9: per-direction overrides apply to the declaring direction).
func (s *Simulator) AddWANLink(leftIndex, rightIndex int, leftInfo, rightInfo LinkInfo) (leftLinkIndex, rightLinkIndex int) {
	left := s.nodes[leftIndex]
	right := s.nodes[rightIndex]

	w := NewWAN()
	w.attach(left)
	w.attach(right)

	leftInfo.Type, rightInfo.Type = LinkWAN, LinkWAN
	leftLinkIndex = len(left.links)
	left.links = append(left.links, linkEntry{link: w, info: leftInfo})
	rightLinkIndex = len(right.links)
	right.links = append(right.links, linkEntry{link: w, info: rightInfo})
	return leftLinkIndex, rightLinkIndex
}

// Boot invokes [NodeImpl.Reboot] once for every node, in index order (§4.H).
func (s *Simulator) Boot() {
	for _, node := range s.nodes {
		s.dispatch(node.index, EventReboot, node.impl.Reboot)
	}
}

// dispatch runs fn as the callback attributed to nodeIndex, enforcing
// the non-reentrancy invariant (§3 invariant 2, §4.H), and converting
// a panic raised from inside fn into a reported, non-fatal outcome for
// EventReboot and a fatal one otherwise (§7).
func (s *Simulator) dispatch(nodeIndex int, kind EventKind, fn func()) {
	if s.inCallback {
		panic(errContractf("recursive handler call"))
	}

	s.currentNode = nodeIndex
	s.inCallback = true
	defer func() {
		s.inCallback = false
		s.currentNode = -1
	}()

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Warnf("netsim: node %d: %s handler panicked: %v", nodeIndex, kind, r)
				if kind != EventReboot {
					panic(fmt.Errorf("%w: node %d: %v", ErrNodeHandler, nodeIndex, r))
				}
			}
		}()
		fn()
	}()
}

// Step advances the scheduler by exactly one iteration (§4.G). It
// returns false once the run is over (no more work, or the duration
// cap has been reached).
func (s *Simulator) Step() bool {
	appTime, appNode := s.nextApplicationEvent()
	ev := s.eventQ.peek()
	timer := s.timerQ.peek()

	earliest, source := s.earliestSource(appTime, ev, timer)
	if source == sourceNone {
		return false
	}

	if s.durationCapMicros >= 0 && earliest > s.durationCapMicros {
		s.currentTimeMicros = s.durationCapMicros
		return false
	}

	if earliest < s.currentTimeMicros {
		panic(errContractf("time is running backwards: earliest=%d current=%d", earliest, s.currentTimeMicros))
	}
	s.currentTimeMicros = earliest

	switch source {
	case sourceApplication:
		s.generateApplicationMessage(appNode)
	case sourceEvent:
		s.deliverFrame(s.eventQ.pop())
	case sourceTimer:
		s.fireTimer(s.timerQ.pop())
	case sourceStats:
		s.tickStats()
	}
	return true
}

// schedulerSource identifies which of §4.G's four sources produced
// the earliest pending action.
type schedulerSource int

const (
	sourceNone schedulerSource = iota
	sourceApplication
	sourceEvent
	sourceTimer
	sourceStats
)

// earliestSource implements §4.G step 1 and the tie-break order from
// §5 ("application-send before pending frame deliveries before
// pending timer expirations before stats tick").
func (s *Simulator) earliestSource(appTime int64, ev *frameDelivery, timer *Timer) (int64, schedulerSource) {
	type candidate struct {
		time   int64
		source schedulerSource
	}
	var candidates []candidate

	if appTime >= 0 {
		candidates = append(candidates, candidate{appTime, sourceApplication})
	}
	if ev != nil {
		candidates = append(candidates, candidate{ev.deliverAtMicros, sourceEvent})
	}
	if timer != nil {
		candidates = append(candidates, candidate{timer.fireAtMicros, sourceTimer})
	}
	if s.nextStatsTickMicros >= 0 {
		candidates = append(candidates, candidate{s.nextStatsTickMicros, sourceStats})
	}

	if len(candidates) == 0 {
		return 0, sourceNone
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.time < best.time {
			best = c
		}
	}
	return best.time, best.source
}

// fireTimer implements the timer-expiration branch of §4.G step 6.
// A cancelled timer is silently dropped (§3 invariant 4). A live timer
// stays live for the duration of its own handler, so the handler can
// still read it with [NodeAPI.TimerData]; it is forgotten once the
// handler returns.
func (s *Simulator) fireTimer(t *Timer) {
	if t.cancelled {
		s.timerQ.forget(t.id)
		return
	}
	defer s.timerQ.forget(t.id)

	s.eventsRaised++
	s.dispatch(t.nodeIndex, t.kind, func() {
		s.invokeTimer(s.nodes[t.nodeIndex], t.kind, t.id)
	})
}

// invokeTimer calls the node's handler for a TIMERn event, if registered.
func (s *Simulator) invokeTimer(node *Node, kind EventKind, timerID int) {
	h, ok := node.handlers[kind]
	if !ok {
		return
	}
	handler, ok := h.(TimerHandler)
	if !ok {
		panic(errContractf("%s handler has the wrong type", kind))
	}
	handler(timerID)
}

// Run steps the scheduler until it reports the run is over.
func (s *Simulator) Run() {
	for s.Step() {
	}
}

// CurrentTimeMicros returns the current virtual clock value.
func (s *Simulator) CurrentTimeMicros() int64 {
	return s.currentTimeMicros
}

// NodeCount returns the number of nodes in the topology.
func (s *Simulator) NodeCount() int {
	return len(s.nodes)
}
