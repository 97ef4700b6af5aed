package netsim

//
// Node model (§3)
//

// linkEntry is one entry in a node's ordered link table. Index 0 is
// always the node's loopback (§3 invariant 6).
type linkEntry struct {
	link Link
	info LinkInfo
}

// Node is a simulated host.
type Node struct {
	// index is this node's 0-based position in Simulator.nodes.
	index int

	// name is this node's display name.
	name string

	// links is this node's ordered link table.
	links []linkEntry

	// handlers maps an event kind to the handler value registered via
	// NodeAPI.SetHandler. Populated during Reboot.
	handlers map[EventKind]any

	// impl is the user-supplied protocol implementation.
	impl NodeImpl

	// applicationEnabled is true once this node has at least one
	// application destination.
	applicationEnabled bool

	// applicationDestinations is the ordered, de-duplicated list of
	// node indices this node sends application traffic to.
	applicationDestinations []int

	// applicationWaiting maps an outstanding sent payload (by byte
	// content) to the virtual time it was sent, so WriteApplication can
	// compute elapsed delivery time (§3 invariant 7).
	applicationWaiting map[string]int64

	// nextMessageMicros is this node's next Poisson-scheduled
	// application-send time, or -1 if none has been scheduled yet.
	nextMessageMicros int64

	// messageRateMicros is the mean inter-application-message time.
	messageRateMicros int64
}

// newNode creates a [Node] with just its loopback link attached.
func newNode(index int, name string, messageRateMicros int64) *Node {
	n := &Node{
		index:              index,
		name:               name,
		links:              nil,
		handlers:           map[EventKind]any{},
		applicationWaiting: map[string]int64{},
		nextMessageMicros:  -1,
		messageRateMicros:  messageRateMicros,
	}
	loop := NewLoopback()
	Must0(loop.attach(n))
	n.links = append(n.links, linkEntry{
		link: loop,
		info: LinkInfo{Type: LinkLoopback, Up: true},
	})
	return n
}

// hasDestination reports whether target is already an application
// destination of n.
func (n *Node) hasDestination(target int) bool {
	for _, d := range n.applicationDestinations {
		if d == target {
			return true
		}
	}
	return false
}
