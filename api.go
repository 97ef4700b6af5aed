package netsim

//
// Node-facing callback API (§4.H)
//

import (
	"fmt"
	"time"
)

// nodeAPI is the concrete [NodeAPI] handle bound to one node (§9). Each
// [NodeImpl] receives its own handle at construction time rather than
// reaching for ambient globals, so a protocol implementation never
// depends on which module namespace it happens to run in.
type nodeAPI struct {
	sim   *Simulator
	index int
}

var _ NodeAPI = &nodeAPI{}

// requireCallback enforces that a makes its call only while the
// scheduler has attributed the current callback to a's own node index
// (§4.H "All API methods require a current-node index").
func (a *nodeAPI) requireCallback() {
	if !a.sim.inCallback || a.sim.currentNode != a.index {
		panic(errContractf("node %d: API called outside of its own callback", a.index))
	}
}

// NodeIndex implements [NodeAPI].
func (a *nodeAPI) NodeIndex() int { return a.index }

// EnableApplication implements [NodeAPI].
func (a *nodeAPI) EnableApplication(target ...int) {
	a.requireCallback()
	if len(target) == 0 {
		for i := range a.sim.nodes {
			a.enableOne(i)
		}
		return
	}
	if len(target) > 1 {
		panic(errContractf("EnableApplication takes at most one target"))
	}
	a.enableOne(target[0])
}

// enableOne implements the single-target case of §4.H EnableApplication,
// preserving the self-loop suppression from §9.
func (a *nodeAPI) enableOne(target int) {
	if target == a.index {
		return
	}
	node := a.sim.nodes[a.index]
	if node.hasDestination(target) {
		return
	}
	node.applicationDestinations = append(node.applicationDestinations, target)
	if !node.applicationEnabled {
		node.applicationEnabled = true
		node.nextMessageMicros = -1
		a.sim.appEnabledNodes = append(a.sim.appEnabledNodes, node)
	}
}

// DisableApplication implements [NodeAPI].
func (a *nodeAPI) DisableApplication(target ...int) {
	a.requireCallback()
	if len(target) == 0 {
		for i := range a.sim.nodes {
			a.disableOne(i)
		}
		return
	}
	if len(target) > 1 {
		panic(errContractf("DisableApplication takes at most one target"))
	}
	a.disableOne(target[0])
}

// disableOne implements the single-target case of §4.H DisableApplication.
func (a *nodeAPI) disableOne(target int) {
	if target == a.index {
		return
	}
	node := a.sim.nodes[a.index]
	for i, d := range node.applicationDestinations {
		if d == target {
			node.applicationDestinations = append(node.applicationDestinations[:i], node.applicationDestinations[i+1:]...)
			break
		}
	}
	if len(node.applicationDestinations) == 0 && node.applicationEnabled {
		node.applicationEnabled = false
		for i, n := range a.sim.appEnabledNodes {
			if n == node {
				a.sim.appEnabledNodes = append(a.sim.appEnabledNodes[:i], a.sim.appEnabledNodes[i+1:]...)
				break
			}
		}
	}
}

// StartTimer implements [NodeAPI].
func (a *nodeAPI) StartTimer(kind EventKind, delay time.Duration, data any) int {
	a.requireCallback()
	if delay < 0 {
		panic(errContractf("node %d: StartTimer with negative delay", a.index))
	}
	id := a.sim.timers.nextID()
	t := &Timer{
		fireAtMicros: a.sim.currentTimeMicros + delay.Microseconds(),
		id:           id,
		nodeIndex:    a.index,
		kind:         kind,
		data:         data,
	}
	a.sim.timerQ.push(t)
	return id
}

// StopTimer implements [NodeAPI].
func (a *nodeAPI) StopTimer(timerID int) bool {
	a.requireCallback()
	return a.sim.timerQ.cancel(timerID)
}

// TimerData implements [NodeAPI].
func (a *nodeAPI) TimerData(timerID int) (any, error) {
	a.requireCallback()
	t, ok := a.sim.timerQ.get(timerID)
	if !ok {
		return nil, fmt.Errorf("%w: timer %d", ErrUnknownTimer, timerID)
	}
	return t.data, nil
}

// SetHandler implements [NodeAPI].
func (a *nodeAPI) SetHandler(kind EventKind, handler any) {
	a.requireCallback()
	switch kind {
	case EventPhysicalReady:
		if _, ok := handler.(PhysicalReadyHandler); !ok {
			panic(errContractf("SetHandler(PHYSICALREADY, ...): wrong handler type"))
		}
	case EventApplicationReady:
		if _, ok := handler.(ApplicationReadyHandler); !ok {
			panic(errContractf("SetHandler(APPLICATIONREADY, ...): wrong handler type"))
		}
	case EventTimer0, EventTimer1, EventTimer2, EventTimer3, EventTimer4, EventTimer5, EventTimer6:
		if _, ok := handler.(TimerHandler); !ok {
			panic(errContractf("SetHandler(%s, ...): wrong handler type", kind))
		}
	default:
		panic(errContractf("SetHandler: cannot register a handler for %s", kind))
	}
	a.sim.nodes[a.index].handlers[kind] = handler
}

// WritePhysical implements [NodeAPI].
func (a *nodeAPI) WritePhysical(linkIndex int, frame []byte) (bool, error) {
	a.requireCallback()
	return a.sim.writePhysical(a.index, linkIndex, frame)
}

// WriteApplication implements [NodeAPI].
func (a *nodeAPI) WriteApplication(payload []byte) bool {
	a.requireCallback()
	node := a.sim.nodes[a.index]
	key := string(payload)
	sentAt, ok := node.applicationWaiting[key]
	if !ok {
		return false
	}
	delete(node.applicationWaiting, key)

	a.sim.totalDeliveryTime += a.sim.currentTimeMicros - sentAt
	a.sim.messagesDelivered++
	a.sim.bytesReceivedApp += int64(len(payload))
	return true
}

// LinkInfo implements [NodeAPI].
func (a *nodeAPI) LinkInfo(linkIndex int) (LinkInfo, error) {
	a.requireCallback()
	node := a.sim.nodes[a.index]
	if linkIndex < 0 || linkIndex >= len(node.links) {
		return LinkInfo{}, fmt.Errorf("%w: link %d on node %d", ErrLinkIndexRange, linkIndex, a.index)
	}
	return node.links[linkIndex].info, nil
}

// Print implements [NodeAPI].
func (a *nodeAPI) Print(args ...any) {
	a.requireCallback()
	if a.sim.silentNodes {
		return
	}
	a.sim.nodeOutput(fmt.Sprintf("[%d]: %s", a.index, fmt.Sprint(args...)))
}
