package netsim

//
// Application traffic generator (§4.F)
//

// applicationPayloadBytes is the fixed size of a synthetic
// application message, per §4.F step 2.
const applicationPayloadBytes = 50

// nextApplicationEvent returns the earliest upcoming application-send
// time across every node with application traffic enabled, rolling
// forward any node whose scheduled time has already passed. Returns
// (-1, nil) if no node has application traffic enabled.
func (s *Simulator) nextApplicationEvent() (int64, *Node) {
	var earliestTime int64 = -1
	var earliestNode *Node

	for _, node := range s.appEnabledNodes {
		if node.nextMessageMicros < s.currentTimeMicros {
			node.nextMessageMicros = s.currentTimeMicros + s.rnd.poissonMicros(node.messageRateMicros)
		}
		if earliestNode == nil || node.nextMessageMicros < earliestTime {
			earliestTime = node.nextMessageMicros
			earliestNode = node
		}
	}

	if earliestNode == nil {
		return -1, nil
	}
	return earliestTime, earliestNode
}

// generateApplicationMessage implements §4.F steps 1-5 for sender.
func (s *Simulator) generateApplicationMessage(sender *Node) {
	if len(sender.applicationDestinations) == 0 {
		return
	}

	destIndex := sender.applicationDestinations[s.rnd.intn(len(sender.applicationDestinations))]
	payload := cryptoPayload(applicationPayloadBytes)

	dest := s.nodes[destIndex]
	dest.applicationWaiting[string(payload)] = s.currentTimeMicros

	s.eventsRaised++
	s.dispatch(sender.index, EventApplicationReady, func() {
		s.invokeApplicationReady(sender, destIndex, payload)
	})

	s.messagesGenerated++

	// force a fresh Poisson draw on the next scheduler iteration
	sender.nextMessageMicros = s.currentTimeMicros - 1
}

// invokeApplicationReady calls sender's APPLICATIONREADY handler, if
// one is registered.
func (s *Simulator) invokeApplicationReady(sender *Node, destIndex int, payload []byte) {
	h, ok := sender.handlers[EventApplicationReady]
	if !ok {
		return
	}
	handler, ok := h.(ApplicationReadyHandler)
	if !ok {
		panic(errContractf("APPLICATIONREADY handler has the wrong type"))
	}
	handler(destIndex, payload)
}
