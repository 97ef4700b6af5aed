package netsim

//
// Frame delivery: loss, corruption, and transmission/propagation
// delay (§4.E)
//


// effectiveLossDenominator returns the link's own loss denominator if
// set, otherwise the simulator's topology-wide default. The loopback
// link is never subject to the topology-wide default: that default is
// scoped to WAN links only, so a loopback always reports "never."
func (s *Simulator) effectiveLossDenominator(info LinkInfo) int64 {
	if info.Type == LinkLoopback {
		return 0
	}
	if info.LossProb.Set {
		return info.LossProb.Denominator()
	}
	return s.defaultLossProb.Denominator()
}

// effectiveCorruptDenominator mirrors effectiveLossDenominator for
// corruption.
func (s *Simulator) effectiveCorruptDenominator(info LinkInfo) int64 {
	if info.Type == LinkLoopback {
		return 0
	}
	if info.CorruptProb.Set {
		return info.CorruptProb.Denominator()
	}
	return s.defaultCorruptProb.Denominator()
}

// corruptFrame flips two consecutive bytes at a uniformly random
// offset in [0, len(frame)-2). frame must have more than 2 bytes;
// callers (writePhysical) only call this for frames long enough.
func (s *Simulator) corruptFrame(frame []byte) []byte {
	out := append([]byte(nil), frame...)
	offset := s.rnd.intn(len(out) - 2)
	out[offset] = ^out[offset]
	out[offset+1] = ^out[offset+1]
	return out
}

// serializationDelayMicros returns the time needed to put an L-byte
// frame on the wire at the given bandwidth, per §4.E step 6.
func serializationDelayMicros(frameLen int, bandwidthBitsPerSecond int64) int64 {
	if bandwidthBitsPerSecond <= 0 {
		return 0
	}
	return int64(frameLen) * 8 * 1_000_000 / bandwidthBitsPerSecond
}

// writePhysical implements [NodeAPI.WritePhysical] on behalf of
// nodeIndex (§4.E).
func (s *Simulator) writePhysical(nodeIndex int, linkIndex int, frame []byte) (bool, error) {
	node := s.nodes[nodeIndex]

	if linkIndex < 0 || linkIndex >= len(node.links) {
		return false, nil
	}
	entry := node.links[linkIndex]

	if !entry.info.Up {
		return false, nil
	}

	s.framesTransmitted++

	if s.rnd.shouldOccur(s.effectiveLossDenominator(entry.info)) {
		return true, nil
	}

	out := frame
	if len(out) > 2 && s.rnd.shouldOccur(s.effectiveCorruptDenominator(entry.info)) {
		out = s.corruptFrame(out)
	}

	receivers := entry.link.Receivers(node)
	if len(receivers) == 0 {
		// §3 invariant 5: a delivery with no receivers is never enqueued.
		return true, nil
	}

	deliverAt := s.currentTimeMicros +
		serializationDelayMicros(len(out), entry.info.BandwidthBitsPerSecond) +
		entry.info.PropagationDelayMicros

	s.eventQ.push(&frameDelivery{
		deliverAtMicros: deliverAt,
		payload:         out,
		link:            entry.link,
		receivers:       receivers,
	})

	return true, nil
}

// deliverFrame is invoked by the scheduler when a [frameDelivery]
// reaches the head of the event queue and fires. It dispatches
// PHYSICALREADY to every receiver, after resolving the receiver's own
// link index for the link the frame arrived on.
func (s *Simulator) deliverFrame(d *frameDelivery) {
	if s.trace != nil {
		if err := s.trace.WriteFrame(s.currentTimeMicros, d.payload); err != nil {
			s.logger.Warnf("netsim: trace write failed: %s", err.Error())
		}
	}

	for _, receiver := range d.receivers {
		linkIndex := -1
		for i, entry := range receiver.links {
			if entry.link == d.link {
				linkIndex = i
				break
			}
		}
		if linkIndex < 0 {
			panic(errContractf("receiving node %d does not have the delivering link", receiver.index))
		}

		s.eventsRaised++
		s.framesReceived++
		s.bytesReceivedPhysical += int64(len(d.payload))

		s.dispatch(receiver.index, EventPhysicalReady, func() {
			s.invokePhysicalReady(receiver, linkIndex, d.payload)
		})
	}
}

// invokePhysicalReady calls the receiver's PHYSICALREADY handler, if
// one is registered. A missing handler is not an error: the frame is
// simply unobserved by the protocol.
func (s *Simulator) invokePhysicalReady(node *Node, linkIndex int, payload []byte) {
	h, ok := node.handlers[EventPhysicalReady]
	if !ok {
		return
	}
	handler, ok := h.(PhysicalReadyHandler)
	if !ok {
		panic(errContractf("PHYSICALREADY handler has the wrong type"))
	}
	handler(linkIndex, payload)
}
