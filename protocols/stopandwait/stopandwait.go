// Package stopandwait implements a two-node stop-and-wait data link
// protocol with piggybacked acknowledgments, Tanenbaum's "protocol 4"
// (2nd edition, p227), as a [netsim.NodeImpl] bound to its own
// [netsim.NodeAPI] handle.
//
// This package is not part of the simulator core (§1 Non-goals: "user
// protocol implementations"); it exists so the engine has at least one
// real protocol to register in cmd/netsim's module table and to
// exercise end to end in this package's own test.
package stopandwait

import (
	"fmt"
	"strings"
	"time"

	"github.com/bassosimone/netsim"
	"github.com/bassosimone/netsim/protocols/checksums"
)

// frameKind identifies a stop-and-wait frame's role on the wire.
type frameKind uint16

const (
	frameData frameKind = iota
	frameAck
	frameNack
)

func (k frameKind) String() string {
	switch k {
	case frameData:
		return "DATA"
	case frameAck:
		return "ACK"
	case frameNack:
		return "NACK"
	default:
		return "UNKNOWN"
	}
}

// wanLinkIndex is the WAN link's index in every node's link table: a
// 2-node topology's loopback always occupies index 0, so the single
// peer-facing link is index 1.
const wanLinkIndex = 1

// Node implements [netsim.NodeImpl]. The zero value is invalid; use [New].
type Node struct {
	api netsim.NodeAPI

	lastMsg   []byte
	dataTimer int
	ackTimer  int

	ackExpected     uint16
	nextFrameToSend uint16
	frameExpected   uint16

	ackPending    bool
	pendingAckSeq uint16

	printPrefix string
}

// New is a [netsim.NodeFactory]: it constructs one [Node] bound to
// api. Register it under a module name in cmd/netsim's module table.
func New(api netsim.NodeAPI) netsim.NodeImpl {
	return &Node{
		api:         api,
		printPrefix: strings.Repeat("\t", api.NodeIndex()*4),
	}
}

var _ netsim.NodeImpl = &Node{}

// print emits a line indented per node index, supplementing the
// "[<index>]: " prefix [netsim.NodeAPI.Print] already adds.
func (n *Node) print(format string, v ...any) {
	n.api.Print(n.printPrefix + fmt.Sprintf(format, v...))
}

// transmitFrame builds, checksums, and writes a frame, piggybacking a
// pending ACK onto an outgoing DATA frame when one is due.
func (n *Node) transmitFrame(msg []byte, kind frameKind, seqno uint16) {
	f := &frame{kind: kind, seq: seqno, length: uint16(len(msg)), msg: msg}

	if n.ackPending && kind == frameData {
		f.ack = n.pendingAckSeq
		n.ackPending = false
		if n.ackTimer != 0 {
			n.api.StopTimer(n.ackTimer)
			n.ackTimer = 0
		}
		n.print("Piggybacking ACK, seq=%d", n.pendingAckSeq)
	} else if kind == frameAck {
		f.ack = seqno
	}

	packed := f.pack()
	f.checksum = int32(checksums.CCITT(packed))
	packed = f.pack()

	netsim.Must1(n.api.WritePhysical(wanLinkIndex, packed))

	switch kind {
	case frameAck:
		n.print("ACK transmitted, seq=%d", seqno)
	case frameData:
		n.print("DATA transmitted, seq=%d", seqno)

		info, err := n.api.LinkInfo(wanLinkIndex)
		netsim.Must0(err)
		serializationMicros := int64(len(packed)) * 8 * 1_000_000
		if info.BandwidthBitsPerSecond > 0 {
			serializationMicros /= info.BandwidthBitsPerSecond
		}
		timeout := time.Duration(3*(serializationMicros+info.PropagationDelayMicros)) * time.Microsecond
		n.dataTimer = n.api.StartTimer(netsim.EventTimer1, timeout, nil)
	}
}

// applicationReady handles APPLICATIONREADY: the application has a
// message to send.
func (n *Node) applicationReady(_ int, payload []byte) {
	n.lastMsg = payload
	n.api.DisableApplication()

	n.print("Down from application, seq=%d", n.nextFrameToSend)

	n.transmitFrame(n.lastMsg, frameData, n.nextFrameToSend)
	n.nextFrameToSend = 1 - n.nextFrameToSend
}

// physicalReady handles PHYSICALREADY: a frame arrived on the link.
func (n *Node) physicalReady(_ int, raw []byte) {
	f, err := unpackFrame(raw)
	if err != nil {
		n.print("malformed frame ignored: %s", err.Error())
		return
	}

	checksum := f.checksum
	f.checksum = 0
	if uint16(checksum) != checksums.CCITT(f.pack()) {
		n.print("BAD checksum - frame ignored")
		return
	}

	switch f.kind {
	case frameData:
		n.handleDataFrame(f)
	case frameAck:
		n.handleAckFrame(f)
	}
}

func (n *Node) handleDataFrame(f *frame) {
	if f.ack == n.ackExpected {
		n.print("Received piggybacked ACK, seq=%d", f.ack)
		n.api.StopTimer(n.dataTimer)
		n.ackExpected = 1 - n.ackExpected
		n.api.EnableApplication()
	}

	result := "ignored"
	if f.seq == n.frameExpected {
		n.api.WriteApplication(f.msg)
		n.frameExpected = 1 - n.frameExpected
		result = "up to application"

		n.ackPending = true
		n.pendingAckSeq = f.seq

		if n.ackTimer != 0 {
			n.api.StopTimer(n.ackTimer)
		}
		n.ackTimer = n.api.StartTimer(netsim.EventTimer2, time.Second, f.seq)
	}
	n.print("DATA received, seq=%d, %s", f.seq, result)
}

func (n *Node) handleAckFrame(f *frame) {
	if f.ack == n.ackExpected {
		n.print("ACK received, seq=%d", f.ack)
		n.api.StopTimer(n.dataTimer)
		n.ackExpected = 1 - n.ackExpected
		n.api.EnableApplication()
	}
}

// dataTimeout handles TIMER1: the data-retransmission timeout.
func (n *Node) dataTimeout(_ int) {
	n.print("Data timeout, retransmitting seq=%d", n.ackExpected)
	n.transmitFrame(n.lastMsg, frameData, n.ackExpected)
}

// ackTimeout handles TIMER2: the delayed-ACK timeout.
func (n *Node) ackTimeout(timerID int) {
	data, err := n.api.TimerData(timerID)
	netsim.Must0(err)
	seq, _ := data.(uint16)

	n.print("ACK timeout, sending explicit ACK for seq=%d", seq)
	n.ackPending = false
	n.transmitFrame(nil, frameAck, seq)
}

// Reboot implements [netsim.NodeImpl].
func (n *Node) Reboot() {
	n.api.SetHandler(netsim.EventApplicationReady, netsim.ApplicationReadyHandler(n.applicationReady))
	n.api.SetHandler(netsim.EventPhysicalReady, netsim.PhysicalReadyHandler(n.physicalReady))
	n.api.SetHandler(netsim.EventTimer1, netsim.TimerHandler(n.dataTimeout))
	n.api.SetHandler(netsim.EventTimer2, netsim.TimerHandler(n.ackTimeout))

	n.api.EnableApplication()
}
