package netsim

//
// PCAP frame-trace sink (domain stack addition, see SPEC_FULL.md).
// A prior revision of this sink wrapped a live NIC in a goroutine-driven
// writer; this one is called synchronously from the scheduler instead,
// since there is exactly one thread here.
//

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// TraceWriter appends every delivered frame to a PCAP file as a raw
// Ethernet payload, so a run can be inspected offline in Wireshark.
// The simulator does not parse frame contents (see the Frame entry in
// the glossary); this sink wraps each opaque payload in the minimal
// Ethernet header gopacket's pcapgo.Writer requires, nothing more.
type TraceWriter struct {
	w   *pcapgo.Writer
	seq int64
}

// NewTraceWriter writes a PCAP file header to dst and returns a
// [TraceWriter] ready to append frames.
func NewTraceWriter(dst io.Writer) (*TraceWriter, error) {
	w := pcapgo.NewWriter(dst)
	const largeSnapLen = 262144
	if err := w.WriteFileHeader(largeSnapLen, layers.LinkTypeEthernet); err != nil {
		return nil, err
	}
	return &TraceWriter{w: w}, nil
}

// syntheticEthernet wraps payload in a minimal Ethernet frame so that
// generic PCAP tooling can display it; the source and destination
// addresses are the same two fixed placeholders for every frame and
// carry no information about the link or the nodes.
func syntheticEthernet(payload []byte) []byte {
	eth := &layers.Ethernet{
		SrcMAC:       []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeLLC,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	payloadLayer := gopacket.Payload(payload)
	Must0(gopacket.SerializeLayers(buf, opts, eth, payloadLayer))
	return buf.Bytes()
}

// WriteFrame appends one delivered frame to the trace, timestamped at
// the simulator's virtual time (expressed as an offset from the Unix
// epoch, since PCAP has no notion of a virtual clock).
func (t *TraceWriter) WriteFrame(virtualTimeMicros int64, payload []byte) error {
	raw := syntheticEthernet(payload)
	t.seq++
	ci := gopacket.CaptureInfo{
		Timestamp:      time.Unix(0, virtualTimeMicros*1000),
		CaptureLength:  len(raw),
		Length:         len(raw),
		InterfaceIndex: 0,
	}
	return t.w.WritePacket(ci, raw)
}
