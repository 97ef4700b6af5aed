package netsim

import (
	"bytes"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func TestNewTraceWriterWritesFileHeader(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewTraceWriter(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a non-empty PCAP file header")
	}
}

func TestWriteFrameProducesReadablePacket(t *testing.T) {
	var buf bytes.Buffer
	tw, err := NewTraceWriter(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := []byte("hello frame")
	if err := tw.WriteFrame(1_000_000, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reader, err := pcapgo.NewReader(&buf)
	if err != nil {
		t.Fatalf("failed to read back the PCAP file: %v", err)
	}
	data, ci, err := reader.ReadPacketData()
	if err != nil {
		t.Fatalf("failed to read the packet: %v", err)
	}
	if ci.Length != len(data) {
		t.Fatalf("expected CaptureInfo.Length to match the packet size, got %d vs %d", ci.Length, len(data))
	}

	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Lazy)
	link := pkt.LinkLayer()
	if link == nil {
		t.Fatal("expected a decodable Ethernet link layer")
	}
	if !bytes.Equal(link.LayerPayload(), payload) {
		t.Fatalf("expected the payload to round-trip, got %q want %q", link.LayerPayload(), payload)
	}
}

func TestWriteFrameSequenceIncrements(t *testing.T) {
	var buf bytes.Buffer
	tw, err := NewTraceWriter(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tw.WriteFrame(0, []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tw.WriteFrame(1, []byte("b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tw.seq != 2 {
		t.Fatalf("expected seq to have incremented twice, got %d", tw.seq)
	}
}
