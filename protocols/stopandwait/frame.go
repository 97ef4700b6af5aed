package stopandwait

//
// Wire format: a fixed header (kind, length, checksum, seq, ack) as
// big-endian uint16/uint16/int32/uint16/uint16, followed by the
// variable-length message payload.
//

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const frameHeaderBytes = 2 + 2 + 4 + 2 + 2

type frame struct {
	kind     frameKind
	length   uint16
	checksum int32
	seq      uint16
	ack      uint16
	msg      []byte
}

func (f *frame) pack() []byte {
	buf := make([]byte, frameHeaderBytes+len(f.msg))
	binary.BigEndian.PutUint16(buf[0:2], uint16(f.kind))
	binary.BigEndian.PutUint16(buf[2:4], f.length)
	binary.BigEndian.PutUint32(buf[4:8], uint32(f.checksum))
	binary.BigEndian.PutUint16(buf[8:10], f.seq)
	binary.BigEndian.PutUint16(buf[10:12], f.ack)
	copy(buf[frameHeaderBytes:], f.msg)
	return buf
}

func unpackFrame(raw []byte) (*frame, error) {
	if len(raw) < frameHeaderBytes {
		return nil, fmt.Errorf("frame too short: %d bytes", len(raw))
	}
	f := &frame{
		kind:     frameKind(binary.BigEndian.Uint16(raw[0:2])),
		length:   binary.BigEndian.Uint16(raw[2:4]),
		checksum: int32(binary.BigEndian.Uint32(raw[4:8])),
		seq:      binary.BigEndian.Uint16(raw[8:10]),
		ack:      binary.BigEndian.Uint16(raw[10:12]),
	}
	f.msg = bytes.Clone(raw[frameHeaderBytes:])
	return f, nil
}
