package w3gs

import "encoding/binary"

const (
	etherHeaderLen = 14
	etherTypeIPv4  = 0x0800
	ipProtoTCP     = 6

	// Ethernet + minimal IPv4 + minimal TCP, no options anywhere.
	minFrameLen = 54
)

// ExtractPayload strips the Ethernet, IPv4 and TCP headers from one captured
// link-layer frame and returns the TCP payload. ok is false when the frame is
// not an Ethernet/IPv4/TCP unit or its headers do not fit the frame; that is
// a silent drop, not an error. A zero-length payload is valid.
//
// Header lengths are honored (IPv4 and TCP options are skipped over) but
// nothing else is validated: no checksums, no option content, no
// fragmentation handling. Garbage that is length-consistent passes through
// and is left for the framer to reject.
func ExtractPayload(frame []byte) ([]byte, bool) {
	if len(frame) < minFrameLen {
		return nil, false
	}
	if binary.BigEndian.Uint16(frame[12:14]) != etherTypeIPv4 {
		return nil, false
	}

	ipHeaderLen := int(frame[etherHeaderLen]&0x0F) * 4
	if frame[etherHeaderLen+9] != ipProtoTCP {
		return nil, false
	}

	dataOffsetAt := etherHeaderLen + ipHeaderLen + 12
	if dataOffsetAt >= len(frame) {
		return nil, false
	}
	tcpHeaderLen := int(frame[dataOffsetAt]>>4) * 4

	start := etherHeaderLen + ipHeaderLen + tcpHeaderLen
	if start > len(frame) {
		return nil, false
	}
	return frame[start:], true
}
