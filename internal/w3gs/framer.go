package w3gs

import "encoding/binary"

const (
	magicByte    = 0xF7
	msgHeaderLen = 4
)

// Message is one framed W3GS message: the tag byte and its body. Messages
// are transient; they exist only between the framer and the decoders.
type Message struct {
	Tag  uint8
	Body []byte
}

// FrameMessages splits a TCP payload into its length-prefixed W3GS messages.
// Each message is [0xF7][tag][length u16 LE][body], where length counts the
// 4-byte header itself. Multiple messages per payload are routine.
//
// Framing stops at the first position that is not a well-formed message
// header: fewer than 4 bytes left, wrong magic byte, declared length under 4,
// or a declared length running past the payload. Messages framed before that
// point are still returned; trailing garbage is dropped silently.
func FrameMessages(payload []byte) []Message {
	var msgs []Message
	for cur := 0; len(payload)-cur >= msgHeaderLen; {
		if payload[cur] != magicByte {
			break
		}
		tag := payload[cur+1]
		total := int(binary.LittleEndian.Uint16(payload[cur+2 : cur+4]))
		if total < msgHeaderLen || cur+total > len(payload) {
			break
		}
		msgs = append(msgs, Message{Tag: tag, Body: payload[cur+msgHeaderLen : cur+total]})
		cur += total
	}
	return msgs
}
