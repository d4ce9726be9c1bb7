package w3gs

import "bytes"

// Message tags the lobby view models. Anything else is carried by the
// protocol but ignored here.
const (
	TagPlayerInfo   uint8 = 0x06
	TagSlotInfo     uint8 = 0x09
	TagChatFromHost uint8 = 0x0F
	TagPlayerLeave  uint8 = 0x21
)

const (
	slotStatusOccupied = 2
	slotTeamBots       = 12
	slotEntryLen       = 9

	chatFlagPlain = 0x10
	chatFlagExtra = 0x20
	chatScopeLen  = 4
)

// DecodeFrame runs the full pipeline over one captured Ethernet frame:
// payload extraction, message framing, per-tag decoding and chat
// classification. It never fails; malformed input contributes zero events
// and never disturbs sibling messages already framed. Event order matches
// message order within the payload.
func DecodeFrame(frame []byte, ts Timestamp) []Event {
	payload, ok := ExtractPayload(frame)
	if !ok {
		return nil
	}
	return DecodePayload(payload, ts)
}

// DecodePayload decodes an already-extracted TCP payload.
func DecodePayload(payload []byte, ts Timestamp) []Event {
	var events []Event
	for _, msg := range FrameMessages(payload) {
		if ev, ok := decodeMessage(msg, ts); ok {
			events = append(events, ev)
		}
	}
	return events
}

func decodeMessage(msg Message, ts Timestamp) (Event, bool) {
	switch msg.Tag {
	case TagPlayerInfo:
		return decodePlayerInfo(msg.Body, ts)
	case TagSlotInfo:
		return decodeSlotInfo(msg.Body, ts)
	case TagPlayerLeave:
		return decodePlayerLeave(msg.Body, ts)
	case TagChatFromHost:
		return decodeChat(msg.Body, ts)
	}
	return nil, false
}

// decodePlayerInfo decodes [4 reserved][playerID u8][name, NUL-terminated].
// A missing terminator or an empty name rejects the message; an undecodable
// name does not, it degrades to "".
func decodePlayerInfo(body []byte, ts Timestamp) (Event, bool) {
	if len(body) < 6 {
		return nil, false
	}
	id := body[4]
	raw, ok := takeCString(body[5:])
	if !ok || len(raw) == 0 {
		return nil, false
	}
	name, _ := decodeText(raw)
	return PlayerJoined{ID: id, Name: name, At: ts}, true
}

// decodeSlotInfo decodes [2 reserved][entryCount u8][entryCount 9-byte
// entries]. Only occupied slots outside the bot team make it into the
// event; an all-filtered message still yields an empty SlotUpdate.
func decodeSlotInfo(body []byte, ts Timestamp) (Event, bool) {
	if len(body) < 3 {
		return nil, false
	}
	count := int(body[2])
	if len(body) < 3+count*slotEntryLen {
		return nil, false
	}
	slots := make([]SlotEntry, 0, count)
	for i := 0; i < count; i++ {
		entry := body[3+i*slotEntryLen : 3+(i+1)*slotEntryLen]
		if entry[2] != slotStatusOccupied || entry[4] == slotTeamBots {
			continue
		}
		slots = append(slots, SlotEntry{PlayerID: entry[0], Team: entry[4], Color: entry[5]})
	}
	return SlotUpdate{Slots: slots, At: ts}, true
}

func decodePlayerLeave(body []byte, ts Timestamp) (Event, bool) {
	if len(body) < 1 {
		return nil, false
	}
	return PlayerLeft{ID: body[0], At: ts}, true
}

// decodeChat decodes [recipientCount u8][recipients][senderID u8][flag u8]
// [data]. Flag 0x10 uses data as-is; flag 0x20 skips a 4-byte scope field
// first; any other flag rejects. Text runs to the first NUL (or the end) and
// must survive decoding, otherwise the whole message is rejected.
func decodeChat(body []byte, ts Timestamp) (Event, bool) {
	if len(body) < 3 {
		return nil, false
	}
	recipients := int(body[0])
	if len(body) < 1+recipients+2 {
		return nil, false
	}
	sender := body[1+recipients]
	flag := body[2+recipients]
	data := body[3+recipients:]

	switch flag {
	case chatFlagPlain:
	case chatFlagExtra:
		if len(data) < chatScopeLen {
			return nil, false
		}
		data = data[chatScopeLen:]
	default:
		return nil, false
	}

	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	text, ok := decodeText(data)
	if !ok {
		return nil, false
	}
	return Chat{Content: Classify(text, sender), At: ts}, true
}
