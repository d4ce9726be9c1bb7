package w3gs

import (
	"testing"
)

var testTS = Timestamp{Seconds: 1_700_000_000, Micros: 250_000}

// slotEntry builds one 9-byte slot entry with the decoded byte positions set.
func slotEntry(playerID, status, team, color uint8) []byte {
	entry := make([]byte, slotEntryLen)
	entry[0] = playerID
	entry[2] = status
	entry[4] = team
	entry[5] = color
	return entry
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	// Build a frame from known field placements and recover them exactly.
	join := testMessage(TagPlayerInfo, []byte{0, 0, 0, 0, 4, 'G', 'r', 'o', 'm', 0})
	leave := testMessage(TagPlayerLeave, []byte{9, 1, 2, 3})
	payload := append(append([]byte{}, join...), leave...)

	events := DecodeFrame(testFrame(payload), testTS)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	joined, ok := events[0].(PlayerJoined)
	if !ok {
		t.Fatalf("expected PlayerJoined, got %T", events[0])
	}
	if joined.ID != 4 || joined.Name != "Grom" {
		t.Fatalf("joined mismatch: %+v", joined)
	}
	if joined.At != testTS {
		t.Fatalf("timestamp not carried through: %+v", joined.At)
	}

	left, ok := events[1].(PlayerLeft)
	if !ok {
		t.Fatalf("expected PlayerLeft, got %T", events[1])
	}
	if left.ID != 9 || left.At != testTS {
		t.Fatalf("left mismatch: %+v", left)
	}
}

func TestDecodeFrameRejectsNonTCP(t *testing.T) {
	frame := testFrame(testMessage(TagPlayerLeave, []byte{1}))
	frame[14+9] = 17
	if events := DecodeFrame(frame, testTS); len(events) != 0 {
		t.Fatalf("expected no events from UDP frame, got %d", len(events))
	}
}

func TestDecodePayloadUnknownTagIgnored(t *testing.T) {
	payload := append(testMessage(0x1E, []byte{1, 2, 3}), testMessage(TagPlayerLeave, []byte{5})...)
	events := DecodePayload(payload, testTS)
	if len(events) != 1 {
		t.Fatalf("unknown tag must be skipped, got %d events", len(events))
	}
	if left := events[0].(PlayerLeft); left.ID != 5 {
		t.Fatalf("left mismatch: %+v", left)
	}
}

func TestDecodePlayerInfoRejects(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"short body", []byte{0, 0, 0, 0, 1}},
		{"no terminator", []byte{0, 0, 0, 0, 1, 'a', 'b'}},
		{"empty name", []byte{0, 0, 0, 0, 1, 0}},
	}
	for _, tc := range cases {
		if _, ok := decodePlayerInfo(tc.body, testTS); ok {
			t.Fatalf("%s: expected rejection", tc.name)
		}
	}
}

func TestDecodePlayerInfoLatin1Name(t *testing.T) {
	// 0xE9 is not valid UTF-8 on its own; Latin-1 reads it as é.
	body := []byte{0, 0, 0, 0, 2, 'R', 0xE9, 'n', 0}
	ev, ok := decodePlayerInfo(body, testTS)
	if !ok {
		t.Fatalf("expected event")
	}
	if joined := ev.(PlayerJoined); joined.Name != "Rén" {
		t.Fatalf("name mismatch: %q", joined.Name)
	}
}

func TestDecodeSlotInfoFiltering(t *testing.T) {
	// Occupied, empty, bot-team, occupied: only the first and last survive.
	body := []byte{0, 0, 4}
	body = append(body, slotEntry(1, slotStatusOccupied, 0, 1)...)
	body = append(body, slotEntry(2, 0, 1, 2)...)
	body = append(body, slotEntry(3, slotStatusOccupied, slotTeamBots, 3)...)
	body = append(body, slotEntry(4, slotStatusOccupied, 1, 4)...)

	ev, ok := decodeSlotInfo(body, testTS)
	if !ok {
		t.Fatalf("expected event")
	}
	update := ev.(SlotUpdate)
	want := []SlotEntry{{PlayerID: 1, Team: 0, Color: 1}, {PlayerID: 4, Team: 1, Color: 4}}
	if len(update.Slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(update.Slots))
	}
	for i := range want {
		if update.Slots[i] != want[i] {
			t.Fatalf("slot %d mismatch: got=%+v want=%+v", i, update.Slots[i], want[i])
		}
	}
}

func TestDecodeSlotInfoAllFilteredStillEmits(t *testing.T) {
	body := []byte{0, 0, 1}
	body = append(body, slotEntry(1, 0, 0, 0)...)
	ev, ok := decodeSlotInfo(body, testTS)
	if !ok {
		t.Fatalf("all-filtered slot message must still emit an event")
	}
	if update := ev.(SlotUpdate); len(update.Slots) != 0 {
		t.Fatalf("expected empty slot list, got %+v", update.Slots)
	}
}

func TestDecodeSlotInfoTruncatedEntries(t *testing.T) {
	body := []byte{0, 0, 2}
	body = append(body, slotEntry(1, slotStatusOccupied, 0, 0)...) // declares 2, carries 1
	if _, ok := decodeSlotInfo(body, testTS); ok {
		t.Fatalf("expected rejection of truncated entry table")
	}
}

func TestDecodeChatPlainFlag(t *testing.T) {
	body := []byte{2, 3, 4, 1, chatFlagPlain}
	body = append(body, []byte("gl hf")...)
	ev, ok := decodeChat(body, testTS)
	if !ok {
		t.Fatalf("expected event")
	}
	msg, ok := ev.(Chat).Content.(ChatMessage)
	if !ok {
		t.Fatalf("expected ChatMessage, got %T", ev.(Chat).Content)
	}
	if msg.SenderID != 1 || msg.Text != "gl hf" {
		t.Fatalf("chat mismatch: %+v", msg)
	}
}

func TestDecodeChatExtraFlagSkipsScope(t *testing.T) {
	body := []byte{0, 6, chatFlagExtra, 0xAA, 0xBB, 0xCC, 0xDD}
	body = append(body, []byte("hi")...)
	ev, ok := decodeChat(body, testTS)
	if !ok {
		t.Fatalf("expected event")
	}
	if msg := ev.(Chat).Content.(ChatMessage); msg.Text != "hi" || msg.SenderID != 6 {
		t.Fatalf("chat mismatch: %+v", msg)
	}
}

func TestDecodeChatRejects(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"short body", []byte{0, 1}},
		{"recipient list past body", []byte{5, 1, 2}},
		{"unknown flag", append([]byte{0, 1, 0x30}, 'x')},
		{"extra flag without scope", []byte{0, 1, chatFlagExtra, 1, 2, 3}},
	}
	for _, tc := range cases {
		if _, ok := decodeChat(tc.body, testTS); ok {
			t.Fatalf("%s: expected rejection", tc.name)
		}
	}
}

func TestDecodeChatEmptyTextIsValid(t *testing.T) {
	ev, ok := decodeChat([]byte{0, 1, chatFlagPlain}, testTS)
	if !ok {
		t.Fatalf("empty chat text should decode")
	}
	if msg := ev.(Chat).Content.(ChatMessage); msg.Text != "" {
		t.Fatalf("expected empty text, got %q", msg.Text)
	}
}

func TestDecodeChatTextStopsAtNUL(t *testing.T) {
	body := []byte{0, 2, chatFlagPlain}
	body = append(body, 'o', 'k', 0, 'j', 'u', 'n', 'k')
	ev, ok := decodeChat(body, testTS)
	if !ok {
		t.Fatalf("expected event")
	}
	if msg := ev.(Chat).Content.(ChatMessage); msg.Text != "ok" {
		t.Fatalf("expected text truncated at NUL, got %q", msg.Text)
	}
}

func TestTimestampClock(t *testing.T) {
	ts := Timestamp{Seconds: 3661, Micros: 0} // 01:01:01 UTC on day one
	clock := ts.Clock()
	if len(clock) != 8 || clock[2] != ':' || clock[5] != ':' {
		t.Fatalf("expected zero-padded HH:MM:SS, got %q", clock)
	}
}
