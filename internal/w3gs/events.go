// Package w3gs decodes the W3GS lobby protocol out of captured Ethernet
// frames. The whole package is a pure pipeline: payload extraction, message
// framing, per-tag decoding, chat classification. It keeps no state between
// calls, performs no I/O, and expresses every malformed input as "no output"
// rather than an error.
package w3gs

import "time"

// Timestamp is a capture timestamp: whole seconds since the epoch plus
// microseconds, as delivered by the packet source.
type Timestamp struct {
	Seconds uint32
	Micros  uint32
}

func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t.Seconds), int64(t.Micros)*1000)
}

// Clock renders the timestamp as a zero-padded HH:MM:SS wall-clock string.
func (t Timestamp) Clock() string {
	return t.Time().Format("15:04:05")
}

// SlotEntry is one occupied, non-bot lobby slot.
type SlotEntry struct {
	PlayerID uint8
	Team     uint8
	Color    uint8
}

// PlayerStats is a parsed room-stats host announcement.
type PlayerStats struct {
	Name              string
	Points            int
	Games             int
	WinRatePercent    int
	DisconnectPercent int
}

// PointsEntry is one row of a points listing announcement.
type PointsEntry struct {
	Name   string
	Points int
}

// ChatContent is what a chat message carried: one of the two structured
// host announcement formats, or free text.
type ChatContent interface {
	chatContent()
}

// RoomStats is a host-authored per-player statistics announcement.
type RoomStats struct {
	Stats PlayerStats
}

// PointsResponse is a host-authored points listing. Entries is never empty.
type PointsResponse struct {
	Entries []PointsEntry
}

// ChatMessage is ordinary chat text from a lobby member.
type ChatMessage struct {
	SenderID uint8
	Text     string
}

func (RoomStats) chatContent()      {}
func (PointsResponse) chatContent() {}
func (ChatMessage) chatContent()    {}

// Event is one decoded lobby state change. Every event carries the capture
// timestamp of the frame it was extracted from, unmodified.
type Event interface {
	When() Timestamp
	event()
}

// PlayerJoined reports a player entering the lobby.
type PlayerJoined struct {
	ID   uint8
	Name string
	At   Timestamp
}

// PlayerLeft reports a player leaving the lobby.
type PlayerLeft struct {
	ID uint8
	At Timestamp
}

// SlotUpdate reports the occupied-slot layout. Slots holds only occupied,
// non-bot entries, in slot index order; it may be empty.
type SlotUpdate struct {
	Slots []SlotEntry
	At    Timestamp
}

// Chat reports one classified chat message.
type Chat struct {
	Content ChatContent
	At      Timestamp
}

func (e PlayerJoined) When() Timestamp { return e.At }
func (e PlayerLeft) When() Timestamp   { return e.At }
func (e SlotUpdate) When() Timestamp   { return e.At }
func (e Chat) When() Timestamp         { return e.At }

func (PlayerJoined) event() {}
func (PlayerLeft) event()   {}
func (SlotUpdate) event()   {}
func (Chat) event()         {}
