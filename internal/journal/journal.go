// Package journal persists decoded lobby events as an append-only stream of
// CBOR records, one session header followed by one record per event.
package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/danmuck/lobbysniff/internal/w3gs"
)

// Record kinds.
const (
	KindSession = "session"
	KindJoined  = "joined"
	KindLeft    = "left"
	KindSlots   = "slots"
	KindChat    = "chat"
	KindStats   = "stats"
	KindPoints  = "points"
)

var ErrUnknownEvent = errors.New("journal: unknown event type")

// Meta describes the capture session in the journal header.
type Meta struct {
	Device string
	Filter string
}

// Record is one journal entry. Kind selects which optional fields are set.
type Record struct {
	Kind    string `cbor:"kind"`
	Session string `cbor:"session,omitempty"`
	Device  string `cbor:"device,omitempty"`
	Filter  string `cbor:"filter,omitempty"`
	Started int64  `cbor:"started,omitempty"`

	Seconds uint32 `cbor:"sec,omitempty"`
	Micros  uint32 `cbor:"usec,omitempty"`

	PlayerID uint8          `cbor:"player,omitempty"`
	Name     string         `cbor:"name,omitempty"`
	Slots    []SlotRecord   `cbor:"slots,omitempty"`
	Sender   uint8          `cbor:"sender,omitempty"`
	Text     string         `cbor:"text,omitempty"`
	Stats    *StatsRecord   `cbor:"stats,omitempty"`
	Points   []PointsRecord `cbor:"points,omitempty"`
}

// SlotRecord is one occupied slot in a slots record.
type SlotRecord struct {
	PlayerID uint8 `cbor:"player"`
	Team     uint8 `cbor:"team"`
	Color    uint8 `cbor:"color"`
}

// StatsRecord mirrors a room-stats announcement.
type StatsRecord struct {
	Name              string `cbor:"name"`
	Points            int    `cbor:"points"`
	Games             int    `cbor:"games"`
	WinRatePercent    int    `cbor:"winrate"`
	DisconnectPercent int    `cbor:"disconnects"`
}

// PointsRecord is one row of a points listing.
type PointsRecord struct {
	Name   string `cbor:"name"`
	Points int    `cbor:"points"`
}

// Journal is an append-only event log. Safe for concurrent Append.
type Journal struct {
	mu      sync.Mutex
	file    *os.File
	enc     *cbor.Encoder
	session string
}

// Open creates or appends to the journal at path and writes the session
// header record.
func Open(path string, meta Meta) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	j := &Journal{
		file:    file,
		enc:     cbor.NewEncoder(file),
		session: uuid.NewString(),
	}
	header := Record{
		Kind:    KindSession,
		Session: j.session,
		Device:  meta.Device,
		Filter:  meta.Filter,
		Started: time.Now().Unix(),
	}
	if err := j.enc.Encode(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("journal: write header: %w", err)
	}
	return j, nil
}

// Session returns this journal's session id.
func (j *Journal) Session() string { return j.session }

// Append writes one event record.
func (j *Journal) Append(ev w3gs.Event) error {
	rec, err := eventRecord(ev)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(rec); err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

func eventRecord(ev w3gs.Event) (Record, error) {
	at := ev.When()
	rec := Record{Seconds: at.Seconds, Micros: at.Micros}

	switch e := ev.(type) {
	case w3gs.PlayerJoined:
		rec.Kind = KindJoined
		rec.PlayerID = e.ID
		rec.Name = e.Name
	case w3gs.PlayerLeft:
		rec.Kind = KindLeft
		rec.PlayerID = e.ID
	case w3gs.SlotUpdate:
		rec.Kind = KindSlots
		rec.Slots = make([]SlotRecord, 0, len(e.Slots))
		for _, s := range e.Slots {
			rec.Slots = append(rec.Slots, SlotRecord{PlayerID: s.PlayerID, Team: s.Team, Color: s.Color})
		}
	case w3gs.Chat:
		fillChat(&rec, e.Content)
	default:
		return Record{}, ErrUnknownEvent
	}
	return rec, nil
}

func fillChat(rec *Record, content w3gs.ChatContent) {
	switch c := content.(type) {
	case w3gs.RoomStats:
		rec.Kind = KindStats
		rec.Stats = &StatsRecord{
			Name:              c.Stats.Name,
			Points:            c.Stats.Points,
			Games:             c.Stats.Games,
			WinRatePercent:    c.Stats.WinRatePercent,
			DisconnectPercent: c.Stats.DisconnectPercent,
		}
	case w3gs.PointsResponse:
		rec.Kind = KindPoints
		rec.Points = make([]PointsRecord, 0, len(c.Entries))
		for _, p := range c.Entries {
			rec.Points = append(rec.Points, PointsRecord{Name: p.Name, Points: p.Points})
		}
	case w3gs.ChatMessage:
		rec.Kind = KindChat
		rec.Sender = c.SenderID
		rec.Text = c.Text
	}
}

// Reader iterates a journal file back as records.
type Reader struct {
	file *os.File
	dec  *cbor.Decoder
}

func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Reader{file: file, dec: cbor.NewDecoder(file)}, nil
}

// Next returns the next record, or io.EOF at the end of the journal.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("journal: read: %w", err)
	}
	return rec, nil
}

func (r *Reader) Close() error {
	return r.file.Close()
}
