// Package tracker folds decoded lobby events into the current lobby view
// served over HTTP. The decoder itself is stateless; all remembered state
// lives here, behind one lock.
package tracker

import (
	"sync"

	"github.com/danmuck/lobbysniff/internal/w3gs"
)

const chatBacklog = 64

// Player is one roster entry, in join order.
type Player struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
}

// ChatLine is one retained chat message.
type ChatLine struct {
	Clock    string `json:"clock"`
	SenderID uint8  `json:"sender_id"`
	Sender   string `json:"sender,omitempty"`
	Text     string `json:"text"`
}

// Lobby is a point-in-time copy of tracked state.
type Lobby struct {
	Players []Player           `json:"players"`
	Slots   []w3gs.SlotEntry   `json:"slots"`
	Stats   []w3gs.PlayerStats `json:"stats,omitempty"`
	Points  []w3gs.PointsEntry `json:"points,omitempty"`
	Chat    []ChatLine         `json:"chat,omitempty"`
	Updated string             `json:"updated,omitempty"`
}

// Tracker accumulates lobby state from events. Safe for one writer and any
// number of Snapshot readers.
type Tracker struct {
	mu      sync.RWMutex
	order   []uint8
	names   map[uint8]string
	slots   []w3gs.SlotEntry
	stats   map[string]w3gs.PlayerStats
	statsBy []string
	points  []w3gs.PointsEntry
	chat    []ChatLine
	updated string
}

func New() *Tracker {
	return &Tracker{
		names: make(map[uint8]string),
		stats: make(map[string]w3gs.PlayerStats),
	}
}

// Apply folds one event into the lobby state. Events for players the tracker
// has never seen are tolerated; capture may start mid-lobby.
func (t *Tracker) Apply(ev w3gs.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updated = ev.When().Clock()

	switch e := ev.(type) {
	case w3gs.PlayerJoined:
		if _, known := t.names[e.ID]; !known {
			t.order = append(t.order, e.ID)
		}
		t.names[e.ID] = e.Name
	case w3gs.PlayerLeft:
		if _, known := t.names[e.ID]; known {
			delete(t.names, e.ID)
			for i, id := range t.order {
				if id == e.ID {
					t.order = append(t.order[:i], t.order[i+1:]...)
					break
				}
			}
		}
	case w3gs.SlotUpdate:
		t.slots = append(t.slots[:0], e.Slots...)
	case w3gs.Chat:
		t.applyChat(e)
	}
}

func (t *Tracker) applyChat(e w3gs.Chat) {
	switch c := e.Content.(type) {
	case w3gs.RoomStats:
		if _, seen := t.stats[c.Stats.Name]; !seen {
			t.statsBy = append(t.statsBy, c.Stats.Name)
		}
		t.stats[c.Stats.Name] = c.Stats
	case w3gs.PointsResponse:
		t.points = append(t.points[:0], c.Entries...)
	case w3gs.ChatMessage:
		line := ChatLine{
			Clock:    e.At.Clock(),
			SenderID: c.SenderID,
			Sender:   t.names[c.SenderID],
			Text:     c.Text,
		}
		t.chat = append(t.chat, line)
		if len(t.chat) > chatBacklog {
			t.chat = t.chat[len(t.chat)-chatBacklog:]
		}
	}
}

// Snapshot returns a copy of the current lobby view.
func (t *Tracker) Snapshot() Lobby {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lobby := Lobby{
		Players: make([]Player, 0, len(t.order)),
		Slots:   append([]w3gs.SlotEntry(nil), t.slots...),
		Points:  append([]w3gs.PointsEntry(nil), t.points...),
		Chat:    append([]ChatLine(nil), t.chat...),
		Updated: t.updated,
	}
	for _, id := range t.order {
		lobby.Players = append(lobby.Players, Player{ID: id, Name: t.names[id]})
	}
	for _, name := range t.statsBy {
		lobby.Stats = append(lobby.Stats, t.stats[name])
	}
	return lobby
}
