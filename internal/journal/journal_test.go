package journal

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/danmuck/lobbysniff/internal/w3gs"
)

func TestJournalWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lobby.cbor")

	j, err := Open(path, Meta{Device: "eth0", Filter: "tcp port 6112"})
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	ts := w3gs.Timestamp{Seconds: 1_700_000_000, Micros: 42}
	events := []w3gs.Event{
		w3gs.PlayerJoined{ID: 1, Name: "Alice", At: ts},
		w3gs.SlotUpdate{Slots: []w3gs.SlotEntry{{PlayerID: 1, Team: 0, Color: 2}}, At: ts},
		w3gs.Chat{Content: w3gs.ChatMessage{SenderID: 1, Text: "hello"}, At: ts},
		w3gs.Chat{Content: w3gs.RoomStats{Stats: w3gs.PlayerStats{Name: "Alice", Points: 1500, Games: 10, WinRatePercent: 50, DisconnectPercent: 0}}, At: ts},
		w3gs.PlayerLeft{ID: 1, At: ts},
	}
	for _, ev := range events {
		if err := j.Append(ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer r.Close()

	header, err := r.Next()
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if header.Kind != KindSession || header.Session != j.Session() || header.Device != "eth0" {
		t.Fatalf("header mismatch: %+v", header)
	}

	wantKinds := []string{KindJoined, KindSlots, KindChat, KindStats, KindLeft}
	for i, want := range wantKinds {
		rec, err := r.Next()
		if err != nil {
			t.Fatalf("read record %d: %v", i, err)
		}
		if rec.Kind != want {
			t.Fatalf("record %d kind mismatch: got=%s want=%s", i, rec.Kind, want)
		}
		if rec.Seconds != ts.Seconds || rec.Micros != ts.Micros {
			t.Fatalf("record %d timestamp mismatch: %+v", i, rec)
		}
	}

	joinedCheck, chatCheck := false, false
	r2, err := OpenReader(path)
	if err != nil {
		t.Fatalf("reopen reader: %v", err)
	}
	defer r2.Close()
	for {
		rec, err := r2.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		switch rec.Kind {
		case KindJoined:
			joinedCheck = rec.PlayerID == 1 && rec.Name == "Alice"
		case KindStats:
			chatCheck = rec.Stats != nil && rec.Stats.Points == 1500
		}
	}
	if !joinedCheck || !chatCheck {
		t.Fatalf("field round trip failed: joined=%v stats=%v", joinedCheck, chatCheck)
	}
}

func TestJournalAppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lobby.cbor")

	for i := 0; i < 2; i++ {
		j, err := Open(path, Meta{Device: "lo"})
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := j.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer r.Close()
	sessions := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if rec.Kind == KindSession {
			sessions++
		}
	}
	if sessions != 2 {
		t.Fatalf("expected 2 session headers, got %d", sessions)
	}
}
