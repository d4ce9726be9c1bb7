package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danmuck/lobbysniff/internal/testutil/testlog"
	"github.com/danmuck/lobbysniff/internal/tracker"
	"github.com/danmuck/lobbysniff/internal/w3gs"
)

func TestHealthRoute(t *testing.T) {
	testlog.Start(t)
	s := New(tracker.New(), nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "lobbysniff" {
		t.Fatalf("health body mismatch: %v", body)
	}
}

func TestLobbyRouteReflectsTracker(t *testing.T) {
	testlog.Start(t)
	track := tracker.New()
	ts := w3gs.Timestamp{Seconds: 1_700_000_000}
	track.Apply(w3gs.PlayerJoined{ID: 3, Name: "Cairne", At: ts})
	s := New(track, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lobby", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var lobby tracker.Lobby
	if err := json.Unmarshal(rec.Body.Bytes(), &lobby); err != nil {
		t.Fatalf("decode lobby body: %v", err)
	}
	if len(lobby.Players) != 1 || lobby.Players[0].Name != "Cairne" {
		t.Fatalf("lobby mismatch: %+v", lobby)
	}
}

func TestMetricsRouteServes(t *testing.T) {
	testlog.Start(t)
	s := New(tracker.New(), nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
