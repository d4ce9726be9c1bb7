package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/lobbysniff/internal/w3gs"
)

var (
	registerOnce sync.Once

	framesCaptured = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lobbysniff",
			Subsystem: "capture",
			Name:      "frames_total",
			Help:      "Frames delivered by the packet source.",
		},
	)
	framesWithoutEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lobbysniff",
			Subsystem: "capture",
			Name:      "frames_without_events_total",
			Help:      "Frames that decoded to zero events (non-W3GS traffic or malformed framing).",
		},
	)
	pollTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lobbysniff",
			Subsystem: "capture",
			Name:      "poll_timeouts_total",
			Help:      "Polls that returned no packet within the timeout.",
		},
	)
	captureErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lobbysniff",
			Subsystem: "capture",
			Name:      "errors_total",
			Help:      "Fatal packet source errors.",
		},
	)
	eventsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lobbysniff",
			Subsystem: "decode",
			Name:      "events_total",
			Help:      "Decoded lobby events by type.",
		},
		[]string{"type"},
	)
	chatClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lobbysniff",
			Subsystem: "decode",
			Name:      "chat_classified_total",
			Help:      "Chat messages by classified content variant.",
		},
		[]string{"variant"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lobbysniff",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lobbysniff",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesCaptured, framesWithoutEvents, pollTimeouts, captureErrors,
			eventsDecoded, chatClassified, httpRequests, httpDuration,
		)
	})
}

func RecordPollTimeout() {
	RegisterMetrics()
	pollTimeouts.Inc()
}

func RecordCaptureError() {
	RegisterMetrics()
	captureErrors.Inc()
}

// RecordFrame accounts one captured frame and the events it decoded to.
func RecordFrame(events []w3gs.Event) {
	RegisterMetrics()
	framesCaptured.Inc()
	if len(events) == 0 {
		framesWithoutEvents.Inc()
		return
	}
	for _, ev := range events {
		eventsDecoded.WithLabelValues(eventType(ev)).Inc()
		if chat, ok := ev.(w3gs.Chat); ok {
			chatClassified.WithLabelValues(chatVariant(chat.Content)).Inc()
		}
	}
}

func eventType(ev w3gs.Event) string {
	switch ev.(type) {
	case w3gs.PlayerJoined:
		return "player_joined"
	case w3gs.PlayerLeft:
		return "player_left"
	case w3gs.SlotUpdate:
		return "slot_update"
	case w3gs.Chat:
		return "chat"
	default:
		return "unknown"
	}
}

func chatVariant(content w3gs.ChatContent) string {
	switch content.(type) {
	case w3gs.RoomStats:
		return "room_stats"
	case w3gs.PointsResponse:
		return "points_response"
	case w3gs.ChatMessage:
		return "message"
	default:
		return "unknown"
	}
}
