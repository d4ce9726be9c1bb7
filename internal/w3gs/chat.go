package w3gs

import (
	"regexp"
	"strconv"
	"strings"
)

// The two structured announcement formats are host-generated chat text with
// no binary marker, so classification is a textual pattern match after plain
// decoding. A stats line that fails to match degrades to an ordinary message
// rather than being lost.
var (
	roomStatsPattern = regexp.MustCompile(
		`^\s*(.+?)\s+room stats\s+\[\s*(\d+)\s+points\s*\|\s*(\d+)\s+games\s*\|\s*(\d+)%\s+winrate\s*\|\s*(\d+)%\s+disconnects\s*\]\s*$`)
	bracketedIntPattern = regexp.MustCompile(`\[\d+\]`)
	pointsRowPattern    = regexp.MustCompile(`^\s*(.+?)\s*\[(\d+)\]\s*$`)
)

type chatMatcher func(text string, senderID uint8) (ChatContent, bool)

// Ordered; first match wins.
var chatMatchers = []chatMatcher{
	matchRoomStats,
	matchPointsResponse,
}

// Classify sorts decoded chat text into one of the three content variants.
func Classify(text string, senderID uint8) ChatContent {
	for _, match := range chatMatchers {
		if content, ok := match(text, senderID); ok {
			return content
		}
	}
	return ChatMessage{SenderID: senderID, Text: text}
}

// matchRoomStats recognizes
//
//	<name> room stats [ <points> points | <games> games | <winrate>% winrate | <disconnect>% disconnects ]
//
// with flexible whitespace. The sender is discarded: stats lines are
// host-authored.
func matchRoomStats(text string, _ uint8) (ChatContent, bool) {
	m := roomStatsPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	points, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}
	games, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, false
	}
	winRate, err := strconv.Atoi(m[4])
	if err != nil {
		return nil, false
	}
	disconnects, err := strconv.Atoi(m[5])
	if err != nil {
		return nil, false
	}
	return RoomStats{Stats: PlayerStats{
		Name:              strings.TrimSpace(m[1]),
		Points:            points,
		Games:             games,
		WinRatePercent:    winRate,
		DisconnectPercent: disconnects,
	}}, true
}

// matchPointsResponse recognizes comma-separated `<name> [<points>]` rows.
// The `[digits]` probe can false-positive on ordinary chat; rows that do not
// parse are dropped, and zero surviving rows falls through to plain text.
func matchPointsResponse(text string, _ uint8) (ChatContent, bool) {
	if !bracketedIntPattern.MatchString(text) {
		return nil, false
	}
	var entries []PointsEntry
	for _, candidate := range strings.Split(text, ", ") {
		m := pointsRowPattern.FindStringSubmatch(candidate)
		if m == nil {
			continue
		}
		points, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		entries = append(entries, PointsEntry{Name: strings.TrimSpace(m[1]), Points: points})
	}
	if len(entries) == 0 {
		return nil, false
	}
	return PointsResponse{Entries: entries}, true
}
