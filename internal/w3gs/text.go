package w3gs

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText decodes raw protocol text as UTF-8, falling back to Latin-1
// when the bytes are not valid UTF-8. ok is false only when both decodings
// fail; what that means for the surrounding message is decided at the call
// site (player names degrade to "", chat messages are rejected).
func decodeText(b []byte) (string, bool) {
	if utf8.Valid(b) {
		return string(b), true
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return string(s), true
}

// takeCString returns the bytes before the first NUL in b. ok is false when
// no terminator exists.
func takeCString(b []byte) ([]byte, bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return nil, false
	}
	return b[:i], true
}
