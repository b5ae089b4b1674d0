package realtime

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/pat-apps/teleprompter/internal/shared"
)

var errInvalidUTF8 = errors.New("frame is not valid UTF-8")

const (
	MessageTypeTranscription = "transcription"
	MessageTypeSystem        = "system"
	MessageTypeConnection    = "connection"
)

// InboundMessage is one decoded frame from the companion service. Text and
// Message are pointers so a missing field is distinguishable from an empty
// one; frames with a tag the client does not recognize keep their raw bytes
// for logging.
type InboundMessage struct {
	Type    string  `json:"type"`
	Text    *string `json:"text,omitempty"`
	Message *string `json:"message,omitempty"`
	Raw     []byte  `json:"-"`
}

// OutboundMessage is an arbitrary string-keyed object sent as a single text
// frame. Delivery is best effort.
type OutboundMessage map[string]any

func handshake(client string) OutboundMessage {
	return OutboundMessage{"type": MessageTypeConnection, "client": client}
}

func decodeInbound(data []byte) (*InboundMessage, error) {
	if !utf8.Valid(data) {
		return nil, shared.DecodeErr(errInvalidUTF8)
	}
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, shared.DecodeErr(err)
	}
	msg.Raw = data
	return &msg, nil
}

func encodeOutbound(msg OutboundMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, shared.DecodeErr(err)
	}
	return data, nil
}
