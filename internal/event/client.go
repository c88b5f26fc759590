package event

import "encoding/json"

const (
	TypePing = "ping"
	TypePong = "pong"
)

// ClientMessage is anything a viewer sends over its connection. Only Type is read.
type ClientMessage struct {
	Type string `json:"type"`
}

// ParseClientMessage reports false for payloads that are not a tagged JSON object.
func ParseClientMessage(data []byte) (ClientMessage, bool) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		return ClientMessage{}, false
	}
	return msg, true
}

func (m ClientMessage) IsPing() bool {
	return m.Type == TypePing
}

// PongMessage is the reply to a client ping.
var PongMessage = []byte(`{"type":"pong"}`)
