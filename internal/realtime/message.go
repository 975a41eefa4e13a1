package realtime

import (
	"encoding/json"
	"time"
)

// Inbound message types understood by the hub itself. Anything else goes to the Handler.
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// Outbound acknowledgement types.
const (
	TypeConnected    = "connected"
	TypeSubscribed   = "subscribed"
	TypeUnsubscribed = "unsubscribed"
	TypeError        = "error"
)

type Inbound struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic,omitempty"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Outbound struct {
	Type      string    `json:"type"`
	Topic     string    `json:"topic,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type errorData struct {
	Message string `json:"message"`
}
