package realtime

import (
	"encoding/json"
	"fmt"
)

// Client message types accepted on the bidirectional channel.
const (
	TypeSubscribe          = "subscribe"
	TypeLocationUpdate     = "location-update"
	TypeAvailabilityUpdate = "availability-update"
	TypePing               = "ping"
)

// Server event types.
const (
	TypeConnected  = "connected"
	TypeSubscribed = "subscribed"
	TypePong       = "pong"
	TypeError      = "error"
)

// ClientMessage is the tagged union sent by clients over the websocket
// channel. Data is decoded per type; malformed payloads are rejected at the
// boundary, not silently dropped.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerEvent is the tagged union delivered to clients on both channel
// kinds.
type ServerEvent struct {
	Type   string      `json:"type"`
	UserID string      `json:"user_id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

type SubscribePayload struct {
	Channel string `json:"channel"`
}

type LocationUpdatePayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ParseClientMessage decodes and validates one inbound message.
func ParseClientMessage(raw []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	switch msg.Type {
	case TypeSubscribe, TypeLocationUpdate, TypeAvailabilityUpdate, TypePing:
	case "":
		return nil, fmt.Errorf("message type is required")
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}

	if msg.Type == TypeLocationUpdate {
		var payload LocationUpdatePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return nil, fmt.Errorf("malformed location-update payload: %w", err)
		}
		if payload.Latitude < -90 || payload.Latitude > 90 || payload.Longitude < -180 || payload.Longitude > 180 {
			return nil, fmt.Errorf("location-update coordinates out of range")
		}
	}

	return &msg, nil
}
