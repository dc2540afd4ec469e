package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypePricingCalculated      MessageType = "pricing.calculated"
	TypeOverbookingAssessed    MessageType = "overbooking.assessed"
	TypeTrendsSnapshotRecorded MessageType = "trends.snapshot_recorded"
	TypeCacheCleared           MessageType = "cache.cleared"
	TypeNotification           MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// PricingPayload is the payload for pricing.calculated events.
type PricingPayload struct {
	RoomID       string   `json:"room_id"`
	CheckIn      string   `json:"check_in"`
	CheckOut     string   `json:"check_out"`
	BasePrice    float64  `json:"base_price"`
	DynamicPrice float64  `json:"dynamic_price"`
	Multiplier   float64  `json:"multiplier"`
	DemandLevel  string   `json:"demand_level"`
	Degraded     []string `json:"degraded_factors,omitempty"`
}

// OverbookingPayload is the payload for overbooking.assessed events.
type OverbookingPayload struct {
	RoomType       string `json:"room_type"`
	CheckIn        string `json:"check_in"`
	CheckOut       string `json:"check_out"`
	CanOverbook    bool   `json:"can_overbook"`
	RiskLevel      string `json:"risk_level"`
	MaxOverbooking int    `json:"max_overbooking"`
}

// SnapshotPayload is the payload for trends.snapshot_recorded events.
type SnapshotPayload struct {
	Date     string `json:"date"`
	Recorded int    `json:"recorded"`
	Failed   int    `json:"failed"`
}

// CacheClearedPayload is the payload for cache.cleared events.
type CacheClearedPayload struct {
	Removed int `json:"removed"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
