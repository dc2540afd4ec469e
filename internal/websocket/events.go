package websocket

import (
	"log"
	"time"
)

// EventBroadcaster handles broadcasting WebSocket events.
// A nil broadcaster drops every event.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastPricingCalculated sends a pricing.calculated event.
func (b *EventBroadcaster) BroadcastPricingCalculated(payload PricingPayload) {
	b.broadcast(NewMessage(TypePricingCalculated, payload))
}

// BroadcastOverbookingAssessed sends an overbooking.assessed event.
func (b *EventBroadcaster) BroadcastOverbookingAssessed(payload OverbookingPayload) {
	b.broadcast(NewMessage(TypeOverbookingAssessed, payload))
}

// BroadcastSnapshotRecorded sends a trends.snapshot_recorded event.
func (b *EventBroadcaster) BroadcastSnapshotRecorded(date time.Time, recorded, failed int) {
	b.broadcast(NewMessage(TypeTrendsSnapshotRecorded, SnapshotPayload{
		Date:     date.UTC().Format("2006-01-02"),
		Recorded: recorded,
		Failed:   failed,
	}))
}

// BroadcastCacheCleared sends a cache.cleared event.
func (b *EventBroadcaster) BroadcastCacheCleared(removed int) {
	b.broadcast(NewMessage(TypeCacheCleared, CacheClearedPayload{Removed: removed}))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	if b == nil || b.hub == nil {
		return
	}

	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
