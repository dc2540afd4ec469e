package handlers

import (
	"log"
	"net/http"

	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/websocket"
)

// CacheStats returns a handler that reports cache usage.
func CacheStats(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, eng.CacheStats())
	}
}

// ClearCache returns a handler that drops every cached result.
func ClearCache(eng *engine.Engine, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed := eng.CacheStats().Size
		eng.ClearCache()
		log.Printf("Cleared %d cached results", removed)

		events.BroadcastCacheCleared(removed)
		w.WriteHeader(http.StatusNoContent)
	}
}
