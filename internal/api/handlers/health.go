package handlers

import (
	"net/http"

	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/storage"
	"github.com/hotel-pricing-engine/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string `json:"status"`
	DBConnected      bool   `json:"db_connected"`
	WebSocketClients int    `json:"websocket_clients"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}
		if hub != nil {
			response.WebSocketClients = hub.ClientCount()
		}

		middleware.WriteJSON(w, code, response)
	}
}
