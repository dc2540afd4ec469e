package handlers

import (
	"net/http"

	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/websocket"
)

// OverbookingOpportunity returns a handler that assesses overselling a room type.
func OverbookingOpportunity(eng *engine.Engine, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := stayFromQuery(r)
		if !validStruct(w, req) {
			return
		}
		stay, err := req.dateRange()
		if err != nil {
			writeFieldError(w, "check_in", "must be a date in YYYY-MM-DD format")
			return
		}

		assessment, err := eng.CheckOverbookingOpportunity(r.Context(), stay, r.URL.Query().Get("room_type"))
		if err != nil {
			writeEngineError(w, "assess overbooking", err)
			return
		}

		events.BroadcastOverbookingAssessed(websocket.OverbookingPayload{
			RoomType:       assessment.RoomType,
			CheckIn:        req.CheckIn,
			CheckOut:       req.CheckOut,
			CanOverbook:    assessment.CanOverbook,
			RiskLevel:      string(assessment.RiskLevel),
			MaxOverbooking: assessment.MaxOverbooking,
		})

		middleware.WriteJSON(w, http.StatusOK, assessment)
	}
}
