package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
	"github.com/hotel-pricing-engine/backend/internal/websocket"
)

// DefaultTrendDays is used when the days parameter is omitted.
const DefaultTrendDays = 30

// PricingRequest is the body of a price calculation.
type PricingRequest struct {
	StayRequest
	RoomID string `json:"room_id" validate:"required"`
	// BasePrice overrides the room's configured base price when positive.
	BasePrice float64 `json:"base_price" validate:"gte=0"`
}

// CalculatePrice returns a handler that prices a stay.
func CalculatePrice(eng *engine.Engine, events *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req PricingRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		stay, err := req.dateRange()
		if err != nil {
			writeFieldError(w, "check_in", "must be a date in YYYY-MM-DD format")
			return
		}

		base := req.BasePrice
		if base == 0 {
			if base, err = eng.RoomBasePrice(ctx, req.RoomID); err != nil {
				writeEngineError(w, "look up base price", err)
				return
			}
		}

		result, err := eng.CalculateDynamicPrice(ctx, req.RoomID, stay, base)
		if err != nil {
			writeEngineError(w, "calculate price", err)
			return
		}

		events.BroadcastPricingCalculated(websocket.PricingPayload{
			RoomID:       result.RoomID,
			CheckIn:      req.CheckIn,
			CheckOut:     req.CheckOut,
			BasePrice:    result.BasePrice,
			DynamicPrice: result.DynamicPrice,
			Multiplier:   result.AdjustmentMultiplier,
			DemandLevel:  string(result.DemandLevel),
			Degraded:     result.DegradedFactors,
		})

		middleware.WriteJSON(w, http.StatusOK, result)
	}
}

// TrendsResponse lists recorded prices for a room.
type TrendsResponse struct {
	RoomID string              `json:"room_id"`
	Days   int                 `json:"days"`
	Points []models.PricePoint `json:"points"`
}

// PricingTrends returns a handler that lists recorded prices for a room.
func PricingTrends(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]

		days, err := queryInt(r, "days", DefaultTrendDays)
		if err != nil {
			writeFieldError(w, "days", "must be an integer")
			return
		}

		points, err := eng.GetPricingTrends(r.Context(), roomID, days)
		if err != nil {
			writeEngineError(w, "load pricing trends", err)
			return
		}

		middleware.WriteJSON(w, http.StatusOK, TrendsResponse{RoomID: roomID, Days: days, Points: points})
	}
}
