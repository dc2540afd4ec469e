package handlers

import (
	"net/http"
	"strings"

	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// AvailabilityRequest is the body of an availability check.
// One of room_id or room_type is required.
type AvailabilityRequest struct {
	StayRequest
	RoomID               string `json:"room_id" validate:"required_without=RoomType"`
	RoomType             string `json:"room_type"`
	MinCapacity          int    `json:"min_capacity" validate:"gte=0"`
	ExcludeReservationID string `json:"exclude_reservation_id"`
}

// CheckAvailability returns a handler that checks whether a stay can be booked.
func CheckAvailability(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AvailabilityRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		stay, err := req.dateRange()
		if err != nil {
			writeFieldError(w, "check_in", "must be a date in YYYY-MM-DD format")
			return
		}

		result, err := eng.CheckAvailability(r.Context(), engine.AvailabilityQuery{
			RoomID:               req.RoomID,
			RoomType:             req.RoomType,
			MinCapacity:          req.MinCapacity,
			Range:                stay,
			ExcludeReservationID: req.ExcludeReservationID,
		})
		if err != nil {
			writeEngineError(w, "check availability", err)
			return
		}

		middleware.WriteJSON(w, http.StatusOK, result)
	}
}

// AvailableRooms returns a handler that lists free rooms for a stay, cheapest first.
func AvailableRooms(eng *engine.Engine) http.HandlerFunc {
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

		filter := models.RoomFilter{RoomType: strings.TrimSpace(r.URL.Query().Get("room_type"))}
		if filter.MinCapacity, err = queryInt(r, "min_capacity", 0); err != nil {
			writeFieldError(w, "min_capacity", "must be an integer")
			return
		}
		if filter.MaxPrice, err = queryFloat(r, "max_price"); err != nil {
			writeFieldError(w, "max_price", "must be a number")
			return
		}

		rooms, err := eng.GetAvailableRooms(r.Context(), stay, filter)
		if err != nil {
			writeEngineError(w, "list available rooms", err)
			return
		}

		middleware.WriteJSON(w, http.StatusOK, rooms)
	}
}
