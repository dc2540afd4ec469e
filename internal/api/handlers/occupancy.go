package handlers

import (
	"net/http"
	"strings"

	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
)

// OccupancyCalendar returns a handler that builds a per-night occupancy view.
// room_ids is an optional comma-separated list; empty means every active room.
func OccupancyCalendar(eng *engine.Engine) http.HandlerFunc {
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

		var ids []string
		for _, id := range strings.Split(r.URL.Query().Get("room_ids"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}

		cal, err := eng.GetOccupancyCalendar(r.Context(), stay, ids)
		if err != nil {
			writeEngineError(w, "build occupancy calendar", err)
			return
		}

		middleware.WriteJSON(w, http.StatusOK, cal)
	}
}
