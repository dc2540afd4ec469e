package handlers

import (
	"net/http"

	"github.com/hotel-pricing-engine/backend/internal/api/middleware"
	"github.com/hotel-pricing-engine/backend/internal/engine"
)

// Forecast returns a handler that predicts availability for a stay.
func Forecast(eng *engine.Engine) http.HandlerFunc {
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

		forecast, err := eng.PredictAvailability(r.Context(), stay, r.URL.Query().Get("room_type"))
		if err != nil {
			writeEngineError(w, "predict availability", err)
			return
		}

		middleware.WriteJSON(w, http.StatusOK, forecast)
	}
}
