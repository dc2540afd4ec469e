package engine

import (
	"context"
	"log"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// AvailabilityPredictor wraps the forecasting collaborator. Forecasts are advisory,
// so failures yield an empty forecast with zero confidence.
type AvailabilityPredictor struct {
	forecasts ForecastSource
	timeout   time.Duration
	now       func() time.Time
}

// NewAvailabilityPredictor creates a predictor.
func NewAvailabilityPredictor(forecasts ForecastSource, timeout time.Duration, now func() time.Time) *AvailabilityPredictor {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityPredictor{forecasts: forecasts, timeout: timeout, now: now}
}

// Predict forecasts demand for r, optionally restricted to roomType.
func (p *AvailabilityPredictor) Predict(ctx context.Context, r models.DateRange, roomType string) (models.Forecast, error) {
	r = models.NewDateRange(r.CheckIn, r.CheckOut)
	roomType = CanonicalRoomType(roomType)
	if err := validateStay(r, p.now(), true).orNil(); err != nil {
		return models.Forecast{}, err
	}

	empty := models.Forecast{RoomType: roomType, Predictions: []models.DailyPrediction{}}
	if p.forecasts == nil {
		return empty, nil
	}

	out := call(ctx, p.timeout, "forecast", func(ctx context.Context) (models.Forecast, error) {
		return p.forecasts.GetDemandForecast(ctx, r, roomType)
	})
	if !out.OK() {
		log.Printf("Forecast unavailable for %s %s: %v", roomType, r, out.Err)
		return empty, nil
	}

	forecast := out.Value
	forecast.RoomType = roomType
	forecast.Confidence = clamp(forecast.Confidence, 0, 1)
	forecast.Predictions = append([]models.DailyPrediction{}, forecast.Predictions...)
	for i := range forecast.Predictions {
		pred := &forecast.Predictions[i]
		pred.ExpectedOccupancy = clamp(pred.ExpectedOccupancy, 0, 1)
		if pred.ExpectedAvailableRooms < 0 {
			pred.ExpectedAvailableRooms = 0
		}
		if pred.DemandLevel == "" {
			pred.DemandLevel = string(Classify(pred.ExpectedOccupancy))
		}
	}
	return forecast, nil
}
