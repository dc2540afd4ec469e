package models

import "time"

// OverbookingOutcome records what happened on a past night that was (or could have been) oversold.
type OverbookingOutcome struct {
	ID           string    `json:"id"`
	RoomType     string    `json:"room_type"`
	Profile      string    `json:"profile"`
	StayDate     time.Time `json:"stay_date"`
	Reservations int       `json:"reservations"`
	NoShows      int       `json:"no_shows"`
	Oversold     int       `json:"oversold"`
	Walked       int       `json:"walked"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoricalBasis summarizes past outcomes for a room type and period profile.
type HistoricalBasis struct {
	SampleSize         int     `json:"sample_size"`
	NoShowRate         float64 `json:"no_show_rate"`
	SafeOversellEvents int     `json:"safe_oversell_events"`
	Confidence         float64 `json:"confidence"`
}

// DailyPrediction is the forecast for one night.
type DailyPrediction struct {
	Date                   time.Time `json:"date"`
	ExpectedOccupancy      float64   `json:"expected_occupancy"`
	ExpectedAvailableRooms int       `json:"expected_available_rooms"`
	DemandLevel            string    `json:"demand_level"`
}

// Forecast is a forward-looking availability estimate.
type Forecast struct {
	RoomType    string            `json:"room_type,omitempty"`
	Predictions []DailyPrediction `json:"predictions"`
	Confidence  float64           `json:"confidence"`
}

// PricePoint is a recorded dynamic price observation for one room and night.
type PricePoint struct {
	ID           string    `json:"id,omitempty"`
	RoomID       string    `json:"room_id"`
	Date         time.Time `json:"date"`
	BasePrice    float64   `json:"base_price"`
	DynamicPrice float64   `json:"dynamic_price"`
	Multiplier   float64   `json:"multiplier"`
	DemandLevel  string    `json:"demand_level"`
	RecordedAt   time.Time `json:"recorded_at"`
}
