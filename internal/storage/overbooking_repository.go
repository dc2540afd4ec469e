package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// fullConfidenceSample is the reservation count at which history is fully trusted.
const fullConfidenceSample = 200

// OverbookingRepository stores nightly oversell outcomes.
type OverbookingRepository struct {
	BaseRepository
}

// NewOverbookingRepository creates a new overbooking repository.
func NewOverbookingRepository(db *DB) *OverbookingRepository {
	return &OverbookingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Record inserts an outcome.
func (r *OverbookingRepository) Record(ctx context.Context, o *models.OverbookingOutcome) error {
	if o.ID == "" {
		o.ID = GenerateID()
	}
	o.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO overbooking_outcomes (
			id, room_type, profile, stay_date, reservations, no_shows, oversold, walked, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, o.RoomType, o.Profile, formatDate(o.StayDate),
		o.Reservations, o.NoShows, o.Oversold, o.Walked, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting overbooking outcome: %w", err)
	}

	return nil
}

// GetHistoricalOverbookingOutcomes summarizes outcomes for a room type and period profile.
// A safe event is a night that was oversold without walking anyone.
func (r *OverbookingRepository) GetHistoricalOverbookingOutcomes(ctx context.Context, roomType, profile string) (models.HistoricalBasis, error) {
	var sample, noShows, safe int
	err := r.DB().QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(reservations), 0),
			COALESCE(SUM(no_shows), 0),
			COALESCE(SUM(CASE WHEN oversold > 0 AND walked = 0 THEN 1 ELSE 0 END), 0)
		FROM overbooking_outcomes
		WHERE room_type = ? AND profile = ?
	`, roomType, profile).Scan(&sample, &noShows, &safe)
	if err != nil {
		return models.HistoricalBasis{}, fmt.Errorf("summarizing overbooking outcomes: %w", err)
	}

	basis := models.HistoricalBasis{
		SampleSize:         sample,
		SafeOversellEvents: safe,
		Confidence:         math.Min(1, float64(sample)/fullConfidenceSample),
	}
	if sample > 0 {
		basis.NoShowRate = float64(noShows) / float64(sample)
	}
	return basis, nil
}
