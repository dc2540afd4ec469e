package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// SnapshotRepository stores recorded dynamic prices.
type SnapshotRepository struct {
	BaseRepository
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Record inserts a price point. RecordedAt defaults to now.
func (r *SnapshotRepository) Record(ctx context.Context, p *models.PricePoint) error {
	if p.ID == "" {
		p.ID = GenerateID()
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = r.Now()
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO price_snapshots (
			id, room_id, stay_date, base_price, dynamic_price, multiplier, demand_level, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.RoomID, formatDate(p.Date), p.BasePrice, p.DynamicPrice,
		p.Multiplier, p.DemandLevel, p.RecordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting price snapshot: %w", err)
	}

	return nil
}

// GetPricePoints returns snapshots for roomID with dates in [from, to], oldest first.
func (r *SnapshotRepository) GetPricePoints(ctx context.Context, roomID string, from, to time.Time) ([]models.PricePoint, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, room_id, stay_date, base_price, dynamic_price, multiplier, demand_level, recorded_at
		FROM price_snapshots
		WHERE room_id = ? AND stay_date >= ? AND stay_date <= ?
		ORDER BY stay_date, recorded_at
	`, roomID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("querying price snapshots: %w", err)
	}
	defer rows.Close()

	points := []models.PricePoint{}
	for rows.Next() {
		var p models.PricePoint
		var date string
		if err := rows.Scan(
			&p.ID, &p.RoomID, &date, &p.BasePrice, &p.DynamicPrice,
			&p.Multiplier, &p.DemandLevel, &p.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning price snapshot: %w", err)
		}
		if p.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// DeleteBefore removes snapshots for dates earlier than cutoff and returns how many were removed.
func (r *SnapshotRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM price_snapshots WHERE stay_date < ?`, formatDate(cutoff))
	if err != nil {
		return 0, fmt.Errorf("deleting old snapshots: %w", err)
	}
	return result.RowsAffected()
}
