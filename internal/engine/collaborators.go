package engine

import (
	"context"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// OccupancySource reports how full the property is over a stay.
type OccupancySource interface {
	GetOccupancyRate(ctx context.Context, r models.DateRange) (float64, error)
}

// DemandSource reports relative demand for a room over a stay.
type DemandSource interface {
	GetRoomDemand(ctx context.Context, roomID string, r models.DateRange) (float64, error)
}

// ReservationSource answers reservation overlap queries.
type ReservationSource interface {
	GetReservationConflicts(ctx context.Context, q models.ConflictQuery) ([]models.Reservation, error)
	GetAvailableRoomsMatching(ctx context.Context, r models.DateRange, f models.RoomFilter) ([]models.Room, error)
	GetReservationsInSpan(ctx context.Context, r models.DateRange, roomIDs []string) ([]models.Reservation, error)
}

// RoomCatalog lists rooms. An empty id list means every active room.
type RoomCatalog interface {
	ListRooms(ctx context.Context, ids []string) ([]models.Room, error)
}

// OverbookingHistory provides past oversell outcomes.
type OverbookingHistory interface {
	GetHistoricalOverbookingOutcomes(ctx context.Context, roomType, profile string) (models.HistoricalBasis, error)
}

// ForecastSource produces demand forecasts.
type ForecastSource interface {
	GetDemandForecast(ctx context.Context, r models.DateRange, roomType string) (models.Forecast, error)
}

// PriceHistory returns recorded price points within [from, to].
type PriceHistory interface {
	GetPricePoints(ctx context.Context, roomID string, from, to time.Time) ([]models.PricePoint, error)
}

// Collaborators bundles everything the engine consults.
type Collaborators struct {
	Occupancy    OccupancySource
	Demand       DemandSource
	Reservations ReservationSource
	Rooms        RoomCatalog
	Overbooking  OverbookingHistory
	Forecasts    ForecastSource
	Prices       PriceHistory
}

// Outcome is the explicit result of one collaborator call.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Or returns the value on success and fallback otherwise.
func (o Outcome[T]) Or(fallback T) T {
	if o.Err != nil {
		return fallback
	}
	return o.Value
}

// call runs fn with a deadline of timeout. A missed deadline is reported as ErrServiceUnavailable
// even if fn ignores its context.
func call[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) Outcome[T] {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Outcome[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- Outcome[T]{Value: v, Err: err}
	}()

	select {
	case out := <-done:
		if out.Err != nil {
			out.Err = unavailable(name, out.Err)
		}
		return out
	case <-ctx.Done():
		return Outcome[T]{Err: unavailable(name, ctx.Err())}
	}
}
