package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// Windows used by the reservation-derived signals.
const (
	DemandWindowDays   = 90
	ForecastWindowDays = 56
)

// SignalRepository derives occupancy, demand and forecast signals from reservations.
type SignalRepository struct {
	BaseRepository
	rooms        *RoomRepository
	reservations *ReservationRepository
}

// NewSignalRepository creates a new signal repository.
func NewSignalRepository(db *DB) *SignalRepository {
	return &SignalRepository{
		BaseRepository: NewBaseRepository(db),
		rooms:          NewRoomRepository(db),
		reservations:   NewReservationRepository(db),
	}
}

// GetOccupancyRate is booked room-nights over available room-nights for stay.
func (s *SignalRepository) GetOccupancyRate(ctx context.Context, stay models.DateRange) (float64, error) {
	rooms, err := s.rooms.ListRooms(ctx, nil)
	if err != nil {
		return 0, err
	}
	nights := stay.Nights()
	if len(rooms) == 0 || nights == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	booked, err := s.reservations.GetReservationsInSpan(ctx, stay, ids)
	if err != nil {
		return 0, err
	}

	occupied := len(occupiedNights(booked, stay))
	return float64(occupied) / float64(len(rooms)*nights), nil
}

// GetRoomDemand compares the share of recent bookings for the room's type with the
// type's share of active rooms. 1.0 means bookings follow inventory.
func (s *SignalRepository) GetRoomDemand(ctx context.Context, roomID string, _ models.DateRange) (float64, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if room == nil {
		return 0, fmt.Errorf("room not found: %s", roomID)
	}

	since := s.Now().AddDate(0, 0, -DemandWindowDays)
	var typeBookings, allBookings int
	err = s.DB().QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN r.room_type = ? THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM reservations x JOIN rooms r ON r.id = x.room_id
		WHERE x.created_at >= ? AND x.status != 'cancelled'
	`, room.RoomType, since).Scan(&typeBookings, &allBookings)
	if err != nil {
		return 0, fmt.Errorf("counting recent bookings: %w", err)
	}
	if allBookings == 0 {
		return 1.0, nil
	}

	var typeRooms, allRooms int
	err = s.DB().QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN room_type = ? THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM rooms WHERE active = 1
	`, room.RoomType).Scan(&typeRooms, &allRooms)
	if err != nil {
		return 0, fmt.Errorf("counting rooms: %w", err)
	}
	if typeRooms == 0 || allRooms == 0 {
		return 1.0, nil
	}

	bookingShare := float64(typeBookings) / float64(allBookings)
	inventoryShare := float64(typeRooms) / float64(allRooms)
	return bookingShare / inventoryShare, nil
}

// GetDemandForecast estimates each night of stay from the same weekday over the
// trailing eight weeks, never below what is already booked for that night.
func (s *SignalRepository) GetDemandForecast(ctx context.Context, stay models.DateRange, roomType string) (models.Forecast, error) {
	rooms, err := s.rooms.ListRooms(ctx, nil)
	if err != nil {
		return models.Forecast{}, err
	}
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		if roomType == "" || room.RoomType == roomType {
			ids = append(ids, room.ID)
		}
	}

	forecast := models.Forecast{RoomType: roomType, Predictions: []models.DailyPrediction{}}
	if len(ids) == 0 {
		return forecast, nil
	}

	today := s.Today()
	history := models.DateRange{CheckIn: today.AddDate(0, 0, -ForecastWindowDays), CheckOut: today}
	past, err := s.reservations.GetReservationsInSpan(ctx, history, ids)
	if err != nil {
		return models.Forecast{}, err
	}
	ahead, err := s.reservations.GetReservationsInSpan(ctx, stay, ids)
	if err != nil {
		return models.Forecast{}, err
	}

	pastNights := occupiedNights(past, history)
	perDay := make(map[string]int)
	for key := range pastNights {
		perDay[key.date]++
	}

	var weekdaySum [7]float64
	var weekdayDays [7]int
	for _, d := range history.NightDates() {
		wd := d.Weekday()
		weekdaySum[wd] += float64(perDay[d.Format(models.DateLayout)]) / float64(len(ids))
		weekdayDays[wd]++
	}

	booked := make(map[string]int)
	for key := range occupiedNights(ahead, stay) {
		booked[key.date]++
	}

	for _, night := range stay.NightDates() {
		wd := night.Weekday()
		expected := 0.0
		if weekdayDays[wd] > 0 {
			expected = weekdaySum[wd] / float64(weekdayDays[wd])
		}
		onBooks := float64(booked[night.Format(models.DateLayout)]) / float64(len(ids))
		expected = math.Min(1, math.Max(expected, onBooks))

		forecast.Predictions = append(forecast.Predictions, models.DailyPrediction{
			Date:                   night,
			ExpectedOccupancy:      expected,
			ExpectedAvailableRooms: len(ids) - int(math.Round(expected*float64(len(ids)))),
		})
	}

	forecast.Confidence = float64(len(perDay)) / float64(ForecastWindowDays)
	return forecast, nil
}

type roomNight struct {
	roomID string
	date   string
}

// occupiedNights returns each distinct room-night of reservations that falls inside stay.
func occupiedNights(reservations []models.Reservation, stay models.DateRange) map[roomNight]bool {
	nights := make(map[roomNight]bool)
	for _, res := range reservations {
		for _, d := range res.Range().NightDates() {
			if d.Before(stay.CheckIn) || !d.Before(stay.CheckOut) {
				continue
			}
			nights[roomNight{roomID: res.RoomID, date: d.Format(models.DateLayout)}] = true
		}
	}
	return nights
}
