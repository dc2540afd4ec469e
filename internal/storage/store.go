package storage

import (
	"time"

	"github.com/hotel-pricing-engine/backend/internal/engine"
)

// Store groups the repositories backed by one database.
type Store struct {
	DB           *DB
	Rooms        *RoomRepository
	Reservations *ReservationRepository
	Signals      *SignalRepository
	Overbooking  *OverbookingRepository
	Snapshots    *SnapshotRepository
}

// NewStore creates every repository over db.
func NewStore(db *DB) *Store {
	return &Store{
		DB:           db,
		Rooms:        NewRoomRepository(db),
		Reservations: NewReservationRepository(db),
		Signals:      NewSignalRepository(db),
		Overbooking:  NewOverbookingRepository(db),
		Snapshots:    NewSnapshotRepository(db),
	}
}

// SetClock sets the clock on every repository.
func (s *Store) SetClock(now func() time.Time) {
	s.Rooms.SetClock(now)
	s.Reservations.SetClock(now)
	s.Signals.SetClock(now)
	s.Signals.rooms.SetClock(now)
	s.Signals.reservations.SetClock(now)
	s.Overbooking.SetClock(now)
	s.Snapshots.SetClock(now)
}

// Collaborators exposes the repositories as the engine's data sources.
func (s *Store) Collaborators() engine.Collaborators {
	return engine.Collaborators{
		Occupancy:    s.Signals,
		Demand:       s.Signals,
		Reservations: s.Reservations,
		Rooms:        s.Rooms,
		Overbooking:  s.Overbooking,
		Forecasts:    s.Signals,
		Prices:       s.Snapshots,
	}
}
