package models

import "time"

// Reservation is an existing booking as seen by the engine.
type Reservation struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	RoomType  string    `json:"room_type,omitempty"`
	GuestName string    `json:"guest_name,omitempty"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Reservation status constants
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusNoShow    = "no_show"
)

// Range returns the stay of the reservation.
func (r Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// ConflictQuery selects reservations that would collide with a requested stay.
// Either RoomID or RoomType (optionally with MinCapacity) scopes the search.
type ConflictQuery struct {
	RoomID               string
	RoomType             string
	MinCapacity          int
	Range                DateRange
	ExcludeReservationID string
}
