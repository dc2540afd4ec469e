package models

import "time"

// Room is a bookable unit with its configured nightly base price.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RoomType  string    `json:"room_type"`
	Capacity  int       `json:"capacity"`
	BasePrice float64   `json:"base_price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomFilter narrows room searches. Zero values mean "any".
type RoomFilter struct {
	RoomType    string  `json:"room_type,omitempty"`
	MinCapacity int     `json:"min_capacity,omitempty"`
	MaxPrice    float64 `json:"max_price,omitempty"`
}

// Matches reports whether the room satisfies the filter.
func (f RoomFilter) Matches(room Room) bool {
	if f.RoomType != "" && room.RoomType != f.RoomType {
		return false
	}
	if f.MinCapacity > 0 && room.Capacity < f.MinCapacity {
		return false
	}
	if f.MaxPrice > 0 && room.BasePrice > f.MaxPrice {
		return false
	}
	return true
}

// Room type constants used by the demo seed.
const (
	RoomTypeStandard = "standard"
	RoomTypeDeluxe   = "deluxe"
	RoomTypeSuite    = "suite"
)
