package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/cache"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// AvailabilityQuery asks whether a stay can be booked. RoomID takes precedence;
// otherwise RoomType (and MinCapacity) select any matching room.
type AvailabilityQuery struct {
	RoomID               string           `json:"room_id,omitempty"`
	RoomType             string           `json:"room_type,omitempty"`
	MinCapacity          int              `json:"min_capacity,omitempty"`
	Range                models.DateRange `json:"range"`
	ExcludeReservationID string           `json:"exclude_reservation_id,omitempty"`
}

// Conflict is an existing reservation that overlaps the requested stay.
type Conflict struct {
	ReservationID string    `json:"reservation_id"`
	RoomID        string    `json:"room_id"`
	GuestName     string    `json:"guest_name,omitempty"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	OverlapStart  time.Time `json:"overlap_start"`
	OverlapEnd    time.Time `json:"overlap_end"`
}

// AvailabilityResult is the answer to an AvailabilityQuery.
type AvailabilityResult struct {
	Available      bool       `json:"available"`
	Conflicts      []Conflict `json:"conflicts"`
	AvailableRooms []string   `json:"available_rooms,omitempty"`
	Message        string     `json:"message"`
}

// AvailabilityResolver answers availability questions from reservation data.
type AvailabilityResolver struct {
	reservations ReservationSource
	rooms        RoomCatalog
	cache        *cache.ResultCache
	timeout      time.Duration
	now          func() time.Time
}

// NewAvailabilityResolver creates a resolver. rooms is consulted only for
// room-type checks that exclude a reservation.
func NewAvailabilityResolver(reservations ReservationSource, rooms RoomCatalog, c *cache.ResultCache, timeout time.Duration, now func() time.Time) *AvailabilityResolver {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityResolver{
		reservations: reservations,
		rooms:        rooms,
		cache:        c,
		timeout:      timeout,
		now:          now,
	}
}

// CheckAvailability reports whether the stay in q can be booked.
func (a *AvailabilityResolver) CheckAvailability(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	q.Range = models.NewDateRange(q.Range.CheckIn, q.Range.CheckOut)
	q.RoomType = CanonicalRoomType(q.RoomType)

	inputErr := validateStay(q.Range, a.now(), true)
	if q.RoomID == "" && q.RoomType == "" {
		inputErr.add("room_id", "room_id or room_type is required")
	}
	if q.MinCapacity < 0 {
		inputErr.add("min_capacity", "must not be negative")
	}
	if err := inputErr.orNil(); err != nil {
		return AvailabilityResult{}, err
	}
	if a.reservations == nil {
		return AvailabilityResult{}, unavailable("reservations", errNotConfigured)
	}

	return cached(ctx, a.cache, AvailabilityKey(q), a.timeout, func(ctx context.Context) (AvailabilityResult, error) {
		if q.RoomID != "" {
			return a.checkRoom(ctx, q)
		}
		return a.checkRoomType(ctx, q)
	})
}

func (a *AvailabilityResolver) checkRoom(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	conflicts, err := a.conflicts(ctx, models.ConflictQuery{
		RoomID:               q.RoomID,
		Range:                q.Range,
		ExcludeReservationID: q.ExcludeReservationID,
	})
	if err != nil {
		return AvailabilityResult{}, err
	}

	if len(conflicts) > 0 {
		return AvailabilityResult{
			Available: false,
			Conflicts: conflicts,
			Message:   fmt.Sprintf("Room %s has %d conflicting reservation(s) for %s", q.RoomID, len(conflicts), q.Range),
		}, nil
	}
	return AvailabilityResult{
		Available:      true,
		Conflicts:      []Conflict{},
		AvailableRooms: []string{q.RoomID},
		Message:        fmt.Sprintf("Room %s is available for %s", q.RoomID, q.Range),
	}, nil
}

func (a *AvailabilityResolver) checkRoomType(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	filter := models.RoomFilter{RoomType: q.RoomType, MinCapacity: q.MinCapacity}

	free := call(ctx, a.timeout, "reservations", func(ctx context.Context) ([]models.Room, error) {
		return a.reservations.GetAvailableRoomsMatching(ctx, q.Range, filter)
	})
	if !free.OK() {
		return AvailabilityResult{}, free.Err
	}
	if len(free.Value) > 0 {
		return AvailabilityResult{
			Available:      true,
			Conflicts:      []Conflict{},
			AvailableRooms: roomIDs(free.Value),
			Message:        fmt.Sprintf("%d %s room(s) available for %s", len(free.Value), q.RoomType, q.Range),
		}, nil
	}

	conflicts, err := a.conflicts(ctx, models.ConflictQuery{
		RoomType:             q.RoomType,
		MinCapacity:          q.MinCapacity,
		Range:                q.Range,
		ExcludeReservationID: q.ExcludeReservationID,
	})
	if err != nil {
		return AvailabilityResult{}, err
	}

	// A room whose only overlap is the excluded reservation is free for a rebooking.
	if q.ExcludeReservationID != "" && a.rooms != nil {
		rooms := call(ctx, a.timeout, "rooms", func(ctx context.Context) ([]models.Room, error) {
			return a.rooms.ListRooms(ctx, nil)
		})
		if !rooms.OK() {
			return AvailabilityResult{}, rooms.Err
		}

		busy := make(map[string]bool, len(conflicts))
		for _, c := range conflicts {
			busy[c.RoomID] = true
		}
		var freed []string
		for _, room := range rooms.Value {
			if room.Active && filter.Matches(room) && !busy[room.ID] {
				freed = append(freed, room.ID)
			}
		}
		if len(freed) > 0 {
			sort.Strings(freed)
			return AvailabilityResult{
				Available:      true,
				Conflicts:      []Conflict{},
				AvailableRooms: freed,
				Message:        fmt.Sprintf("%d %s room(s) available for %s", len(freed), q.RoomType, q.Range),
			}, nil
		}
	}

	return AvailabilityResult{
		Available: false,
		Conflicts: conflicts,
		Message:   fmt.Sprintf("No %s rooms available for %s", q.RoomType, q.Range),
	}, nil
}

// conflicts loads overlapping reservations and converts them, dropping the excluded one.
func (a *AvailabilityResolver) conflicts(ctx context.Context, q models.ConflictQuery) ([]Conflict, error) {
	found := call(ctx, a.timeout, "reservations", func(ctx context.Context) ([]models.Reservation, error) {
		return a.reservations.GetReservationConflicts(ctx, q)
	})
	if !found.OK() {
		return nil, found.Err
	}

	conflicts := make([]Conflict, 0, len(found.Value))
	for _, res := range found.Value {
		if q.ExcludeReservationID != "" && res.ID == q.ExcludeReservationID {
			continue
		}
		if !res.Range().Overlaps(q.Range) {
			continue
		}
		conflicts = append(conflicts, newConflict(res, q.Range))
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if !conflicts[i].CheckIn.Equal(conflicts[j].CheckIn) {
			return conflicts[i].CheckIn.Before(conflicts[j].CheckIn)
		}
		return conflicts[i].ReservationID < conflicts[j].ReservationID
	})
	return conflicts, nil
}

func newConflict(res models.Reservation, r models.DateRange) Conflict {
	overlapStart := r.CheckIn
	if res.CheckIn.After(overlapStart) {
		overlapStart = res.CheckIn
	}

	overlapEnd := r.CheckOut
	if res.CheckOut.Before(overlapEnd) {
		overlapEnd = res.CheckOut
	}

	return Conflict{
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		GuestName:     res.GuestName,
		CheckIn:       res.CheckIn,
		CheckOut:      res.CheckOut,
		OverlapStart:  overlapStart,
		OverlapEnd:    overlapEnd,
	}
}

// ListAvailableRooms returns active rooms matching f that are free for the whole stay,
// cheapest first.
func (a *AvailabilityResolver) ListAvailableRooms(ctx context.Context, r models.DateRange, f models.RoomFilter) ([]models.Room, error) {
	r = models.NewDateRange(r.CheckIn, r.CheckOut)
	f.RoomType = CanonicalRoomType(f.RoomType)

	inputErr := validateStay(r, a.now(), true)
	if f.MinCapacity < 0 {
		inputErr.add("min_capacity", "must not be negative")
	}
	if f.MaxPrice < 0 {
		inputErr.add("max_price", "must not be negative")
	}
	if err := inputErr.orNil(); err != nil {
		return nil, err
	}
	if a.reservations == nil {
		return nil, unavailable("reservations", errNotConfigured)
	}

	return cached(ctx, a.cache, RoomsKey(r, f), a.timeout, func(ctx context.Context) ([]models.Room, error) {
		found := call(ctx, a.timeout, "reservations", func(ctx context.Context) ([]models.Room, error) {
			return a.reservations.GetAvailableRoomsMatching(ctx, r, f)
		})
		if !found.OK() {
			return nil, found.Err
		}

		rooms := make([]models.Room, 0, len(found.Value))
		for _, room := range found.Value {
			if room.Active && f.Matches(room) {
				rooms = append(rooms, room)
			}
		}
		sort.Slice(rooms, func(i, j int) bool {
			if rooms[i].BasePrice != rooms[j].BasePrice {
				return rooms[i].BasePrice < rooms[j].BasePrice
			}
			return rooms[i].ID < rooms[j].ID
		})
		return rooms, nil
	})
}

func roomIDs(rooms []models.Room) []string {
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	sort.Strings(ids)
	return ids
}
