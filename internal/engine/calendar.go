package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/cache"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// DayState is the occupancy of one room on one night.
type DayState struct {
	Occupied      bool   `json:"occupied"`
	ReservationID string `json:"reservation_id,omitempty"`
	GuestName     string `json:"guest_name,omitempty"`
}

// OccupancyCalendar is a per-night, per-room occupancy view of a span.
type OccupancyCalendar struct {
	Range         models.DateRange               `json:"range"`
	Rooms         []string                       `json:"rooms"`
	Dates         []string                       `json:"dates"`
	Days          map[string]map[string]DayState `json:"days"`
	OccupancyRate float64                        `json:"occupancy_rate"`
	Error         string                         `json:"error,omitempty"`
}

// OccupancyCalendarBuilder folds reservations into day buckets.
type OccupancyCalendarBuilder struct {
	reservations ReservationSource
	rooms        RoomCatalog
	cache        *cache.ResultCache
	timeout      time.Duration
}

// NewOccupancyCalendarBuilder creates a calendar builder.
func NewOccupancyCalendarBuilder(reservations ReservationSource, rooms RoomCatalog, c *cache.ResultCache, timeout time.Duration) *OccupancyCalendarBuilder {
	return &OccupancyCalendarBuilder{
		reservations: reservations,
		rooms:        rooms,
		cache:        c,
		timeout:      timeout,
	}
}

// BuildCalendar returns the occupancy of the rooms in ids (every active room when empty) over r.
// Collaborator failures produce an empty calendar with Error set; only an invalid
// range returns an error.
func (b *OccupancyCalendarBuilder) BuildCalendar(ctx context.Context, r models.DateRange, ids []string) (OccupancyCalendar, error) {
	r = models.NewDateRange(r.CheckIn, r.CheckOut)
	if err := validateStay(r, time.Time{}, false).orNil(); err != nil {
		return OccupancyCalendar{}, err
	}

	cal, err := cached(ctx, b.cache, CalendarKey(r, ids), b.timeout, func(ctx context.Context) (OccupancyCalendar, error) {
		return b.build(ctx, r, ids)
	})
	if err != nil {
		log.Printf("Failed to build occupancy calendar for %s: %v", r, err)
		return OccupancyCalendar{
			Range: r,
			Rooms: []string{},
			Dates: []string{},
			Days:  map[string]map[string]DayState{},
			Error: err.Error(),
		}, nil
	}
	return cal, nil
}

func (b *OccupancyCalendarBuilder) build(ctx context.Context, r models.DateRange, ids []string) (OccupancyCalendar, error) {
	if b.reservations == nil {
		return OccupancyCalendar{}, unavailable("reservations", errNotConfigured)
	}
	if b.rooms == nil {
		return OccupancyCalendar{}, unavailable("rooms", errNotConfigured)
	}

	var rooms Outcome[[]models.Room]
	var span Outcome[[]models.Reservation]
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		rooms = call(ctx, b.timeout, "rooms", func(ctx context.Context) ([]models.Room, error) {
			return b.rooms.ListRooms(ctx, ids)
		})
	}()
	go func() {
		defer wg.Done()
		span = call(ctx, b.timeout, "reservations", func(ctx context.Context) ([]models.Reservation, error) {
			return b.reservations.GetReservationsInSpan(ctx, r, ids)
		})
	}()
	wg.Wait()

	if !rooms.OK() {
		return OccupancyCalendar{}, rooms.Err
	}
	if !span.OK() {
		return OccupancyCalendar{}, span.Err
	}

	cal := OccupancyCalendar{
		Range: r,
		Rooms: roomIDs(rooms.Value),
		Dates: make([]string, 0, r.Nights()),
		Days:  make(map[string]map[string]DayState, r.Nights()),
	}
	for _, night := range r.NightDates() {
		date := night.Format(models.DateLayout)
		cal.Dates = append(cal.Dates, date)
		day := make(map[string]DayState, len(cal.Rooms))
		for _, id := range cal.Rooms {
			day[id] = DayState{}
		}
		cal.Days[date] = day
	}

	occupied := 0
	for _, res := range span.Value {
		for _, night := range res.Range().NightDates() {
			day, ok := cal.Days[night.Format(models.DateLayout)]
			if !ok {
				continue
			}
			state, known := day[res.RoomID]
			if !known || state.Occupied {
				continue
			}
			day[res.RoomID] = DayState{Occupied: true, ReservationID: res.ID, GuestName: res.GuestName}
			occupied++
		}
	}

	if capacity := len(cal.Rooms) * len(cal.Dates); capacity > 0 {
		cal.OccupancyRate = float64(occupied) / float64(capacity)
	}
	return cal, nil
}
