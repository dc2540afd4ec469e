package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

var errBoom = errors.New("boom")

// testNow is a Thursday.
var testNow = time.Date(2027, 7, 15, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(in, out string) models.DateRange {
	return models.NewDateRange(day(in), day(out))
}

type fakeOccupancy struct {
	rate  float64
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeOccupancy) GetOccupancyRate(ctx context.Context, r models.DateRange) (float64, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.rate, f.err
}

type fakeDemand struct {
	demand float64
	err    error
	calls  atomic.Int32
}

func (f *fakeDemand) GetRoomDemand(ctx context.Context, roomID string, r models.DateRange) (float64, error) {
	f.calls.Add(1)
	return f.demand, f.err
}

// fakeReservations keeps rooms and reservations in memory. It ignores the
// excluded reservation id so tests see the engine's own filtering.
type fakeReservations struct {
	mu           sync.Mutex
	rooms        []models.Room
	reservations []models.Reservation
	err          error
	calls        atomic.Int32
}

func (f *fakeReservations) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeReservations) snapshot() ([]models.Room, []models.Reservation, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms, f.reservations, f.err
}

func (f *fakeReservations) GetReservationConflicts(ctx context.Context, q models.ConflictQuery) ([]models.Reservation, error) {
	rooms, reservations, err := f.snapshot()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}

	var out []models.Reservation
	for _, res := range reservations {
		if !res.Range().Overlaps(q.Range) {
			continue
		}
		if q.RoomID != "" && res.RoomID != q.RoomID {
			continue
		}
		if q.RoomID == "" {
			room := byID[res.RoomID]
			if room.RoomType != q.RoomType || room.Capacity < q.MinCapacity {
				continue
			}
		}
		out = append(out, res)
	}
	return out, nil
}

func (f *fakeReservations) GetAvailableRoomsMatching(ctx context.Context, r models.DateRange, filter models.RoomFilter) ([]models.Room, error) {
	rooms, reservations, err := f.snapshot()
	if err != nil {
		return nil, err
	}

	var out []models.Room
	for _, room := range rooms {
		if !room.Active || !filter.Matches(room) {
			continue
		}
		busy := false
		for _, res := range reservations {
			if res.RoomID == room.ID && res.Range().Overlaps(r) {
				busy = true
				break
			}
		}
		if !busy {
			out = append(out, room)
		}
	}
	return out, nil
}

func (f *fakeReservations) GetReservationsInSpan(ctx context.Context, r models.DateRange, roomIDs []string) ([]models.Reservation, error) {
	_, reservations, err := f.snapshot()
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		want[id] = true
	}
	var out []models.Reservation
	for _, res := range reservations {
		if res.Range().Overlaps(r) && (len(want) == 0 || want[res.RoomID]) {
			out = append(out, res)
		}
	}
	return out, nil
}

// ListRooms lets fakeReservations double as the room catalog.
func (f *fakeReservations) ListRooms(ctx context.Context, ids []string) ([]models.Room, error) {
	rooms, _, err := f.snapshot()
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Room
	for _, room := range rooms {
		if len(want) == 0 && room.Active || want[room.ID] {
			out = append(out, room)
		}
	}
	return out, nil
}

type fakeHistory struct {
	basis models.HistoricalBasis
	err   error
	got   string
}

func (f *fakeHistory) GetHistoricalOverbookingOutcomes(ctx context.Context, roomType, profile string) (models.HistoricalBasis, error) {
	f.got = roomType + "/" + profile
	return f.basis, f.err
}

type fakeForecasts struct {
	forecast models.Forecast
	err      error
}

func (f *fakeForecasts) GetDemandForecast(ctx context.Context, r models.DateRange, roomType string) (models.Forecast, error) {
	return f.forecast, f.err
}

type fakePrices struct {
	points   []models.PricePoint
	err      error
	from, to time.Time
}

func (f *fakePrices) GetPricePoints(ctx context.Context, roomID string, from, to time.Time) ([]models.PricePoint, error) {
	f.from, f.to = from, to
	return f.points, f.err
}

func demoRooms() []models.Room {
	return []models.Room{
		{ID: "room-101", Name: "101", RoomType: models.RoomTypeStandard, Capacity: 2, BasePrice: 15000, Active: true},
		{ID: "room-102", Name: "102", RoomType: models.RoomTypeStandard, Capacity: 2, BasePrice: 12000, Active: true},
		{ID: "room-201", Name: "201", RoomType: models.RoomTypeDeluxe, Capacity: 3, BasePrice: 22000, Active: true},
		{ID: "room-301", Name: "301", RoomType: models.RoomTypeSuite, Capacity: 4, BasePrice: 40000, Active: true},
		{ID: "room-999", Name: "999", RoomType: models.RoomTypeStandard, Capacity: 2, BasePrice: 9000, Active: false},
	}
}
