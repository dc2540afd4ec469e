package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// testNow is a Thursday.
var testNow = time.Date(2027, 7, 15, 9, 30, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	s := NewStore(db)
	s.SetClock(func() time.Time { return testNow })
	return s
}

func mustCreateRooms(t *testing.T, s *Store, rooms ...models.Room) {
	t.Helper()
	for i := range rooms {
		room := rooms[i]
		if err := s.Rooms.Create(context.Background(), &room); err != nil {
			t.Fatalf("creating room %s: %v", room.ID, err)
		}
	}
}

func mustReserve(t *testing.T, s *Store, id, roomID, in, out string) {
	t.Helper()
	res := models.Reservation{ID: id, RoomID: roomID, GuestName: "Guest " + id, CheckIn: date(in), CheckOut: date(out)}
	if err := s.Reservations.Create(context.Background(), &res); err != nil {
		t.Fatalf("creating reservation %s: %v", id, err)
	}
}

func standardRooms() []models.Room {
	return []models.Room{
		{ID: "std-1", Name: "One", RoomType: models.RoomTypeStandard, Capacity: 2, BasePrice: 15000, Active: true},
		{ID: "std-2", Name: "Two", RoomType: models.RoomTypeStandard, Capacity: 3, BasePrice: 12000, Active: true},
		{ID: "dlx-1", Name: "Deluxe", RoomType: models.RoomTypeDeluxe, Capacity: 4, BasePrice: 25000, Active: true},
		{ID: "old-1", Name: "Closed", RoomType: models.RoomTypeStandard, Capacity: 2, BasePrice: 9000, Active: false},
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)

	applied, err := RunMigrations(context.Background(), s.DB)
	if err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected no pending migrations, applied %d", applied)
	}
}

func TestListRooms(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	ctx := context.Background()

	active, err := s.Rooms.ListRooms(ctx, nil)
	if err != nil {
		t.Fatalf("listing rooms: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active rooms, got %d", len(active))
	}

	picked, err := s.Rooms.ListRooms(ctx, []string{"old-1", "std-2"})
	if err != nil {
		t.Fatalf("listing rooms by id: %v", err)
	}
	if len(picked) != 2 || picked[0].ID != "old-1" || picked[0].Active {
		t.Fatalf("unexpected rooms: %+v", picked)
	}

	missing, err := s.Rooms.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("GetByID(nope) = %v, %v", missing, err)
	}
}

func TestGetReservationConflicts(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	mustReserve(t, s, "res-1", "std-1", "2027-07-16", "2027-07-19")
	mustReserve(t, s, "res-2", "std-2", "2027-07-18", "2027-07-20")
	mustReserve(t, s, "res-3", "std-1", "2027-07-19", "2027-07-21")
	ctx := context.Background()

	stay := models.NewDateRange(date("2027-07-17"), date("2027-07-19"))

	got, err := s.Reservations.GetReservationConflicts(ctx, models.ConflictQuery{RoomID: "std-1", Range: stay})
	if err != nil {
		t.Fatalf("querying conflicts: %v", err)
	}
	if len(got) != 1 || got[0].ID != "res-1" || got[0].RoomType != models.RoomTypeStandard {
		t.Fatalf("unexpected conflicts: %+v", got)
	}
	if !got[0].CheckIn.Equal(date("2027-07-16")) || !got[0].CheckOut.Equal(date("2027-07-19")) {
		t.Fatalf("dates did not round-trip: %+v", got[0])
	}

	got, err = s.Reservations.GetReservationConflicts(ctx, models.ConflictQuery{RoomID: "std-1", Range: stay, ExcludeReservationID: "res-1"})
	if err != nil {
		t.Fatalf("querying conflicts: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected excluded reservation to be skipped, got %+v", got)
	}

	got, err = s.Reservations.GetReservationConflicts(ctx, models.ConflictQuery{RoomType: models.RoomTypeStandard, MinCapacity: 3, Range: stay})
	if err != nil {
		t.Fatalf("querying conflicts by type: %v", err)
	}
	if len(got) != 1 || got[0].ID != "res-2" {
		t.Fatalf("unexpected type conflicts: %+v", got)
	}
}

func TestCancelledReservationsDoNotConflict(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	mustReserve(t, s, "res-1", "std-1", "2027-07-16", "2027-07-19")
	ctx := context.Background()

	if err := s.Reservations.UpdateStatus(ctx, "res-1", models.ReservationStatusCancelled); err != nil {
		t.Fatalf("cancelling: %v", err)
	}
	got, err := s.Reservations.GetReservationConflicts(ctx, models.ConflictQuery{
		RoomID: "std-1",
		Range:  models.NewDateRange(date("2027-07-16"), date("2027-07-17")),
	})
	if err != nil {
		t.Fatalf("querying conflicts: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("cancelled reservation reported: %+v", got)
	}
}

func TestGetAvailableRoomsMatching(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	mustReserve(t, s, "res-1", "std-1", "2027-07-16", "2027-07-19")
	ctx := context.Background()
	stay := models.NewDateRange(date("2027-07-19"), date("2027-07-21"))

	rooms, err := s.Reservations.GetAvailableRoomsMatching(ctx, stay, models.RoomFilter{})
	if err != nil {
		t.Fatalf("querying available rooms: %v", err)
	}
	// Check-out day is free; the inactive room is excluded.
	want := []string{"std-2", "std-1", "dlx-1"}
	if len(rooms) != len(want) {
		t.Fatalf("expected %v, got %+v", want, rooms)
	}
	for i, id := range want {
		if rooms[i].ID != id {
			t.Fatalf("room %d = %s, want %s", i, rooms[i].ID, id)
		}
	}

	busy := models.NewDateRange(date("2027-07-18"), date("2027-07-20"))
	rooms, err = s.Reservations.GetAvailableRoomsMatching(ctx, busy, models.RoomFilter{RoomType: models.RoomTypeStandard, MaxPrice: 14000})
	if err != nil {
		t.Fatalf("querying available rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "std-2" {
		t.Fatalf("unexpected filtered rooms: %+v", rooms)
	}
}

func TestGetReservationsInSpan(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	mustReserve(t, s, "res-1", "std-1", "2027-07-16", "2027-07-19")
	mustReserve(t, s, "res-2", "dlx-1", "2027-07-17", "2027-07-18")
	mustReserve(t, s, "res-3", "std-2", "2027-08-01", "2027-08-03")
	ctx := context.Background()
	span := models.NewDateRange(date("2027-07-15"), date("2027-07-31"))

	all, err := s.Reservations.GetReservationsInSpan(ctx, span, nil)
	if err != nil {
		t.Fatalf("querying span: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 reservations, got %+v", all)
	}

	some, err := s.Reservations.GetReservationsInSpan(ctx, span, []string{"dlx-1"})
	if err != nil {
		t.Fatalf("querying span: %v", err)
	}
	if len(some) != 1 || some[0].ID != "res-2" {
		t.Fatalf("unexpected reservations: %+v", some)
	}
}

func TestGetOccupancyRate(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	mustReserve(t, s, "res-1", "std-1", "2027-07-15", "2027-07-19")
	mustReserve(t, s, "res-2", "dlx-1", "2027-07-17", "2027-07-18")

	rate, err := s.Signals.GetOccupancyRate(context.Background(), models.NewDateRange(date("2027-07-16"), date("2027-07-18")))
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	// Three active rooms over two nights; std-1 both nights, dlx-1 one night.
	if math.Abs(rate-0.5) > 1e-9 {
		t.Fatalf("occupancy = %v, want 0.5", rate)
	}
}

func TestGetRoomDemand(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	ctx := context.Background()
	stay := models.NewDateRange(date("2027-08-01"), date("2027-08-02"))

	demand, err := s.Signals.GetRoomDemand(ctx, "dlx-1", stay)
	if err != nil || demand != 1.0 {
		t.Fatalf("demand without history = %v, %v", demand, err)
	}

	for i, room := range []string{"dlx-1", "dlx-1", "dlx-1", "std-1"} {
		res := models.Reservation{
			RoomID:    room,
			CheckIn:   date("2027-08-01").AddDate(0, 0, 2*i),
			CheckOut:  date("2027-08-02").AddDate(0, 0, 2*i),
			CreatedAt: testNow.AddDate(0, 0, -i),
		}
		if err := s.Reservations.Create(ctx, &res); err != nil {
			t.Fatalf("creating reservation: %v", err)
		}
	}
	old := models.Reservation{RoomID: "std-2", CheckIn: date("2027-09-01"), CheckOut: date("2027-09-02"), CreatedAt: testNow.AddDate(0, 0, -120)}
	if err := s.Reservations.Create(ctx, &old); err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	// Deluxe: 3 of 4 recent bookings on 1 of 3 active rooms.
	demand, err = s.Signals.GetRoomDemand(ctx, "dlx-1", stay)
	if err != nil || math.Abs(demand-2.25) > 1e-9 {
		t.Fatalf("deluxe demand = %v, %v; want 2.25", demand, err)
	}
	demand, err = s.Signals.GetRoomDemand(ctx, "std-2", stay)
	if err != nil || math.Abs(demand-0.375) > 1e-9 {
		t.Fatalf("standard demand = %v, %v; want 0.375", demand, err)
	}
	if _, err := s.Signals.GetRoomDemand(ctx, "missing", stay); err == nil {
		t.Fatal("expected error for unknown room")
	}
}

func TestGetDemandForecast(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	mustReserve(t, s, "past", "dlx-1", "2027-07-09", "2027-07-10")
	mustReserve(t, s, "ahead", "dlx-1", "2027-07-17", "2027-07-18")

	forecast, err := s.Signals.GetDemandForecast(context.Background(), models.NewDateRange(date("2027-07-16"), date("2027-07-18")), models.RoomTypeDeluxe)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(forecast.Predictions) != 2 {
		t.Fatalf("expected 2 predictions, got %+v", forecast.Predictions)
	}

	friday, saturday := forecast.Predictions[0], forecast.Predictions[1]
	// One of eight trailing Fridays was booked.
	if math.Abs(friday.ExpectedOccupancy-0.125) > 1e-9 || friday.ExpectedAvailableRooms != 1 {
		t.Fatalf("unexpected friday: %+v", friday)
	}
	// Saturday is already booked.
	if saturday.ExpectedOccupancy != 1 || saturday.ExpectedAvailableRooms != 0 {
		t.Fatalf("unexpected saturday: %+v", saturday)
	}
	if math.Abs(forecast.Confidence-1.0/56) > 1e-9 {
		t.Fatalf("confidence = %v", forecast.Confidence)
	}
}

func TestGetHistoricalOverbookingOutcomes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outcomes := []models.OverbookingOutcome{
		{RoomType: "standard", Profile: "peak:weekend", StayDate: date("2026-07-17"), Reservations: 100, NoShows: 10, Oversold: 2},
		{RoomType: "standard", Profile: "peak:weekend", StayDate: date("2026-07-24"), Reservations: 50, NoShows: 5, Oversold: 1, Walked: 1},
		{RoomType: "standard", Profile: "peak:weekend", StayDate: date("2026-07-31"), Reservations: 50},
		{RoomType: "standard", Profile: "low:weekday", StayDate: date("2026-01-12"), Reservations: 80, NoShows: 20, Oversold: 3},
	}
	for i := range outcomes {
		if err := s.Overbooking.Record(ctx, &outcomes[i]); err != nil {
			t.Fatalf("recording outcome: %v", err)
		}
	}

	basis, err := s.Overbooking.GetHistoricalOverbookingOutcomes(ctx, "standard", "peak:weekend")
	if err != nil {
		t.Fatalf("summarizing: %v", err)
	}
	if basis.SampleSize != 200 || basis.SafeOversellEvents != 1 || basis.Confidence != 1 || math.Abs(basis.NoShowRate-0.075) > 1e-9 {
		t.Fatalf("unexpected basis: %+v", basis)
	}

	empty, err := s.Overbooking.GetHistoricalOverbookingOutcomes(ctx, "suite", "peak:weekend")
	if err != nil {
		t.Fatalf("summarizing: %v", err)
	}
	if empty != (models.HistoricalBasis{}) {
		t.Fatalf("expected zero basis, got %+v", empty)
	}
}

func TestPriceSnapshots(t *testing.T) {
	s := newTestStore(t)
	mustCreateRooms(t, s, standardRooms()...)
	ctx := context.Background()

	for _, p := range []models.PricePoint{
		{RoomID: "std-1", Date: date("2027-07-14"), BasePrice: 15000, DynamicPrice: 16500, Multiplier: 1.1, DemandLevel: "medium"},
		{RoomID: "std-1", Date: date("2027-07-12"), BasePrice: 15000, DynamicPrice: 15000, Multiplier: 1, DemandLevel: "low"},
		{RoomID: "std-1", Date: date("2027-06-01"), BasePrice: 15000, DynamicPrice: 12000, Multiplier: 0.8, DemandLevel: "very_low"},
		{RoomID: "std-2", Date: date("2027-07-13"), BasePrice: 12000, DynamicPrice: 12000, Multiplier: 1, DemandLevel: "low"},
	} {
		point := p
		if err := s.Snapshots.Record(ctx, &point); err != nil {
			t.Fatalf("recording snapshot: %v", err)
		}
	}

	points, err := s.Snapshots.GetPricePoints(ctx, "std-1", date("2027-07-01"), date("2027-07-15"))
	if err != nil {
		t.Fatalf("querying snapshots: %v", err)
	}
	if len(points) != 2 || !points[0].Date.Equal(date("2027-07-12")) || points[1].DynamicPrice != 16500 {
		t.Fatalf("unexpected points: %+v", points)
	}

	removed, err := s.Snapshots.DeleteBefore(ctx, date("2027-07-01"))
	if err != nil || removed != 1 {
		t.Fatalf("DeleteBefore = %d, %v", removed, err)
	}
}

func TestSeedOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := Seed(ctx, s)
	if err != nil || !seeded {
		t.Fatalf("first seed = %v, %v", seeded, err)
	}
	seeded, err = Seed(ctx, s)
	if err != nil || seeded {
		t.Fatalf("second seed = %v, %v", seeded, err)
	}

	count, err := s.Rooms.Count(ctx)
	if err != nil || count != len(demoRooms) {
		t.Fatalf("room count = %d, %v", count, err)
	}
}
