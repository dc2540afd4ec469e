package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/cache"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

func newFakeReservations() *fakeReservations {
	return &fakeReservations{
		rooms: demoRooms(),
		reservations: []models.Reservation{
			{ID: "res-1", RoomID: "room-101", GuestName: "Ada", CheckIn: day("2027-07-16"), CheckOut: day("2027-07-19"), Status: models.ReservationStatusConfirmed},
			{ID: "res-2", RoomID: "room-201", GuestName: "Grace", CheckIn: day("2027-07-17"), CheckOut: day("2027-07-18"), Status: models.ReservationStatusConfirmed},
		},
	}
}

func newResolver(res *fakeReservations) *AvailabilityResolver {
	return NewAvailabilityResolver(res, res, cache.New(), time.Second, fixedNow)
}

func TestCheckAvailabilityReportsConflict(t *testing.T) {
	res := newFakeReservations()
	got, err := newResolver(res).CheckAvailability(context.Background(), AvailabilityQuery{
		RoomID: "room-101",
		Range:  stay("2027-07-18", "2027-07-20"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Available {
		t.Fatal("expected room to be unavailable")
	}
	if len(got.Conflicts) != 1 || got.Conflicts[0].ReservationID != "res-1" {
		t.Fatalf("unexpected conflicts: %+v", got.Conflicts)
	}
	c := got.Conflicts[0]
	if !c.OverlapStart.Equal(day("2027-07-18")) || !c.OverlapEnd.Equal(day("2027-07-19")) {
		t.Fatalf("unexpected overlap %v..%v", c.OverlapStart, c.OverlapEnd)
	}
}

func TestCheckAvailabilityExcludesReservation(t *testing.T) {
	res := newFakeReservations()
	got, err := newResolver(res).CheckAvailability(context.Background(), AvailabilityQuery{
		RoomID:               "room-101",
		Range:                stay("2027-07-18", "2027-07-20"),
		ExcludeReservationID: "res-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Available || len(got.Conflicts) != 0 {
		t.Fatalf("expected available with no conflicts, got %+v", got)
	}
}

func TestCheckAvailabilityNeverReportsExcludedReservation(t *testing.T) {
	res := newFakeReservations()
	res.reservations = append(res.reservations,
		models.Reservation{ID: "res-3", RoomID: "room-101", CheckIn: day("2027-07-19"), CheckOut: day("2027-07-21")},
	)
	resolver := newResolver(res)

	for _, exclude := range []string{"res-1", "res-3"} {
		got, err := resolver.CheckAvailability(context.Background(), AvailabilityQuery{
			RoomID:               "room-101",
			Range:                stay("2027-07-16", "2027-07-22"),
			ExcludeReservationID: exclude,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Available {
			t.Fatalf("exclude %s: expected remaining conflict", exclude)
		}
		for _, c := range got.Conflicts {
			if c.ReservationID == exclude {
				t.Fatalf("excluded reservation %s reported as conflict", exclude)
			}
		}
	}
}

func TestCheckAvailabilityOrdersConflicts(t *testing.T) {
	res := newFakeReservations()
	res.reservations = []models.Reservation{
		{ID: "res-c", RoomID: "room-101", CheckIn: day("2027-07-20"), CheckOut: day("2027-07-21")},
		{ID: "res-b", RoomID: "room-101", CheckIn: day("2027-07-16"), CheckOut: day("2027-07-17")},
		{ID: "res-a", RoomID: "room-101", CheckIn: day("2027-07-16"), CheckOut: day("2027-07-17")},
	}
	got, err := newResolver(res).CheckAvailability(context.Background(), AvailabilityQuery{
		RoomID: "room-101",
		Range:  stay("2027-07-16", "2027-07-22"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"res-a", "res-b", "res-c"}
	if len(got.Conflicts) != len(want) {
		t.Fatalf("expected %d conflicts, got %d", len(want), len(got.Conflicts))
	}
	for i, id := range want {
		if got.Conflicts[i].ReservationID != id {
			t.Fatalf("conflict %d = %s, want %s", i, got.Conflicts[i].ReservationID, id)
		}
	}
}

func TestCheckAvailabilityByRoomType(t *testing.T) {
	res := newFakeReservations()
	resolver := newResolver(res)

	got, err := resolver.CheckAvailability(context.Background(), AvailabilityQuery{
		RoomType: "Standard",
		Range:    stay("2027-07-16", "2027-07-18"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Available || len(got.AvailableRooms) != 1 || got.AvailableRooms[0] != "room-102" {
		t.Fatalf("expected room-102 free, got %+v", got)
	}

	got, err = resolver.CheckAvailability(context.Background(), AvailabilityQuery{
		RoomType: models.RoomTypeDeluxe,
		Range:    stay("2027-07-16", "2027-07-18"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Available || len(got.Conflicts) != 1 || got.Conflicts[0].ReservationID != "res-2" {
		t.Fatalf("expected deluxe unavailable because of res-2, got %+v", got)
	}
}

func TestCheckAvailabilityByRoomTypeHonorsExclude(t *testing.T) {
	res := newFakeReservations()
	got, err := newResolver(res).CheckAvailability(context.Background(), AvailabilityQuery{
		RoomType:             models.RoomTypeDeluxe,
		Range:                stay("2027-07-16", "2027-07-18"),
		ExcludeReservationID: "res-2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Available || len(got.Conflicts) != 0 || len(got.AvailableRooms) != 1 || got.AvailableRooms[0] != "room-201" {
		t.Fatalf("expected room-201 freed by the excluded reservation, got %+v", got)
	}
}

func TestCheckAvailabilityFailureIsNotAvailable(t *testing.T) {
	res := newFakeReservations()
	res.err = errBoom
	resolver := newResolver(res)
	q := AvailabilityQuery{RoomID: "room-102", Range: stay("2027-07-16", "2027-07-18")}

	got, err := resolver.CheckAvailability(context.Background(), q)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if got.Available {
		t.Fatal("failure reported as available")
	}

	res.setErr(nil)
	got, err = resolver.CheckAvailability(context.Background(), q)
	if err != nil {
		t.Fatalf("expected recovery after failure, got %v", err)
	}
	if !got.Available {
		t.Fatalf("expected room-102 available, got %+v", got)
	}
}

func TestCheckAvailabilityUsesCache(t *testing.T) {
	res := newFakeReservations()
	resolver := newResolver(res)
	q := AvailabilityQuery{RoomID: "room-102", Range: stay("2027-07-16", "2027-07-18")}

	for i := 0; i < 3; i++ {
		if _, err := resolver.CheckAvailability(context.Background(), q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls := res.calls.Load(); calls != 1 {
		t.Fatalf("expected one collaborator call, got %d", calls)
	}
}

func TestCheckAvailabilityValidation(t *testing.T) {
	resolver := newResolver(newFakeReservations())
	tests := []struct {
		name  string
		q     AvailabilityQuery
		field string
	}{
		{"empty range", AvailabilityQuery{RoomID: "room-101", Range: stay("2027-07-16", "2027-07-16")}, "check_out"},
		{"past check-in", AvailabilityQuery{RoomID: "room-101", Range: stay("2027-07-10", "2027-07-12")}, "check_in"},
		{"no room", AvailabilityQuery{Range: stay("2027-07-16", "2027-07-18")}, "room_id"},
	}
	for _, tt := range tests {
		_, err := resolver.CheckAvailability(context.Background(), tt.q)
		inputErr := AsInputError(err)
		if inputErr == nil || len(inputErr.Fields()[tt.field]) == 0 {
			t.Errorf("%s: expected %s field error, got %v", tt.name, tt.field, err)
		}
	}
}

func TestListAvailableRoomsOrdersByPrice(t *testing.T) {
	res := newFakeReservations()
	res.reservations = nil

	rooms, err := newResolver(res).ListAvailableRooms(context.Background(), stay("2027-07-16", "2027-07-18"), models.RoomFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"room-102", "room-101", "room-201", "room-301"}
	if len(rooms) != len(want) {
		t.Fatalf("expected %d rooms, got %d", len(want), len(rooms))
	}
	for i, id := range want {
		if rooms[i].ID != id {
			t.Fatalf("room %d = %s, want %s", i, rooms[i].ID, id)
		}
	}
}

func TestListAvailableRoomsFilters(t *testing.T) {
	res := newFakeReservations()
	rooms, err := newResolver(res).ListAvailableRooms(context.Background(), stay("2027-07-16", "2027-07-18"), models.RoomFilter{MinCapacity: 3, MaxPrice: 30000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 0 {
		t.Fatalf("expected no rooms (room-201 is booked), got %+v", rooms)
	}
}

func TestListAvailableRoomsFailure(t *testing.T) {
	res := newFakeReservations()
	res.err = errBoom
	_, err := newResolver(res).ListAvailableRooms(context.Background(), stay("2027-07-16", "2027-07-18"), models.RoomFilter{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
