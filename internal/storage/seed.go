package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

var demoRooms = []models.Room{
	{ID: "std-101", Name: "101 Garden", RoomType: models.RoomTypeStandard, Capacity: 2, BasePrice: 12000},
	{ID: "std-102", Name: "102 Garden", RoomType: models.RoomTypeStandard, Capacity: 2, BasePrice: 12000},
	{ID: "std-103", Name: "103 Courtyard", RoomType: models.RoomTypeStandard, Capacity: 3, BasePrice: 13500},
	{ID: "dlx-201", Name: "201 Harbour", RoomType: models.RoomTypeDeluxe, Capacity: 2, BasePrice: 18000},
	{ID: "dlx-202", Name: "202 Harbour", RoomType: models.RoomTypeDeluxe, Capacity: 3, BasePrice: 19500},
	{ID: "ste-301", Name: "301 Penthouse", RoomType: models.RoomTypeSuite, Capacity: 4, BasePrice: 35000},
}

// Seed loads demo rooms, a few upcoming reservations and oversell history into an
// empty database. It returns false when rooms already exist.
func Seed(ctx context.Context, s *Store) (bool, error) {
	count, err := s.Rooms.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	for i := range demoRooms {
		room := demoRooms[i]
		room.Active = true
		if err := s.Rooms.Create(ctx, &room); err != nil {
			return false, fmt.Errorf("seeding room %s: %w", room.ID, err)
		}
	}

	today := s.Rooms.Today()
	stays := []struct {
		room   string
		guest  string
		offset int
		nights int
	}{
		{"std-101", "A. Lovelace", 1, 2},
		{"std-102", "G. Hopper", 3, 4},
		{"dlx-201", "K. Johnson", 0, 3},
		{"ste-301", "M. Hamilton", 5, 2},
		{"std-101", "E. Noether", -10, 3},
		{"dlx-202", "R. Franklin", -20, 5},
	}
	for _, st := range stays {
		checkIn := today.AddDate(0, 0, st.offset)
		res := models.Reservation{
			RoomID:    st.room,
			GuestName: st.guest,
			CheckIn:   checkIn,
			CheckOut:  checkIn.AddDate(0, 0, st.nights),
		}
		if err := s.Reservations.Create(ctx, &res); err != nil {
			return false, fmt.Errorf("seeding reservation for %s: %w", st.room, err)
		}
	}

	// Weekend peaks with enough history to allow a modest oversell.
	for i := 0; i < 12; i++ {
		outcome := models.OverbookingOutcome{
			RoomType:     models.RoomTypeStandard,
			Profile:      "peak:weekend",
			StayDate:     today.AddDate(-1, 0, -7*i),
			Reservations: 24,
			NoShows:      3,
			Oversold:     1,
		}
		if i%5 == 4 {
			outcome.Walked = 1
		}
		if err := s.Overbooking.Record(ctx, &outcome); err != nil {
			return false, fmt.Errorf("seeding overbooking outcome: %w", err)
		}
	}

	log.Printf("Seeded %d demo rooms", len(demoRooms))
	return true, nil
}
