package engine

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// PricingKey identifies a price computation. Today's date is part of the key
// because the booking window factor depends on it.
func PricingKey(roomID string, r models.DateRange, basePrice float64, today time.Time) string {
	return makeKey(
		"pricing",
		canonicalID(roomID),
		canonicalRange(r),
		canonicalFloat(basePrice),
		canonicalDate(today),
	)
}

// AvailabilityKey identifies an availability check.
func AvailabilityKey(q AvailabilityQuery) string {
	return makeKey(
		"availability",
		canonicalID(q.RoomID),
		canonicalRoomType(q.RoomType),
		strconv.Itoa(q.MinCapacity),
		canonicalRange(q.Range),
		canonicalID(q.ExcludeReservationID),
	)
}

// RoomsKey identifies an available-rooms search.
func RoomsKey(r models.DateRange, f models.RoomFilter) string {
	return makeKey(
		"rooms",
		canonicalRange(r),
		canonicalRoomType(f.RoomType),
		strconv.Itoa(f.MinCapacity),
		canonicalFloat(f.MaxPrice),
	)
}

// CalendarKey identifies an occupancy calendar. Room ids are a set, so order does not matter.
func CalendarKey(r models.DateRange, roomIDs []string) string {
	return makeKey(
		"calendar",
		canonicalRange(r),
		canonicalIDSet(roomIDs),
	)
}

// CanonicalRoomType normalizes a room type for lookups.
func CanonicalRoomType(roomType string) string {
	return canonicalRoomType(roomType)
}

func canonicalRoomType(roomType string) string {
	return strings.ToLower(strings.TrimSpace(roomType))
}

func canonicalID(id string) string {
	return strings.TrimSpace(id)
}

func canonicalIDSet(ids []string) string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = canonicalID(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func canonicalDate(t time.Time) string {
	return t.UTC().Format(models.DateLayout)
}

func canonicalRange(r models.DateRange) string {
	return canonicalDate(r.CheckIn) + "/" + canonicalDate(r.CheckOut)
}

func canonicalFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func makeKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	h := sha1.Sum([]byte(joined))
	return hex.EncodeToString(h[:])
}
