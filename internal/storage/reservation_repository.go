package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// ReservationRepository answers reservation overlap queries for the engine.
type ReservationRepository struct {
	BaseRepository
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const reservationColumns = `x.id, x.room_id, r.room_type, x.guest_name, x.check_in, x.check_out, x.status, x.created_at`

// overlapPredicate selects confirmed stays sharing at least one night with [check_in, check_out).
const overlapPredicate = `x.status = 'confirmed' AND x.check_in < ? AND x.check_out > ?`

// Create inserts a reservation. An empty ID is generated and an empty status means confirmed.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = GenerateID()
	}
	if res.Status == "" {
		res.Status = models.ReservationStatusConfirmed
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = r.Now()
	}
	// Stored as text, so keep every timestamp in UTC for range comparisons.
	res.CreatedAt = res.CreatedAt.UTC()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO reservations (id, room_id, guest_name, check_in, check_out, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		res.ID, res.RoomID, res.GuestName, formatDate(res.CheckIn), formatDate(res.CheckOut),
		res.Status, res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}

	return nil
}

// UpdateStatus changes the status of a reservation.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.DB().ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}

	return nil
}

// GetReservationConflicts finds confirmed reservations overlapping q.Range, scoped
// to one room or to rooms of a type with at least the given capacity.
func (r *ReservationRepository) GetReservationConflicts(ctx context.Context, q models.ConflictQuery) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations x JOIN rooms r ON r.id = x.room_id
		WHERE ` + overlapPredicate + ` AND x.id != ?`
	args := []any{formatDate(q.Range.CheckOut), formatDate(q.Range.CheckIn), q.ExcludeReservationID}

	if q.RoomID != "" {
		query += ` AND x.room_id = ?`
		args = append(args, q.RoomID)
	} else {
		query += ` AND r.room_type = ? AND r.capacity >= ?`
		args = append(args, q.RoomType, q.MinCapacity)
	}
	query += ` ORDER BY x.check_in, x.id`

	return r.query(ctx, query, args...)
}

// GetAvailableRoomsMatching returns active rooms matching f with no overlapping
// confirmed reservation, cheapest first.
func (r *ReservationRepository) GetAvailableRoomsMatching(ctx context.Context, stay models.DateRange, f models.RoomFilter) ([]models.Room, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT r.id, r.name, r.room_type, r.capacity, r.base_price, r.active, r.created_at, r.updated_at
		FROM rooms r
		WHERE r.active = 1
		  AND (? = '' OR r.room_type = ?)
		  AND r.capacity >= ?
		  AND (? <= 0 OR r.base_price <= ?)
		  AND NOT EXISTS (
			SELECT 1 FROM reservations x
			WHERE x.room_id = r.id AND `+overlapPredicate+`
		  )
		ORDER BY r.base_price, r.id
	`,
		f.RoomType, f.RoomType, f.MinCapacity, f.MaxPrice, f.MaxPrice,
		formatDate(stay.CheckOut), formatDate(stay.CheckIn),
	)
	if err != nil {
		return nil, fmt.Errorf("querying available rooms: %w", err)
	}
	defer rows.Close()

	return collectRooms(rows)
}

// GetReservationsInSpan returns confirmed reservations overlapping stay for the
// given rooms, or for every room when roomIDs is empty.
func (r *ReservationRepository) GetReservationsInSpan(ctx context.Context, stay models.DateRange, roomIDs []string) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations x JOIN rooms r ON r.id = x.room_id
		WHERE ` + overlapPredicate
	args := []any{formatDate(stay.CheckOut), formatDate(stay.CheckIn)}

	if len(roomIDs) > 0 {
		in, inArgs := inClause(roomIDs)
		query += ` AND x.room_id IN ` + in
		args = append(args, inArgs...)
	}
	query += ` ORDER BY x.check_in, x.id`

	return r.query(ctx, query, args...)
}

func (r *ReservationRepository) query(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	for rows.Next() {
		var res models.Reservation
		var checkIn, checkOut string
		if err := rows.Scan(
			&res.ID, &res.RoomID, &res.RoomType, &res.GuestName,
			&checkIn, &checkOut, &res.Status, &res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}

		var err error
		if res.CheckIn, err = parseDate(checkIn); err != nil {
			return nil, err
		}
		if res.CheckOut, err = parseDate(checkOut); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}
