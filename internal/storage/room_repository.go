package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// RoomRepository provides data access for rooms.
type RoomRepository struct {
	BaseRepository
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *DB) *RoomRepository {
	return &RoomRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const roomColumns = `id, name, room_type, capacity, base_price, active, created_at, updated_at`

// Create inserts a room. An empty ID is generated.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = GenerateID()
	}
	room.CreatedAt = r.Now()
	room.UpdatedAt = room.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO rooms (`+roomColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		room.ID, room.Name, room.RoomType, room.Capacity, room.BasePrice,
		room.Active, room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting room: %w", err)
	}

	return nil
}

// GetByID retrieves a room, or nil if it does not exist.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	room, err := scanRoom(r.DB().QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying room: %w", err)
	}
	return &room, nil
}

// ListRooms returns the rooms with the given ids, or every active room when ids is empty.
func (r *RoomRepository) ListRooms(ctx context.Context, ids []string) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE active = 1 ORDER BY id`
	var args []any
	if len(ids) > 0 {
		in, inArgs := inClause(ids)
		query = `SELECT ` + roomColumns + ` FROM rooms WHERE id IN ` + in + ` ORDER BY id`
		args = inArgs
	}

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	return collectRooms(rows)
}

// SetBasePrice updates the configured base price of a room.
func (r *RoomRepository) SetBasePrice(ctx context.Context, id string, price float64) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE rooms SET base_price = ?, updated_at = ? WHERE id = ?
	`, price, r.Now(), id)
	if err != nil {
		return fmt.Errorf("updating room price: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("room not found: %s", id)
	}

	return nil
}

// Count returns the number of rooms.
func (r *RoomRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rooms: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (models.Room, error) {
	var room models.Room
	err := row.Scan(
		&room.ID, &room.Name, &room.RoomType, &room.Capacity, &room.BasePrice,
		&room.Active, &room.CreatedAt, &room.UpdatedAt,
	)
	return room, err
}

func collectRooms(rows *sql.Rows) ([]models.Room, error) {
	rooms := []models.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
