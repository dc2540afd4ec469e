package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// Queryable is satisfied by both *sql.DB and *sql.Tx.
type Queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	db  *DB
	now func() time.Time
}

// NewBaseRepository creates a base repository with the given database connection.
func NewBaseRepository(db *DB) BaseRepository {
	return BaseRepository{db: db, now: time.Now}
}

// DB returns the underlying database connection.
func (r *BaseRepository) DB() *DB {
	return r.db
}

// SetClock replaces the clock used for timestamps and trailing windows.
func (r *BaseRepository) SetClock(now func() time.Time) {
	r.now = now
}

// Now returns the current time in UTC.
func (r *BaseRepository) Now() time.Time {
	return r.now().UTC()
}

// Today returns the current date at UTC midnight.
func (r *BaseRepository) Today() time.Time {
	return models.Day(r.now())
}

// GenerateID creates a new random UUID for use as a primary key.
func GenerateID() string {
	return uuid.NewString()
}

// formatDate stores a calendar date as YYYY-MM-DD so range predicates compare as text.
func formatDate(t time.Time) string {
	return models.Day(t).Format(models.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// inClause returns "(?, ?, ...)" and the matching args.
func inClause(ids []string) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return "(" + strings.Join(marks, ", ") + ")", args
}
