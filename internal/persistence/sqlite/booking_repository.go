package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/easybooking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateBooking inserts a reservation row after re-checking for overlapping
// active bookings inside the same transaction. The WHERE clause is the SQL
// rendering of the half-open overlap predicate (existing.start < candidate.end
// AND existing.end > candidate.start) and must stay in lockstep with
// booking.Overlaps.
func (r *BookingRepository) CreateBooking(ctx context.Context, b persistence.Booking) error {
	if b.ID == "" || b.UserID == "" || b.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	if b.StartTime >= b.EndTime {
		return persistence.ErrConstraintViolation
	}
	if b.Status == "" {
		b.Status = persistence.BookingStatusActive
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var conflicts int
		err := r.helper.QueryRowTx(tx, `
			SELECT COUNT(*)
			FROM bookings
			WHERE room_id = ?
			  AND booking_date = ?
			  AND status = 'active'
			  AND start_time < ?
			  AND end_time > ?
		`, b.RoomID, b.Date, b.EndTime, b.StartTime).Scan(&conflicts)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if conflicts > 0 {
			return persistence.ErrConflict
		}

		_, err = r.helper.ExecTx(tx, `
			INSERT INTO bookings (id, user_id, room_id, booking_date, start_time, end_time, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			b.ID,
			b.UserID,
			b.RoomID,
			b.Date,
			b.StartTime,
			b.EndTime,
			b.Status,
			b.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT id, user_id, room_id, booking_date, start_time, end_time, status, created_at
		FROM bookings
		WHERE id = ?
	`, id)

	booking, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// ListActiveBookings returns the active bookings for a (room, date) key.
// Cancelled rows never participate in conflict detection.
func (r *BookingRepository) ListActiveBookings(ctx context.Context, roomID, date string) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, user_id, room_id, booking_date, start_time, end_time, status, created_at
		FROM bookings
		WHERE room_id = ?
		  AND booking_date = ?
		  AND status = 'active'
		ORDER BY start_time ASC, id ASC
	`, roomID, date)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return collectBookings(rows, r.mapper)
}

// ListBookingsForUser returns a user's bookings ordered by date descending,
// then start time descending.
func (r *BookingRepository) ListBookingsForUser(ctx context.Context, userID string) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, user_id, room_id, booking_date, start_time, end_time, status, created_at
		FROM bookings
		WHERE user_id = ?
		ORDER BY booking_date DESC, start_time DESC, id ASC
	`, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return collectBookings(rows, r.mapper)
}

// ListBookings returns every booking row, newest slot first.
func (r *BookingRepository) ListBookings(ctx context.Context) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, user_id, room_id, booking_date, start_time, end_time, status, created_at
		FROM bookings
		ORDER BY booking_date DESC, start_time DESC, id ASC
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return collectBookings(rows, r.mapper)
}

// CancelBooking flips a booking to cancelled, scoped by id AND owner in a
// single statement. Zero affected rows means not-found regardless of whether
// the id is unknown or the owner mismatched. Re-cancelling an already
// cancelled booking matches the WHERE clause and re-succeeds.
func (r *BookingRepository) CancelBooking(ctx context.Context, id, userID string) error {
	if id == "" || userID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE bookings
		SET status = ?
		WHERE id = ? AND user_id = ?
	`, persistence.BookingStatusCancelled, id, userID)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var b persistence.Booking
	var createdAtStr string

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.RoomID,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&createdAtStr,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return b, nil
}

func collectBookings(rows *sql.Rows, mapper *ErrorMapper) ([]persistence.Booking, error) {
	var bookings []persistence.Booking

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, mapper.MapError(err)
	}
	return bookings, nil
}
