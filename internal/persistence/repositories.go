package persistence

import "context"
import "time"

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	MinCapacity *int
	Available   *bool
}

// RoomRepository exposes the room catalog. The booking engine only reads it.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error)
	CountRooms(ctx context.Context) (int, error)
}

// BookingRepository stores reservation rows.
//
// CreateBooking must perform its own conflict check against active bookings
// for the same (room, date) atomically with the insert and return ErrConflict
// when the interval overlaps; the store is the final arbiter of who wins a
// contested slot.
//
// CancelBooking scopes the update by id AND owner in a single statement and
// returns ErrNotFound when nothing matches, so a non-owner cannot distinguish
// "not yours" from "does not exist".
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListActiveBookings(ctx context.Context, roomID, date string) ([]Booking, error)
	ListBookingsForUser(ctx context.Context, userID string) ([]Booking, error)
	ListBookings(ctx context.Context) ([]Booking, error)
	CancelBooking(ctx context.Context, id, userID string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
