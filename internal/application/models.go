package application

import (
	"time"

	"github.com/example/easybooking/internal/booking"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
}

// BookingInput captures caller provided booking fields, as received on the
// wire: date as YYYY-MM-DD, times as HH:MM strings.
type BookingInput struct {
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
}

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	// BookingStatusActive marks a live reservation that participates in conflict detection.
	BookingStatusActive BookingStatus = "active"
	// BookingStatusCancelled marks a soft-deleted reservation, kept for history.
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a persisted reservation. Start and End are minutes of
// the day on Date; the owner never changes after creation.
type Booking struct {
	ID        string
	OwnerID   string
	RoomID    string
	Date      string
	Start     booking.ClockTime
	End       booking.ClockTime
	Status    BookingStatus
	CreatedAt time.Time
}

// Interval returns the booking's half-open time slice for conflict checks.
func (b Booking) Interval() booking.Interval {
	return booking.Interval{Start: b.Start, End: b.End}
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// AvailabilityParams wraps the data required to query slot availability.
type AvailabilityParams struct {
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
}

// Availability reports whether a slot is free and how many active bookings
// collide with it.
type Availability struct {
	Available        bool
	ConflictingCount int
}

// Room represents a catalog entry for a bookable meeting room.
type Room struct {
	ID          string
	Name        string
	Capacity    int
	Description string
	Amenities   []string
	Available   bool
	CreatedAt   time.Time
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	MinCapacity *int
	Available   *bool
}

// User represents a registered account exposed by the application services.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// SignUpParams captures the data required to register an account.
type SignUpParams struct {
	Username string
	Email    string
	Password string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult captures the outcome of a successful authentication attempt.
type LoginResult struct {
	User    User
	Session Session
}
