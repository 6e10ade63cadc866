package persistence

import "time"

// User represents a registered account in the booking domain.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a meeting room catalog entry. Rooms are seeded at startup
// and read-only for the booking engine.
type Room struct {
	ID          string
	Name        string
	Capacity    int
	Description string
	Amenities   []string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Booking status values. Cancellation is the only transition; rows are never
// physically deleted.
const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
)

// Booking represents a reservation row. Date is a calendar date (YYYY-MM-DD,
// no time zone); StartTime and EndTime are zero-padded HH:MM strings, so
// lexicographic order equals chronological order.
type Booking struct {
	ID        string
	UserID    string
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
	Status    string
	CreatedAt time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
