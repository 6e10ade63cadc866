// Package booking holds the pure reservation domain: clock times, booking
// intervals and the overlap predicate shared by availability checks and
// creation conflict checks.
package booking

import (
	"errors"
	"fmt"
	"time"
)

// ClockTime is a time of day expressed as minutes since midnight.
// Minute granularity is all the booking domain needs, and integer
// comparison keeps the overlap predicate trivial.
type ClockTime int

var (
	// ErrInvalidClock is returned when a value is not a strict zero-padded HH:MM.
	ErrInvalidClock = errors.New("booking: invalid HH:MM time")
	// ErrInvalidDate is returned when a value is not a calendar date in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("booking: invalid YYYY-MM-DD date")
)

// ParseClock parses a strict 24-hour HH:MM string (hours 00-23, minutes
// 00-59, both zero padded). Anything else, including "9:30", is rejected.
func ParseClock(value string) (ClockTime, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, ErrInvalidClock
	}
	for _, i := range []int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, ErrInvalidClock
		}
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, ErrInvalidClock
	}
	return ClockTime(hour*60 + minute), nil
}

// String renders the time back to zero-padded HH:MM, the wire and storage format.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseDate validates a calendar date in YYYY-MM-DD form. The returned value
// is the canonical string; bookings carry no time zone.
func ParseDate(value string) (string, error) {
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return "", ErrInvalidDate
	}
	return ts.Format("2006-01-02"), nil
}

// Interval is a half-open [Start, End) slice of a single day.
type Interval struct {
	Start ClockTime
	End   ClockTime
}

// Valid reports whether the interval has positive length.
func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Overlaps reports whether two half-open intervals on the same (room, date)
// key collide: a.Start < b.End && b.Start < a.End. Adjacent intervals such as
// [10:00,11:00) and [11:00,12:00) do not overlap. Every conflict decision in
// the service goes through this predicate.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}
