package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/easybooking/internal/booking"
	"github.com/example/easybooking/internal/persistence"
)

// BookingRepository captures the persistence interactions needed by the service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	ListActiveBookings(ctx context.Context, roomID, date string) ([]Booking, error)
	ListBookingsForUser(ctx context.Context, userID string) ([]Booking, error)
	ListBookings(ctx context.Context) ([]Booking, error)
	CancelBooking(ctx context.Context, id, userID string) error
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	RoomExists(ctx context.Context, id string) (bool, error)
}

// BookingService orchestrates validation, conflict detection and persistence
// for reservation operations. It is the only component that decides what
// constitutes a conflict and which status transitions are legal.
type BookingService struct {
	bookings    BookingRepository
	rooms       RoomCatalog
	locks       *slotLock
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		locks:       newSlotLock(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the request, confirms the room, and atomically
// persists a reservation if no active booking overlaps the slot.
//
// Creation attempts for the same (room, date) serialize on a keyed mutex, so
// the conflict check and the insert form a critical section: of N racing
// requests for an overlapping interval, exactly one wins and the rest observe
// the winner's row and fail with ErrConflict. The repository re-checks inside
// its own transaction as a storage-level backstop.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (result Booking, err error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}

	input := params.Input
	principal := params.Principal

	logger := s.loggerWith(ctx, "CreateBooking",
		"room_id", input.RoomID,
		"date", input.Date,
		"owner_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking creation rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.ID).InfoContext(ctx, "booking created")
	}()

	if principal.UserID == "" {
		return Booking{}, ErrUnauthorized
	}

	date, interval, vErr := validateSlot(input.RoomID, input.Date, input.StartTime, input.EndTime)
	if vErr.HasErrors() {
		return Booking{}, vErr
	}

	if err := s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return Booking{}, err
	}

	// Serialization point for the check-then-act sequence (one key per
	// room+date). Everything below down to the insert runs single file.
	mu := s.locks.forKey(input.RoomID, date)
	mu.Lock()
	defer mu.Unlock()

	active, err := s.bookings.ListActiveBookings(ctx, input.RoomID, date)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}

	for _, existing := range active {
		if booking.Overlaps(existing.Interval(), interval) {
			return Booking{}, ErrConflict
		}
	}

	candidate := Booking{
		ID:        s.idGenerator(),
		OwnerID:   principal.UserID,
		RoomID:    input.RoomID,
		Date:      date,
		Start:     interval.Start,
		End:       interval.End,
		Status:    BookingStatusActive,
		CreatedAt: s.now(),
	}

	persisted, err := s.bookings.CreateBooking(ctx, candidate)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	return persisted, nil
}

// CancelBooking transitions a booking owned by the caller to cancelled. The
// lookup is scoped by id and owner together, so a non-owner receives the same
// ErrNotFound as a request for a booking that never existed. Cancelling an
// already cancelled booking re-succeeds; the rewrite is a no-op.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID string) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"booking_id", bookingID,
		"owner_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking cancellation rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if strings.TrimSpace(bookingID) == "" {
		return ErrNotFound
	}

	if err := s.bookings.CancelBooking(ctx, bookingID, principal.UserID); err != nil {
		return mapBookingRepoError(err)
	}
	return nil
}

// ListMyBookings returns the caller's bookings, newest slot first (date
// descending, then start time descending).
func (s *BookingService) ListMyBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	bookings, err := s.bookings.ListBookingsForUser(ctx, principal.UserID)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return sortBookings(bookings), nil
}

// ListAllBookings returns every booking. Unscoped; intended for operational
// and test visibility only.
func (s *BookingService) ListAllBookings(ctx context.Context) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}

	bookings, err := s.bookings.ListBookings(ctx)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return sortBookings(bookings), nil
}

// CheckAvailability reports whether a slot is free of active bookings, using
// the same overlap predicate as CreateBooking. Read only; never mutates state.
func (s *BookingService) CheckAvailability(ctx context.Context, params AvailabilityParams) (Availability, error) {
	if s == nil {
		return Availability{}, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return Availability{}, fmt.Errorf("booking repository not configured")
	}

	date, interval, vErr := validateSlot(params.RoomID, params.Date, params.StartTime, params.EndTime)
	if vErr.HasErrors() {
		return Availability{}, vErr
	}

	if err := s.ensureRoomExists(ctx, params.RoomID); err != nil {
		return Availability{}, err
	}

	active, err := s.bookings.ListActiveBookings(ctx, params.RoomID, date)
	if err != nil {
		return Availability{}, mapBookingRepoError(err)
	}

	conflicting := 0
	for _, existing := range active {
		if booking.Overlaps(existing.Interval(), interval) {
			conflicting++
		}
	}

	return Availability{Available: conflicting == 0, ConflictingCount: conflicting}, nil
}

func (s *BookingService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		// Unknown, negative or otherwise malformed ids all land here: the
		// room simply does not exist, which is a not-found condition rather
		// than a validation or server failure.
		return ErrNotFound
	}
	return nil
}

// validateSlot performs the storage-free validation shared by creation and
// availability checks. It returns the canonical date and the parsed interval
// when the input is well formed.
func validateSlot(roomID, date, startTime, endTime string) (string, booking.Interval, *ValidationError) {
	vErr := &ValidationError{}

	if strings.TrimSpace(roomID) == "" {
		vErr.add("room_id", "room id is required")
	}

	canonicalDate := ""
	if strings.TrimSpace(date) == "" {
		vErr.add("date", "date is required")
	} else {
		parsed, err := booking.ParseDate(date)
		if err != nil {
			vErr.add("date", "date must be YYYY-MM-DD")
		} else {
			canonicalDate = parsed
		}
	}

	var interval booking.Interval
	startOK, endOK := false, false

	if strings.TrimSpace(startTime) == "" {
		vErr.add("start_time", "start time is required")
	} else if start, err := booking.ParseClock(startTime); err != nil {
		vErr.add("start_time", "start time must be HH:MM")
	} else {
		interval.Start = start
		startOK = true
	}

	if strings.TrimSpace(endTime) == "" {
		vErr.add("end_time", "end time is required")
	} else if end, err := booking.ParseClock(endTime); err != nil {
		vErr.add("end_time", "end time must be HH:MM")
	} else {
		interval.End = end
		endOK = true
	}

	if startOK && endOK && !interval.Valid() {
		vErr.add("time", "end time must be after start time")
	}

	return canonicalDate, interval, vErr
}

func sortBookings(bookings []Booking) []Booking {
	if len(bookings) == 0 {
		return nil
	}
	ordered := make([]Booking, len(bookings))
	copy(ordered, bookings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date > ordered[j].Date
		}
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start > ordered[j].Start
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		// Referenced room or user vanished between check and insert.
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("time", "end time must be after start time")
		return vErr
	}
	return err
}
