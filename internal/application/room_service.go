package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/easybooking/internal/persistence"
)

// RoomRepository captures the persistence interactions needed for the room catalog.
type RoomRepository interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error)
}

// RoomService exposes read access to the room catalog. Rooms are seeded at
// startup; there is no end-user facing mutation surface.
type RoomService struct {
	rooms  RoomRepository
	logger *slog.Logger
}

// NewRoomService wires dependencies for room catalog operations.
func NewRoomService(rooms RoomRepository) *RoomService {
	return NewRoomServiceWithLogger(rooms, nil)
}

// NewRoomServiceWithLogger constructs a RoomService with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: defaultLogger(logger)}
}

// ListRooms returns catalog entries matching the filter. A nil filter field
// leaves that dimension unconstrained.
func (s *RoomService) ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}

	if filter.MinCapacity != nil && *filter.MinCapacity < 0 {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must not be negative")
		return nil, vErr
	}

	rooms, err := s.rooms.ListRooms(ctx, filter)
	if err != nil {
		return nil, mapRoomRepoError(err)
	}
	return rooms, nil
}

// GetRoom returns a single catalog entry by id.
func (s *RoomService) GetRoom(ctx context.Context, id string) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Room{}, ErrNotFound
	}

	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// RoomExists reports whether a room id refers to a catalog entry. It
// satisfies the RoomCatalog dependency of BookingService.
func (s *RoomService) RoomExists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
