package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/easybooking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateRoom inserts a new room into the catalog.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Name == "" {
		return persistence.ErrConstraintViolation
	}
	if room.Capacity < 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = now
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO rooms (id, name, capacity, description, amenities, available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		room.ID,
		room.Name,
		room.Capacity,
		room.Description,
		joinAmenities(room.Amenities),
		boolToInt(room.Available),
		room.CreatedAt.Format(time.RFC3339),
		room.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT id, name, capacity, description, amenities, available, created_at, updated_at
		FROM rooms
		WHERE id = ?
	`, id)

	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, r.mapper.MapError(err)
	}
	return room, nil
}

// ListRooms returns rooms matching the filter, ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context, filter persistence.RoomFilter) ([]persistence.Room, error) {
	query := `
		SELECT id, name, capacity, description, amenities, available, created_at, updated_at
		FROM rooms
	`

	var conditions []string
	var args []any

	if filter.MinCapacity != nil {
		conditions = append(conditions, "capacity >= ?")
		args = append(args, *filter.MinCapacity)
	}
	if filter.Available != nil {
		conditions = append(conditions, "available = ?")
		args = append(args, boolToInt(*filter.Available))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return rooms, nil
}

// CountRooms returns the number of catalog entries. Used to decide whether
// startup seeding is needed.
func (r *RoomRepository) CountRooms(ctx context.Context) (int, error) {
	var count int
	if err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var amenities string
	var available int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.Description,
		&amenities,
		&available,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Room{}, err
	}

	room.Amenities = splitAmenities(amenities)
	room.Available = available != 0

	if room.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return room, nil
}

// Amenities are stored comma joined, preserving order.
func joinAmenities(values []string) string {
	return strings.Join(values, ",")
}

func splitAmenities(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
