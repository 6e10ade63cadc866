package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/easybooking/internal/application"
)

type roomService interface {
	ListRooms(ctx context.Context, filter application.RoomFilter) ([]application.Room, error)
	GetRoom(ctx context.Context, id string) (application.Room, error)
}

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, params application.AvailabilityParams) (application.Availability, error)
}

type RoomHandler struct {
	service      roomService
	availability availabilityChecker
	responder    responder
	logger       *slog.Logger
}

func NewRoomHandler(service roomService, availability availabilityChecker, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, availability: availability, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := buildRoomFilter(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	rooms, err := h.service.ListRooms(r.Context(), filter)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list rooms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: toRoomDTOs(rooms)})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	room, err := h.service.GetRoom(r.Context(), roomID)
	if err != nil {
		h.log(r.Context(), "Get", "room_id", roomID).ErrorContext(r.Context(), "failed to get room", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.availability == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CheckAvailability", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode availability request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CheckAvailability", "room_id", roomID, "date", req.Date)

	availability, err := h.availability.CheckAvailability(r.Context(), application.AvailabilityParams{
		RoomID:    roomID,
		Date:      strings.TrimSpace(req.Date),
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "availability check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		Available:        availability.Available,
		ConflictingCount: availability.ConflictingCount,
	})
}

func buildRoomFilter(values url.Values) (application.RoomFilter, error) {
	var filter application.RoomFilter

	if capacityValue := strings.TrimSpace(values.Get("capacity")); capacityValue != "" {
		capacity, err := strconv.Atoi(capacityValue)
		if err != nil {
			return application.RoomFilter{}, errBadRequestBody
		}
		filter.MinCapacity = &capacity
	}

	if availableValue := strings.TrimSpace(values.Get("available")); availableValue != "" {
		available, err := strconv.ParseBool(availableValue)
		if err != nil {
			return application.RoomFilter{}, errBadRequestBody
		}
		filter.Available = &available
	}

	return filter, nil
}

type availabilityRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type availabilityResponse struct {
	Available        bool `json:"available"`
	ConflictingCount int  `json:"conflicting_count"`
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type roomDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description,omitempty"`
	Amenities   []string `json:"amenities"`
	Available   bool     `json:"available"`
	CreatedAt   string   `json:"created_at"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		ID:          room.ID,
		Name:        room.Name,
		Capacity:    room.Capacity,
		Description: room.Description,
		Amenities:   append([]string(nil), room.Amenities...),
		Available:   room.Available,
		CreatedAt:   room.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toRoomDTOs(rooms []application.Room) []roomDTO {
	if len(rooms) == 0 {
		return nil
	}
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return out
}
