package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/easybooking/internal/application"
)

type authServiceStub struct {
	signUpUser  application.User
	signUpErr   error
	loginResult application.LoginResult
	loginErr    error
	logoutErr   error
	revoked     []string
}

func (s *authServiceStub) SignUp(ctx context.Context, params application.SignUpParams) (application.User, error) {
	if s.signUpErr != nil {
		return application.User{}, s.signUpErr
	}
	return s.signUpUser, nil
}

func (s *authServiceStub) Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error) {
	if s.loginErr != nil {
		return application.LoginResult{}, s.loginErr
	}
	return s.loginResult, nil
}

func (s *authServiceStub) Logout(ctx context.Context, token string) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	s.revoked = append(s.revoked, token)
	return nil
}

type roomServiceStub struct {
	rooms        []application.Room
	listErr      error
	getErr       error
	lastFilter   application.RoomFilter
	availability application.Availability
	checkErr     error
	lastCheck    application.AvailabilityParams
}

func (s *roomServiceStub) ListRooms(ctx context.Context, filter application.RoomFilter) ([]application.Room, error) {
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.rooms, nil
}

func (s *roomServiceStub) GetRoom(ctx context.Context, id string) (application.Room, error) {
	if s.getErr != nil {
		return application.Room{}, s.getErr
	}
	for _, room := range s.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return application.Room{}, application.ErrNotFound
}

func (s *roomServiceStub) CheckAvailability(ctx context.Context, params application.AvailabilityParams) (application.Availability, error) {
	s.lastCheck = params
	if s.checkErr != nil {
		return application.Availability{}, s.checkErr
	}
	return s.availability, nil
}

type bookingServiceStub struct {
	created     application.Booking
	createErr   error
	lastParams  application.CreateBookingParams
	cancelErr   error
	cancelled   []string
	lastCancel  application.Principal
	mine        []application.Booking
	listMineErr error
	all         []application.Booking
	listAllErr  error
}

func (s *bookingServiceStub) CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error) {
	s.lastParams = params
	if s.createErr != nil {
		return application.Booking{}, s.createErr
	}
	return s.created, nil
}

func (s *bookingServiceStub) CancelBooking(ctx context.Context, principal application.Principal, bookingID string) error {
	s.lastCancel = principal
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.cancelled = append(s.cancelled, bookingID)
	return nil
}

func (s *bookingServiceStub) ListMyBookings(ctx context.Context, principal application.Principal) ([]application.Booking, error) {
	if s.listMineErr != nil {
		return nil, s.listMineErr
	}
	return s.mine, nil
}

func (s *bookingServiceStub) ListAllBookings(ctx context.Context) ([]application.Booking, error) {
	if s.listAllErr != nil {
		return nil, s.listAllErr
	}
	return s.all, nil
}

type sessionValidatorStub struct {
	principal application.Principal
	err       error
}

func (s sessionValidatorStub) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	if s.err != nil {
		return application.Principal{}, s.err
	}
	return s.principal, nil
}

func newTestRouter(auth *authServiceStub, rooms *roomServiceStub, bookings *bookingServiceStub, validator SessionValidator) http.Handler {
	cfg := RouterConfig{}
	if auth != nil {
		cfg.Auth = NewAuthHandler(auth, nil)
	}
	if rooms != nil {
		cfg.Rooms = NewRoomHandler(rooms, rooms, nil)
	}
	if bookings != nil {
		cfg.Bookings = NewBookingHandler(bookings, nil)
	}
	if validator != nil {
		cfg.RequireSession = RequireSession(validator, nil)
	}
	return NewRouter(cfg)
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer valid-token")
	return req
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("signup returns the created account", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{signUpUser: application.User{
			ID:        "user-1",
			Username:  "alice",
			Email:     "alice@example.com",
			CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		}}
		router := newTestRouter(auth, nil, nil, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
			strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret-pass"}`)))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resp userResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.User.ID != "user-1" || resp.User.Username != "alice" {
			t.Fatalf("unexpected user payload: %+v", resp.User)
		}
	})

	t.Run("signup maps duplicates to 409", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{signUpErr: application.ErrAlreadyExists}
		router := newTestRouter(auth, nil, nil, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
			strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret-pass"}`)))

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{loginResult: application.LoginResult{
			User: application.User{ID: "user-1", Username: "alice", Email: "alice@example.com"},
			Session: application.Session{
				Token:     "token-1",
				ExpiresAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			},
		}}
		router := newTestRouter(auth, nil, nil, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"secret-pass"}`)))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if got := recorder.Header().Get("X-Session-Token"); got != "token-1" {
			t.Fatalf("expected session header, got %q", got)
		}

		var cookie *http.Cookie
		for _, c := range recorder.Result().Cookies() {
			if c.Name == "session_token" {
				cookie = c
			}
		}
		if cookie == nil || cookie.Value != "token-1" {
			t.Fatalf("expected session cookie, got %+v", cookie)
		}

		var resp loginResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token != "token-1" || resp.User.ID != "user-1" {
			t.Fatalf("unexpected login payload: %+v", resp)
		}
	})

	t.Run("login maps bad credentials to 401", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{loginErr: application.ErrInvalidCredentials}
		router := newTestRouter(auth, nil, nil, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`)))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("logout revokes the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		auth := &authServiceStub{}
		router := newTestRouter(auth, nil, nil, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/api/auth/logout", ""))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if len(auth.revoked) != 1 || auth.revoked[0] != "valid-token" {
			t.Fatalf("expected token revocation, got %v", auth.revoked)
		}

		var cleared bool
		for _, c := range recorder.Result().Cookies() {
			if c.Name == "session_token" && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatalf("expected session cookie to be cleared")
		}
	})

	t.Run("logout without a token returns 401", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&authServiceStub{}, nil, nil, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})
}

func TestRoomEndpoints(t *testing.T) {
	t.Parallel()

	validator := sessionValidatorStub{principal: application.Principal{UserID: "user-1"}}

	t.Run("list maps query parameters to the filter", func(t *testing.T) {
		t.Parallel()

		rooms := &roomServiceStub{rooms: []application.Room{{ID: "room-1", Name: "Boardroom", Capacity: 8, Available: true}}}
		router := newTestRouter(nil, rooms, nil, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/rooms?capacity=10&available=true", ""))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if rooms.lastFilter.MinCapacity == nil || *rooms.lastFilter.MinCapacity != 10 {
			t.Fatalf("expected capacity filter 10, got %+v", rooms.lastFilter.MinCapacity)
		}
		if rooms.lastFilter.Available == nil || !*rooms.lastFilter.Available {
			t.Fatalf("expected available filter true, got %+v", rooms.lastFilter.Available)
		}
	})

	t.Run("list rejects malformed query parameters", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(nil, &roomServiceStub{}, nil, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/rooms?capacity=lots", ""))

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("get returns one room or 404", func(t *testing.T) {
		t.Parallel()

		rooms := &roomServiceStub{rooms: []application.Room{{ID: "room-1", Name: "Boardroom", Capacity: 8}}}
		router := newTestRouter(nil, rooms, nil, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/rooms/room-1", ""))
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		recorder = httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/rooms/missing", ""))
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("check-availability forwards the slot and renders the verdict", func(t *testing.T) {
		t.Parallel()

		rooms := &roomServiceStub{availability: application.Availability{Available: false, ConflictingCount: 2}}
		router := newTestRouter(nil, rooms, nil, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/api/rooms/room-1/check-availability",
			`{"date":"2025-06-10","start_time":"10:00","end_time":"11:00"}`))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if rooms.lastCheck.RoomID != "room-1" || rooms.lastCheck.StartTime != "10:00" {
			t.Fatalf("unexpected availability params: %+v", rooms.lastCheck)
		}

		var resp availabilityResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Available || resp.ConflictingCount != 2 {
			t.Fatalf("unexpected availability payload: %+v", resp)
		}
	})

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(nil, &roomServiceStub{}, nil, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})
}

func TestBookingEndpoints(t *testing.T) {
	t.Parallel()

	validator := sessionValidatorStub{principal: application.Principal{UserID: "user-1"}}

	t.Run("create forwards the authenticated principal", func(t *testing.T) {
		t.Parallel()

		bookings := &bookingServiceStub{created: application.Booking{
			ID:      "booking-1",
			OwnerID: "user-1",
			RoomID:  "room-1",
			Date:    "2025-06-10",
			Status:  application.BookingStatusActive,
		}}
		router := newTestRouter(nil, nil, bookings, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/api/bookings",
			`{"room_id":"room-1","date":"2025-06-10","start_time":"10:00","end_time":"11:00"}`))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if bookings.lastParams.Principal.UserID != "user-1" {
			t.Fatalf("expected principal user-1, got %+v", bookings.lastParams.Principal)
		}
		if bookings.lastParams.Input.StartTime != "10:00" {
			t.Fatalf("unexpected input: %+v", bookings.lastParams.Input)
		}
	})

	t.Run("create maps conflicts to 409", func(t *testing.T) {
		t.Parallel()

		bookings := &bookingServiceStub{createErr: application.ErrConflict}
		router := newTestRouter(nil, nil, bookings, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/api/bookings",
			`{"room_id":"room-1","date":"2025-06-10","start_time":"10:00","end_time":"11:00"}`))

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}

		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ErrorCode != "BOOKING_CONFLICT" {
			t.Fatalf("expected BOOKING_CONFLICT code, got %+v", resp)
		}
	})

	t.Run("create maps validation failures to 400 with field details", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{"start_time": "start time must be HH:MM"}}
		bookings := &bookingServiceStub{createErr: vErr}
		router := newTestRouter(nil, nil, bookings, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/api/bookings",
			`{"room_id":"room-1","date":"2025-06-10","start_time":"9:30","end_time":"11:00"}`))

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}

		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if _, ok := resp.Errors["start_time"]; !ok {
			t.Fatalf("expected start_time field error, got %+v", resp.Errors)
		}
	})

	t.Run("cancel maps missing bookings to 404", func(t *testing.T) {
		t.Parallel()

		bookings := &bookingServiceStub{cancelErr: application.ErrNotFound}
		router := newTestRouter(nil, nil, bookings, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/api/bookings/someone-elses", ""))

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("cancel succeeds with 204", func(t *testing.T) {
		t.Parallel()

		bookings := &bookingServiceStub{}
		router := newTestRouter(nil, nil, bookings, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/api/bookings/booking-1", ""))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if len(bookings.cancelled) != 1 || bookings.cancelled[0] != "booking-1" {
			t.Fatalf("expected booking-1 cancellation, got %v", bookings.cancelled)
		}
		if bookings.lastCancel.UserID != "user-1" {
			t.Fatalf("expected principal user-1, got %+v", bookings.lastCancel)
		}
	})

	t.Run("my-bookings renders the caller's bookings", func(t *testing.T) {
		t.Parallel()

		bookings := &bookingServiceStub{mine: []application.Booking{{
			ID:      "booking-1",
			OwnerID: "user-1",
			RoomID:  "room-1",
			Date:    "2025-06-10",
			Status:  application.BookingStatusActive,
		}}}
		router := newTestRouter(nil, nil, bookings, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/api/bookings/my-bookings", ""))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var resp listBookingsResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Bookings) != 1 || resp.Bookings[0].UserID != "user-1" {
			t.Fatalf("unexpected payload: %+v", resp.Bookings)
		}
	})

	t.Run("rejects unsupported methods", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(nil, nil, &bookingServiceStub{}, validator)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/api/bookings", ""))

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
	})
}
