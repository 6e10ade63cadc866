package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/easybooking/internal/application"
	"github.com/example/easybooking/internal/booking"
	"github.com/example/easybooking/internal/config"
	httptransport "github.com/example/easybooking/internal/http"
	"github.com/example/easybooking/internal/persistence"
	"github.com/example/easybooking/internal/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	userRepo := sqlite.NewUserRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	bookingRepo := sqlite.NewBookingRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	if cfg.SeedRooms {
		if err := seedRooms(context.Background(), roomRepo, logger); err != nil {
			logger.Error("failed to seed rooms", "error", err)
			os.Exit(1)
		}
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	roomService := application.NewRoomServiceWithLogger(newRoomAdapter(roomRepo), logger)
	bookingService := application.NewBookingServiceWithLogger(newBookingAdapter(bookingRepo), roomService, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(newUserAdapter(userRepo), idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(newUserAdapter(userRepo), newSessionAdapter(sessionRepo), idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(newAuthFacade(userService, authService), logger),
		Rooms:          httptransport.NewRoomHandler(roomService, bookingService, logger),
		Bookings:       httptransport.NewBookingHandler(bookingService, logger),
		RequireSession: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	levelName, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, nil
}

// seedRooms installs the default catalog on first boot. An already populated
// catalog is left untouched.
func seedRooms(ctx context.Context, repo persistence.RoomRepository, logger *slog.Logger) error {
	count, err := repo.CountRooms(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rooms := []persistence.Room{
		{ID: uuid.NewString(), Name: "Salle Conférence A", Capacity: 50, Description: "Grande salle de conférence", Amenities: []string{"projecteur", "visioconférence", "tableau blanc"}, Available: true},
		{ID: uuid.NewString(), Name: "Salle Réunion B", Capacity: 10, Description: "Salle de réunion standard", Amenities: []string{"écran", "tableau blanc"}, Available: true},
		{ID: uuid.NewString(), Name: "Salle Formation C", Capacity: 30, Description: "Salle de formation équipée", Amenities: []string{"projecteur", "ordinateurs"}, Available: true},
		{ID: uuid.NewString(), Name: "Salle Executive D", Capacity: 8, Description: "Salle de direction", Amenities: []string{"visioconférence", "écran"}, Available: true},
		{ID: uuid.NewString(), Name: "Espace Coworking E", Capacity: 20, Description: "Espace de travail partagé", Amenities: []string{"wifi", "café"}, Available: true},
	}
	for _, room := range rooms {
		if err := repo.CreateRoom(ctx, room); err != nil {
			return err
		}
	}

	logger.Info("seeded default room catalog", "rooms", len(rooms))
	return nil
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// authFacade joins registration and session operations behind the single
// interface the auth handler expects.
type authFacade struct {
	users *application.UserService
	auth  *application.AuthService
}

func newAuthFacade(users *application.UserService, auth *application.AuthService) *authFacade {
	return &authFacade{users: users, auth: auth}
}

func (f *authFacade) SignUp(ctx context.Context, params application.SignUpParams) (application.User, error) {
	return f.users.SignUp(ctx, params)
}

func (f *authFacade) Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error) {
	return f.auth.Login(ctx, params)
}

func (f *authFacade) Logout(ctx context.Context, token string) error {
	return f.auth.Logout(ctx, token)
}

type bookingAdapter struct {
	repo persistence.BookingRepository
}

func newBookingAdapter(repo persistence.BookingRepository) *bookingAdapter {
	return &bookingAdapter{repo: repo}
}

func (a *bookingAdapter) CreateBooking(ctx context.Context, b application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(b)); err != nil {
		return application.Booking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, b.ID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored)
}

func (a *bookingAdapter) ListActiveBookings(ctx context.Context, roomID, date string) ([]application.Booking, error) {
	models, err := a.repo.ListActiveBookings(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models)
}

func (a *bookingAdapter) ListBookingsForUser(ctx context.Context, userID string) ([]application.Booking, error) {
	models, err := a.repo.ListBookingsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models)
}

func (a *bookingAdapter) ListBookings(ctx context.Context) ([]application.Booking, error) {
	models, err := a.repo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models)
}

func (a *bookingAdapter) CancelBooking(ctx context.Context, id, userID string) error {
	return a.repo.CancelBooking(ctx, id, userID)
}

type roomAdapter struct {
	repo persistence.RoomRepository
}

func newRoomAdapter(repo persistence.RoomRepository) *roomAdapter {
	return &roomAdapter{repo: repo}
}

func (a *roomAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomAdapter) ListRooms(ctx context.Context, filter application.RoomFilter) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx, persistence.RoomFilter{
		MinCapacity: filter.MinCapacity,
		Available:   filter.Available,
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

type userAdapter struct {
	repo persistence.UserRepository
}

func newUserAdapter(repo persistence.UserRepository) *userAdapter {
	return &userAdapter{repo: repo}
}

func (a *userAdapter) CreateUser(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(creds)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, creds.User.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userAdapter) GetUserByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

type sessionAdapter struct {
	repo persistence.SessionRepository
}

func newSessionAdapter(repo persistence.SessionRepository) *sessionAdapter {
	return &sessionAdapter{repo: repo}
}

func (a *sessionAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toPersistenceBooking(b application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:        b.ID,
		UserID:    b.OwnerID,
		RoomID:    b.RoomID,
		Date:      b.Date,
		StartTime: b.Start.String(),
		EndTime:   b.End.String(),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

func toApplicationBooking(model persistence.Booking) (application.Booking, error) {
	start, err := booking.ParseClock(model.StartTime)
	if err != nil {
		return application.Booking{}, fmt.Errorf("booking %s has invalid start time: %w", model.ID, err)
	}
	end, err := booking.ParseClock(model.EndTime)
	if err != nil {
		return application.Booking{}, fmt.Errorf("booking %s has invalid end time: %w", model.ID, err)
	}
	return application.Booking{
		ID:        model.ID,
		OwnerID:   model.UserID,
		RoomID:    model.RoomID,
		Date:      model.Date,
		Start:     start,
		End:       end,
		Status:    application.BookingStatus(model.Status),
		CreatedAt: model.CreatedAt,
	}, nil
}

func toApplicationBookings(models []persistence.Booking) ([]application.Booking, error) {
	if len(models) == 0 {
		return nil, nil
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		converted, err := toApplicationBooking(model)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, converted)
	}
	return bookings, nil
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:          model.ID,
		Name:        model.Name,
		Capacity:    model.Capacity,
		Description: model.Description,
		Amenities:   append([]string(nil), model.Amenities...),
		Available:   model.Available,
		CreatedAt:   model.CreatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:        model.ID,
		Username:  model.Username,
		Email:     model.Email,
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceUser(creds application.UserCredentials) persistence.User {
	return persistence.User{
		ID:           creds.User.ID,
		Username:     creds.User.Username,
		Email:        creds.User.Email,
		PasswordHash: creds.PasswordHash,
		CreatedAt:    creds.User.CreatedAt,
		UpdatedAt:    creds.User.CreatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
