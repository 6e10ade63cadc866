package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/easybooking/internal/persistence"
)

// SessionRepository captures the persistence interactions for session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// AuthService authenticates users and manages their sessions. Tokens are
// opaque random strings stored server side; validation is a store lookup,
// not a signature check.
type AuthService struct {
	users          UserRepository
	sessions       SessionRepository
	verifyPassword func(hashedPassword, password string) error
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication operations. A zero
// sessionTTL falls back to DefaultSessionTTL.
func NewAuthService(users UserRepository, sessions SessionRepository, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(users, sessions, idGenerator, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users UserRepository, sessions SessionRepository, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		verifyPassword: VerifyPassword,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login checks the supplied credentials and issues a fresh session. Unknown
// emails and wrong passwords both produce ErrInvalidCredentials; the response
// never reveals which of the two failed.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		return LoginResult{}, fmt.Errorf("AuthService is nil")
	}
	if s.users == nil || s.sessions == nil {
		return LoginResult{}, fmt.Errorf("auth repositories not configured")
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		vErr := &ValidationError{}
		if email == "" {
			vErr.add("email", "email is required")
		}
		if params.Password == "" {
			vErr.add("password", "password is required")
		}
		return LoginResult{}, vErr
	}

	creds, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	now := s.now()

	// Opportunistic cleanup; a failure here must not block the login.
	if pruneErr := s.sessions.DeleteExpiredSessions(ctx, now); pruneErr != nil {
		logger.WarnContext(ctx, "expired session pruning failed", "error", pruneErr)
	}

	session, err := s.sessions.CreateSession(ctx, Session{
		ID:        s.idGenerator(),
		UserID:    creds.User.ID,
		Token:     s.tokenGenerator(),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: creds.User, Session: session}, nil
}

// ValidateSession resolves a bearer token to the authenticated principal.
// Expired and revoked sessions fail with distinct sentinels so callers can
// log the reason, though both surface as unauthorized to the client.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return Principal{}, fmt.Errorf("auth repositories not configured")
	}
	if strings.TrimSpace(token) == "" {
		return Principal{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}

	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	return Principal{UserID: session.UserID}, nil
}

// Logout revokes the session behind the token. Revoking an unknown token
// reports ErrUnauthorized; revoking an already revoked one succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("auth repositories not configured")
	}

	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session revoked")
	}()

	if strings.TrimSpace(token) == "" {
		return ErrUnauthorized
	}

	if _, err := s.sessions.RevokeSession(ctx, token, s.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	return nil
}
