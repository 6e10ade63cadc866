package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/easybooking/internal/persistence"
)

// UserRepository captures the persistence interactions needed for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, creds UserCredentials) (User, error)
	GetUserByEmail(ctx context.Context, email string) (UserCredentials, error)
}

const minPasswordLength = 8

// UserService handles account registration.
type UserService struct {
	users        UserRepository
	hashPassword func(password string) (string, error)
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for account operations.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users: users,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// SignUp validates the registration fields, hashes the password and persists
// the account. A duplicate username or email surfaces as ErrAlreadyExists.
func (s *UserService) SignUp(ctx context.Context, params SignUpParams) (result User, err error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "SignUp", "username", params.Username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "sign up rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.ID).InfoContext(ctx, "user registered")
	}()

	if vErr := validateSignUp(params); vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	creds := UserCredentials{
		User: User{
			ID:        s.idGenerator(),
			Username:  strings.TrimSpace(params.Username),
			Email:     strings.ToLower(strings.TrimSpace(params.Email)),
			CreatedAt: s.now(),
		},
		PasswordHash: hash,
	}

	user, err := s.users.CreateUser(ctx, creds)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}
	return user, nil
}

func validateSignUp(params SignUpParams) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(params.Username) == "" {
		vErr.add("username", "username is required")
	}

	email := strings.TrimSpace(params.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		vErr.add("email", "email is not a valid address")
	}

	if params.Password == "" {
		vErr.add("password", "password is required")
	} else if len(params.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	return vErr
}
