package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/easybooking/internal/persistence"
)

type userRepoStub struct {
	created   []UserCredentials
	createErr error
	byEmail   map[string]UserCredentials
	getErr    error
}

func (u *userRepoStub) CreateUser(ctx context.Context, creds UserCredentials) (User, error) {
	if u.createErr != nil {
		return User{}, u.createErr
	}
	u.created = append(u.created, creds)
	return creds.User, nil
}

func (u *userRepoStub) GetUserByEmail(ctx context.Context, email string) (UserCredentials, error) {
	if u.getErr != nil {
		return UserCredentials{}, u.getErr
	}
	creds, ok := u.byEmail[email]
	if !ok {
		return UserCredentials{}, persistence.ErrNotFound
	}
	return creds, nil
}

func newTestUserService(repo *userRepoStub) *UserService {
	svc := NewUserService(repo,
		func() string { return "user-1" },
		func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) },
	)
	// Skip the real argon2id work in unit tests.
	svc.hashPassword = func(password string) (string, error) { return "hashed:" + password, nil }
	return svc
}

func TestUserService_SignUp_ValidatesFields(t *testing.T) {
	t.Parallel()

	svc := newTestUserService(&userRepoStub{})

	cases := []struct {
		name   string
		params SignUpParams
		field  string
	}{
		{name: "missing username", params: SignUpParams{Email: "a@example.com", Password: "secret-pass"}, field: "username"},
		{name: "missing email", params: SignUpParams{Username: "alice", Password: "secret-pass"}, field: "email"},
		{name: "malformed email", params: SignUpParams{Username: "alice", Email: "not-an-address", Password: "secret-pass"}, field: "email"},
		{name: "missing password", params: SignUpParams{Username: "alice", Email: "a@example.com"}, field: "password"},
		{name: "short password", params: SignUpParams{Username: "alice", Email: "a@example.com", Password: "short"}, field: "password"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.SignUp(context.Background(), tc.params)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected field %q in errors, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestUserService_SignUp_PersistsNormalizedAccount(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{}
	svc := newTestUserService(repo)

	user, err := svc.SignUp(context.Background(), SignUpParams{
		Username: "  alice  ",
		Email:    "Alice@Example.COM",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 stored account, got %d", len(repo.created))
	}
	if repo.created[0].PasswordHash != "hashed:secret-pass" {
		t.Fatalf("password must be stored hashed, got %q", repo.created[0].PasswordHash)
	}
}

func TestUserService_SignUp_DuplicateAccount(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{createErr: persistence.ErrDuplicate}
	svc := newTestUserService(repo)

	_, err := svc.SignUp(context.Background(), SignUpParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret-pass",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
