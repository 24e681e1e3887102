package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"expensio/internal/core"
	"expensio/internal/storage"
)

// fakeUserRepo implements the user half of storage.Repository in memory.
type fakeUserRepo struct {
	storage.Repository
	users map[string]core.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]core.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user core.User) (core.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return core.User{}, storage.ErrDuplicateEmail
	}
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	user, ok := f.users[email]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (core.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return core.User{}, storage.ErrNotFound
}

func newTestService(repo storage.Repository) *Service {
	return NewService(repo, NewTokenManager("test-secret", time.Hour), bcrypt.MinCost, nil)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := newTestService(repo)

		user, token, err := svc.Register(ctx, "Alice@Example.com ", "hunter22")
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("email = %s, want normalized alice@example.com", user.Email)
		}
		if user.ID == "" || token == "" {
			t.Errorf("Register returned empty id or token: %q %q", user.ID, token)
		}

		// Stored hash verifies against the original password
		stored := repo.users["alice@example.com"]
		if stored.PasswordHash == "hunter22" {
			t.Error("password stored in clear")
		}
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")) != nil {
			t.Error("stored hash does not verify the password")
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo())

		_, _, err := svc.Register(ctx, "not-an-email", "short")
		var verrs core.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("Register error = %v, want ValidationErrors", err)
		}
		if len(verrs) != 2 {
			t.Errorf("Register reported %d errors, want 2: %v", len(verrs), verrs)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo())

		if _, _, err := svc.Register(ctx, "a@example.com", "hunter22"); err != nil {
			t.Fatalf("first Register: %v", err)
		}
		_, _, err := svc.Register(ctx, "a@example.com", "hunter22")
		if !errors.Is(err, storage.ErrDuplicateEmail) {
			t.Errorf("second Register = %v, want ErrDuplicateEmail", err)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	if _, _, err := svc.Register(ctx, "a@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "a@example.com", "hunter22")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if user.Email != "a@example.com" || token == "" {
			t.Errorf("Login = %+v, token %q", user, token)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "a@example.com", "wrong-pass")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login wrong password = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "hunter22")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login unknown email = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "a@example.com", "")
		var verrs core.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("Login empty password = %v, want ValidationErrors", err)
		}
	})
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeUserRepo())

	user, _, err := svc.Register(ctx, "a@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.CurrentUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("CurrentUser email = %s", got.Email)
	}

	if _, err := svc.CurrentUser(ctx, "usr_missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CurrentUser missing = %v, want ErrNotFound", err)
	}
}
