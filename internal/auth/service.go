// Package auth implements registration, login, and bearer-token sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expensio/internal/core"
	"expensio/internal/log"
	"expensio/internal/storage"
)

// ErrInvalidCredentials is deliberately generic: login never reveals whether
// the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// PublicUser is the user shape exposed to clients. Never the hash.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Service struct {
	repo       storage.Repository
	tokens     *TokenManager
	bcryptCost int
	logger     *log.Logger
}

func NewService(repo storage.Repository, tokens *TokenManager, bcryptCost int, logger *log.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentAuth)
	}
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost, logger: logger}
}

// Register creates a new user and returns the public record plus a session
// token. Validation failures come back as core.ValidationErrors; a known
// email yields storage.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, email, password string) (PublicUser, string, error) {
	email = normalizeEmail(email)

	var errs core.ValidationErrors
	if !emailPattern.MatchString(email) {
		errs = append(errs, core.FieldError{Field: "email", Message: "Valid email required"})
	}
	if len(password) < minPasswordLength {
		errs = append(errs, core.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if len(errs) > 0 {
		return PublicUser{}, "", errs
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return PublicUser{}, "", storage.ErrDuplicateEmail
	} else if !errors.Is(err, storage.ErrNotFound) {
		return PublicUser{}, "", fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return PublicUser{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, core.User{
		ID:           core.NewID("usr"),
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return PublicUser{}, "", err
		}
		return PublicUser{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return PublicUser{}, "", err
	}

	s.logger.InfoContext(ctx, "User registered",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpRegister)

	return PublicUser{ID: user.ID, Email: user.Email}, token, nil
}

// Login verifies credentials and returns the public user plus a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (PublicUser, string, error) {
	email = normalizeEmail(email)

	var errs core.ValidationErrors
	if !emailPattern.MatchString(email) {
		errs = append(errs, core.FieldError{Field: "email", Message: "Valid email required"})
	}
	if password == "" {
		errs = append(errs, core.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		return PublicUser{}, "", errs
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return PublicUser{}, "", ErrInvalidCredentials
		}
		return PublicUser{}, "", fmt.Errorf("lookup email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return PublicUser{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return PublicUser{}, "", err
	}

	s.logger.InfoContext(ctx, "User logged in",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpLogin)

	return PublicUser{ID: user.ID, Email: user.Email}, token, nil
}

// CurrentUser resolves an authenticated user id to its public record.
func (s *Service) CurrentUser(ctx context.Context, userID string) (PublicUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return PublicUser{}, err
	}
	return PublicUser{ID: user.ID, Email: user.Email}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
