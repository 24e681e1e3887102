package client

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Session binds a Client to a token file so logins survive process restarts.
type Session struct {
	client    *Client
	tokenPath string
	user      *User
}

func NewSession(client *Client, tokenPath string) *Session {
	return &Session{client: client, tokenPath: tokenPath}
}

// User returns the authenticated user, nil when logged out
func (s *Session) User() *User { return s.user }

// Restore loads a previously saved token and resolves its user. A missing
// token file means logged out; a rejected token is discarded.
func (s *Session) Restore(ctx context.Context) error {
	raw, err := os.ReadFile(s.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return nil
	}
	s.client.SetToken(token)

	user, err := s.client.Me(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
			s.client.SetToken("")
			return s.clearToken()
		}
		return err
	}

	s.user = &user
	return nil
}

// Login authenticates and persists the returned token.
func (s *Session) Login(ctx context.Context, email, password string) (User, error) {
	user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	s.user = &user
	return user, s.saveToken()
}

// Register creates an account and persists the returned token.
func (s *Session) Register(ctx context.Context, email, password string) (User, error) {
	user, err := s.client.Register(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	s.user = &user
	return user, s.saveToken()
}

// Logout drops the in-memory token and removes the token file.
func (s *Session) Logout() error {
	s.client.SetToken("")
	s.user = nil
	return s.clearToken()
}

func (s *Session) saveToken() error {
	if err := os.MkdirAll(filepath.Dir(s.tokenPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.tokenPath, []byte(s.client.Token()), 0600)
}

func (s *Session) clearToken() error {
	err := os.Remove(s.tokenPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
