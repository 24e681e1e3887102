package http

import (
	"errors"
	"net/http"

	"expensio/internal/auth"
	"expensio/internal/core"
	"expensio/internal/log"
	"expensio/internal/storage"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the register/login success payload
type sessionResponse struct {
	User  auth.PublicUser `json:"user"`
	Token string          `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var verrs core.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeFieldErrors(w, verrs)
		case errors.Is(err, storage.ErrDuplicateEmail):
			writeMessage(w, http.StatusBadRequest, "Email already registered")
		default:
			s.internalError(w, r, "Registration failed", err, log.FieldOperation, log.OpRegister)
		}
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var verrs core.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeFieldErrors(w, verrs)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			s.internalError(w, r, "Login failed", err, log.FieldOperation, log.OpLogin)
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := s.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		s.internalError(w, r, "Lookup failed", err, log.FieldUserID, userID)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
