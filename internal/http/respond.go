package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"expensio/internal/core"
)

// messageResponse is the single-message error payload
type messageResponse struct {
	Message string `json:"message"`
}

// fieldErrorsResponse carries per-field validation failures
type fieldErrorsResponse struct {
	Errors []core.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeFieldErrors(w http.ResponseWriter, errs core.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, fieldErrorsResponse{Errors: errs})
}

// decodeJSON parses the request body into dst, rejecting trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
