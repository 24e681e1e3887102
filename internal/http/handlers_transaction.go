package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"expensio/internal/auth"
	"expensio/internal/core"
	"expensio/internal/log"
	"expensio/internal/storage"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// transactionResponse is the wire shape of a transaction. Amounts travel as
// decimal units, not cents.
type transactionResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Title    string    `json:"title"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Date     core.Date `json:"date"`
	Notes    string    `json:"notes"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	HasMore      bool                  `json:"hasMore"`
}

type transactionRequest struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Notes    string  `json:"notes"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:       t.ID,
		UserID:   t.UserID,
		Title:    t.Title,
		Amount:   t.Amount.Float(),
		Category: t.Category,
		Date:     t.Date,
		Notes:    t.Notes,
	}
}

func toTransactionResponses(txns []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

// toUpdate converts the request body into a repository update, parsing the
// date if one was given. A malformed date comes back as a field error.
func (req transactionRequest) toUpdate() (storage.TransactionUpdate, core.ValidationErrors) {
	upd := storage.TransactionUpdate{
		Title:    strings.TrimSpace(req.Title),
		Amount:   core.MoneyFromFloat(req.Amount),
		Category: strings.TrimSpace(req.Category),
		Notes:    strings.TrimSpace(req.Notes),
	}

	if raw := strings.TrimSpace(req.Date); raw != "" {
		date, err := core.ParseDate(raw)
		if err != nil {
			return upd, core.ValidationErrors{{Field: "date", Message: "Valid date required"}}
		}
		upd.Date = date
	}

	return upd, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	limit := queryInt(r, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	txns, total, err := s.transactions.List(r.Context(), userID, limit, offset)
	if err != nil {
		s.listError(w, r, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: toTransactionResponses(txns),
		Total:        total,
		HasMore:      offset+len(txns) < total,
	})
}

func (s *Server) handleListAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	txns, err := s.transactions.ListAll(r.Context(), userID)
	if err != nil {
		s.listError(w, r, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]transactionResponse{
		"transactions": toTransactionResponses(txns),
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	txn, err := s.transactions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Transaction not found")
			return
		}
		s.internalError(w, r, "Lookup failed", err, log.FieldTransactionID, r.PathValue("id"))
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(txn))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd, verrs := req.toUpdate()
	if len(verrs) > 0 {
		writeFieldErrors(w, verrs)
		return
	}

	created, err := s.transactions.Create(r.Context(), userID, core.Transaction{
		Title:    upd.Title,
		Amount:   upd.Amount,
		Category: upd.Category,
		Date:     upd.Date,
		Notes:    upd.Notes,
	})
	if err != nil {
		if errors.As(err, &verrs) {
			writeFieldErrors(w, verrs)
			return
		}
		s.internalError(w, r, "Create failed", err, log.FieldUserID, userID)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd, verrs := req.toUpdate()
	if len(verrs) > 0 {
		writeFieldErrors(w, verrs)
		return
	}

	updated, err := s.transactions.Update(r.Context(), userID, r.PathValue("id"), upd)
	if err != nil {
		switch {
		case errors.As(err, &verrs):
			writeFieldErrors(w, verrs)
		case errors.Is(err, storage.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Transaction not found")
		default:
			s.internalError(w, r, "Update failed", err, log.FieldTransactionID, r.PathValue("id"))
		}
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := s.transactions.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Transaction not found")
			return
		}
		s.internalError(w, r, "Delete failed", err, log.FieldTransactionID, r.PathValue("id"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) listError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	s.internalError(w, r, "List failed", err,
		log.FieldOperation, log.OpList,
		log.FieldUserID, userID)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
