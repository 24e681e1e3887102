package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"expensio/internal/core"
)

// JSONStore keeps the whole dataset in a single JSON document with top-level
// "users" and "transactions" arrays. The document is loaded lazily on first
// access (an absent or unparsable file yields empty collections) and rewritten
// in full, synchronously, after every mutation. There is no write-ahead log
// and no atomic rename; a crash mid-write can corrupt the file.
//
// All access is serialized behind a single mutex, so concurrent requests see
// the same one-at-a-time behavior the original single-threaded runtime gave.
type JSONStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	doc    jsonDocument
}

type jsonDocument struct {
	Users        []userRecord        `json:"users"`
	Transactions []transactionRecord `json:"transactions"`
}

// Record shapes mirror the on-disk document layout.
type userRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

type transactionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Close() error { return nil }

// ensure loads the document on first use.
func (s *JSONStore) ensure() {
	if s.loaded {
		return
	}
	s.loaded = true
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var doc jsonDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Unparsable file: start from empty collections.
		return
	}
	s.doc = doc
}

// persist writes the whole document back to disk immediately.
func (s *JSONStore) persist() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func (s *JSONStore) CreateUser(_ context.Context, user core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	for _, u := range s.doc.Users {
		if u.Email == user.Email {
			return core.User{}, ErrDuplicateEmail
		}
	}
	user.CreatedAt = time.Now().UTC()
	s.doc.Users = append(s.doc.Users, userRecord{
		ID:        user.ID,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	})
	if err := s.persist(); err != nil {
		return core.User{}, err
	}
	return user, nil
}

func (s *JSONStore) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	for _, u := range s.doc.Users {
		if u.Email == email {
			return userFromRecord(u), nil
		}
	}
	return core.User{}, ErrNotFound
}

func (s *JSONStore) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	for _, u := range s.doc.Users {
		if u.ID == id {
			return userFromRecord(u), nil
		}
	}
	return core.User{}, ErrNotFound
}

func (s *JSONStore) CreateTransaction(_ context.Context, txn core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	txn.CreatedAt = time.Now().UTC()
	s.doc.Transactions = append(s.doc.Transactions, recordFromTransaction(txn))
	if err := s.persist(); err != nil {
		return core.Transaction{}, err
	}
	return txn, nil
}

func (s *JSONStore) GetTransaction(_ context.Context, id, userID string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	for _, rec := range s.doc.Transactions {
		if rec.ID == id && rec.UserID == userID {
			return transactionFromRecord(rec), nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

func (s *JSONStore) UpdateTransaction(_ context.Context, id, userID string, upd TransactionUpdate) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	for i := range s.doc.Transactions {
		rec := &s.doc.Transactions[i]
		if rec.ID != id || rec.UserID != userID {
			continue
		}
		rec.Title = upd.Title
		rec.Amount = upd.Amount.Float()
		rec.Category = upd.Category
		rec.Date = upd.Date.String()
		rec.Notes = upd.Notes
		if err := s.persist(); err != nil {
			return core.Transaction{}, err
		}
		return transactionFromRecord(*rec), nil
	}
	return core.Transaction{}, ErrNotFound
}

func (s *JSONStore) DeleteTransaction(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	for i, rec := range s.doc.Transactions {
		if rec.ID == id && rec.UserID == userID {
			s.doc.Transactions = append(s.doc.Transactions[:i], s.doc.Transactions[i+1:]...)
			return s.persist()
		}
	}
	return ErrNotFound
}

func (s *JSONStore) ListTransactions(_ context.Context, userID string, limit, offset int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	list := []core.Transaction{}
	for _, rec := range s.doc.Transactions {
		if rec.UserID == userID {
			list = append(list, transactionFromRecord(rec))
		}
	}
	core.SortByDateDesc(list)

	if offset < 0 {
		offset = 0
	}
	if offset > len(list) {
		offset = len(list)
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (s *JSONStore) CountTransactions(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	total := 0
	for _, rec := range s.doc.Transactions {
		if rec.UserID == userID {
			total++
		}
	}
	return total, nil
}

func userFromRecord(rec userRecord) core.User {
	return core.User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.Password,
		CreatedAt:    rec.CreatedAt,
	}
}

func recordFromTransaction(txn core.Transaction) transactionRecord {
	return transactionRecord{
		ID:        txn.ID,
		UserID:    txn.UserID,
		Title:     txn.Title,
		Amount:    txn.Amount.Float(),
		Category:  txn.Category,
		Date:      txn.Date.String(),
		Notes:     txn.Notes,
		CreatedAt: txn.CreatedAt,
	}
}

func transactionFromRecord(rec transactionRecord) core.Transaction {
	date, err := core.ParseDate(rec.Date)
	if err != nil {
		date = core.Date{}
	}
	return core.Transaction{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Title:     rec.Title,
		Amount:    core.MoneyFromFloat(rec.Amount),
		Category:  rec.Category,
		Date:      date,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
	}
}
