package storage

import (
	"context"
	"errors"

	"expensio/internal/core"
)

var (
	// ErrNotFound is returned when a row is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an already-known email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// TransactionUpdate carries the full set of mutable transaction fields.
// Updates always replace all of them; notes defaults to the empty string.
type TransactionUpdate struct {
	Title    string
	Amount   core.Money
	Category string
	Date     core.Date
	Notes    string
}

// Repository is the persistence port. Implementations stamp CreatedAt on
// inserts and perform no schema validation; that happens upstream.
type Repository interface {
	// CreateUser inserts a new user and returns it with CreatedAt stamped.
	CreateUser(ctx context.Context, user core.User) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)

	// CreateTransaction inserts a new transaction and returns it with
	// CreatedAt stamped.
	CreateTransaction(ctx context.Context, txn core.Transaction) (core.Transaction, error)

	// GetTransaction returns the transaction only when owned by userID.
	GetTransaction(ctx context.Context, id, userID string) (core.Transaction, error)

	// UpdateTransaction replaces all mutable fields of an owned transaction
	// and returns the updated row. ErrNotFound when absent or not owned.
	UpdateTransaction(ctx context.Context, id, userID string, upd TransactionUpdate) (core.Transaction, error)

	// DeleteTransaction removes an owned transaction. ErrNotFound when
	// absent or not owned; the store is left untouched in that case.
	DeleteTransaction(ctx context.Context, id, userID string) error

	// ListTransactions returns a user's transactions sorted by date
	// descending then creation time descending. limit <= 0 means no limit.
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]core.Transaction, error)

	// CountTransactions returns the user's total transaction count.
	CountTransactions(ctx context.Context, userID string) (int, error)

	Close() error
}
