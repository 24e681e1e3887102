package backend

import (
	"context"

	"expensio/internal/services"
	"expensio/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the wired storage and service instances for a backend
type Result struct {
	Repository   storage.Repository
	Transactions *services.TransactionService
	Cleanup      CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// JSON file specific
	JSONStorePath string

	// Event publishing (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type represents the kind of storage backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	JSONBackend   Type = "json"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, JSONBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{SQLiteBackend, JSONBackend}
}
