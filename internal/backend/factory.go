package backend

import (
	"context"
	"fmt"

	"expensio/internal/events"
	"expensio/internal/log"
	"expensio/internal/services"
	"expensio/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case JSONBackend:
		return f.createJSONBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	publisher, cleanup := f.createPublisher(config, repo)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"events_enabled", publisher != nil)

	return &Result{
		Repository:   repo,
		Transactions: services.NewTransactionService(repo, publisher, f.logger),
		Cleanup:      cleanup,
	}, nil
}

func (f *DefaultFactory) createJSONBackend(config Config) (*Result, error) {
	repo := storage.NewJSONStore(config.JSONStorePath)

	publisher, cleanup := f.createPublisher(config, repo)

	f.logger.Info("Initialized JSON file backend",
		"store_path", config.JSONStorePath,
		"events_enabled", publisher != nil)

	return &Result{
		Repository:   repo,
		Transactions: services.NewTransactionService(repo, publisher, f.logger),
		Cleanup:      cleanup,
	}, nil
}

// createPublisher wires the optional AMQP event publisher. A broker that is
// unreachable at startup downgrades to no events instead of failing boot.
func (f *DefaultFactory) createPublisher(config Config, repo storage.Repository) (services.EventPublisher, CleanupFunc) {
	if config.AMQPURL == "" {
		return nil, repo.Close
	}

	client, err := events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events",
			log.FieldError, err.Error())
		return nil, repo.Close
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	cleanup := func() error {
		if err := client.Close(); err != nil {
			return err
		}
		return repo.Close()
	}
	return client, cleanup
}
