package services

import (
	"context"
	"fmt"

	"expensio/internal/core"
	"expensio/internal/events"
	"expensio/internal/log"
	"expensio/internal/storage"
)

// EventPublisher emits transaction mutation events. Publishing is best-effort:
// a failed publish never fails the request that triggered it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, action, transactionID, userID string) error
}

// TransactionService orchestrates transaction operations across storage and
// the optional event publisher.
type TransactionService struct {
	repo      storage.Repository
	publisher EventPublisher
	logger    *log.Logger
}

func NewTransactionService(repo storage.Repository, publisher EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

// Create validates and stores a new transaction owned by userID.
func (s *TransactionService) Create(ctx context.Context, userID string, txn core.Transaction) (core.Transaction, error) {
	txn.ID = core.NewID("txn")
	txn.UserID = userID

	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.repo.CreateTransaction(ctx, txn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldTransactionID, created.ID,
		log.FieldUserID, userID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldCategory, created.Category)

	s.publish(ctx, events.ActionCreated, created.ID, userID)
	return created, nil
}

// Get returns the transaction with the given ID if userID owns it.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id, userID)
}

// Update applies the given changes to a transaction owned by userID.
func (s *TransactionService) Update(ctx context.Context, userID, id string, upd storage.TransactionUpdate) (core.Transaction, error) {
	probe := core.Transaction{
		ID:       id,
		UserID:   userID,
		Title:    upd.Title,
		Amount:   upd.Amount,
		Category: upd.Category,
		Date:     upd.Date,
		Notes:    upd.Notes,
	}
	if err := probe.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.repo.UpdateTransaction(ctx, id, userID, upd)
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldTransactionID, id,
		log.FieldUserID, userID)

	s.publish(ctx, events.ActionUpdated, id, userID)
	return updated, nil
}

// Delete removes a transaction owned by userID.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteTransaction(ctx, id, userID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldTransactionID, id,
		log.FieldUserID, userID)

	s.publish(ctx, events.ActionDeleted, id, userID)
	return nil
}

// List returns one page of userID's transactions plus the total count.
func (s *TransactionService) List(ctx context.Context, userID string, limit, offset int) ([]core.Transaction, int, error) {
	txns, err := s.repo.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	total, err := s.repo.CountTransactions(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	return txns, total, nil
}

// ListAll returns every transaction userID owns, newest first.
func (s *TransactionService) ListAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	txns, err := s.repo.ListTransactions(ctx, userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (s *TransactionService) publish(ctx context.Context, action, transactionID, userID string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishTransactionEvent(ctx, action, transactionID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldError, err.Error(),
			log.FieldTransactionID, transactionID)
		// Don't fail the request - the transaction is stored locally
	}
}
