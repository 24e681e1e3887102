// Package worker contains background consumers for the transaction
// event stream.
package worker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"expensio/internal/events"
	"expensio/internal/log"
)

// AuditWriter appends transaction events to an append-only audit log,
// one JSON record per line.
type AuditWriter struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger

	processed int64
}

func NewAuditWriter(path string, logger *log.Logger) *AuditWriter {
	return &AuditWriter{
		path:   path,
		logger: logger,
	}
}

// HandleEvent records a single transaction event. It is safe for
// concurrent use and fsyncs each record so a crash never loses an
// acknowledged event.
func (w *AuditWriter) HandleEvent(msg *events.TransactionEventMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("create audit directory: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync audit log: %w", err)
	}

	w.processed++
	if w.logger != nil {
		w.logger.Info("Recorded transaction event",
			"action", msg.Action,
			"transaction_id", msg.TransactionID,
			"user_id", msg.UserID)
	}

	return nil
}

// Processed returns the number of events recorded so far.
func (w *AuditWriter) Processed() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processed
}
