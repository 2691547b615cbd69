// Package services holds the use cases behind the HTTP handlers: recording
// a submitted transaction and computing the dashboard views.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Publisher announces stored transactions. A failing publisher never fails a
// submission.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, tx core.Transaction) error
}

// TransactionService validates submissions and appends them to the store.
type TransactionService struct {
	store     storage.Store
	publisher Publisher
	tax       core.Taxonomy
	logger    *log.Logger
	events    *log.StructuredLogger

	// Serializes NextID+Append so two submissions in this process never
	// receive the same id. Other processes writing the store are not covered.
	mu sync.Mutex
}

func NewTransactionService(store storage.Store, tax core.Taxonomy, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentSubmit)
	return &TransactionService{
		store:  store,
		tax:    tax,
		logger: logger,
		events: log.NewStructuredLogger(logger),
	}
}

// WithPublisher enables transaction events. A nil publisher disables them.
func (s *TransactionService) WithPublisher(p Publisher) *TransactionService {
	s.publisher = p
	return s
}

// Submit validates sub, assigns the next id, normalizes the sign and appends
// it. Validation failures are *core.ValidationError; store failures are
// *core.StorageError.
func (s *TransactionService) Submit(ctx context.Context, sub core.Submission) (core.Transaction, error) {
	if err := sub.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.append(ctx, sub)
	if err != nil {
		s.events.LogError(ctx, "Failed to record transaction", err, log.ComponentSubmit, log.OpAppend,
			log.NewFields().WithTransaction(0, sub.Date, sub.Type, sub.Amount, sub.Category))
		return core.Transaction{}, err
	}
	s.events.LogTransactionCreated(ctx, tx.ID, tx.Date, tx.Type, core.FormatAmount(tx.Amount), tx.Category)

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, tx); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish transaction event", log.FieldTxID, tx.ID, log.FieldError, err)
		}
	}
	return tx, nil
}

func (s *TransactionService) append(ctx context.Context, sub core.Submission) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.NextID(ctx)
	if err != nil {
		return core.Transaction{}, asStorage(log.OpNextID, err)
	}
	tx, err := sub.ToTransaction(s.tax, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Append(ctx, tx); err != nil {
		return core.Transaction{}, asStorage(log.OpAppend, err)
	}
	return tx, nil
}

func asStorage(op string, err error) error {
	var se *core.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &core.StorageError{Op: op, Err: err}
}

// Close releases the publisher when it holds a connection. The store is
// owned by whoever created it.
func (s *TransactionService) Close() error {
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
	}
	return nil
}
