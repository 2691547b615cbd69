// Package worker copies stored transactions into a secondary store as they
// are announced over AMQP.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// MirrorWorker appends announced transactions to target, at most once per id.
type MirrorWorker struct {
	target storage.Store
	logger *log.Logger

	mu       sync.Mutex
	mirrored map[int64]struct{}
	primed   bool
}

func NewMirrorWorker(target storage.Store, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &MirrorWorker{
		target:   target,
		logger:   logger.WithComponent(log.ComponentWorker),
		mirrored: map[int64]struct{}{},
	}
}

// prime records the ids already present in target so redelivered messages
// are not written twice.
func (w *MirrorWorker) prime(ctx context.Context) error {
	if w.primed {
		return nil
	}
	existing, err := w.target.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load mirror target: %w", err)
	}
	for _, tx := range existing {
		w.mirrored[tx.ID] = struct{}{}
	}
	w.primed = true
	w.logger.InfoContext(ctx, "Mirror target loaded", log.FieldRecordCount, len(existing))
	return nil
}

// HandleTransactionCreated is the amqp consumer callback.
func (w *MirrorWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	tx, err := msg.Transaction()
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrDrop, err)
	}
	return w.mirror(ctx, tx)
}

func (w *MirrorWorker) mirror(ctx context.Context, tx core.Transaction) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.prime(ctx); err != nil {
		return err
	}
	if _, ok := w.mirrored[tx.ID]; ok && tx.ID != 0 {
		w.logger.DebugContext(ctx, "Transaction already mirrored", log.FieldTxID, tx.ID)
		return nil
	}
	if err := w.target.Append(ctx, tx); err != nil {
		return fmt.Errorf("mirror transaction %d: %w", tx.ID, err)
	}
	w.mirrored[tx.ID] = struct{}{}
	w.logger.InfoContext(ctx, "Transaction mirrored", log.FieldTxID, tx.ID, log.FieldTxDate, tx.Date)
	return nil
}

// StartupSyncCheck copies every transaction of source that target is missing.
// It covers events lost while the worker was down.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context, source storage.Loader) error {
	txs, err := source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	var synced, failed int
	var errs []error
	for _, tx := range txs {
		w.mu.Lock()
		if err := w.prime(ctx); err != nil {
			w.mu.Unlock()
			return err
		}
		_, done := w.mirrored[tx.ID]
		w.mu.Unlock()
		if done || tx.ID == 0 {
			continue
		}
		if err := w.mirror(ctx, tx); err != nil {
			failed++
			errs = append(errs, err)
			continue
		}
		synced++
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "total", len(txs), "synced", synced, "errors", failed)
	return errors.Join(errs...)
}
