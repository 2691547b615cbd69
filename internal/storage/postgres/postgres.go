// Package postgres stores transactions in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id         BIGINT PRIMARY KEY,
    date       TEXT NOT NULL,
    type       TEXT NOT NULL,
    amount     NUMERIC(14, 2) NOT NULL,
    category   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var _ storage.Store = (*Store)(nil)

type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// Open connects to url and creates the table when missing.
func Open(ctx context.Context, url string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Nop()
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) LoadAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, date, type, amount::text, category FROM transactions ORDER BY id`)
	if err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Err: err}
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			tx     core.Transaction
			amount string
		)
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Type, &amount, &tx.Category); err != nil {
			return nil, &core.StorageError{Op: log.OpLoad, Err: err}
		}
		if tx.Amount, err = core.ParseAmount(amount); err != nil {
			s.logger.WarnContext(ctx, "Skipping row with bad amount", log.FieldTxID, tx.ID, log.FieldError, err)
			continue
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Err: err}
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO transactions (id, date, type, amount, category) VALUES ($1, $2, $3, $4::numeric, $5)`,
		tx.ID, tx.Date, tx.Type, core.FormatAmount(tx.Amount), tx.Category)
	if err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: err}
	}
	return nil
}

func (s *Store) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM transactions`).Scan(&id); err != nil {
		return 0, &core.StorageError{Op: log.OpNextID, Err: err}
	}
	return id, nil
}
