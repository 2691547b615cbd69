// Package sqlite stores transactions in a SQLite database (pure Go driver).
// Amounts are kept as decimal text so no precision is lost.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var _ storage.Store = (*Repository)(nil)

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

// Open creates the parent directory, opens the database and migrates it.
func Open(dbPath string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) LoadAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, date, type, amount, category FROM transactions ORDER BY id`)
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
		tx.Amount, err = core.ParseAmount(amount)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping row with bad amount", log.FieldTxID, tx.ID, log.FieldError, err)
			continue
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Err: err}
	}
	return out, nil
}

func (r *Repository) Append(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, type, amount, category) VALUES (?, ?, ?, ?, ?)`,
		tx.ID, tx.Date, tx.Type, core.FormatAmount(tx.Amount), tx.Category)
	if err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: err}
	}
	r.logger.DebugContext(ctx, "Transaction saved to SQLite", log.FieldTxID, tx.ID)
	return nil
}

func (r *Repository) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM transactions`).Scan(&id); err != nil {
		return 0, &core.StorageError{Op: log.OpNextID, Err: err}
	}
	return id, nil
}
