// Package csvfile stores transactions as rows of a CSV file with the header
// id,date,type,amount,category.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Header is the column order written by this store.
var Header = []string{"id", "date", "type", "amount", "category"}

var _ storage.Store = (*Store)(nil)

type Store struct {
	path   string
	mu     sync.Mutex
	logger *log.Logger
}

func New(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Nop()
	}
	return &Store{path: path, logger: logger.WithComponent(log.ComponentStorage)}
}

func (s *Store) Path() string { return s.path }

// Init creates the file with only the header if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &core.StorageError{Op: log.OpInit, Err: err}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &core.StorageError{Op: log.OpInit, Err: fmt.Errorf("create directory: %w", err)}
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return &core.StorageError{Op: log.OpInit, Err: err}
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return &core.StorageError{Op: log.OpInit, Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &core.StorageError{Op: log.OpInit, Err: err}
	}
	s.logger.InfoContext(ctx, "Created transaction file", "path", s.path)
	return nil
}

// LoadAll reads every row. A missing file is an empty store. Rows whose
// amount does not parse are skipped and logged; a non-integer id loads as 0.
func (s *Store) LoadAll(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) ([]core.Transaction, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Err: fmt.Errorf("read header: %w", err)}
	}
	cols := columnIndex(header)

	out := []core.Transaction{}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			s.logger.WarnContext(ctx, "Skipping unparseable row", "path", s.path, "line", pe.StartLine, log.FieldError, err)
			continue
		}
		if err != nil {
			return nil, &core.StorageError{Op: log.OpLoad, Err: fmt.Errorf("line %d: %w", line, err)}
		}
		if blank(rec) {
			continue
		}
		tx, err := parseRecord(rec, cols)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping malformed row", "path", s.path, "line", line, log.FieldError, err)
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// Append writes tx as one row. The header is written first when the file is
// empty, and a missing trailing newline is repaired so rows never merge.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &core.StorageError{Op: log.OpAppend, Err: err}
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: err}
	}

	var buf bytes.Buffer
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return &core.StorageError{Op: log.OpAppend, Err: err}
		}
		if last[0] != '\n' {
			buf.WriteByte('\n')
		}
	}
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = w.Write(Header)
	}
	_ = w.Write(Record(tx))
	w.Flush()
	if err := w.Error(); err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: err}
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: err}
	}
	if err := f.Sync(); err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: err}
	}
	s.logger.DebugContext(ctx, "Appended transaction", log.FieldTxID, tx.ID, "path", s.path)
	return nil
}

// NextID scans the whole file.
func (s *Store) NextID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return core.NextID(txs), nil
}

// Record renders tx in Header order.
func Record(tx core.Transaction) []string {
	return []string{
		strconv.FormatInt(tx.ID, 10),
		tx.Date,
		tx.Type,
		core.FormatAmount(tx.Amount),
		tx.Category,
	}
}

type columns struct{ id, date, typ, amount, category int }

// columnIndex maps header names to positions, falling back to the default
// order for columns the header does not name.
func columnIndex(header []string) columns {
	c := columns{0, 1, 2, 3, 4}
	found := map[string]int{}
	for i, h := range header {
		found[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if i, ok := found["id"]; ok {
		c.id = i
	}
	if i, ok := found["date"]; ok {
		c.date = i
	}
	if i, ok := found["type"]; ok {
		c.typ = i
	}
	if i, ok := found["amount"]; ok {
		c.amount = i
	}
	if i, ok := found["category"]; ok {
		c.category = i
	}
	return c
}

func parseRecord(rec []string, c columns) (core.Transaction, error) {
	amount, err := core.ParseAmount(field(rec, c.amount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", field(rec, c.amount), err)
	}
	id, _ := strconv.ParseInt(field(rec, c.id), 10, 64)
	return core.Transaction{
		ID:       id,
		Date:     field(rec, c.date),
		Type:     field(rec, c.typ),
		Amount:   amount,
		Category: field(rec, c.category),
	}, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
