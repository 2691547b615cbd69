// Package backend builds the configured transaction store.
package backend

import (
	"context"

	"fintrack/internal/storage"
)

type CleanupFunc func() error

// BackendResult is a ready store plus the function that releases it.
// Cleanup is never nil.
type BackendResult struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type BackendType string

const (
	CSVBackend      BackendType = "csv"
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
