// Package storage defines the ports every transaction store implements.
// Implementations live in the subpackages.
package storage

import (
	"context"

	"fintrack/internal/core"
)

type (
	// Loader returns every stored transaction in store order.
	Loader interface {
		LoadAll(ctx context.Context) ([]core.Transaction, error)
	}

	// Appender durably adds one transaction. The id is already assigned.
	Appender interface {
		Append(ctx context.Context, tx core.Transaction) error
	}

	// IDAllocator returns one more than the largest stored id, or 1.
	IDAllocator interface {
		NextID(ctx context.Context) (int64, error)
	}

	Store interface {
		Loader
		Appender
		IDAllocator
	}
)
