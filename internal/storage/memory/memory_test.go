package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func TestMemoryStoreAppendAndLoad(t *testing.T) {
	s := New(core.Transaction{ID: 4, Date: "2024-01-01", Amount: decimal.NewFromInt(-1), Category: "Grocery"})
	ctx := context.Background()

	id, err := s.NextID(ctx)
	if err != nil || id != 5 {
		t.Fatalf("next id = %d, %v", id, err)
	}
	if err := s.Append(ctx, core.Transaction{ID: id, Date: "2024-01-02", Amount: decimal.NewFromInt(2)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	txs, _ := s.LoadAll(ctx)
	if len(txs) != 2 || txs[1].ID != 5 {
		t.Fatalf("unexpected load: %+v", txs)
	}

	// LoadAll hands out a copy.
	txs[0].Category = "changed"
	again, _ := s.LoadAll(ctx)
	if again[0].Category != "Grocery" {
		t.Fatalf("store mutated through returned slice")
	}
}

func TestMemoryStoreFailAppend(t *testing.T) {
	s := New()
	s.FailAppend = errors.New("disk full")
	err := s.Append(context.Background(), core.Transaction{ID: 1})
	if !core.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("failed append must not store")
	}
}
