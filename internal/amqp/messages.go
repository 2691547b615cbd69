package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// TransactionCreatedMessage announces a transaction that was just stored.
// It carries the full record so consumers never read back from the store.
type TransactionCreatedMessage struct {
	MessageID string    `json:"message_id"`
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"` // fixed two-decimal text
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(tx core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		MessageID: uuid.NewString(),
		ID:        tx.ID,
		Date:      tx.Date,
		Type:      tx.Type,
		Amount:    core.FormatAmount(tx.Amount),
		Category:  tx.Category,
		Timestamp: time.Now().UTC(),
	}
}

// Transaction rebuilds the stored record.
func (m *TransactionCreatedMessage) Transaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(m.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("message %s: amount %q: %w", m.MessageID, m.Amount, err)
	}
	return core.Transaction{ID: m.ID, Date: m.Date, Type: m.Type, Amount: amount, Category: m.Category}, nil
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
