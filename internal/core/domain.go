package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage format of Transaction.Date.
const DateLayout = "2006-01-02"

// DisplayLayout is the human-readable date format used by views.
const DisplayLayout = "Jan 02, 2006"

type (
	// Transaction is one stored money movement. It is never mutated once appended.
	Transaction struct {
		ID       int64
		Date     string // raw YYYY-MM-DD as stored; may be malformed
		Type     string // free-text label, display only
		Amount   decimal.Decimal
		Category string
	}

	// Submission is a transaction as entered by the user, before id
	// assignment and sign normalization.
	Submission struct {
		Type     string
		Amount   string
		Date     string
		Category string
	}
)

var (
	ErrMissingFields     = &ValidationError{Reason: "missing required fields"}
	ErrAmountNotNumeric  = &ValidationError{Reason: "amount must be a number"}
	ErrAmountNotPositive = &ValidationError{Reason: "amount must be positive"}

	ErrUnknownMetric = errors.New("unknown metric type")
)

// ValidationError reports a malformed submission. Reason is shown to the user as is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StorageError wraps a failure at the record store boundary.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err is (or wraps) a *StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// ParsedDate parses the stored date. ok is false for malformed dates,
// which callers skip.
func (t Transaction) ParsedDate() (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(t.Date))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// CategoryOrDefault returns the category, or Uncategorized when empty.
func (t Transaction) CategoryOrDefault() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return Uncategorized
}

// Validate checks the required fields and the amount. The date is not
// validated: records with bad dates are stored and skipped at aggregation.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Type) == "" ||
		strings.TrimSpace(s.Amount) == "" ||
		strings.TrimSpace(s.Date) == "" ||
		strings.TrimSpace(s.Category) == "" {
		return ErrMissingFields
	}
	amount, err := ParseAmount(s.Amount)
	if err != nil {
		return ErrAmountNotNumeric
	}
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	return nil
}

// ToTransaction validates the submission and builds the record to store:
// expense categories get a negative amount, and the amount is rounded to cents.
func (s Submission) ToTransaction(tax Taxonomy, id int64) (Transaction, error) {
	if err := s.Validate(); err != nil {
		return Transaction{}, err
	}
	amount, _ := ParseAmount(s.Amount)
	category := strings.TrimSpace(s.Category)
	if tax.ForcesNegative(category) {
		amount = amount.Abs().Neg()
	}
	return Transaction{
		ID:       id,
		Date:     strings.TrimSpace(s.Date),
		Type:     strings.TrimSpace(s.Type),
		Amount:   RoundCents(amount),
		Category: category,
	}, nil
}

// NextID returns max(existing ids)+1, or 1 for an empty set. Ids that
// failed to parse are stored as 0 and ignored. This is a full scan per call;
// it is fine for a personal ledger but does not scale to large stores.
func NextID(txs []Transaction) int64 {
	var maxID int64
	for _, t := range txs {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}
