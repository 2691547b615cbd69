package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"

	"fintrack/internal/core"
)

func TestParseRows(t *testing.T) {
	values := [][]any{
		{"ID", "Date", "Type", "Amount", "Category"},
		{"1", "2024-01-15", "Shop", "-50.00", "Grocery"},
		{float64(2), "2024-01-20", "Pay", float64(3000.5), "Monthly Salary/General"},
		{},
		{"3", "2024-01-21", "Oops", "n/a", "Grocery"},
		{"x", "2024-01-22", "Odd id", "1,25"},
	}
	txs, skipped := parseRows(values)
	if len(txs) != 3 {
		t.Fatalf("expected 3 rows, got %+v", txs)
	}
	if txs[0].ID != 1 || !txs[0].Amount.Equal(decimal.RequireFromString("-50")) {
		t.Fatalf("row 1: %+v", txs[0])
	}
	if txs[1].ID != 2 || !txs[1].Amount.Equal(decimal.RequireFromString("3000.5")) {
		t.Fatalf("numeric cells: %+v", txs[1])
	}
	if txs[2].ID != 0 || txs[2].Category != "" || !txs[2].Amount.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("short row: %+v", txs[2])
	}
	if len(skipped) != 1 || skipped[0].row != 5 {
		t.Fatalf("skipped = %+v", skipped)
	}
}

func TestParseRowsWithoutHeader(t *testing.T) {
	txs, _ := parseRows([][]any{{"9", "2024-01-01", "t", "1", "Refund"}})
	if len(txs) != 1 || txs[0].ID != 9 {
		t.Fatalf("first data row must not be treated as header: %+v", txs)
	}
}

// fakeSheets serves the two Values endpoints the client uses.
type fakeSheets struct {
	mu   sync.Mutex
	rows [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Transactions!A:E", "values": f.rows})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, body.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{"updates": map[string]any{"updatedRange": "Transactions!A2:E2"}})
	case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/values/"):
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.rows = append(body.Values, f.rows...)
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": "Transactions!A1:E1"})
	default:
		http.NotFound(w, r)
	}
}

func TestClientAgainstFakeAPI(t *testing.T) {
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	c, err := New(ctx, Config{SpreadsheetID: "sheet-1"}, nil,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(fake.rows) != 1 {
		t.Fatalf("header not written: %v", fake.rows)
	}

	id, err := c.NextID(ctx)
	if err != nil || id != 1 {
		t.Fatalf("next id = %d, %v", id, err)
	}
	tx := core.Transaction{ID: 1, Date: "2024-01-15", Type: "Shop", Amount: decimal.RequireFromString("-50"), Category: "Grocery"}
	if err := c.Append(ctx, tx); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := fake.rows[1]; got[3] != "-50.00" {
		t.Fatalf("amount should be written as fixed text, got %v", got)
	}

	txs, err := c.LoadAll(ctx)
	if err != nil || len(txs) != 1 || txs[0].Category != "Grocery" {
		t.Fatalf("load: %+v %v", txs, err)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
