package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var headerRow = []any{"ID", "Date", "Type", "Amount", "Category"}

type skippedRow struct {
	row int // 1-based sheet row
	err error
}

func toRow(tx core.Transaction) []any {
	return []any{strconv.FormatInt(tx.ID, 10), tx.Date, tx.Type, core.FormatAmount(tx.Amount), tx.Category}
}

// parseRows converts a values matrix into transactions. A first row whose id
// cell is not numeric is treated as the header. Rows with an unparseable
// amount are returned in skipped.
func parseRows(values [][]any) ([]core.Transaction, []skippedRow) {
	out := []core.Transaction{}
	var skipped []skippedRow
	for i, raw := range values {
		row := toStrings(raw)
		if len(row) == 0 || allBlank(row) {
			continue
		}
		if i == 0 {
			if _, err := strconv.ParseInt(safeGet(row, 0), 10, 64); err != nil {
				continue
			}
		}
		amount, err := core.ParseAmount(safeGet(row, 3))
		if err != nil {
			skipped = append(skipped, skippedRow{row: i + 1, err: fmt.Errorf("amount %q: %w", safeGet(row, 3), err)})
			continue
		}
		id, _ := strconv.ParseInt(safeGet(row, 0), 10, 64)
		out = append(out, core.Transaction{
			ID:       id,
			Date:     safeGet(row, 1),
			Type:     safeGet(row, 2),
			Amount:   amount,
			Category: safeGet(row, 4),
		})
	}
	return out, skipped
}

// toStrings renders cells as text. Numbers typed by hand into the sheet come
// back as float64 and are printed without exponent.
func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			out[i] = decimal.NewFromFloat(x).String()
		case nil:
			out[i] = ""
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func allBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
