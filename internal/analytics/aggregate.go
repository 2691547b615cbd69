package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var shortMonths = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthSummary is one month of a year, rounded to cents.
type MonthSummary struct {
	Month              string // YYYY-MM
	Name               string // short month name
	Expenses           decimal.Decimal
	Income             decimal.Decimal
	InvestmentIncome   decimal.Decimal
	NetFlow            decimal.Decimal
	ExpensesByCategory map[string]decimal.Decimal
}

type bucket struct {
	expenses   decimal.Decimal
	income     decimal.Decimal
	investment decimal.Decimal
	byCategory map[string]decimal.Decimal
}

// MonthKey formats the bucket key for year and month (1-12).
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Aggregate folds the transactions dated in year into monthly summaries.
// The current year is cut after now's month; other years report all twelve
// months even when empty. Accumulation is exact and rounding happens once,
// on emission. The second result lists, sorted, every category that received
// at least one expense attribution in year.
func Aggregate(tax core.Taxonomy, txs []core.Transaction, year int, now time.Time) ([]MonthSummary, []string) {
	var buckets [12]bucket
	for i := range buckets {
		buckets[i].byCategory = map[string]decimal.Decimal{}
	}
	seen := map[string]struct{}{}

	for _, t := range txs {
		d, ok := t.ParsedDate()
		if !ok || d.Year() != year {
			continue
		}
		b := &buckets[d.Month()-1]
		c := Classify(tax, t.CategoryOrDefault(), t.Amount)
		switch c.Flow {
		case FlowSalaryIncome, FlowOtherIncome:
			b.income = b.income.Add(c.Value)
		case FlowInvestmentIncome:
			b.investment = b.investment.Add(c.Value)
		case FlowExpense:
			b.expenses = b.expenses.Add(c.Value)
			b.byCategory[c.Category] = b.byCategory[c.Category].Add(c.Value)
			seen[c.Category] = struct{}{}
		}
	}

	n := monthsInScope(year, now)
	out := make([]MonthSummary, 0, n)
	for i := 0; i < n; i++ {
		b := buckets[i]
		byCat := make(map[string]decimal.Decimal, len(b.byCategory))
		for k, v := range b.byCategory {
			byCat[k] = core.RoundCents(v)
		}
		out = append(out, MonthSummary{
			Month:              MonthKey(year, i+1),
			Name:               shortMonths[i],
			Expenses:           core.RoundCents(b.expenses),
			Income:             core.RoundCents(b.income),
			InvestmentIncome:   core.RoundCents(b.investment),
			NetFlow:            core.RoundCents(b.income.Add(b.investment).Sub(b.expenses)),
			ExpensesByCategory: byCat,
		})
	}

	categories := make([]string, 0, len(seen))
	for k := range seen {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	return out, categories
}
