// Package analytics turns a flat list of transactions into monthly
// rollups, dashboard metrics and per-metric drill-downs.
//
// Every function here is pure: callers pass the transactions, the category
// taxonomy and the clock, and get freshly computed values back.
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Flow is the bucket a transaction contributes to.
type Flow int

const (
	FlowOtherIncome Flow = iota
	FlowSalaryIncome
	FlowInvestmentIncome
	FlowExpense
)

func (f Flow) String() string {
	switch f {
	case FlowSalaryIncome:
		return "salary_income"
	case FlowInvestmentIncome:
		return "investment_income"
	case FlowExpense:
		return "expense"
	case FlowOtherIncome:
		return "other_income"
	default:
		return fmt.Sprintf("flow(%d)", int(f))
	}
}

// Classification is the result of Classify. Value is always the amount to
// add to the flow's total; for expenses it is the magnitude.
type Classification struct {
	Flow     Flow
	Value    decimal.Decimal
	Category string
}

// Classify maps a category and signed amount to a flow. Salary and
// investment categories win regardless of sign; otherwise a negative amount
// is an expense and anything else is other income.
func Classify(tax core.Taxonomy, category string, amount decimal.Decimal) Classification {
	if category == "" {
		category = core.Uncategorized
	}
	switch tax.Kind(category) {
	case core.KindSalary:
		return Classification{Flow: FlowSalaryIncome, Value: amount, Category: category}
	case core.KindInvestment:
		return Classification{Flow: FlowInvestmentIncome, Value: amount, Category: category}
	}
	if amount.IsNegative() {
		return Classification{Flow: FlowExpense, Value: amount.Abs(), Category: category}
	}
	return Classification{Flow: FlowOtherIncome, Value: amount, Category: category}
}
