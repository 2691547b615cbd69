package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Metrics holds the dashboard figures for one year. Every value is rounded to cents.
// "Latest month" is the ReferenceMonth of the year.
type Metrics struct {
	AnnualExpenses         decimal.Decimal
	AnnualSalaryIncome     decimal.Decimal // salary and other income
	AnnualInvestmentIncome decimal.Decimal
	AnnualIncome           decimal.Decimal // salary + investment
	NetAnnualFlow          decimal.Decimal

	AvgMonthlyExpense decimal.Decimal
	AvgMonthlyIncome  decimal.Decimal
	AvgWeeklyExpense  decimal.Decimal
	AvgDailyExpense   decimal.Decimal

	// Linear extrapolations of the monthly averages; not seasonally adjusted.
	AnnualExpenseProjection decimal.Decimal
	AnnualIncomeProjection  decimal.Decimal

	LatestMonthExpenses decimal.Decimal
	LatestMonthIncome   decimal.Decimal // salary + other + investment
	NetLatestMonthFlow  decimal.Decimal
}

// Snapshot is everything the dashboard needs for one year.
type Snapshot struct {
	Year           int
	ReferenceMonth int
	PeriodDays     int
	Metrics        Metrics
	Monthly        []MonthSummary
	Categories     []string
	// Transactions dated in Year, plus undated ones, in store order.
	Transactions []core.Transaction
}

// ComputeMetrics aggregates txs for year and derives the dashboard metrics.
// When year is the current year the annual totals only cover elapsed months.
func ComputeMetrics(tax core.Taxonomy, txs []core.Transaction, year int, now time.Time) Snapshot {
	monthly, categories := Aggregate(tax, txs, year, now)
	refMonth := ReferenceMonth(year, now)
	days := PeriodDays(year, now)

	var latest MonthSummary
	latestKey := MonthKey(year, refMonth)
	for _, m := range monthly {
		if m.Month == latestKey {
			latest = m
			break
		}
	}

	var expenses, salary, investment decimal.Decimal
	for _, m := range monthly {
		expenses = expenses.Add(m.Expenses)
		salary = salary.Add(m.Income)
		investment = investment.Add(m.InvestmentIncome)
	}
	income := salary.Add(investment)

	var avgMonthlyExpense, avgMonthlyIncome, avgDailyExpense decimal.Decimal
	if months := int64(len(monthly)); months > 0 {
		avgMonthlyExpense = expenses.Div(decimal.NewFromInt(months))
		avgMonthlyIncome = income.Div(decimal.NewFromInt(months))
	}
	if days > 0 {
		avgDailyExpense = expenses.Div(decimal.NewFromInt(int64(days)))
	}
	twelve := decimal.NewFromInt(12)
	latestIncome := latest.Income.Add(latest.InvestmentIncome)

	return Snapshot{
		Year:           year,
		ReferenceMonth: refMonth,
		PeriodDays:     days,
		Metrics: Metrics{
			AnnualExpenses:          core.RoundCents(expenses),
			AnnualSalaryIncome:      core.RoundCents(salary),
			AnnualInvestmentIncome:  core.RoundCents(investment),
			AnnualIncome:            core.RoundCents(income),
			NetAnnualFlow:           core.RoundCents(income.Sub(expenses)),
			AvgMonthlyExpense:       core.RoundCents(avgMonthlyExpense),
			AvgMonthlyIncome:        core.RoundCents(avgMonthlyIncome),
			AvgWeeklyExpense:        core.RoundCents(avgDailyExpense.Mul(decimal.NewFromInt(7))),
			AvgDailyExpense:         core.RoundCents(avgDailyExpense),
			AnnualExpenseProjection: core.RoundCents(avgMonthlyExpense.Mul(twelve)),
			AnnualIncomeProjection:  core.RoundCents(avgMonthlyIncome.Mul(twelve)),
			LatestMonthExpenses:     latest.Expenses,
			LatestMonthIncome:       core.RoundCents(latestIncome),
			NetLatestMonthFlow:      core.RoundCents(latestIncome.Sub(latest.Expenses)),
		},
		Monthly:      monthly,
		Categories:   categories,
		Transactions: TransactionsForYear(txs, year),
	}
}

// TransactionsForYear keeps the transactions dated in year. Transactions
// whose date does not parse are kept too so they stay visible for fixing.
func TransactionsForYear(txs []core.Transaction, year int) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if d, ok := t.ParsedDate(); ok && d.Year() != year {
			continue
		}
		out = append(out, t)
	}
	return out
}
