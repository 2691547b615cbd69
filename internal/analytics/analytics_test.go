package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(date, amount, category string) core.Transaction {
	return core.Transaction{Date: date, Type: "t", Amount: decimal.RequireFromString(amount), Category: category}
}

func eq(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", what, got.StringFixed(2), want)
	}
}

// A fixed clock well after the sample data.
var later = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tax := core.DefaultTaxonomy()
	cases := []struct {
		category string
		amount   string
		flow     Flow
		value    string
	}{
		{"Grocery", "-12.50", FlowExpense, "12.50"},
		{"Refund", "20", FlowOtherIncome, "20"},
		{"Refund", "-20", FlowExpense, "20"},
		{core.SalaryCategory, "3000", FlowSalaryIncome, "3000"},
		{core.SalaryCategory, "-10", FlowSalaryIncome, "-10"},
		{core.InvestmentCategory, "5", FlowInvestmentIncome, "5"},
		{"Something New", "1", FlowOtherIncome, "1"},
		{"", "-3", FlowExpense, "3"},
	}
	for _, tc := range cases {
		c := Classify(tax, tc.category, decimal.RequireFromString(tc.amount))
		if c.Flow != tc.flow {
			t.Fatalf("%q %s: flow=%v want %v", tc.category, tc.amount, c.Flow, tc.flow)
		}
		eq(t, tc.category+" value", c.Value, tc.value)
	}
	if c := Classify(tax, "", decimal.NewFromInt(-1)); c.Category != core.Uncategorized {
		t.Fatalf("blank category should be reported as %q, got %q", core.Uncategorized, c.Category)
	}
}

func TestAggregateJanuary(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-15", "-50.00", "Grocery"),
		tx("2024-01-20", "3000.00", core.SalaryCategory),
	}
	months, cats := Aggregate(core.DefaultTaxonomy(), txs, 2024, later)
	if len(months) != 12 {
		t.Fatalf("past year should report 12 months, got %d", len(months))
	}
	jan := months[0]
	if jan.Month != "2024-01" || jan.Name != "Jan" {
		t.Fatalf("unexpected first month %q/%q", jan.Month, jan.Name)
	}
	eq(t, "expenses", jan.Expenses, "50")
	eq(t, "income", jan.Income, "3000")
	eq(t, "investment", jan.InvestmentIncome, "0")
	eq(t, "net", jan.NetFlow, "2950")
	eq(t, "grocery", jan.ExpensesByCategory["Grocery"], "50")
	if !reflect.DeepEqual(cats, []string{"Grocery"}) {
		t.Fatalf("categories = %v", cats)
	}
	for _, m := range months[1:] {
		if !m.Expenses.IsZero() || !m.Income.IsZero() || len(m.ExpensesByCategory) != 0 {
			t.Fatalf("month %s should be empty: %+v", m.Month, m)
		}
	}
}

func TestAggregateCurrentYearTruncates(t *testing.T) {
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("2024-02-01", "-10", "Grocery"),
		tx("2024-07-01", "-99", "Restaurant"),
	}
	months, cats := Aggregate(core.DefaultTaxonomy(), txs, 2024, now)
	if len(months) != 3 || months[2].Month != "2024-03" {
		t.Fatalf("expected Jan..Mar, got %d months", len(months))
	}
	// The July expense is outside the reported months but its category still counts as seen.
	if !reflect.DeepEqual(cats, []string{"Grocery", "Restaurant"}) {
		t.Fatalf("categories = %v", cats)
	}
}

func TestAggregateJanuaryReportsOneMonth(t *testing.T) {
	now := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("2024-01-02", "-8", "Grocery"),
		tx("2024-02-01", "-99", "Restaurant"),
	}
	months, _ := Aggregate(core.DefaultTaxonomy(), txs, 2024, now)
	if len(months) != 1 || months[0].Month != "2024-01" {
		t.Fatalf("expected only Jan, got %+v", months)
	}
	eq(t, "expenses", months[0].Expenses, "8")
}

func TestAggregateIdentities(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-05-01", "-10.10", "Grocery"),
		tx("2023-05-02", "-0.333", "Restaurant"),
		tx("2023-05-03", "-0.333", "Restaurant"),
		tx("2023-05-04", "7.25", "Refund"),
		tx("2023-05-05", "12.40", core.InvestmentCategory),
		tx("2023-05-06", "2000", core.SalaryCategory),
		tx("2023-05-07", "-5", ""),
		tx("bad-date", "-1000", "Grocery"),
		tx("2022-05-01", "-1000", "Grocery"),
	}
	months, cats := Aggregate(core.DefaultTaxonomy(), txs, 2023, later)
	may := months[4]
	eq(t, "expenses", may.Expenses, "15.77")
	eq(t, "restaurant", may.ExpensesByCategory["Restaurant"], "0.67")
	eq(t, "uncategorized", may.ExpensesByCategory[core.Uncategorized], "5")
	eq(t, "income", may.Income, "2007.25")
	eq(t, "investment", may.InvestmentIncome, "12.40")

	for _, m := range months {
		net := m.Income.Add(m.InvestmentIncome).Sub(m.Expenses)
		if d := net.Sub(m.NetFlow).Abs(); d.GreaterThan(decimal.RequireFromString("0.01")) {
			t.Fatalf("%s net flow %s drifts from %s", m.Month, m.NetFlow, net)
		}
		sum := decimal.Zero
		for _, v := range m.ExpensesByCategory {
			sum = sum.Add(v)
		}
		if d := sum.Sub(m.Expenses).Abs(); d.GreaterThan(decimal.RequireFromString("0.01")) {
			t.Fatalf("%s categories sum %s, expenses %s", m.Month, sum, m.Expenses)
		}
	}
	if !reflect.DeepEqual(cats, []string{"Grocery", "Restaurant", core.Uncategorized}) {
		t.Fatalf("categories = %v", cats)
	}
}

func TestAvailableYears(t *testing.T) {
	txs := []core.Transaction{
		tx("2021-01-01", "1", "x"),
		tx("2023-01-01", "1", "x"),
		tx("2021-06-01", "1", "x"),
		tx("garbage", "1", "x"),
	}
	got := AvailableYears(txs, later)
	if !reflect.DeepEqual(got, []int{2025, 2023, 2021}) {
		t.Fatalf("years = %v", got)
	}
	if got := AvailableYears(nil, later); !reflect.DeepEqual(got, []int{2025}) {
		t.Fatalf("empty store years = %v", got)
	}
}

func TestReferenceMonthAndPeriodDays(t *testing.T) {
	cases := []struct {
		year  int
		month int
		days  int
	}{
		{2024, 12, 365},
		{2025, 6, later.YearDay()},
		{2026, 6, 0},
	}
	for _, tc := range cases {
		if got := ReferenceMonth(tc.year, later); got != tc.month {
			t.Fatalf("ReferenceMonth(%d) = %d, want %d", tc.year, got, tc.month)
		}
		if got := PeriodDays(tc.year, later); got != tc.days {
			t.Fatalf("PeriodDays(%d) = %d, want %d", tc.year, got, tc.days)
		}
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	s := ComputeMetrics(core.DefaultTaxonomy(), nil, 2025, later)
	if len(s.Monthly) != 6 {
		t.Fatalf("expected 6 months, got %d", len(s.Monthly))
	}
	m := s.Metrics
	for name, v := range map[string]decimal.Decimal{
		"annual expenses": m.AnnualExpenses,
		"annual income":   m.AnnualIncome,
		"net":             m.NetAnnualFlow,
		"avg daily":       m.AvgDailyExpense,
		"avg weekly":      m.AvgWeeklyExpense,
		"latest":          m.LatestMonthExpenses,
		"projection":      m.AnnualIncomeProjection,
	} {
		if !v.IsZero() {
			t.Fatalf("%s should be zero, got %s", name, v)
		}
	}
	if len(s.Categories) != 0 || len(s.Transactions) != 0 {
		t.Fatalf("expected no categories or transactions")
	}
}

func TestComputeMetricsPastYear(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-15", "-365.00", "Grocery"),
		tx("2024-01-20", "3000.00", core.SalaryCategory),
		tx("2024-12-01", "-120", "Petrol"),
		tx("2024-12-02", "60", core.InvestmentCategory),
		tx("2025-01-01", "-1", "Grocery"),
		tx("not-a-date", "-1", "Grocery"),
	}
	s := ComputeMetrics(core.DefaultTaxonomy(), txs, 2024, later)
	if s.ReferenceMonth != 12 || s.PeriodDays != 365 || len(s.Monthly) != 12 {
		t.Fatalf("unexpected scope: ref=%d days=%d months=%d", s.ReferenceMonth, s.PeriodDays, len(s.Monthly))
	}
	m := s.Metrics
	eq(t, "annual expenses", m.AnnualExpenses, "485")
	eq(t, "salary", m.AnnualSalaryIncome, "3000")
	eq(t, "investment", m.AnnualInvestmentIncome, "60")
	eq(t, "income", m.AnnualIncome, "3060")
	eq(t, "net", m.NetAnnualFlow, "2575")
	eq(t, "avg monthly expense", m.AvgMonthlyExpense, "40.42")
	eq(t, "avg monthly income", m.AvgMonthlyIncome, "255")
	eq(t, "avg daily", m.AvgDailyExpense, "1.33")
	eq(t, "avg weekly", m.AvgWeeklyExpense, "9.30")
	eq(t, "expense projection", m.AnnualExpenseProjection, "485")
	eq(t, "income projection", m.AnnualIncomeProjection, "3060")
	eq(t, "latest expenses", m.LatestMonthExpenses, "120")
	eq(t, "latest income", m.LatestMonthIncome, "60")
	eq(t, "latest net", m.NetLatestMonthFlow, "-60")

	// 2024 rows plus the undated one.
	if len(s.Transactions) != 5 {
		t.Fatalf("expected 5 transactions for the year, got %d", len(s.Transactions))
	}
}

func TestComputeMetricsCurrentYear(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("2024-01-10", "-61", "Grocery"),
		tx("2024-03-01", "-9", "Grocery"),
		tx("2024-03-01", "100", "Refund"),
	}
	s := ComputeMetrics(core.DefaultTaxonomy(), txs, 2024, now)
	if s.PeriodDays != 61 || s.ReferenceMonth != 3 {
		t.Fatalf("days=%d ref=%d", s.PeriodDays, s.ReferenceMonth)
	}
	m := s.Metrics
	eq(t, "annual expenses", m.AnnualExpenses, "70")
	eq(t, "avg daily", m.AvgDailyExpense, "1.15")
	eq(t, "avg monthly", m.AvgMonthlyExpense, "23.33")
	eq(t, "latest expenses", m.LatestMonthExpenses, "9")
	eq(t, "latest income", m.LatestMonthIncome, "100")
	eq(t, "latest net", m.NetLatestMonthFlow, "91")
}

func TestDetails(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-15", "-50", "Grocery"),
		tx("2024-03-02", "-20", ""),
		tx("2024-03-01", "3000", core.SalaryCategory),
		tx("2024-03-05", "12.5", core.InvestmentCategory),
		tx("2024-02-10", "15", "Refund"),
		tx("2023-12-31", "-5", "Grocery"),
		tx("nope", "-5", "Grocery"),
	}
	tax := core.DefaultTaxonomy()

	r, err := Details(tax, txs, MetricExpenses, 2024)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if r.Title != "Annual Expenses" || r.ColorClass != "red" {
		t.Fatalf("labels: %q %q", r.Title, r.ColorClass)
	}
	if len(r.Items) != 2 || r.Items[0].Transaction.Date != "2024-03-02" {
		t.Fatalf("expected 2 expense items newest first, got %+v", r.Items)
	}
	eq(t, "display amount", r.Items[0].DisplayAmount, "20")
	eq(t, "grand total", r.GrandTotal, "70")
	if len(r.Monthly) != 2 || r.Monthly[0].Name != "January" || r.Monthly[1].Month != 3 || r.Monthly[1].Count != 1 {
		t.Fatalf("monthly = %+v", r.Monthly)
	}
	if !reflect.DeepEqual(r.Categories, []string{"Grocery", core.Uncategorized}) {
		t.Fatalf("categories = %v", r.Categories)
	}

	r, _ = Details(tax, txs, MetricIncome, 2024)
	if len(r.Items) != 3 {
		t.Fatalf("income items = %d", len(r.Items))
	}
	eq(t, "income total", r.GrandTotal, "3027.5")

	r, _ = Details(tax, txs, MetricInvestment, 2024)
	if len(r.Items) != 1 || r.ColorClass != "cyan" {
		t.Fatalf("investment report = %+v", r)
	}

	r, _ = Details(tax, txs, MetricNetFlow, 2024)
	if len(r.Items) != 5 {
		t.Fatalf("netflow items = %d", len(r.Items))
	}
	eq(t, "netflow total", r.GrandTotal, "2957.5")

	if _, err := Details(tax, txs, MetricType("bogus"), 2024); err != core.ErrUnknownMetric {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
	if _, err := ParseMetricType("netflow"); err != nil {
		t.Fatalf("parse netflow: %v", err)
	}
}

func TestDetailsStableOrderForSameDate(t *testing.T) {
	txs := []core.Transaction{
		{ID: 1, Date: "2024-05-01", Amount: decimal.NewFromInt(-1), Category: "Grocery"},
		{ID: 2, Date: "2024-05-01", Amount: decimal.NewFromInt(-2), Category: "Grocery"},
	}
	r, _ := Details(core.DefaultTaxonomy(), txs, MetricExpenses, 2024)
	if r.Items[0].Transaction.ID != 1 || r.Items[1].Transaction.ID != 2 {
		t.Fatalf("same-day items should keep store order")
	}
}
