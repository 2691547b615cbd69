package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// MetricType selects the transactions shown by a drill-down.
type MetricType string

const (
	MetricExpenses   MetricType = "expenses"
	MetricIncome     MetricType = "income"
	MetricInvestment MetricType = "investment"
	MetricNetFlow    MetricType = "netflow"
)

var metricLabels = map[MetricType]struct{ title, color string }{
	MetricExpenses:   {"Annual Expenses", "red"},
	MetricIncome:     {"Total Income", "green"},
	MetricInvestment: {"Investment Income", "cyan"},
	MetricNetFlow:    {"Net Flow (All Transactions)", "indigo"},
}

// ParseMetricType validates s. It returns core.ErrUnknownMetric for anything
// outside the four drill-down types.
func ParseMetricType(s string) (MetricType, error) {
	m := MetricType(s)
	if _, ok := metricLabels[m]; !ok {
		return "", core.ErrUnknownMetric
	}
	return m, nil
}

// DetailItem is one transaction in a drill-down.
type DetailItem struct {
	Transaction   core.Transaction
	Date          time.Time
	DisplayAmount decimal.Decimal
}

// MonthTotal sums a drill-down's items for one calendar month.
type MonthTotal struct {
	Month int
	Name  string // full month name
	Total decimal.Decimal
	Count int
}

// DetailReport is the drill-down for one metric and year.
type DetailReport struct {
	Metric     MetricType
	Title      string
	ColorClass string
	Year       int
	Items      []DetailItem // newest first
	Monthly    []MonthTotal // calendar order, months with items only
	GrandTotal decimal.Decimal
	Categories []string
}

// include reports whether t belongs in metric's drill-down and the amount
// to display for it. Investment transactions show under both income and
// investment.
func include(tax core.Taxonomy, metric MetricType, t core.Transaction) (decimal.Decimal, bool) {
	kind := tax.Kind(t.CategoryOrDefault())
	switch metric {
	case MetricExpenses:
		if t.Amount.IsNegative() {
			return t.Amount.Abs(), true
		}
	case MetricIncome:
		if kind == core.KindSalary || kind == core.KindInvestment || t.Amount.IsPositive() {
			return t.Amount, true
		}
	case MetricInvestment:
		if kind == core.KindInvestment {
			return t.Amount, true
		}
	case MetricNetFlow:
		return t.Amount, true
	}
	return decimal.Decimal{}, false
}

// Details builds the drill-down for metric over the transactions dated in year.
// Transactions with unparseable dates are skipped.
func Details(tax core.Taxonomy, txs []core.Transaction, metric MetricType, year int) (DetailReport, error) {
	labels, ok := metricLabels[metric]
	if !ok {
		return DetailReport{}, core.ErrUnknownMetric
	}
	report := DetailReport{
		Metric:     metric,
		Title:      labels.title,
		ColorClass: labels.color,
		Year:       year,
	}

	for _, t := range txs {
		d, ok := t.ParsedDate()
		if !ok || d.Year() != year {
			continue
		}
		amount, ok := include(tax, metric, t)
		if !ok {
			continue
		}
		report.Items = append(report.Items, DetailItem{Transaction: t, Date: d, DisplayAmount: amount})
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Date.After(report.Items[j].Date)
	})

	var months [12]MonthTotal
	categories := map[string]struct{}{}
	for _, it := range report.Items {
		m := &months[it.Date.Month()-1]
		m.Total = m.Total.Add(it.DisplayAmount)
		m.Count++
		report.GrandTotal = report.GrandTotal.Add(it.DisplayAmount)
		categories[it.Transaction.CategoryOrDefault()] = struct{}{}
	}
	for i, m := range months {
		if m.Count == 0 {
			continue
		}
		m.Month = i + 1
		m.Name = time.Month(i + 1).String()
		m.Total = core.RoundCents(m.Total)
		report.Monthly = append(report.Monthly, m)
	}
	report.GrandTotal = core.RoundCents(report.GrandTotal)

	report.Categories = make([]string, 0, len(categories))
	for c := range categories {
		report.Categories = append(report.Categories, c)
	}
	sort.Strings(report.Categories)
	return report, nil
}
