package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write encodes the body and sends the response. An encoding failure is
// reported as a 500 before anything is written.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	var buf bytes.Buffer
	if b.body != nil {
		if err := json.NewEncoder(&buf).Encode(b.body); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(buf.Bytes())
}

// ErrorResponse builds the {"error": message} body used by every failure.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

func writeError(w http.ResponseWriter, status int, message string) {
	ErrorResponse(status, message).Write(w)
}

// amount is a decimal rendered as a JSON number with two fraction digits.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(core.FormatAmount(core.RoundCents(decimal.Decimal(a)))), nil
}

type namedMetric struct {
	name  string
	value decimal.Decimal
}

// metricsView is a JSON object that keeps its keys in display order.
type metricsView []namedMetric

func (m metricsView) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, nm := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(nm.name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(core.FormatAmount(core.RoundCents(nm.value)))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func newMetricsView(m analytics.Metrics) metricsView {
	return metricsView{
		{"Total Annual Expenses", m.AnnualExpenses},
		{"Total Week Expenses", m.AvgWeeklyExpense},
		{"Total Day Expenses", m.AvgDailyExpense},
		{"Annual Income YTD", m.AnnualIncome},
		{"Annual Income Projection", m.AnnualIncomeProjection},
		{"Net Annual Flow", m.NetAnnualFlow},
		{"Total Monthly Expenses", m.LatestMonthExpenses},
		{"Monthly Income Actual", m.LatestMonthIncome},
		{"Net Monthly Flow", m.NetLatestMonthFlow},
		{"Average Monthly Expenses", m.AvgMonthlyExpense},
		{"Average Monthly Income", m.AvgMonthlyIncome},
		{"Annual Expense Projection", m.AnnualExpenseProjection},
	}
}

type transactionView struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Amount      amount `json:"amount"`
	Category    string `json:"category"`
	DateDisplay string `json:"date_display"`
}

func newTransactionView(t core.Transaction) transactionView {
	display := t.Date
	if d, ok := t.ParsedDate(); ok {
		display = d.Format(core.DisplayLayout)
	}
	return transactionView{
		ID:          t.ID,
		Date:        t.Date,
		Type:        t.Type,
		Amount:      amount(t.Amount),
		Category:    t.Category,
		DateDisplay: display,
	}
}

type monthView struct {
	Month              string            `json:"month"`
	Name               string            `json:"name"`
	Expenses           amount            `json:"expenses"`
	Income             amount            `json:"income"`
	InvestmentIncome   amount            `json:"investmentIncome"`
	NetFlow            amount            `json:"netFlow"`
	ExpensesByCategory map[string]amount `json:"expensesByCategory"`
}

type dataView struct {
	Metrics            metricsView       `json:"metrics"`
	Transactions       []transactionView `json:"transactions"`
	MonthlyData        []monthView       `json:"monthly_data"`
	ExpenseCategories  []string          `json:"expense_categories"`
	CategoriesWithData []string          `json:"categories_with_data"`
	SelectedYear       int               `json:"selected_year"`
	AvailableYears     []int             `json:"available_years"`
}

func newDataView(d services.Dashboard) dataView {
	v := dataView{
		Metrics:            newMetricsView(d.Metrics),
		Transactions:       make([]transactionView, 0, len(d.Transactions)),
		MonthlyData:        make([]monthView, 0, len(d.Monthly)),
		ExpenseCategories:  nonNil(d.ExpenseCategories),
		CategoriesWithData: nonNil(d.Categories),
		SelectedYear:       d.SelectedYear,
		AvailableYears:     d.AvailableYears,
	}
	for _, t := range d.Transactions {
		v.Transactions = append(v.Transactions, newTransactionView(t))
	}
	for _, m := range d.Monthly {
		byCat := make(map[string]amount, len(m.ExpensesByCategory))
		for k, val := range m.ExpensesByCategory {
			byCat[k] = amount(val)
		}
		v.MonthlyData = append(v.MonthlyData, monthView{
			Month:              m.Month,
			Name:               m.Name,
			Expenses:           amount(m.Expenses),
			Income:             amount(m.Income),
			InvestmentIncome:   amount(m.InvestmentIncome),
			NetFlow:            amount(m.NetFlow),
			ExpensesByCategory: byCat,
		})
	}
	if v.AvailableYears == nil {
		v.AvailableYears = []int{}
	}
	return v
}

type detailItemView struct {
	transactionView
	Month         string `json:"month"`
	MonthNum      int    `json:"month_num"`
	DisplayAmount amount `json:"display_amount"`
}

type monthTotalView struct {
	Month    string `json:"month"`
	MonthNum int    `json:"month_num"`
	Total    amount `json:"total"`
	Count    int    `json:"count"`
}

type detailsView struct {
	MetricType     string           `json:"metric_type"`
	Title          string           `json:"title"`
	ColorClass     string           `json:"color_class"`
	Year           int              `json:"year"`
	Transactions   []detailItemView `json:"transactions"`
	MonthlySummary []monthTotalView `json:"monthly_summary"`
	GrandTotal     amount           `json:"grand_total"`
	Categories     []string         `json:"categories"`
}

func newDetailsView(r analytics.DetailReport) detailsView {
	v := detailsView{
		MetricType:     string(r.Metric),
		Title:          r.Title,
		ColorClass:     r.ColorClass,
		Year:           r.Year,
		Transactions:   make([]detailItemView, 0, len(r.Items)),
		MonthlySummary: make([]monthTotalView, 0, len(r.Monthly)),
		GrandTotal:     amount(r.GrandTotal),
		Categories:     nonNil(r.Categories),
	}
	for _, it := range r.Items {
		v.Transactions = append(v.Transactions, detailItemView{
			transactionView: newTransactionView(it.Transaction),
			Month:           it.Date.Month().String(),
			MonthNum:        int(it.Date.Month()),
			DisplayAmount:   amount(it.DisplayAmount),
		})
	}
	for _, m := range r.Monthly {
		v.MonthlySummary = append(v.MonthlySummary, monthTotalView{
			Month:    m.Name,
			MonthNum: m.Month,
			Total:    amount(m.Total),
			Count:    m.Count,
		})
	}
	return v
}

type indexView struct {
	ExpenseCategories    []string `json:"expense_categories"`
	InvestmentCategories []string `json:"investment_categories"`
	CurrentYear          int      `json:"current_year"`
	CurrentMonth         string   `json:"current_month"`
	CurrentMonthNum      int      `json:"current_month_num"`
	AvailableYears       []int    `json:"available_years"`
}

func newIndexView(idx services.Index) indexView {
	years := idx.AvailableYears
	if years == nil {
		years = []int{}
	}
	return indexView{
		ExpenseCategories:    nonNil(idx.ExpenseCategories),
		InvestmentCategories: nonNil(idx.InvestmentCategories),
		CurrentYear:          idx.CurrentYear,
		CurrentMonth:         time.Month(idx.CurrentMonth).String(),
		CurrentMonthNum:      idx.CurrentMonth,
		AvailableYears:       years,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
