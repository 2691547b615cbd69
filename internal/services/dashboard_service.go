package services

import (
	"context"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Dashboard is the full data view for one selected year.
type Dashboard struct {
	analytics.Snapshot
	SelectedYear   int
	AvailableYears []int

	// ExpenseCategories lists every configured daily category, with or
	// without data.
	ExpenseCategories []string
}

// Index is the metadata the entry page needs before any year is chosen.
type Index struct {
	ExpenseCategories    []string
	InvestmentCategories []string
	CurrentYear          int
	CurrentMonth         int
	AvailableYears       []int
}

// DashboardService recomputes every view from a fresh load of the store.
type DashboardService struct {
	loader storage.Loader
	tax    core.Taxonomy
	now    func() time.Time
	logger *log.Logger
}

func NewDashboardService(loader storage.Loader, tax core.Taxonomy, logger *log.Logger) *DashboardService {
	if logger == nil {
		logger = log.Nop()
	}
	return &DashboardService{
		loader: loader,
		tax:    tax,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// WithClock replaces the wall clock. Used by tests to pin the current year.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

func (s *DashboardService) Taxonomy() core.Taxonomy { return s.tax }

// load never fails: an unreadable store is reported and treated as empty so
// the dashboard still renders.
func (s *DashboardService) load(ctx context.Context) []core.Transaction {
	txs, err := s.loader.LoadAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load transactions, showing empty data", log.FieldError, err)
		return nil
	}
	s.logger.DebugContext(ctx, "Loaded transactions", log.FieldRecordCount, len(txs))
	return txs
}

// ResolveYear returns year, or the current year when year is not positive.
func (s *DashboardService) ResolveYear(year int) int {
	if year <= 0 {
		return s.now().Year()
	}
	return year
}

// Data computes the dashboard for year (0 selects the current year).
func (s *DashboardService) Data(ctx context.Context, year int) Dashboard {
	now := s.now()
	year = s.ResolveYear(year)
	txs := s.load(ctx)
	return Dashboard{
		Snapshot:          analytics.ComputeMetrics(s.tax, txs, year, now),
		SelectedYear:      year,
		AvailableYears:    analytics.AvailableYears(txs, now),
		ExpenseCategories: s.tax.DailyCategories(),
	}
}

// Details builds the drill-down for metric in year (0 selects the current
// year). An unknown metric yields core.ErrUnknownMetric.
func (s *DashboardService) Details(ctx context.Context, metric string, year int) (analytics.DetailReport, error) {
	m, err := analytics.ParseMetricType(metric)
	if err != nil {
		return analytics.DetailReport{}, err
	}
	return analytics.Details(s.tax, s.load(ctx), m, s.ResolveYear(year))
}

func (s *DashboardService) Index(ctx context.Context) Index {
	now := s.now()
	return Index{
		ExpenseCategories:    s.tax.DailyCategories(),
		InvestmentCategories: s.tax.InvestmentCategories(),
		CurrentYear:          now.Year(),
		CurrentMonth:         int(now.Month()),
		AvailableYears:       analytics.AvailableYears(s.load(ctx), now),
	}
}
