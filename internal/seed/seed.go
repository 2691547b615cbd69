// Package seed generates plausible demo submissions. They are fed through
// the normal submission path, so they get ids and signs like real entries.
package seed

import (
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"fintrack/internal/core"
)

type Options struct {
	Year             int
	ExpensesPerMonth int
	Seed             int64 // same seed, same data
	Now              time.Time
}

// Generate returns submissions for every month of opts.Year up to Now's
// month: one salary, an occasional investment income and ExpensesPerMonth
// expenses in the daily categories. Output is sorted by date.
func Generate(tax core.Taxonomy, opts Options) []core.Submission {
	f := gofakeit.New(opts.Seed)
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.ExpensesPerMonth <= 0 {
		opts.ExpensesPerMonth = 20
	}
	months := 12
	switch {
	case opts.Year == opts.Now.Year():
		months = int(opts.Now.Month())
	case opts.Year > opts.Now.Year():
		return nil
	}

	var expenseCats []string
	for _, c := range tax.DailyCategories() {
		if tax.ForcesNegative(c) {
			expenseCats = append(expenseCats, c)
		}
	}
	investment := tax.InvestmentCategories()

	var out []core.Submission
	for m := 1; m <= months; m++ {
		start := time.Date(opts.Year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		if m == months && opts.Year == opts.Now.Year() && opts.Now.Day() < end.Day() {
			end = time.Date(opts.Year, time.Month(m), opts.Now.Day(), 0, 0, 0, 0, time.UTC)
		}

		out = append(out, core.Submission{
			Type:     "Salary " + f.Company(),
			Amount:   amount(f.Price(2500, 4000)),
			Date:     start.Format(core.DateLayout),
			Category: core.SalaryCategory,
		})
		if len(investment) > 0 && f.Number(1, 3) == 1 {
			out = append(out, core.Submission{
				Type:     "Dividend",
				Amount:   amount(f.Price(5, 250)),
				Date:     f.DateRange(start, end).Format(core.DateLayout),
				Category: f.RandomString(investment),
			})
		}
		for i := 0; i < opts.ExpensesPerMonth && len(expenseCats) > 0; i++ {
			out = append(out, core.Submission{
				Type:     f.Company(),
				Amount:   amount(f.Price(2, 180)),
				Date:     f.DateRange(start, end).Format(core.DateLayout),
				Category: f.RandomString(expenseCats),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func amount(v float64) string {
	if v < 0.01 {
		v = 0.01
	}
	return fmt.Sprintf("%.2f", v)
}
