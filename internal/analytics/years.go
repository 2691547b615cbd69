package analytics

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

// AvailableYears returns every year that has a parseable transaction date,
// plus the current year, newest first.
func AvailableYears(txs []core.Transaction, now time.Time) []int {
	seen := map[int]struct{}{now.Year(): {}}
	for _, t := range txs {
		if d, ok := t.ParsedDate(); ok {
			seen[d.Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ReferenceMonth is the "latest" month for year: December for past years,
// the current month otherwise.
func ReferenceMonth(year int, now time.Time) int {
	if year < now.Year() {
		return 12
	}
	return int(now.Month())
}

// PeriodDays is the number of days the annual figures cover: 365 for past
// years, days since Jan 1 inclusive for the current year, and 0 for
// years that have not started.
func PeriodDays(year int, now time.Time) int {
	switch {
	case year < now.Year():
		return 365
	case year > now.Year():
		return 0
	}
	return now.YearDay()
}

// monthsInScope is how many months of year are reported.
func monthsInScope(year int, now time.Time) int {
	if year == now.Year() {
		return int(now.Month())
	}
	return 12
}
