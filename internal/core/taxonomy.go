package core

// FlowKind is the classification a category imposes on its transactions.
type FlowKind int

const (
	// KindSigned categories are classified by amount sign: negative is an
	// expense, anything else is other income.
	KindSigned FlowKind = iota
	// KindExpense categories are stored negative on submission and
	// otherwise behave like KindSigned.
	KindExpense
	KindSalary
	KindInvestment
)

const (
	Uncategorized      = "Uncategorized"
	SalaryCategory     = "Monthly Salary/General"
	InvestmentCategory = "Interest/Investment"
)

// CategoryRule binds one category name to its flow kind. Daily marks the
// categories offered in the expense picker.
type CategoryRule struct {
	Name  string
	Kind  FlowKind
	Daily bool
}

// Taxonomy is the ordered category configuration passed to the classifier.
// Categories outside it classify by sign and are still stored verbatim.
type Taxonomy struct {
	rules []CategoryRule
	index map[string]int
}

// NewTaxonomy builds a taxonomy from rules. Later duplicates override earlier ones.
func NewTaxonomy(rules []CategoryRule) Taxonomy {
	t := Taxonomy{
		rules: make([]CategoryRule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		if i, ok := t.index[r.Name]; ok {
			t.rules[i] = r
			continue
		}
		t.index[r.Name] = len(t.rules)
		t.rules = append(t.rules, r)
	}
	return t
}

// DefaultTaxonomy returns the fixed category list of the dashboard.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy([]CategoryRule{
		{Name: "Tax", Kind: KindExpense, Daily: true},
		{Name: "Hotel/Vacation/Travel", Kind: KindExpense, Daily: true},
		{Name: "Withdraw", Kind: KindExpense, Daily: true},
		{Name: "Regalo", Kind: KindExpense, Daily: true},
		{Name: "Money Transfer", Kind: KindExpense, Daily: true},
		{Name: "Refund", Kind: KindSigned, Daily: true},
		{Name: "Benefit", Kind: KindSigned, Daily: true},
		{Name: "Expense/Investment", Kind: KindExpense, Daily: true},
		{Name: "Baby Sitter", Kind: KindExpense, Daily: true},
		{Name: "Grocery", Kind: KindExpense, Daily: true},
		{Name: "Membership", Kind: KindExpense, Daily: true},
		{Name: "General", Kind: KindExpense, Daily: true},
		{Name: "Restaurant", Kind: KindExpense, Daily: true},
		{Name: "Petrol", Kind: KindExpense, Daily: true},
		{Name: "Sport/Leisure", Kind: KindExpense, Daily: true},
		{Name: InvestmentCategory, Kind: KindInvestment},
		{Name: SalaryCategory, Kind: KindSalary},
	})
}

// Kind returns the configured kind of category, KindSigned when unknown.
func (t Taxonomy) Kind(category string) FlowKind {
	if i, ok := t.index[category]; ok {
		return t.rules[i].Kind
	}
	return KindSigned
}

// ForcesNegative reports whether submissions in category are stored negative.
func (t Taxonomy) ForcesNegative(category string) bool {
	return t.Kind(category) == KindExpense
}

// DailyCategories lists the categories offered for day-to-day entries, in order.
func (t Taxonomy) DailyCategories() []string {
	var out []string
	for _, r := range t.rules {
		if r.Daily {
			out = append(out, r.Name)
		}
	}
	return out
}

// InvestmentCategories lists categories of KindInvestment, in order.
func (t Taxonomy) InvestmentCategories() []string {
	var out []string
	for _, r := range t.rules {
		if r.Kind == KindInvestment {
			out = append(out, r.Name)
		}
	}
	return out
}

// Rules returns a copy of the configured rules.
func (t Taxonomy) Rules() []CategoryRule {
	return append([]CategoryRule(nil), t.rules...)
}
