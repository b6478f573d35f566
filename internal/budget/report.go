package budget

import (
	"encoding/json"
	"sort"

	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusExceeded    Status = "exceeded"
	StatusWithinLimit Status = "within_limit"
)

var hundred = decimal.NewFromInt(100)

func statusOf(spent, budget decimal.Decimal) Status {
	if spent.GreaterThan(budget) {
		return StatusExceeded
	}
	return StatusWithinLimit
}

// percentOf is spent/budget*100, or 0 when budget is not positive.
func percentOf(spent, budget decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 0
	}
	return spent.Div(budget).Mul(hundred).InexactFloat64()
}

type CategoryReport struct {
	Budget     decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage float64
	Status     Status
}

// Report compares a month's spending with its allocations. Categories covers
// only categories that have an allocation; SpendingByCategory covers every
// category with spending in the month.
type Report struct {
	Month              string
	TotalBudget        decimal.Decimal
	TotalSpent         decimal.Decimal
	TotalRemaining     decimal.Decimal
	TotalPercentage    float64
	Status             Status
	Categories         map[string]CategoryReport
	SpendingByCategory map[string]decimal.Decimal

	// HasOverallBudget is false when the month has no overall allocation and
	// TotalBudget defaulted to zero.
	HasOverallBudget bool
}

// ExceededScopes lists what is over its allocation: "overall" when an
// overall allocation exists and is exceeded, then every exceeded category in
// name order.
func (r *Report) ExceededScopes() []string {
	var scopes []string
	if r.HasOverallBudget && r.Status == StatusExceeded {
		scopes = append(scopes, "overall")
	}
	categories := make([]string, 0, len(r.Categories))
	for name, c := range r.Categories {
		if c.Status == StatusExceeded {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)
	return append(scopes, categories...)
}

type CategoryReportResponse struct {
	Budget     json.Number `json:"budget"`
	Spent      json.Number `json:"spent"`
	Remaining  json.Number `json:"remaining"`
	Percentage float64     `json:"percentage"`
	Status     Status      `json:"status"`
}

type ReportResponse struct {
	Month              string                            `json:"month"`
	TotalBudget        json.Number                       `json:"total_budget"`
	TotalSpent         json.Number                       `json:"total_spent"`
	TotalRemaining     json.Number                       `json:"total_remaining"`
	TotalPercentage    float64                           `json:"total_percentage"`
	Status             Status                            `json:"status"`
	Categories         map[string]CategoryReportResponse `json:"categories"`
	SpendingByCategory map[string]json.Number            `json:"spending_by_category"`
}

func (r *Report) ToResponse() ReportResponse {
	categories := make(map[string]CategoryReportResponse, len(r.Categories))
	for name, c := range r.Categories {
		categories[name] = CategoryReportResponse{
			Budget:     ledger.AmountJSON(c.Budget),
			Spent:      ledger.AmountJSON(c.Spent),
			Remaining:  ledger.AmountJSON(c.Remaining),
			Percentage: c.Percentage,
			Status:     c.Status,
		}
	}

	spending := make(map[string]json.Number, len(r.SpendingByCategory))
	for name, total := range r.SpendingByCategory {
		spending[name] = ledger.AmountJSON(total)
	}

	return ReportResponse{
		Month:              r.Month,
		TotalBudget:        ledger.AmountJSON(r.TotalBudget),
		TotalSpent:         ledger.AmountJSON(r.TotalSpent),
		TotalRemaining:     ledger.AmountJSON(r.TotalRemaining),
		TotalPercentage:    r.TotalPercentage,
		Status:             r.Status,
		Categories:         categories,
		SpendingByCategory: spending,
	}
}
