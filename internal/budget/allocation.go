package budget

import (
	"encoding/json"
	"time"

	budgetDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/budget"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

// Allocation caps spending for a month. A nil Category is the overall
// budget for that month. At most one allocation exists per (Month, Category).
type Allocation struct {
	ID        string
	Amount    decimal.Decimal
	Month     string
	Category  *string
	CreatedAt time.Time
}

func NewAllocation(id string, amount decimal.Decimal, month string, category *string, createdAt time.Time) *Allocation {
	return &Allocation{
		ID:        id,
		Amount:    amount,
		Month:     month,
		Category:  copyCategory(category),
		CreatedAt: createdAt,
	}
}

func (a *Allocation) Clone() *Allocation {
	c := *a
	c.Category = copyCategory(a.Category)
	return &c
}

func (a *Allocation) IsOverall() bool {
	return a.Category == nil
}

// Matches reports whether the allocation is keyed by (month, category).
func (a *Allocation) Matches(month string, category *string) bool {
	if a.Month != month {
		return false
	}
	if a.Category == nil || category == nil {
		return a.Category == nil && category == nil
	}
	return *a.Category == *category
}

// CategoryName returns the category, or "" for the overall budget.
func (a *Allocation) CategoryName() string {
	if a.Category == nil {
		return ""
	}
	return *a.Category
}

type AllocationResponse struct {
	ID        string      `json:"id"`
	Amount    json.Number `json:"amount"`
	Month     string      `json:"month"`
	Category  *string     `json:"category"`
	CreatedAt string      `json:"created_at"`
}

func (a *Allocation) ToResponse() AllocationResponse {
	return AllocationResponse{
		ID:        a.ID,
		Amount:    ledger.AmountJSON(a.Amount),
		Month:     a.Month,
		Category:  copyCategory(a.Category),
		CreatedAt: a.CreatedAt.Format(time.RFC3339Nano),
	}
}

func ToDataModel(a *Allocation) *budgetDatamodel.Allocation {
	return &budgetDatamodel.Allocation{
		ID:        a.ID,
		Amount:    a.Amount,
		Month:     a.Month,
		Category:  copyCategory(a.Category),
		CreatedAt: a.CreatedAt,
	}
}

func FromDataModel(a *budgetDatamodel.Allocation) *Allocation {
	return &Allocation{
		ID:        a.ID,
		Amount:    a.Amount,
		Month:     a.Month,
		Category:  copyCategory(a.Category),
		CreatedAt: a.CreatedAt,
	}
}

func FromDataModelSlice(rows []*budgetDatamodel.Allocation) []*Allocation {
	result := make([]*Allocation, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}

func copyCategory(category *string) *string {
	if category == nil {
		return nil
	}
	c := *category
	return &c
}
