package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is the row shape of a budget allocation. A NULL category is the
// overall budget for the month.
type Allocation struct {
	ID        string          `gorm:"primaryKey;size:36"`
	Seq       int64           `gorm:"column:seq;not null;uniqueIndex"`
	Amount    decimal.Decimal `gorm:"column:amount;type:text;not null"`
	Month     string          `gorm:"column:month;size:7;not null;index"`
	Category  *string         `gorm:"column:category"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "budget_allocations"
}
