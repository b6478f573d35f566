package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the row shape of a ledger entry. Amount is stored as text so
// decimals round-trip exactly. Seq keeps insertion order,
// ids are random and carry no ordering.
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:36"`
	Seq         int64           `gorm:"column:seq;not null;uniqueIndex"`
	Amount      decimal.Decimal `gorm:"column:amount;type:text;not null"`
	Category    string          `gorm:"column:category;not null;index"`
	Date        string          `gorm:"column:date;size:10;not null;index"`
	Description string          `gorm:"column:description"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}
