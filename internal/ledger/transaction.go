package ledger

import (
	"time"

	transactionDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/transaction"
	"github.com/shopspring/decimal"
)

// ExportHeader is the first row of every tabular export.
var ExportHeader = []string{"ID", "Amount", "Category", "Date", "Description", "Created At"}

// Transaction is one recorded expense. ID and CreatedAt are fixed at
// creation; the remaining fields change only through Ledger.Update.
type Transaction struct {
	ID          string
	Amount      decimal.Decimal
	Category    string
	Date        string
	Description string
	CreatedAt   time.Time
}

// TransactionPatch lists the fields an update may overwrite. A nil field
// leaves the stored value unchanged.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Category    *string
	Date        *string
	Description *string
}

func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil && p.Category == nil && p.Date == nil && p.Description == nil
}

func NewTransaction(id string, amount decimal.Decimal, category, date, description string, createdAt time.Time) *Transaction {
	return &Transaction{
		ID:          id,
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: description,
		CreatedAt:   createdAt,
	}
}

func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}

// Apply overwrites the fields set in p.
func (t *Transaction) Apply(p TransactionPatch) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
}

// InMonth reports whether the transaction date starts with month. The test
// is textual, "2025-10" matches any date beginning with "2025-10".
func (t *Transaction) InMonth(month string) bool {
	return len(t.Date) >= len(month) && t.Date[:len(month)] == month
}

func (t *Transaction) CreatedAtString() string {
	return t.CreatedAt.Format(time.RFC3339Nano)
}

// Row renders the transaction in ExportHeader column order.
func (t *Transaction) Row() []string {
	return []string{
		t.ID,
		t.Amount.String(),
		t.Category,
		t.Date,
		t.Description,
		t.CreatedAtString(),
	}
}

func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Amount:      AmountJSON(t.Amount),
		Category:    t.Category,
		Date:        t.Date,
		Description: t.Description,
		CreatedAt:   t.CreatedAtString(),
	}
}

func ToDataModel(t *Transaction) *transactionDatamodel.Transaction {
	return &transactionDatamodel.Transaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Date:        t.Date,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func FromDataModel(t *transactionDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Date:        t.Date,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func FromDataModelSlice(rows []*transactionDatamodel.Transaction) []*Transaction {
	result := make([]*Transaction, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
