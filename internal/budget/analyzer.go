package budget

import (
	"fmt"
	"sync"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Analyzer owns the budget allocations and compares them with a snapshot of
// transactions supplied by the caller. Every operation holds the analyzer
// lock for its whole duration.
type Analyzer struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
	newID func() string
}

type Option func(*Analyzer)

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(a *Analyzer) { a.newID = newID }
}

func NewAnalyzer(store Store, opts ...Option) *Analyzer {
	a := &Analyzer{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func NewInMemoryAnalyzer(opts ...Option) *Analyzer {
	return NewAnalyzer(NewMemoryStore(), opts...)
}

func (a *Analyzer) Store() Store {
	return a.store
}

// SetBudget creates the allocation for (month, category) or overwrites the
// amount of the existing one, keeping its id and creation time.
func (a *Analyzer) SetBudget(amount decimal.Decimal, month string, category *string) (*Allocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, err := a.store.FindByKey(month, category)
	if err != nil {
		return nil, fmt.Errorf("find allocation %s: %w", month, err)
	}
	if existing != nil {
		if err := a.store.SaveAmount(existing.ID, amount); err != nil {
			return nil, fmt.Errorf("save allocation %s: %w", existing.ID, err)
		}
		existing.Amount = amount
		return existing, nil
	}

	allocation := NewAllocation(a.newID(), amount, month, category, a.now())
	if err := a.store.Append(allocation); err != nil {
		return nil, fmt.Errorf("append allocation: %w", err)
	}
	return allocation.Clone(), nil
}

// GetBudget returns nil, nil when no allocation matches.
func (a *Analyzer) GetBudget(month string, category *string) (*Allocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	allocation, err := a.store.FindByKey(month, category)
	if err != nil {
		return nil, fmt.Errorf("find allocation %s: %w", month, err)
	}
	return allocation, nil
}

func (a *Analyzer) GetAllBudgets() ([]*Allocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	allocations, err := a.store.All()
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return allocations, nil
}

func (a *Analyzer) GetBudgetsForMonth(month string) ([]*Allocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	allocations, err := a.store.ByMonth(month)
	if err != nil {
		return nil, fmt.Errorf("list allocations for %s: %w", month, err)
	}
	return allocations, nil
}

func (a *Analyzer) DeleteBudget(id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	removed, err := a.store.Remove(id)
	if err != nil {
		return false, fmt.Errorf("remove allocation %s: %w", id, err)
	}
	return removed, nil
}

// Analyze compares the transactions dated in month with the month's
// allocations. Missing allocations count as zero. Month matching is a
// textual prefix test on the transaction date.
func (a *Analyzer) Analyze(transactions []*ledger.Transaction, month string) (*Report, error) {
	if month == "" {
		return nil, errors.NewValidationFieldError("month", "month is required", errors.ErrCodeInvalidMonth)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	totalSpent := decimal.Zero
	spending := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx == nil || !tx.InMonth(month) {
			continue
		}
		totalSpent = totalSpent.Add(tx.Amount)
		spending[tx.Category] = spending[tx.Category].Add(tx.Amount)
	}

	allocations, err := a.store.ByMonth(month)
	if err != nil {
		return nil, fmt.Errorf("list allocations for %s: %w", month, err)
	}

	report := &Report{
		Month:              month,
		TotalBudget:        decimal.Zero,
		TotalSpent:         totalSpent,
		Categories:         make(map[string]CategoryReport),
		SpendingByCategory: spending,
	}

	for _, allocation := range allocations {
		if allocation.IsOverall() {
			report.TotalBudget = allocation.Amount
			report.HasOverallBudget = true
			continue
		}

		spent := spending[*allocation.Category]
		report.Categories[*allocation.Category] = CategoryReport{
			Budget:     allocation.Amount,
			Spent:      spent,
			Remaining:  allocation.Amount.Sub(spent),
			Percentage: percentOf(spent, allocation.Amount),
			Status:     statusOf(spent, allocation.Amount),
		}
	}

	report.TotalRemaining = report.TotalBudget.Sub(totalSpent)
	report.TotalPercentage = percentOf(totalSpent, report.TotalBudget)
	report.Status = statusOf(totalSpent, report.TotalBudget)

	return report, nil
}
