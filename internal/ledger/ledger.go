package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a listing. Category matches case-insensitively.
// DateFrom and DateTo are inclusive bounds compared as YYYY-MM-DD strings.
// Tag is accepted for interface compatibility; transactions carry no tags so
// it never excludes anything.
type TransactionFilter struct {
	Category string
	DateFrom string
	DateTo   string
	Tag      string
}

func (f TransactionFilter) IsEmpty() bool {
	return f.Category == "" && f.DateFrom == "" && f.DateTo == "" && f.Tag == ""
}

func (f TransactionFilter) matches(tx *Transaction) bool {
	if f.Category != "" && !strings.EqualFold(tx.Category, f.Category) {
		return false
	}
	if f.DateFrom != "" && tx.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && tx.Date > f.DateTo {
		return false
	}
	return true
}

// Summary aggregates the whole ledger.
type Summary struct {
	Total      decimal.Decimal
	Count      int
	ByCategory map[string]decimal.Decimal
	ByDate     map[string]decimal.Decimal
}

// Dates returns the ByDate keys in ascending order.
func (s *Summary) Dates() []string {
	dates := make([]string, 0, len(s.ByDate))
	for date := range s.ByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Ledger owns the transaction collection. Every operation holds the ledger
// lock for its whole duration. Lookups by id accept a leading fragment of an
// id: an exact match wins, otherwise the earliest inserted transaction whose
// id starts with the fragment is used, even when several match.
type Ledger struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides id assignment.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func NewInMemory(opts ...Option) *Ledger {
	return New(NewMemoryStore(), opts...)
}

func (l *Ledger) Store() Store {
	return l.store
}

// Add records a new transaction with a fresh id and creation time.
func (l *Ledger) Add(amount decimal.Decimal, category, date, description string) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := NewTransaction(l.newID(), amount, category, date, description, l.now())
	if err := l.store.Append(tx); err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}
	return tx.Clone(), nil
}

// GetAll returns copies of every transaction in insertion order.
func (l *Ledger) GetAll() ([]*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txs, err := l.store.All()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// GetByID returns nil, nil when nothing matches. An empty id matches
// nothing rather than being treated as a prefix of every id.
func (l *Ledger) GetByID(id string) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.find(id)
}

// Update overwrites the fields set in patch and returns the result, or
// nil, nil when nothing matches.
func (l *Ledger) Update(id string, patch TransactionPatch) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.find(id)
	if err != nil || tx == nil {
		return nil, err
	}

	tx.Apply(patch)
	if err := l.store.Save(tx); err != nil {
		return nil, fmt.Errorf("save transaction %s: %w", tx.ID, err)
	}
	return tx, nil
}

// Delete removes the matching transaction and reports whether one was found.
func (l *Ledger) Delete(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.find(id)
	if err != nil || tx == nil {
		return false, err
	}

	removed, err := l.store.Remove(tx.ID)
	if err != nil {
		return false, fmt.Errorf("remove transaction %s: %w", tx.ID, err)
	}
	return removed, nil
}

// FilterByCategory returns transactions whose category equals category,
// ignoring case.
func (l *Ledger) FilterByCategory(category string) ([]*Transaction, error) {
	return l.Filter(TransactionFilter{Category: category})
}

func (l *Ledger) Filter(filter TransactionFilter) ([]*Transaction, error) {
	txs, err := l.GetAll()
	if err != nil {
		return nil, err
	}

	result := make([]*Transaction, 0, len(txs))
	for _, tx := range txs {
		if filter.matches(tx) {
			result = append(result, tx)
		}
	}
	return result, nil
}

// ExportTabular returns ExportHeader followed by one row per transaction.
func (l *Ledger) ExportTabular() ([][]string, error) {
	txs, err := l.GetAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, append([]string(nil), ExportHeader...))
	for _, tx := range txs {
		rows = append(rows, tx.Row())
	}
	return rows, nil
}

func (l *Ledger) Summarize() (*Summary, error) {
	txs, err := l.GetAll()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Total:      decimal.Zero,
		Count:      len(txs),
		ByCategory: make(map[string]decimal.Decimal),
		ByDate:     make(map[string]decimal.Decimal),
	}
	for _, tx := range txs {
		summary.Total = summary.Total.Add(tx.Amount)
		summary.ByCategory[tx.Category] = summary.ByCategory[tx.Category].Add(tx.Amount)
		summary.ByDate[tx.Date] = summary.ByDate[tx.Date].Add(tx.Amount)
	}
	return summary, nil
}

func (l *Ledger) find(id string) (*Transaction, error) {
	if id == "" {
		return nil, nil
	}

	tx, err := l.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	if tx != nil {
		return tx, nil
	}

	tx, err = l.store.FirstWithPrefix(id)
	if err != nil {
		return nil, fmt.Errorf("find transaction by prefix %s: %w", id, err)
	}
	return tx, nil
}
