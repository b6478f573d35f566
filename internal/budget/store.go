package budget

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store holds budget allocations. Implementations need not be safe for
// concurrent use; Analyzer serializes every call.
type Store interface {
	Append(a *Allocation) error
	// All returns every allocation in insertion order.
	All() ([]*Allocation, error)
	Get(id string) (*Allocation, error)
	// FindByKey returns the allocation for (month, category), or nil. A nil
	// category selects the overall budget.
	FindByKey(month string, category *string) (*Allocation, error)
	// ByMonth returns the allocations for month in insertion order.
	ByMonth(month string) ([]*Allocation, error)
	// SaveAmount overwrites the amount of the allocation with this id.
	SaveAmount(id string, amount decimal.Decimal) error
	Remove(id string) (bool, error)
	Ping(ctx context.Context) error
}

type MemoryStore struct {
	items []*Allocation
	index map[string]*Allocation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make([]*Allocation, 0),
		index: make(map[string]*Allocation),
	}
}

func (m *MemoryStore) Append(a *Allocation) error {
	stored := a.Clone()
	m.items = append(m.items, stored)
	m.index[stored.ID] = stored
	return nil
}

func (m *MemoryStore) All() ([]*Allocation, error) {
	return cloneAll(m.items, func(*Allocation) bool { return true }), nil
}

func (m *MemoryStore) Get(id string) (*Allocation, error) {
	a, ok := m.index[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (m *MemoryStore) FindByKey(month string, category *string) (*Allocation, error) {
	for _, a := range m.items {
		if a.Matches(month, category) {
			return a.Clone(), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ByMonth(month string) ([]*Allocation, error) {
	return cloneAll(m.items, func(a *Allocation) bool { return a.Month == month }), nil
}

func (m *MemoryStore) SaveAmount(id string, amount decimal.Decimal) error {
	if a, ok := m.index[id]; ok {
		a.Amount = amount
	}
	return nil
}

func (m *MemoryStore) Remove(id string) (bool, error) {
	if _, ok := m.index[id]; !ok {
		return false, nil
	}
	delete(m.index, id)
	for i, a := range m.items {
		if a.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func cloneAll(items []*Allocation, keep func(*Allocation) bool) []*Allocation {
	result := make([]*Allocation, 0, len(items))
	for _, a := range items {
		if keep(a) {
			result = append(result, a.Clone())
		}
	}
	return result
}
