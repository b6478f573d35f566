package ledger

import (
	"context"
	"strings"
)

// Store holds the transaction collection. Implementations need not be safe
// for concurrent use; Ledger serializes every call.
type Store interface {
	Append(tx *Transaction) error
	// All returns every transaction in insertion order.
	All() ([]*Transaction, error)
	// Get returns the transaction with exactly this id, or nil.
	Get(id string) (*Transaction, error)
	// FirstWithPrefix returns the earliest inserted transaction whose id
	// starts with prefix, or nil.
	FirstWithPrefix(prefix string) (*Transaction, error)
	Save(tx *Transaction) error
	Remove(id string) (bool, error)
	Ping(ctx context.Context) error
}

// MemoryStore keeps transactions in an ordered slice with an id index for
// exact lookups.
type MemoryStore struct {
	items []*Transaction
	index map[string]*Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make([]*Transaction, 0),
		index: make(map[string]*Transaction),
	}
}

func (m *MemoryStore) Append(tx *Transaction) error {
	stored := tx.Clone()
	m.items = append(m.items, stored)
	m.index[stored.ID] = stored
	return nil
}

func (m *MemoryStore) All() ([]*Transaction, error) {
	result := make([]*Transaction, len(m.items))
	for i, tx := range m.items {
		result[i] = tx.Clone()
	}
	return result, nil
}

func (m *MemoryStore) Get(id string) (*Transaction, error) {
	tx, ok := m.index[id]
	if !ok {
		return nil, nil
	}
	return tx.Clone(), nil
}

func (m *MemoryStore) FirstWithPrefix(prefix string) (*Transaction, error) {
	for _, tx := range m.items {
		if strings.HasPrefix(tx.ID, prefix) {
			return tx.Clone(), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) Save(tx *Transaction) error {
	stored, ok := m.index[tx.ID]
	if !ok {
		return nil
	}
	stored.Amount = tx.Amount
	stored.Category = tx.Category
	stored.Date = tx.Date
	stored.Description = tx.Description
	return nil
}

func (m *MemoryStore) Remove(id string) (bool, error) {
	if _, ok := m.index[id]; !ok {
		return false, nil
	}
	delete(m.index, id)
	for i, tx := range m.items {
		if tx.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryStore) Len() int {
	return len(m.items)
}
