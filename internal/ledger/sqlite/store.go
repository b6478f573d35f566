// Package sqlite stores ledger transactions in the process-lifetime SQLite
// database through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	transactionDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/transaction"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/internal/storage"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var _ ledger.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(tx *ledger.Transaction) error {
	var maxSeq int64
	if err := s.db.Model(&transactionDatamodel.Transaction{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return fmt.Errorf("failed to read next sequence: %w", err)
	}

	row := ledger.ToDataModel(tx)
	row.Seq = maxSeq + 1
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *Store) All() ([]*ledger.Transaction, error) {
	var rows []*transactionDatamodel.Transaction
	if err := s.db.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return ledger.FromDataModelSlice(rows), nil
}

func (s *Store) Get(id string) (*ledger.Transaction, error) {
	var row transactionDatamodel.Transaction
	err := s.db.Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return ledger.FromDataModel(&row), nil
}

// FirstWithPrefix compares with substr rather than LIKE, which is
// case-insensitive in SQLite and treats % and _ as wildcards.
func (s *Store) FirstWithPrefix(prefix string) (*ledger.Transaction, error) {
	var rows []*transactionDatamodel.Transaction
	err := s.db.
		Where("substr(id, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Order("seq ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction by prefix: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return ledger.FromDataModel(rows[0]), nil
}

func (s *Store) Save(tx *ledger.Transaction) error {
	err := s.db.Model(&transactionDatamodel.Transaction{}).
		Where("id = ?", tx.ID).
		Updates(map[string]interface{}{
			"amount":      tx.Amount,
			"category":    tx.Category,
			"date":        tx.Date,
			"description": tx.Description,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (s *Store) Remove(id string) (bool, error) {
	result := s.db.Where("id = ?", id).Delete(&transactionDatamodel.Transaction{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return storage.Ping(ctx, s.db)
}
