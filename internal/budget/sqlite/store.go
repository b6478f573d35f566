// Package sqlite stores budget allocations in the process-lifetime SQLite
// database through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/budget-ledger/internal/budget"
	budgetDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/budget"
	"github.com/frahmantamala/budget-ledger/internal/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var _ budget.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(a *budget.Allocation) error {
	var maxSeq int64
	if err := s.db.Model(&budgetDatamodel.Allocation{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return fmt.Errorf("failed to read next sequence: %w", err)
	}

	row := budget.ToDataModel(a)
	row.Seq = maxSeq + 1
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	return nil
}

func (s *Store) All() ([]*budget.Allocation, error) {
	var rows []*budgetDatamodel.Allocation
	if err := s.db.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return budget.FromDataModelSlice(rows), nil
}

func (s *Store) Get(id string) (*budget.Allocation, error) {
	var row budgetDatamodel.Allocation
	err := s.db.Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return budget.FromDataModel(&row), nil
}

func (s *Store) FindByKey(month string, category *string) (*budget.Allocation, error) {
	query := s.db.Where("month = ?", month)
	if category == nil {
		query = query.Where("category IS NULL")
	} else {
		query = query.Where("category = ?", *category)
	}

	var rows []*budgetDatamodel.Allocation
	if err := query.Order("seq ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find allocation: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return budget.FromDataModel(rows[0]), nil
}

func (s *Store) ByMonth(month string) ([]*budget.Allocation, error) {
	var rows []*budgetDatamodel.Allocation
	if err := s.db.Where("month = ?", month).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list allocations for month: %w", err)
	}
	return budget.FromDataModelSlice(rows), nil
}

func (s *Store) SaveAmount(id string, amount decimal.Decimal) error {
	err := s.db.Model(&budgetDatamodel.Allocation{}).
		Where("id = ?", id).
		Update("amount", amount).Error
	if err != nil {
		return fmt.Errorf("failed to update allocation amount: %w", err)
	}
	return nil
}

func (s *Store) Remove(id string) (bool, error) {
	result := s.db.Where("id = ?", id).Delete(&budgetDatamodel.Allocation{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete allocation: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return storage.Ping(ctx, s.db)
}
