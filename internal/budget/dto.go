package budget

import (
	"strings"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// SetBudgetDTO is the request payload for creating or updating an
// allocation. A missing or blank category sets the overall budget.
type SetBudgetDTO struct {
	Amount   *decimal.Decimal `json:"amount"`
	Month    string           `json:"month"`
	Category *string          `json:"category"`
}

func (dto *SetBudgetDTO) Normalize() {
	dto.Month = strings.TrimSpace(dto.Month)
	dto.Category = normalizeCategory(dto.Category)
}

func (dto SetBudgetDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("amount", dto.Amount).
		Custom(func(value interface{}) *errors.AppError {
			if dto.Amount == nil {
				return errors.NewValidationFieldError("amount", "amount is required", errors.ErrCodeInvalidAmount)
			}
			return nil
		})
	validator.Field("month", dto.Month).
		Required(errors.ErrCodeInvalidMonth).
		Layout(validation.MonthLayout, errors.ErrCodeInvalidMonth)
	if dto.Category != nil {
		validator.Field("category", dto.Category).
			MaxLength(validation.MaxCategoryLength)
	}

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type AllocationListResponse struct {
	Budgets []AllocationResponse `json:"budgets"`
	Count   int                  `json:"count"`
}

func NewAllocationListResponse(allocations []*Allocation) AllocationListResponse {
	items := make([]AllocationResponse, len(allocations))
	for i, a := range allocations {
		items[i] = a.ToResponse()
	}
	return AllocationListResponse{Budgets: items, Count: len(items)}
}

type SetBudgetResponse struct {
	Budget  AllocationResponse `json:"budget"`
	Message string             `json:"message"`
}

type CurrentMonthResponse struct {
	Month    string               `json:"month"`
	Budgets  []AllocationResponse `json:"budgets"`
	Analysis ReportResponse       `json:"analysis"`
}

// normalizeCategory maps a blank category to nil, the overall budget.
func normalizeCategory(category *string) *string {
	if category == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*category)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
