package ledger

import (
	"encoding/json"
	"strings"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// AmountJSON renders a decimal as a bare JSON number with no float rounding.
func AmountJSON(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// CreateTransactionDTO is the request payload for recording a transaction.
type CreateTransactionDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

// Normalize trims the text fields and defaults the date to today.
func (dto *CreateTransactionDTO) Normalize(today time.Time) {
	dto.Category = strings.TrimSpace(dto.Category)
	dto.Date = strings.TrimSpace(dto.Date)
	dto.Description = strings.TrimSpace(dto.Description)
	if dto.Date == "" {
		dto.Date = today.Format(validation.DateLayout)
	}
}

func (dto CreateTransactionDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("amount", dto.Amount).
		Positive(errors.ErrCodeInvalidAmount)
	validator.Field("category", dto.Category).
		Required(errors.ErrCodeInvalidCategory).
		MaxLength(validation.MaxCategoryLength)
	validator.Field("date", dto.Date).
		Required(errors.ErrCodeInvalidDate).
		Layout(validation.DateLayout, errors.ErrCodeInvalidDate)
	validator.Field("description", dto.Description).
		MaxLength(validation.MaxDescriptionLength)

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateTransactionDTO carries a partial update. Omitted fields stay nil and
// leave the stored value unchanged.
type UpdateTransactionDTO struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Date        *string          `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (dto UpdateTransactionDTO) Validate() error {
	validator := validation.NewValidator()
	if dto.Amount != nil {
		validator.Field("amount", dto.Amount).
			Positive(errors.ErrCodeInvalidAmount)
	}
	if dto.Category != nil {
		validator.Field("category", dto.Category).
			Required(errors.ErrCodeInvalidCategory).
			MaxLength(validation.MaxCategoryLength)
	}
	if dto.Date != nil {
		validator.Field("date", dto.Date).
			Required(errors.ErrCodeInvalidDate).
			Layout(validation.DateLayout, errors.ErrCodeInvalidDate)
	}
	if dto.Description != nil {
		validator.Field("description", dto.Description).
			MaxLength(validation.MaxDescriptionLength)
	}

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto UpdateTransactionDTO) ToPatch() TransactionPatch {
	patch := TransactionPatch{Amount: dto.Amount}
	if dto.Category != nil {
		category := strings.TrimSpace(*dto.Category)
		patch.Category = &category
	}
	if dto.Date != nil {
		date := strings.TrimSpace(*dto.Date)
		patch.Date = &date
	}
	if dto.Description != nil {
		description := strings.TrimSpace(*dto.Description)
		patch.Description = &description
	}
	return patch
}

// TransactionFilterDTO mirrors the list query string.
type TransactionFilterDTO struct {
	Category string `json:"category"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
	Tag      string `json:"tag"`
}

func (dto TransactionFilterDTO) Validate() error {
	if err := validation.ValidateDateRange(dto.DateFrom, dto.DateTo); err != nil {
		return err
	}
	return nil
}

func (dto TransactionFilterDTO) ToFilter() TransactionFilter {
	return TransactionFilter{
		Category: strings.TrimSpace(dto.Category),
		DateFrom: dto.DateFrom,
		DateTo:   dto.DateTo,
		Tag:      dto.Tag,
	}
}

type TransactionResponse struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	CreatedAt   string      `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

func NewTransactionListResponse(txs []*Transaction) TransactionListResponse {
	items := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		items[i] = tx.ToResponse()
	}
	return TransactionListResponse{Transactions: items, Count: len(items)}
}

type DateTotal struct {
	Date  string      `json:"date"`
	Total json.Number `json:"total"`
}

// SummaryResponse is the /stats payload. ByDate is ordered by date.
type SummaryResponse struct {
	Total      json.Number            `json:"total"`
	Count      int                    `json:"count"`
	ByCategory map[string]json.Number `json:"by_category"`
	ByDate     []DateTotal            `json:"by_date"`
}

func (s *Summary) ToResponse() SummaryResponse {
	byCategory := make(map[string]json.Number, len(s.ByCategory))
	for category, total := range s.ByCategory {
		byCategory[category] = AmountJSON(total)
	}

	dates := s.Dates()
	byDate := make([]DateTotal, len(dates))
	for i, date := range dates {
		byDate[i] = DateTotal{Date: date, Total: AmountJSON(s.ByDate[date])}
	}

	return SummaryResponse{
		Total:      AmountJSON(s.Total),
		Count:      s.Count,
		ByCategory: byCategory,
		ByDate:     byDate,
	}
}
