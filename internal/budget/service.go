package budget

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/pkg/metrics"
)

// TransactionSource hands the analyzer a snapshot of the ledger.
type TransactionSource interface {
	Transactions(ctx context.Context) ([]*ledger.Transaction, error)
}

type Service struct {
	analyzer     *Analyzer
	transactions TransactionSource
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(analyzer *Analyzer, transactions TransactionSource, logger *slog.Logger) *Service {
	return &Service{
		analyzer:     analyzer,
		transactions: transactions,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) Analyzer() *Analyzer {
	return s.analyzer
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if traceID := errors.TraceIDFromContext(ctx); traceID != "" {
		return s.logger.With("trace_id", traceID)
	}
	return s.logger
}

func (s *Service) SetBudget(ctx context.Context, dto SetBudgetDTO) (*Allocation, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("budget validation failed", "error", err)
		return nil, err
	}

	allocation, err := s.analyzer.SetBudget(*dto.Amount, dto.Month, dto.Category)
	if err != nil {
		s.log(ctx).Error("failed to set budget", "error", err, "month", dto.Month)
		return nil, errors.NewInternalError("failed to set budget", err)
	}

	s.log(ctx).Info("budget set",
		"budget_id", allocation.ID,
		"month", allocation.Month,
		"category", allocation.CategoryName(),
		"amount", allocation.Amount.String())
	return allocation, nil
}

// ListBudgets returns every allocation, or only those for month when set.
func (s *Service) ListBudgets(ctx context.Context, month string) ([]*Allocation, error) {
	var (
		allocations []*Allocation
		err         error
	)
	if month == "" {
		allocations, err = s.analyzer.GetAllBudgets()
	} else {
		if verr := validation.ValidateMonth(month); verr != nil {
			return nil, verr
		}
		allocations, err = s.analyzer.GetBudgetsForMonth(month)
	}
	if err != nil {
		s.log(ctx).Error("failed to list budgets", "error", err, "month", month)
		return nil, errors.NewInternalError("failed to list budgets", err)
	}
	return allocations, nil
}

func (s *Service) LookupBudget(ctx context.Context, month, category string) (*Allocation, error) {
	if err := validation.ValidateMonth(month); err != nil {
		return nil, err
	}

	allocation, err := s.analyzer.GetBudget(month, normalizeCategory(&category))
	if err != nil {
		s.log(ctx).Error("failed to look up budget", "error", err, "month", month)
		return nil, errors.NewInternalError("failed to look up budget", err)
	}
	if allocation == nil {
		return nil, errors.ErrBudgetNotFound
	}
	return allocation, nil
}

func (s *Service) DeleteBudget(ctx context.Context, id string) error {
	removed, err := s.analyzer.DeleteBudget(id)
	if err != nil {
		s.log(ctx).Error("failed to delete budget", "error", err, "budget_id", id)
		return errors.NewInternalError("failed to delete budget", err)
	}
	if !removed {
		return errors.ErrBudgetNotFound
	}

	s.log(ctx).Info("budget deleted", "budget_id", id)
	return nil
}

func (s *Service) Analyze(ctx context.Context, month string) (*Report, error) {
	if err := validation.ValidateMonth(month); err != nil {
		return nil, err
	}
	return s.analyze(ctx, month, "request")
}

// CurrentMonth returns the allocations and analysis for the month of now.
func (s *Service) CurrentMonth(ctx context.Context) (string, []*Allocation, *Report, error) {
	month := s.now().Format(validation.MonthLayout)

	allocations, err := s.ListBudgets(ctx, month)
	if err != nil {
		return "", nil, nil, err
	}
	report, err := s.analyze(ctx, month, "request")
	if err != nil {
		return "", nil, nil, err
	}
	return month, allocations, report, nil
}

func (s *Service) analyze(ctx context.Context, month, trigger string) (*Report, error) {
	txs, err := s.transactions.Transactions(ctx)
	if err != nil {
		s.log(ctx).Error("failed to load transactions for analysis", "error", err, "month", month)
		return nil, err
	}

	report, err := s.analyzer.Analyze(txs, month)
	if err != nil {
		if errors.IsValidationError(err) {
			return nil, err
		}
		s.log(ctx).Error("failed to analyze budget", "error", err, "month", month)
		return nil, errors.NewInternalError("failed to analyze budget", err)
	}

	metrics.BudgetAnalysesTotal.WithLabelValues(trigger).Inc()
	return report, nil
}
