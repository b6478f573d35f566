package ledger

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
)

// Service wraps the Ledger with request validation, logging and change
// events.
type Service struct {
	ledger    *Ledger
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(ledger *Ledger, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Ledger() *Ledger {
	return s.ledger
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if s.logger == nil {
		return logger.From(ctx)
	}
	if traceID := errors.TraceIDFromContext(ctx); traceID != "" {
		return s.logger.With("trace_id", traceID)
	}
	return s.logger
}

func (s *Service) RecordTransaction(ctx context.Context, dto CreateTransactionDTO) (*Transaction, error) {
	dto.Normalize(s.now())
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("transaction validation failed", "error", err)
		return nil, err
	}

	tx, err := s.ledger.Add(dto.Amount, dto.Category, dto.Date, dto.Description)
	if err != nil {
		s.log(ctx).Error("failed to record transaction", "error", err)
		return nil, errors.NewInternalError("failed to record transaction", err)
	}

	s.log(ctx).Info("transaction recorded",
		"transaction_id", tx.ID,
		"amount", tx.Amount.String(),
		"category", tx.Category,
		"date", tx.Date)

	s.publish(ctx, events.EventTypeTransactionRecorded, tx, events.MonthOf(tx.Date))
	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, dto TransactionFilterDTO) ([]*Transaction, error) {
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("transaction filter validation failed", "error", err)
		return nil, err
	}

	filter := dto.ToFilter()
	if filter.Tag != "" {
		s.log(ctx).Debug("tag filter ignored, transactions carry no tags", "tag", filter.Tag)
	}

	txs, err := s.ledger.Filter(filter)
	if err != nil {
		s.log(ctx).Error("failed to list transactions", "error", err)
		return nil, errors.NewInternalError("failed to list transactions", err)
	}
	return txs, nil
}

// Transactions returns the full ledger snapshot.
func (s *Service) Transactions(ctx context.Context) ([]*Transaction, error) {
	txs, err := s.ledger.GetAll()
	if err != nil {
		s.log(ctx).Error("failed to read ledger snapshot", "error", err)
		return nil, errors.NewInternalError("failed to read transactions", err)
	}
	return txs, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	tx, err := s.ledger.GetByID(id)
	if err != nil {
		s.log(ctx).Error("failed to get transaction", "error", err, "transaction_id", id)
		return nil, errors.NewInternalError("failed to get transaction", err)
	}
	if tx == nil {
		return nil, errors.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *Service) UpdateTransaction(ctx context.Context, id string, dto UpdateTransactionDTO) (*Transaction, error) {
	if err := dto.Validate(); err != nil {
		s.log(ctx).Warn("transaction update validation failed", "error", err, "transaction_id", id)
		return nil, err
	}

	before, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.Update(before.ID, dto.ToPatch())
	if err != nil {
		s.log(ctx).Error("failed to update transaction", "error", err, "transaction_id", before.ID)
		return nil, errors.NewInternalError("failed to update transaction", err)
	}
	if tx == nil {
		return nil, errors.ErrTransactionNotFound
	}

	s.log(ctx).Info("transaction updated",
		"transaction_id", tx.ID,
		"amount", tx.Amount.String(),
		"category", tx.Category,
		"date", tx.Date)

	s.publish(ctx, events.EventTypeTransactionUpdated, tx, events.MonthOf(before.Date), events.MonthOf(tx.Date))
	return tx, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	removed, err := s.ledger.Delete(tx.ID)
	if err != nil {
		s.log(ctx).Error("failed to delete transaction", "error", err, "transaction_id", tx.ID)
		return errors.NewInternalError("failed to delete transaction", err)
	}
	if !removed {
		return errors.ErrTransactionNotFound
	}

	s.log(ctx).Info("transaction deleted", "transaction_id", tx.ID)
	s.publish(ctx, events.EventTypeTransactionDeleted, tx, events.MonthOf(tx.Date))
	return nil
}

func (s *Service) ExportTransactions(ctx context.Context) ([][]string, error) {
	rows, err := s.ledger.ExportTabular()
	if err != nil {
		s.log(ctx).Error("failed to export transactions", "error", err)
		return nil, errors.NewInternalError("failed to export transactions", err)
	}
	return rows, nil
}

func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	summary, err := s.ledger.Summarize()
	if err != nil {
		s.log(ctx).Error("failed to summarize transactions", "error", err)
		return nil, errors.NewInternalError("failed to summarize transactions", err)
	}
	return summary, nil
}

func (s *Service) publish(ctx context.Context, eventType string, tx *Transaction, months ...string) {
	if s.publisher == nil {
		return
	}
	event := events.NewTransactionEvent(eventType, tx.ID, tx.Category, tx.Amount.String(), months...)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log(ctx).Error("failed to publish transaction event",
			"error", err,
			"event_type", eventType,
			"transaction_id", tx.ID)
	}
}
