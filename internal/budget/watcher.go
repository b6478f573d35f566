package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/frahmantamala/budget-ledger/pkg/metrics"
)

// Watcher re-checks a month's allocations whenever a ledger change touches
// that month, and reports every allocation found over its cap.
type Watcher struct {
	service *Service
	logger  *slog.Logger
}

func NewWatcher(service *Service, logger *slog.Logger) *Watcher {
	return &Watcher{
		service: service,
		logger:  logger,
	}
}

func (w *Watcher) HandleTransactionEvent(ctx context.Context, event events.Event) error {
	txEvent, ok := event.(*events.TransactionEvent)
	if !ok {
		w.logger.Error("invalid event type for budget watcher", "event_type", event.EventType())
		return fmt.Errorf("expected TransactionEvent, got %T", event)
	}

	metrics.TransactionEventsTotal.WithLabelValues(txEvent.EventType()).Inc()

	for _, month := range txEvent.Months {
		report, err := w.service.analyze(ctx, month, "watcher")
		if err != nil {
			return fmt.Errorf("analyze %s after %s: %w", month, txEvent.EventType(), err)
		}

		for _, scope := range report.ExceededScopes() {
			w.report(report, scope, txEvent)
		}
	}

	return nil
}

func (w *Watcher) report(report *Report, scope string, event *events.TransactionEvent) {
	if scope == metrics.ScopeOverall {
		metrics.BudgetExceededTotal.WithLabelValues(metrics.ScopeOverall).Inc()
		w.logger.Warn("overall budget exceeded",
			"month", report.Month,
			"budget", report.TotalBudget.String(),
			"spent", report.TotalSpent.String(),
			"transaction_id", event.TransactionID,
			"event_id", event.EventID())
		return
	}

	category := report.Categories[scope]
	metrics.BudgetExceededTotal.WithLabelValues(metrics.ScopeCategory).Inc()
	w.logger.Warn("category budget exceeded",
		"month", report.Month,
		"category", scope,
		"budget", category.Budget.String(),
		"spent", category.Spent.String(),
		"transaction_id", event.TransactionID,
		"event_id", event.EventID())
}

func (w *Watcher) RegisterEventHandlers(eventBus *events.EventBus) {
	for _, eventType := range events.TransactionEventTypes {
		eventBus.Subscribe(eventType, w.HandleTransactionEvent)
	}

	w.logger.Debug("budget watcher registered", "handlers", events.TransactionEventTypes)
}
