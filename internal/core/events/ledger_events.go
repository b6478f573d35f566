package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionRecorded = "transaction.recorded"
	EventTypeTransactionUpdated  = "transaction.updated"
	EventTypeTransactionDeleted  = "transaction.deleted"
)

// TransactionEventTypes lists every event the ledger emits.
var TransactionEventTypes = []string{
	EventTypeTransactionRecorded,
	EventTypeTransactionUpdated,
	EventTypeTransactionDeleted,
}

// TransactionEvent reports a change to one ledger transaction. Months holds
// every YYYY-MM the change touched: an update that moves a transaction to
// another month lists both the old and the new month.
type TransactionEvent struct {
	BaseEvent
	TransactionID string   `json:"transaction_id"`
	Category      string   `json:"category"`
	Amount        string   `json:"amount"`
	Months        []string `json:"months"`
}

func NewTransactionEvent(eventType, transactionID, category, amount string, months ...string) *TransactionEvent {
	months = uniqueMonths(months)
	return &TransactionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"category":       category,
				"amount":         amount,
				"months":         months,
			},
		},
		TransactionID: transactionID,
		Category:      category,
		Amount:        amount,
		Months:        months,
	}
}

// MonthOf returns the YYYY-MM prefix of a YYYY-MM-DD date, or "" when the
// date is too short.
func MonthOf(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

func uniqueMonths(months []string) []string {
	seen := make(map[string]struct{}, len(months))
	result := make([]string, 0, len(months))
	for _, m := range months {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		result = append(result, m)
	}
	return result
}
